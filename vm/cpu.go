package vm

// CPUException is the fault taxonomy a handler or the decoder can
// raise. The execution loop observes it on the following iteration and
// converts it into the software IRQ.
type CPUException int

const (
	ExcNone CPUException = iota
	ExcBadAccess
	ExcPermission // reserved for future privilege checks; never raised today
	ExcBadInstruction
	ExcBadArithmetic
)

func (e CPUException) String() string {
	switch e {
	case ExcNone:
		return "NONE"
	case ExcBadAccess:
		return "BAD_ACCESS"
	case ExcPermission:
		return "PERMISSION"
	case ExcBadInstruction:
		return "BAD_INSTRUCTION"
	case ExcBadArithmetic:
		return "BAD_ARITHMETIC"
	default:
		return "UNKNOWN"
	}
}

// CPU holds the register file, decode scratch, and exception state for
// the single authoritative core. The other core slots a Machine carries
// (see Machine.cores) exist only to mirror the source's vestigial
// multi-core fields; they are never stepped.
type CPU struct {
	registers [NumRegisters]uint64

	halted    bool
	exception CPUException

	machine *Machine
}

// newCPU constructs a core bound to machine, all registers zero.
func newCPU(machine *Machine) *CPU {
	return &CPU{machine: machine}
}

// PC, SP, FP and CF are convenience accessors over the named slots.
func (c *CPU) PC() uint64 { return c.registers[RegPC] }
func (c *CPU) SP() uint64 { return c.registers[RegSP] }
func (c *CPU) FP() uint64 { return c.registers[RegFP] }
func (c *CPU) CF() uint64 { return c.registers[RegCF] }

func (c *CPU) setPC(v uint64) { c.registers[RegPC] = v }
func (c *CPU) setSP(v uint64) { c.registers[RegSP] = v }
func (c *CPU) setFP(v uint64) { c.registers[RegFP] = v }
func (c *CPU) setCF(v uint64) { c.registers[RegCF] = v }

// Halted reports whether the core has stopped decoding (still subject
// to IRQ checks).
func (c *CPU) Halted() bool { return c.halted }

// Register returns the raw value of register idx, for tests and
// diagnostics.
func (c *CPU) Register(idx int) uint64 { return c.registers[idx] }

// Registers returns the live register file, for disassembly and other
// diagnostics that need to resolve a decoded operand back to its
// register name.
func (c *CPU) Registers() *[NumRegisters]uint64 { return &c.registers }

// raiseException records a fault for the execution loop to notice on
// its next pass.
func (c *CPU) raiseException(e CPUException) {
	c.exception = e
}
