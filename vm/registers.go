package vm

import "strconv"

// Register layout for the LA64 core: 32 named 64-bit slots.
//
//	0  PC   program counter
//	1  SP   stack pointer
//	2  FP   frame pointer
//	3  CF   compare flags (Z=1, L=2, G=4)
//	4..30   R0..R26, general purpose
//	31 RR   return register, not saved across BL/RET
const (
	RegPC = 0
	RegSP = 1
	RegFP = 2
	RegCF = 3
	RegR0 = 4
	// RegR26 is the last of the general-purpose argument/scratch registers.
	RegR26 = 30
	RegRR  = 31

	NumRegisters = 32
)

// Compare-flag bits set by CMP and tested by the conditional jumps.
const (
	FlagZ = 1 << 0
	FlagL = 1 << 1
	FlagG = 1 << 2
)

// IRQ line assignments, fixed by the platform.
const (
	IRQTimer    = 0
	IRQUART     = 1
	IRQDisk     = 2
	IRQNetwork  = 3
	IRQSoftware = 4
)

// regName renders a register index the way a disassembler or fault
// message should: by its architectural name, not its raw slot number.
func regName(idx uint8) string {
	switch idx {
	case RegPC:
		return "PC"
	case RegSP:
		return "SP"
	case RegFP:
		return "FP"
	case RegCF:
		return "CF"
	case RegRR:
		return "RR"
	default:
		if idx >= RegR0 && idx <= RegR26 {
			return "R" + strconv.Itoa(int(idx-RegR0))
		}
		return "R?" + strconv.Itoa(int(idx))
	}
}
