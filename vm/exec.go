package vm

import (
	"log"
	"time"
)

// haltYield is how long the CPU thread sleeps per iteration while
// halted, so the loop still notices new interrupts promptly without
// spinning.
const haltYield = 100 * time.Microsecond

// Step runs one iteration of the execution loop's state machine for
// core c against machine m: halted/exception handling, decode and
// dispatch, IRQ service, and the timer tick.
func Step(m *Machine, c *CPU) {
	switch {
	case c.halted:
		time.Sleep(haltYield)
	case c.exception != ExcNone:
		if m.disasmFaults {
			logFaultingInstruction(m, c)
		}
		c.halted = true
		m.intc.Raise(IRQSoftware)
		c.exception = ExcNone
	default:
		stepDecodeAndDispatch(m, c)
	}

	if m.intc.Pending() {
		if addr, ok := m.intc.check(c.PC()); ok {
			c.setPC(addr)
			c.halted = false
		}
	}

	m.timer.Tick(hostCycles())
}

// logFaultingInstruction disassembles the instruction at c.PC() and logs
// it, best-effort: a fetch failure (the fault itself was a bad-access
// one) just falls back to logging the bare exception tag.
func logFaultingInstruction(m *Machine, c *CPU) {
	window, ok := m.router.Fetch(c.PC(), 32)
	if !ok {
		log.Printf("[disasm] 0x%016x: <%s>", c.PC(), c.exception)
		return
	}
	log.Printf("[disasm] %s (%s)", Disassemble(window, c.PC(), c.Registers()), c.exception)
}

func stepDecodeAndDispatch(m *Machine, c *CPU) {
	window, ok := m.router.Fetch(c.PC(), 32)
	if !ok {
		c.raiseException(ExcBadAccess)
		return
	}
	d, exc := Decode(window, &c.registers)
	if exc != ExcNone {
		c.raiseException(exc)
		return
	}

	handler := opcodeTable[d.Op]
	if handler == nil {
		c.raiseException(ExcBadInstruction)
		return
	}
	handler(c, &d)
	if c.exception != ExcNone {
		return
	}
	c.setPC(c.PC() + uint64(d.Ilen))
}
