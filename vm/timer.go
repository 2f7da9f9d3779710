package vm

import "time"

// Timer register offsets, relative to its MMIO base.
const (
	timerRegCtrl    = 0x00
	timerRegCount   = 0x08
	timerRegCompare = 0x10
	timerRegStatus  = 0x18
	timerRegFreq    = 0x20

	timerSize = 0x28

	timerCtrlEnable   = 1 << 0
	timerCtrlIRQEn    = 1 << 1
	timerCtrlPeriodic = 1 << 2

	timerStatusIRQ = 1 << 0

	// hostFreq is this implementation's host_freq: time.Now() is read
	// in nanoseconds, so one host "cycle" is one nanosecond. No pack
	// example ties a portable TSC/cntvct accessor into Go; see
	// DESIGN.md.
	hostFreq uint64 = 1_000_000_000
)

// Timer scales host cycles into virtual-frequency ticks using a
// 128-bit intermediate so the conversion stays exact across arbitrary
// frequency ratios, and fires a compare-match IRQ, one-shot or
// periodic.
type Timer struct {
	virtualFreq uint64
	irqLine     int
	intc        *INTC

	lastHostCycles uint64
	remainder      uint64

	ctrl    uint64
	count   uint64
	compare uint64
	status  uint64
}

// newTimer constructs a timer at the given virtual frequency, wired to
// raise irqLine on the shared INTC.
func newTimer(virtualFreq uint64, irqLine int, intc *INTC) *Timer {
	return &Timer{virtualFreq: virtualFreq, irqLine: irqLine, intc: intc}
}

// hostCycles samples the current host cycle count.
func hostCycles() uint64 {
	return uint64(time.Now().UnixNano())
}

// Tick advances the timer given the current host cycle count, called
// once per execution-loop iteration from the CPU thread.
func (tm *Timer) Tick(now uint64) {
	if tm.ctrl&timerCtrlEnable == 0 {
		tm.lastHostCycles = now
		return
	}
	elapsed := now - tm.lastHostCycles
	tm.lastHostCycles = now
	if elapsed == 0 {
		return
	}

	total := mulAdd128(elapsed, tm.virtualFreq, tm.remainder)
	virtualTicks, remainder := divmod128(total, hostFreq)
	tm.remainder = remainder
	if virtualTicks == 0 {
		return
	}

	old := tm.count
	tm.count += virtualTicks
	if old < tm.compare && tm.compare <= tm.count {
		tm.status |= timerStatusIRQ
		if tm.ctrl&timerCtrlPeriodic != 0 {
			tm.count -= tm.compare
		} else {
			tm.ctrl &^= timerCtrlEnable
		}
		if tm.ctrl&timerCtrlIRQEn != 0 {
			tm.intc.Raise(tm.irqLine)
		}
	}
}

func (tm *Timer) mmioRead(offset uint64, size int) uint64 {
	switch offset {
	case timerRegCtrl:
		return tm.ctrl
	case timerRegCount:
		return tm.count
	case timerRegCompare:
		return tm.compare
	case timerRegStatus:
		return tm.status
	case timerRegFreq:
		return tm.virtualFreq
	default:
		return 0
	}
}

func (tm *Timer) mmioWrite(offset uint64, value uint64, size int) {
	switch offset {
	case timerRegCtrl:
		enabling := value&timerCtrlEnable != 0 && tm.ctrl&timerCtrlEnable == 0
		tm.ctrl = value
		if enabling {
			tm.lastHostCycles = hostCycles()
		}
	case timerRegCount:
		tm.count = value
	case timerRegCompare:
		tm.compare = value
	case timerRegStatus:
		tm.status &^= value
	}
}
