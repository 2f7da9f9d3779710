package vm

import (
	"bufio"
	"os"
	"sync"

	"golang.org/x/term"
)

// UART register offsets, relative to its MMIO base.
const (
	uartRegData    = 0x00
	uartRegStatus  = 0x04
	uartRegControl = 0x08

	uartSize = 0x10

	uartStatusRXReady  = 1 << 0
	uartStatusTXEmpty  = 1 << 1
	uartStatusRXFull   = 1 << 2
	uartStatusOverflow = 1 << 3

	uartControlRXIRQEn = 1 << 0
	uartControlTXIRQEn = 1 << 1
	uartControlReset   = 1 << 2

	uartRingSize    = 64
	uartFullThresh  = uartRingSize - 4
	uartCtrlCByte   = 0x03
)

// UART is a bounded-ring RX device read from host stdin on a
// background thread, with direct synchronous TX to host stdout and a
// level-triggered IRQ recomputed after every state change.
type UART struct {
	mu sync.Mutex

	ring       [uartRingSize]byte
	head, tail int

	status  uint64
	control uint64

	out     *bufio.Writer
	irqLine int
	intc    *INTC

	running  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	restore  func() error
}

// newUART constructs a UART with TX_EMPTY already latched (the
// emulator's TX is synchronous, so the transmitter is always ready).
func newUART(irqLine int, intc *INTC, out *os.File) *UART {
	return &UART{
		status:  uartStatusTXEmpty,
		out:     bufio.NewWriter(out),
		irqLine: irqLine,
		intc:    intc,
		stopCh:  make(chan struct{}),
	}
}

// Start puts host stdin into raw mode and spawns the reader thread.
// Safe to call at most once; a machine with no attached terminal (e.g.
// under test) simply never calls it and drives the ring with
// feedByte directly.
func (u *UART) Start(in *os.File) error {
	fd := int(in.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	u.restore = func() error { return term.Restore(fd, oldState) }
	u.running = true
	go u.readLoop(in)
	return nil
}

// readLoop is the host input thread: it blocks on single-byte reads
// and feeds the ring until told to stop or it sees Ctrl-C.
func (u *UART) readLoop(in *os.File) {
	buf := make([]byte, 1)
	for {
		select {
		case <-u.stopCh:
			return
		default:
		}
		n, err := in.Read(buf)
		if err != nil || n <= 0 {
			continue
		}
		if buf[0] == uartCtrlCByte {
			return
		}
		u.feedByte(buf[0])
	}
}

// feedByte is the ring-buffer producer, exercised directly by tests
// without a real terminal thread.
func (u *UART) feedByte(b byte) {
	u.mu.Lock()
	defer u.mu.Unlock()

	next := (u.tail + 1) % uartRingSize
	if next == u.head {
		u.status |= uartStatusOverflow
	} else {
		u.ring[u.tail] = b
		u.tail = next
		u.status |= uartStatusRXReady
		if u.fillLocked() > uartFullThresh {
			u.status |= uartStatusRXFull
		}
	}
	u.updateIRQLocked()
}

func (u *UART) fillLocked() int {
	if u.tail >= u.head {
		return u.tail - u.head
	}
	return uartRingSize - u.head + u.tail
}

// updateIRQLocked recomputes the UART's level and raises or clears its
// line on the shared INTC. Must be called with mu held.
func (u *UART) updateIRQLocked() {
	level := (u.control&uartControlRXIRQEn != 0 && u.status&uartStatusRXReady != 0) ||
		(u.control&uartControlTXIRQEn != 0 && u.status&uartStatusTXEmpty != 0)
	if level {
		u.intc.Raise(u.irqLine)
	} else {
		u.intc.Clear(u.irqLine)
	}
}

func (u *UART) mmioRead(offset uint64, size int) uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch offset {
	case uartRegData:
		if u.head == u.tail && u.status&uartStatusRXReady == 0 {
			return 0
		}
		b := u.ring[u.head]
		u.head = (u.head + 1) % uartRingSize
		u.status &^= uartStatusRXFull
		if u.head == u.tail {
			u.status &^= uartStatusRXReady
		}
		u.updateIRQLocked()
		return uint64(b)
	case uartRegStatus:
		return u.status
	case uartRegControl:
		return u.control
	default:
		return 0
	}
}

func (u *UART) mmioWrite(offset uint64, value uint64, size int) {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch offset {
	case uartRegData:
		u.out.WriteByte(byte(value))
		u.out.Flush()
		u.status |= uartStatusTXEmpty
		u.updateIRQLocked()
	case uartRegControl:
		u.control = value
		if value&uartControlReset != 0 {
			u.head, u.tail = 0, 0
			u.status = uartStatusTXEmpty
			u.control &^= uartControlReset
		}
		u.updateIRQLocked()
	}
}

// Close signals the reader thread to stop and restores the host terminal
// mode, tolerating a UART that was never Start-ed. It does not wait for
// the reader: that thread exits only once its current blocking read
// returns.
func (u *UART) Close() {
	u.stopOnce.Do(func() {
		close(u.stopCh)
	})
	if u.restore != nil {
		u.restore()
	}
}
