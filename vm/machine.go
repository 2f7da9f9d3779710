package vm

import (
	"fmt"
	"os"
	"runtime/debug"
)

// Fixed MMIO base addresses, per the platform's bus map.
const (
	IntcBase          = 0x1FE00000
	TimerBase         = 0x1FE00100
	RTCBase           = 0x1FE00200
	UARTBase          = 0x1FE00300
	MemProbeBase      = 0x1FE00400
	PlatformPowerBase = 0x1FE00500
	FramebufferBase   = 0x1FE00700

	// DefaultMemorySize is the guest RAM size used when the CLI does
	// not override it: 512 MiB.
	DefaultMemorySize uint64 = 0x20000000

	// DefaultVirtualFreq is the timer's virtual frequency used when
	// not overridden: 1 MHz.
	DefaultVirtualFreq uint64 = 1_000_000

	numCoreSlots = 4
)

// MachineConfig configures a Machine at construction. Zero values pick
// the platform defaults.
type MachineConfig struct {
	MemorySize   uint64
	VirtualFreq  uint64
	Framebuffer  bool
	AttachUART   bool
	DisasmFaults bool
}

// Machine wires every component together, registers the fixed MMIO
// regions, and owns the single authoritative core plus the vestigial
// extra core slots named by the source's multi-core fields (never
// stepped; see cpu.go).
type Machine struct {
	mem    *Memory
	mmio   *MMIOBus
	router *Router

	intc  *INTC
	timer *Timer
	uart  *UART
	rtc   *RTC
	power *PlatformPower
	probe *MemProbe
	fb    *Framebuffer

	cores [numCoreSlots]*CPU
	cpu   *CPU

	disasmFaults bool
}

// NewMachine allocates memory, wires the MMIO bus, and constructs
// every device at its fixed base address.
func NewMachine(cfg MachineConfig) (*Machine, error) {
	if cfg.MemorySize == 0 {
		cfg.MemorySize = DefaultMemorySize
	}
	if cfg.VirtualFreq == 0 {
		cfg.VirtualFreq = DefaultVirtualFreq
	}

	m := &Machine{
		mem:          NewMemory(cfg.MemorySize),
		mmio:         NewMMIOBus(),
		disasmFaults: cfg.DisasmFaults,
	}
	m.router = NewRouter(m.mem, m.mmio)

	m.intc = newINTC(m.router)
	if err := m.mmio.Register(IntcBase, intcSize, m.intc, m.intc.mmioRead, m.intc.mmioWrite, "intc"); err != nil {
		return nil, err
	}

	m.timer = newTimer(cfg.VirtualFreq, IRQTimer, m.intc)
	if err := m.mmio.Register(TimerBase, timerSize, m.timer, m.timer.mmioRead, m.timer.mmioWrite, "timer"); err != nil {
		return nil, err
	}

	m.rtc = newRTC()
	if err := m.mmio.Register(RTCBase, rtcSize, m.rtc, m.rtc.mmioRead, m.rtc.mmioWrite, "rtc"); err != nil {
		return nil, err
	}

	m.uart = newUART(IRQUART, m.intc, os.Stdout)
	if err := m.mmio.Register(UARTBase, uartSize, m.uart, m.uart.mmioRead, m.uart.mmioWrite, "uart"); err != nil {
		return nil, err
	}

	m.probe = newMemProbe(cfg.MemorySize)
	if err := m.mmio.Register(MemProbeBase, memProbeSize, m.probe, m.probe.mmioRead, m.probe.mmioWrite, "mem-probe"); err != nil {
		return nil, err
	}

	m.power = newPlatformPower(m)
	if err := m.mmio.Register(PlatformPowerBase, platformPowerSize, m.power, m.power.mmioRead, m.power.mmioWrite, "platform-power"); err != nil {
		return nil, err
	}

	if cfg.Framebuffer {
		m.fb = newFramebuffer()
		if err := m.mmio.Register(FramebufferBase, fbSize, m.fb, m.fb.mmioRead, m.fb.mmioWrite, "framebuffer"); err != nil {
			return nil, err
		}
	}

	for i := range m.cores {
		m.cores[i] = newCPU(m)
	}
	m.cpu = m.cores[0]

	if cfg.AttachUART {
		if err := m.uart.Start(os.Stdin); err != nil {
			return nil, fmt.Errorf("uart: %w", err)
		}
	}
	if cfg.Framebuffer {
		m.fb.StartRenderer()
	}

	return m, nil
}

// CPU returns the single authoritative core.
func (m *Machine) CPU() *CPU { return m.cpu }

// Memory returns the machine's RAM.
func (m *Machine) Memory() *Memory { return m.mem }

// UART returns the machine's UART device, for tests that feed bytes
// directly without a real terminal.
func (m *Machine) UART() *UART { return m.uart }

// Framebuffer returns the optional framebuffer device, or nil if the
// machine was constructed without one.
func (m *Machine) Framebuffer() *Framebuffer { return m.fb }

// Boot loads image at guest address 0, then primes PC from the image's
// first 8 little-endian bytes and SP from memory_size - 8.
func (m *Machine) Boot(image []byte) error {
	if err := m.mem.LoadImage(image); err != nil {
		return err
	}
	if len(image) < 8 {
		return fmt.Errorf("boot image of %d bytes is too small to hold an entry address", len(image))
	}
	entry := NewBitReader(image[:8]).Read(64)
	m.cpu.setPC(entry)
	m.cpu.setSP(m.mem.Size() - 8)
	return nil
}

// Run drives the execution loop on the authoritative core forever. GC
// is disabled for the duration, mirroring the hot-loop tuning the
// teacher applies around its own dispatch loop, and restored on
// return (which in practice only happens if the caller recovers from
// a panic upstream; a clean guest shutdown exits the process from
// inside PlatformPower.mmioWrite).
func (m *Machine) Run() {
	debug.SetGCPercent(-1)
	defer debug.SetGCPercent(100)

	for {
		Step(m, m.cpu)
	}
}

// Shutdown tears down every device with host-side resources: the UART
// reader thread is signalled to stop (not joined) and the terminal mode
// restored, and the framebuffer renderer is cancelled if running.
func (m *Machine) Shutdown() {
	m.uart.Close()
	if m.fb != nil {
		m.fb.Close()
	}
}
