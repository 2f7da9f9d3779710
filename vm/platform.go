package vm

import (
	"log"
	"os"
)

const (
	platformPowerSize = 0x01
	memProbeSize      = 0x08
)

// PlatformPower is the guest's power switch: reading it always returns
// 1 (the platform is on for as long as anything can observe it);
// writing a zero byte tears the machine down and exits the process.
type PlatformPower struct {
	machine *Machine
}

func newPlatformPower(m *Machine) *PlatformPower {
	return &PlatformPower{machine: m}
}

func (p *PlatformPower) mmioRead(offset uint64, size int) uint64 {
	return 1
}

func (p *PlatformPower) mmioWrite(offset uint64, value uint64, size int) {
	if value != 0 {
		return
	}
	log.Printf("[platform] power-off requested, shutting down")
	p.machine.Shutdown()
	os.Exit(0)
}

// MemProbe is the read-only memory-size port: it always reports the
// machine's total RAM size regardless of access width.
type MemProbe struct {
	size uint64
}

func newMemProbe(size uint64) *MemProbe {
	return &MemProbe{size: size}
}

func (m *MemProbe) mmioRead(offset uint64, size int) uint64 {
	return m.size
}

func (m *MemProbe) mmioWrite(offset uint64, value uint64, size int) {}
