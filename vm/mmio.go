package vm

import "fmt"

// maxMMIORegions bounds the region directory, matching the fixed,
// architecturally small set of devices this platform ever wires up.
const maxMMIORegions = 32

// mmioReadFunc and mmioWriteFunc are a region's callbacks, closed over
// their owning device at registration time. offset is addr - base.
// size is the guest access width (1, 2, 4 or 8), passed through
// unchanged; byte-wide device ports (UART, platform power) ignore it.
type mmioReadFunc func(offset uint64, size int) uint64
type mmioWriteFunc func(offset uint64, value uint64, size int)

type mmioRegion struct {
	base, size uint64
	device     any
	readFn     mmioReadFunc
	writeFn    mmioWriteFunc
	name       string
}

func (r *mmioRegion) contains(addr uint64) bool {
	return addr >= r.base && addr < r.base+r.size
}

func overlaps(base, size, otherBase, otherSize uint64) bool {
	return base < otherBase+otherSize && base+size > otherBase
}

// MMIOBus is the ordered directory of non-overlapping MMIO regions with
// a one-element "last hit" lookup cache.
type MMIOBus struct {
	regions []*mmioRegion
	lastHit *mmioRegion
}

// NewMMIOBus returns an empty bus.
func NewMMIOBus() *MMIOBus {
	return &MMIOBus{}
}

// Register adds a new region spanning [base, base+size), with device
// kept only as an opaque handle for diagnostics. It fails if the
// directory is full or the new extent overlaps an existing region.
func (b *MMIOBus) Register(base, size uint64, device any, readFn mmioReadFunc, writeFn mmioWriteFunc, name string) error {
	if len(b.regions) >= maxMMIORegions {
		return fmt.Errorf("mmio: region directory full (max %d)", maxMMIORegions)
	}
	for _, r := range b.regions {
		if overlaps(base, size, r.base, r.size) {
			return fmt.Errorf("mmio: region %q [0x%x,0x%x) overlaps existing region %q [0x%x,0x%x)",
				name, base, base+size, r.name, r.base, r.base+r.size)
		}
	}
	b.regions = append(b.regions, &mmioRegion{
		base: base, size: size, device: device, readFn: readFn, writeFn: writeFn, name: name,
	})
	return nil
}

// find returns the region containing addr, or nil, consulting the last
// hit before scanning the directory.
func (b *MMIOBus) find(addr uint64) *mmioRegion {
	if b.lastHit != nil && b.lastHit.contains(addr) {
		return b.lastHit
	}
	for _, r := range b.regions {
		if r.contains(addr) {
			b.lastHit = r
			return r
		}
	}
	return nil
}
