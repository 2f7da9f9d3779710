package vm

import "math/bits"

// makeBinary builds a handler for the ALU binary family: either n=2
// in-place (P[0] <- P[0] op P[1]) or n=3 (P[0] <- P[1] op P[2]).
func makeBinary(op func(a, b uint64) uint64) opcodeHandler {
	return func(c *CPU, d *Decoded) {
		switch len(d.Params) {
		case 2:
			d.Params[0].Write(op(d.Params[0].Read(), d.Params[1].Read()))
		case 3:
			d.Params[0].Write(op(d.Params[1].Read(), d.Params[2].Read()))
		default:
			c.raiseException(ExcBadInstruction)
		}
	}
}

func divOperands(d *Decoded) (dst *Operand, a, b uint64, ok bool) {
	switch len(d.Params) {
	case 2:
		return &d.Params[0], d.Params[0].Read(), d.Params[1].Read(), true
	case 3:
		return &d.Params[0], d.Params[1].Read(), d.Params[2].Read(), true
	default:
		return nil, 0, 0, false
	}
}

func opDIV(c *CPU, d *Decoded) {
	dst, a, b, ok := divOperands(d)
	if !ok {
		c.raiseException(ExcBadInstruction)
		return
	}
	if b == 0 {
		c.raiseException(ExcBadArithmetic)
		return
	}
	dst.Write(a / b)
}

func opIDIV(c *CPU, d *Decoded) {
	dst, a, b, ok := divOperands(d)
	if !ok {
		c.raiseException(ExcBadInstruction)
		return
	}
	if b == 0 {
		c.raiseException(ExcBadArithmetic)
		return
	}
	dst.Write(uint64(int64(a) / int64(b)))
}

func opMOD(c *CPU, d *Decoded) {
	dst, a, b, ok := divOperands(d)
	if !ok {
		c.raiseException(ExcBadInstruction)
		return
	}
	if b == 0 {
		c.raiseException(ExcBadArithmetic)
		return
	}
	dst.Write(a % b)
}

func opINC(c *CPU, d *Decoded) {
	if len(d.Params) < 1 {
		c.raiseException(ExcBadInstruction)
		return
	}
	for i := range d.Params {
		d.Params[i].Write(d.Params[i].Read() + 1)
	}
}

func opDEC(c *CPU, d *Decoded) {
	if len(d.Params) < 1 {
		c.raiseException(ExcBadInstruction)
		return
	}
	for i := range d.Params {
		d.Params[i].Write(d.Params[i].Read() - 1)
	}
}

func opNOT(c *CPU, d *Decoded) {
	if len(d.Params) != 1 {
		c.raiseException(ExcBadInstruction)
		return
	}
	d.Params[0].Write(^d.Params[0].Read())
}

func opROR(c *CPU, d *Decoded) {
	switch len(d.Params) {
	case 1:
		d.Params[0].Write(bits.RotateLeft64(d.Params[0].Read(), -1))
	case 2:
		n := int(d.Params[1].Read() % 64)
		d.Params[0].Write(bits.RotateLeft64(d.Params[0].Read(), -n))
	default:
		c.raiseException(ExcBadInstruction)
	}
}

func opROL(c *CPU, d *Decoded) {
	switch len(d.Params) {
	case 1:
		d.Params[0].Write(bits.RotateLeft64(d.Params[0].Read(), 1))
	case 2:
		n := int(d.Params[1].Read() % 64)
		d.Params[0].Write(bits.RotateLeft64(d.Params[0].Read(), n))
	default:
		c.raiseException(ExcBadInstruction)
	}
}

// pdep deposits successive low bits of src into the positions where
// mask has a set bit.
func pdep(src, mask uint64) uint64 {
	var result uint64
	for i := 0; i < 64; i++ {
		if mask&(1<<uint(i)) != 0 {
			if src&1 != 0 {
				result |= 1 << uint(i)
			}
			src >>= 1
		}
	}
	return result
}

// pext packs the bits of src selected by mask contiguously starting at
// bit 0 of the result.
func pext(src, mask uint64) uint64 {
	var result uint64
	var pos uint
	for i := 0; i < 64; i++ {
		if mask&(1<<uint(i)) != 0 {
			if src&(1<<uint(i)) != 0 {
				result |= 1 << pos
			}
			pos++
		}
	}
	return result
}

func opPDEP(c *CPU, d *Decoded) {
	switch len(d.Params) {
	case 2:
		d.Params[0].Write(pdep(d.Params[0].Read(), d.Params[1].Read()))
	case 3:
		d.Params[0].Write(pdep(d.Params[1].Read(), d.Params[2].Read()))
	default:
		c.raiseException(ExcBadInstruction)
	}
}

func opPEXT(c *CPU, d *Decoded) {
	switch len(d.Params) {
	case 2:
		d.Params[0].Write(pext(d.Params[0].Read(), d.Params[1].Read()))
	case 3:
		d.Params[0].Write(pext(d.Params[1].Read(), d.Params[2].Read()))
	default:
		c.raiseException(ExcBadInstruction)
	}
}

// makeBswap builds a handler that reverses the low width bytes of
// P[0], zeroing the bytes above width.
func makeBswap(width int) opcodeHandler {
	return func(c *CPU, d *Decoded) {
		if len(d.Params) != 1 {
			c.raiseException(ExcBadInstruction)
			return
		}
		v := d.Params[0].Read()
		var out uint64
		for i := 0; i < width; i++ {
			b := (v >> uint(8*i)) & 0xFF
			out |= b << uint(8*(width-1-i))
		}
		d.Params[0].Write(out)
	}
}
