package vm

func opJMP(c *CPU, d *Decoded) {
	if len(d.Params) != 1 {
		c.raiseException(ExcBadInstruction)
		return
	}
	c.setPC(d.Params[0].Read())
	d.Ilen = 0
}

func opCMP(c *CPU, d *Decoded) {
	if len(d.Params) != 2 {
		c.raiseException(ExcBadInstruction)
		return
	}
	a := int64(d.Params[0].Read())
	b := int64(d.Params[1].Read())
	var cf uint64
	switch {
	case a == b:
		cf = FlagZ
	case a < b:
		cf = FlagL
	default:
		cf = FlagG
	}
	c.setCF(cf)
}

// makeCondJump builds a one-operand jump that fires when (CF & mask !=
// 0) equals wantSet; JE/JLT/JGT/JLE/JGE all test for the mask's bits
// being set, JNE tests for them being clear.
func makeCondJump(mask uint64, wantSet bool) opcodeHandler {
	return func(c *CPU, d *Decoded) {
		if len(d.Params) != 1 {
			c.raiseException(ExcBadInstruction)
			return
		}
		if (c.CF()&mask != 0) == wantSet {
			c.setPC(d.Params[0].Read())
			d.Ilen = 0
		}
	}
}

func opJZ(c *CPU, d *Decoded) {
	if len(d.Params) != 2 {
		c.raiseException(ExcBadInstruction)
		return
	}
	if d.Params[0].Read() == 0 {
		c.setPC(d.Params[1].Read())
		d.Ilen = 0
	}
}

func opJNZ(c *CPU, d *Decoded) {
	if len(d.Params) != 2 {
		c.raiseException(ExcBadInstruction)
		return
	}
	if d.Params[0].Read() != 0 {
		c.setPC(d.Params[1].Read())
		d.Ilen = 0
	}
}

// opBL implements branch-and-link: push the return frame, set FP to
// the post-push SP, copy the call arguments into R0.., then jump.
// Operand values are snapshotted before any push begins, since pushing
// decrements SP and an operand could alias a register the push is
// about to overwrite through SP-relative addressing.
func opBL(c *CPU, d *Decoded) {
	if len(d.Params) < 1 {
		c.raiseException(ExcBadInstruction)
		return
	}
	args := make([]uint64, len(d.Params))
	for i := range d.Params {
		args[i] = d.Params[i].Read()
	}

	returnPC := c.PC() + uint64(d.Ilen)
	if !c.push(returnPC) || !c.push(c.FP()) || !c.push(c.CF()) {
		c.raiseException(ExcBadAccess)
		return
	}
	for r := RegR0; r <= RegR26; r++ {
		if !c.push(c.registers[r]) {
			c.raiseException(ExcBadAccess)
			return
		}
	}

	c.setFP(c.SP())

	maxArgs := RegR26 - RegR0 + 1
	for i := 1; i < len(args) && i-1 < maxArgs; i++ {
		c.registers[RegR0+(i-1)] = args[i]
	}

	c.setPC(args[0])
	d.Ilen = 0
}

// opRET pops the frame BL pushed, in exact reverse order.
func opRET(c *CPU, d *Decoded) {
	c.setSP(c.FP())
	for r := RegR26; r >= RegR0; r-- {
		v, ok := c.pop()
		if !ok {
			c.raiseException(ExcBadAccess)
			return
		}
		c.registers[r] = v
	}
	cf, ok := c.pop()
	if !ok {
		c.raiseException(ExcBadAccess)
		return
	}
	fp, ok := c.pop()
	if !ok {
		c.raiseException(ExcBadAccess)
		return
	}
	pc, ok := c.pop()
	if !ok {
		c.raiseException(ExcBadAccess)
		return
	}
	c.setCF(cf)
	c.setFP(fp)
	c.setPC(pc)
	d.Ilen = 0
}

// push writes v as 8 bytes at SP then decrements SP, reporting whether
// the write succeeded.
func (c *CPU) push(v uint64) bool {
	if !c.machine.router.Write(c.SP(), v, 8) {
		return false
	}
	c.setSP(c.SP() - 8)
	return true
}

// pop increments SP then reads 8 bytes at SP.
func (c *CPU) pop() (uint64, bool) {
	c.setSP(c.SP() + 8)
	return c.machine.router.Read(c.SP(), 8)
}
