package vm

func opMOV(c *CPU, d *Decoded) {
	if len(d.Params) != 2 {
		c.raiseException(ExcBadInstruction)
		return
	}
	d.Params[0].Write(d.Params[1].Read())
}

func opCLR(c *CPU, d *Decoded) {
	if len(d.Params) < 1 {
		c.raiseException(ExcBadInstruction)
		return
	}
	for i := range d.Params {
		d.Params[i].Write(0)
	}
}

func opSWP(c *CPU, d *Decoded) {
	if len(d.Params) != 2 {
		c.raiseException(ExcBadInstruction)
		return
	}
	a, b := d.Params[0].Read(), d.Params[1].Read()
	d.Params[0].Write(b)
	d.Params[1].Write(a)
}

func opSWPZ(c *CPU, d *Decoded) {
	if len(d.Params) != 2 {
		c.raiseException(ExcBadInstruction)
		return
	}
	b := d.Params[1].Read()
	d.Params[0].Write(b)
	d.Params[1].Write(0)
}

func opPUSH(c *CPU, d *Decoded) {
	if len(d.Params) != 1 {
		c.raiseException(ExcBadInstruction)
		return
	}
	v := d.Params[0].Read()
	if !c.machine.router.Write(c.SP(), v, 8) {
		c.raiseException(ExcBadAccess)
		return
	}
	c.setSP(c.SP() - 8)
}

func opPOP(c *CPU, d *Decoded) {
	if len(d.Params) != 1 {
		c.raiseException(ExcBadInstruction)
		return
	}
	c.setSP(c.SP() + 8)
	v, ok := c.machine.router.Read(c.SP(), 8)
	if !ok {
		c.raiseException(ExcBadAccess)
		return
	}
	d.Params[0].Write(v)
}

func makeLoad(size int) opcodeHandler {
	return func(c *CPU, d *Decoded) {
		if len(d.Params) != 2 {
			c.raiseException(ExcBadInstruction)
			return
		}
		addr := d.Params[1].Read()
		v, ok := c.machine.router.Read(addr, size)
		if !ok {
			c.raiseException(ExcBadAccess)
			return
		}
		d.Params[0].Write(v)
	}
}

func makeStore(size int) opcodeHandler {
	return func(c *CPU, d *Decoded) {
		if len(d.Params) != 2 {
			c.raiseException(ExcBadInstruction)
			return
		}
		addr := d.Params[0].Read()
		v := d.Params[1].Read()
		if !c.machine.router.Write(addr, v, size) {
			c.raiseException(ExcBadAccess)
			return
		}
	}
}
