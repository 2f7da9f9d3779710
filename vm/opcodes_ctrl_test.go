package vm

import "testing"

func TestCMPSetsZLG(t *testing.T) {
	negOne := int64(-1)
	cases := []struct {
		a, b uint64
		want uint64
	}{
		{5, 5, FlagZ},
		{uint64(negOne), 0, FlagL}, // -1 < 0 signed
		{7, 2, FlagG},
	}
	for _, tc := range cases {
		c := newTestCPU()
		a := immOperand(tc.a)
		b := immOperand(tc.b)
		opcodeTable[OpCMP](c, decodedWith(a, b))
		assert(t, c.CF() == tc.want, "CMP(%d,%d): expected CF=0x%x, got 0x%x", tc.a, tc.b, tc.want, c.CF())
	}
}

func TestConditionalJumpsFollowCF(t *testing.T) {
	c := newTestCPU()
	c.setCF(FlagZ)
	target := immOperand(0x2000)
	d := decodedWith(target)
	opcodeTable[OpJE](c, d)
	assert(t, c.PC() == 0x2000, "expected JE to take branch when CF=Z")
	assert(t, d.Ilen == 0, "expected taken jump to zero Ilen")

	c2 := newTestCPU()
	c2.setCF(FlagZ)
	target2 := immOperand(0x3000)
	d2 := decodedWith(target2)
	d2.Ilen = 3
	opcodeTable[OpJNE](c2, d2)
	assert(t, c2.PC() == 0, "expected JNE to refuse branch when CF=Z")
	assert(t, d2.Ilen != 0, "expected untaken jump to leave Ilen alone")
}

func TestJLEAndJGEIncludeEquality(t *testing.T) {
	c := newTestCPU()
	c.setCF(FlagZ)
	target := immOperand(0x4000)
	opcodeTable[OpJLE](c, decodedWith(target))
	assert(t, c.PC() == 0x4000, "expected JLE to treat equality as taken")

	c2 := newTestCPU()
	c2.setCF(FlagZ)
	target2 := immOperand(0x5000)
	opcodeTable[OpJGE](c2, decodedWith(target2))
	assert(t, c2.PC() == 0x5000, "expected JGE to treat equality as taken")
}

func TestJZJNZTestTheirFirstOperand(t *testing.T) {
	c := newTestCPU()
	zero := immOperand(0)
	target := immOperand(0x6000)
	opcodeTable[OpJZ](c, decodedWith(zero, target))
	assert(t, c.PC() == 0x6000, "expected JZ to branch when operand is zero")

	c2 := newTestCPU()
	nonzero := immOperand(1)
	target2 := immOperand(0x7000)
	opcodeTable[OpJNZ](c2, decodedWith(nonzero, target2))
	assert(t, c2.PC() == 0x7000, "expected JNZ to branch when operand is nonzero")
}

// Invariant 5 — BL/RET preserve every register except RR and PC across
// the call: all of R0..R26, CF and FP return to their pre-call values,
// with RR explicitly excluded from the guarantee.
func TestInvariantBLRETRoundTripPreservesRegisters(t *testing.T) {
	c, _ := newWiredCPU(t, 0x10000)
	c.setSP(0xF000)
	c.setFP(0x1111)
	c.setCF(FlagG)
	for r := RegR0; r <= RegR26; r++ {
		c.registers[r] = uint64(r) * 0x1000
	}
	c.registers[RegRR] = 0xDEADBEEF

	wantFP := c.FP()
	wantCF := c.CF()
	wantRegs := c.registers

	calleeAddr := immOperand(0x9000)
	arg0 := immOperand(0xAAAA)
	d := decodedWith(calleeAddr, arg0)
	d.Ilen = 4
	opcodeTable[OpBL](c, d)
	assert(t, c.exception == ExcNone, "unexpected exception on BL: %v", c.exception)
	assert(t, c.PC() == 0x9000, "expected BL to jump to the callee address")
	assert(t, c.registers[RegR0] == 0xAAAA, "expected BL to copy its first argument into R0")

	// Callee mutates saved registers; FP is left as BL set it, since RET
	// unwinds the frame from FP.
	c.registers[RegR0] = 0xFFFF
	c.setCF(FlagL)
	c.registers[RegR26] = 0xFFFF

	opcodeTable[OpRET](c, decodedWith())
	assert(t, c.exception == ExcNone, "unexpected exception on RET: %v", c.exception)
	assert(t, c.FP() == wantFP, "expected RET to restore FP to 0x%x, got 0x%x", wantFP, c.FP())
	assert(t, c.CF() == wantCF, "expected RET to restore CF to 0x%x, got 0x%x", wantCF, c.CF())
	for r := RegR0; r <= RegR26; r++ {
		assert(t, c.registers[r] == wantRegs[r], "expected R%d restored to 0x%x, got 0x%x", r-RegR0, wantRegs[r], c.registers[r])
	}
	assert(t, c.SP() == 0xF000, "expected SP restored to its pre-call value, got 0x%x", c.SP())
}

func TestRETWithUnbalancedStackRaisesBadAccess(t *testing.T) {
	c, _ := newWiredCPU(t, 0x10)
	c.setSP(0x8)
	c.setFP(0x8)
	opcodeTable[OpRET](c, decodedWith())
	assert(t, c.exception == ExcBadAccess, "expected BAD_ACCESS when RET cannot pop a full frame, got %v", c.exception)
}
