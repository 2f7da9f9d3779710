package vm

import (
	"fmt"
	"testing"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

// operand is a tiny DSL for building instruction operand lists by hand
// in tests, since LA64 boot images are raw binary rather than text
// assembly.
type operand struct {
	tag   uint64
	reg   uint8
	imm   uint64
	width int
}

func reg(idx uint8) operand              { return operand{tag: tagReg, reg: idx} }
func imm8(v uint8) operand               { return operand{tag: tagImm8, imm: uint64(v), width: 8} }
func imm16(v uint16) operand             { return operand{tag: tagImm16, imm: uint64(v), width: 16} }
func imm32(v uint32) operand             { return operand{tag: tagImm32, imm: uint64(v), width: 32} }
func imm64(v uint64) operand             { return operand{tag: tagImm64, imm: v, width: 64} }

// encode builds the byte encoding of one instruction: an opcode byte
// followed by a tagged operand list terminated by INSTR_END, matching
// §4.3's decoder exactly.
func encode(op Opcode, operands ...operand) []byte {
	w := NewBitWriter()
	for _, o := range operands {
		w.Write(o.tag, 3)
		switch o.tag {
		case tagReg:
			w.Write(uint64(o.reg), 5)
		case tagImm8, tagImm16, tagImm32, tagImm64:
			w.Write(o.imm, o.width)
		}
	}
	w.Write(tagInstrEnd, 3)
	return append([]byte{byte(op)}, w.Bytes()...)
}

// encodeNoOperand builds a one-byte, no-operand instruction (HLT, NOP
// or RET).
func encodeNoOperand(op Opcode) []byte {
	return []byte{byte(op)}
}

// buildImage concatenates instruction encodings after an 8-byte
// little-endian entry address, producing a ready-to-boot image whose
// entry point is right after the header.
func buildImage(instrs ...[]byte) []byte {
	const entry = 8
	image := make([]byte, entry)
	w := NewBitWriter()
	w.Write(entry, 64)
	copy(image, w.Bytes())
	for _, in := range instrs {
		image = append(image, in...)
	}
	return image
}

// newTestMachine returns a small, headless machine (no real UART
// terminal, no framebuffer) suitable for deterministic unit tests.
func newTestMachine(t *testing.T, memSize uint64) *Machine {
	t.Helper()
	if memSize == 0 {
		memSize = 0x10000
	}
	m, err := NewMachine(MachineConfig{MemorySize: memSize, VirtualFreq: 1_000_000})
	assert(t, err == nil, "failed to construct machine: %v", err)
	return m
}
