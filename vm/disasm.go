package vm

import (
	"fmt"
	"strings"
)

var mnemonics = map[Opcode]string{
	OpHLT: "hlt", OpNOP: "nop", OpRET: "ret",
	OpMOV: "mov", OpCLR: "clr", OpSWP: "swp", OpSWPZ: "swpz",
	OpPUSH: "push", OpPOP: "pop",
	OpLDB: "ldb", OpLDW: "ldw", OpLDD: "ldd", OpLDQ: "ldq",
	OpSTB: "stb", OpSTW: "stw", OpSTD: "std", OpSTQ: "stq",
	OpADD: "add", OpSUB: "sub", OpMUL: "mul",
	OpAND: "and", OpOR: "or", OpXOR: "xor", OpSHR: "shr", OpSHL: "shl",
	OpDIV: "div", OpIDIV: "idiv", OpMOD: "mod",
	OpINC: "inc", OpDEC: "dec", OpNOT: "not", OpROR: "ror", OpROL: "rol",
	OpPDEP: "pdep", OpPEXT: "pext",
	OpBSWAPW: "bswapw", OpBSWAPD: "bswapd", OpBSWAPQ: "bswapq",
	OpJMP: "jmp", OpCMP: "cmp",
	OpJE: "je", OpJNE: "jne", OpJLT: "jlt", OpJGT: "jgt", OpJLE: "jle", OpJGE: "jge",
	OpJZ: "jz", OpJNZ: "jnz", OpBL: "bl",
}

// Disassemble decodes one instruction at pc using the same decoder the
// CPU runs, so it can never drift from real semantics, and renders a
// human-readable mnemonic line for fault diagnostics and debug output.
// It does not mutate registers: decoding an operand vector aliases
// register slots, but disassembly only ever reads them.
func Disassemble(window []byte, pc uint64, registers *[NumRegisters]uint64) string {
	d, exc := Decode(window, registers)
	if exc != ExcNone {
		return fmt.Sprintf("0x%016x: <%s>", pc, exc)
	}
	name, ok := mnemonics[d.Op]
	if !ok {
		name = fmt.Sprintf("op%#02x", byte(d.Op))
	}
	if len(d.Params) == 0 {
		return fmt.Sprintf("0x%016x: %s", pc, name)
	}
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		if p.kind == operandReg {
			parts[i] = regOperandName(p, registers)
		} else {
			parts[i] = fmt.Sprintf("#0x%x", p.imm)
		}
	}
	return fmt.Sprintf("0x%016x: %s %s", pc, name, strings.Join(parts, ", "))
}

func regOperandName(p Operand, registers *[NumRegisters]uint64) string {
	idx := p.reg
	for i := range registers {
		if &registers[i] == idx {
			return regName(uint8(i))
		}
	}
	return "R?"
}
