package isa

import (
	"fmt"
	"strings"
)

// Bit positions of the instruction word fields.
const (
	OPCODE_SHIFT = 24
	RA_SHIFT     = 20
	RB_SHIFT     = 16
	RC_SHIFT     = 12

	OPCODE_MASK = Word(0xFF00_0000)
	RA_MASK     = Word(0x00F0_0000)
	RB_MASK     = Word(0x000F_0000)
	RC_MASK     = Word(0x0000_F000)
	IMM_MASK    = Word(0x0000_FFFF)
)

// Word is one encoded 32-bit instruction.
type Word uint32

// MakeWord packs an instruction word. Register indexes are truncated to 4 bits.
func MakeWord(op Opcode, ra, rb, rc Register, imm uint16) Word {
	return (Word(op) << OPCODE_SHIFT) |
		((Word(ra) & 0xF) << RA_SHIFT) |
		((Word(rb) & 0xF) << RB_SHIFT) |
		((Word(rc) & 0xF) << RC_SHIFT) |
		Word(imm)
}

// Opcode returns the operation code.
func (word Word) Opcode() Opcode {
	return Opcode((word & OPCODE_MASK) >> OPCODE_SHIFT)
}

// Ra returns register A.
func (word Word) Ra() Register {
	return Register((word & RA_MASK) >> RA_SHIFT)
}

// Rb returns register B.
func (word Word) Rb() Register {
	return Register((word & RB_MASK) >> RB_SHIFT)
}

// Rc returns register C.
func (word Word) Rc() Register {
	return Register((word & RC_MASK) >> RC_SHIFT)
}

// Imm returns the 16-bit immediate field.
func (word Word) Imm() uint16 {
	return uint16(word & IMM_MASK)
}

// SignedImm returns the immediate field sign-extended to 32 bits.
func (word Word) SignedImm() uint32 {
	return uint32(int32(int16(word.Imm())))
}

// Decode splits the word into its fields.
func (word Word) Decode() (op Opcode, ra, rb, rc Register, imm uint16) {
	return word.Opcode(), word.Ra(), word.Rb(), word.Rc(), word.Imm()
}

// String disassembles the word using the operand shape of its opcode.
func (word Word) String() string {
	desc, ok := LookupOpcode(word.Opcode())
	if !ok {
		return fmt.Sprintf("$w:%#08x", uint32(word))
	}

	parts := []string{desc.Mnemonic}
	shape := desc.Shape
	if shape.Ra {
		parts = append(parts, word.Ra().String())
	}
	if shape.Rb {
		parts = append(parts, word.Rb().String())
	}
	if shape.Rc {
		parts = append(parts, word.Rc().String())
	}
	switch {
	case shape.Imm.Has(IMM_U16):
		parts = append(parts, fmt.Sprintf("%#04x", word.Imm()))
	case shape.Imm != IMM_NONE:
		parts = append(parts, fmt.Sprintf("%d", int16(word.Imm())))
	}

	return strings.Join(parts, " ")
}
