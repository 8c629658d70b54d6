// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package isa describes the fixed-format 32-bit load/store instruction set:
// the mnemonic table, operand shapes, register names and the word layout.
package isa

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Opcode is the 8-bit operation code in the top byte of an instruction word.
type Opcode uint8

const (
	OP_ADD   = Opcode(0x00) // ADD
	OP_ADDI  = Opcode(0x01) // ADDI
	OP_ADDUI = Opcode(0x02) // ADDUI
	OP_LUH   = Opcode(0x03) // LUH
	OP_MUL   = Opcode(0x04) // MUL
	OP_MULI  = Opcode(0x05) // MULI
	OP_PUSH  = Opcode(0x06) // PUSH
	OP_PUSHI = Opcode(0x07) // PUSHI
	OP_POP   = Opcode(0x08) // POP
	OP_JUMP  = Opcode(0x09) // JUMP
	OP_JUMPI = Opcode(0x0A) // JUMPI
	OP_BR    = Opcode(0x0B) // BR
	OP_BI    = Opcode(0x0C) // BI
	OP_CALL  = Opcode(0x0D) // CALL
	OP_MOV   = Opcode(0x0E) // MOV
	OP_HALT  = Opcode(0x0F) // HALT
	OP_DUMP  = Opcode(0x10) // DUMP
	OP_LOAD  = Opcode(0x11) // LOAD
	OP_STOR  = Opcode(0x12) // STOR
	OP_RET   = Opcode(0x13) // RET
	OP_JZ    = Opcode(0x14) // JZ
	OP_JZI   = Opcode(0x15) // JZI
	OP_BZ    = Opcode(0x16) // BZ
	OP_BZI   = Opcode(0x17) // BZI
	OP_JLT   = Opcode(0x18) // JLT
	OP_JLTI  = Opcode(0x19) // JLTI
	OP_BLT   = Opcode(0x1A) // BLT
	OP_BLTI  = Opcode(0x1B) // BLTI
	OP_MOVZ  = Opcode(0x1C) // MOVZ
	OP_MOVLT = Opcode(0x1D) // MOVLT
	OP_AND   = Opcode(0x1E) // AND
	OP_ANDI  = Opcode(0x1F) // ANDI
	OP_OR    = Opcode(0x20) // OR
	OP_ORI   = Opcode(0x21) // ORI
	OP_INV   = Opcode(0x22) // INV
	OP_XOR   = Opcode(0x23) // XOR
	OP_XORI  = Opcode(0x24) // XORI
	OP_LOADH = Opcode(0x25) // LOADH
	OP_STORH = Opcode(0x26) // STORH
	OP_LOADB = Opcode(0x27) // LOADB
	OP_STORB = Opcode(0x28) // STORB
	OP_SAR   = Opcode(0x29) // SAR
	OP_SLL   = Opcode(0x2A) // SLL
	OP_SLR   = Opcode(0x2B) // SLR
	OP_SARI  = Opcode(0x2C) // SARI
	OP_BALI  = Opcode(0x2D) // BALI

	// OP_LI is reserved for the load-32-bit pseudo-instruction and is never
	// emitted into an instruction word.
	OP_LI = Opcode(0xFF) // LI
)

// ImmKind is the set of interpretations an immediate operand accepts.
type ImmKind uint8

const (
	IMM_NONE  = ImmKind(0)
	IMM_U16   = ImmKind(1 << 0) // Unsigned 16-bit value.
	IMM_S16   = ImmKind(1 << 1) // Signed 16-bit value, stored as two's complement.
	IMM_REL16 = ImmKind(1 << 2) // Signed 16-bit distance from the instruction to a target.
	IMM_WORD  = ImmKind(1 << 3) // Any 32-bit literal or label address.
)

// immKindOrder is the priority in which immediate interpretations are tried.
var immKindOrder = []ImmKind{IMM_U16, IMM_S16, IMM_REL16, IMM_WORD}

var immKindName = map[ImmKind]string{
	IMM_U16:   "u16",
	IMM_S16:   "s16",
	IMM_REL16: "rel16",
	IMM_WORD:  "word",
}

// Has returns true if all interpretations in other are accepted.
func (kind ImmKind) Has(other ImmKind) bool {
	return other != IMM_NONE && (kind&other) == other
}

// Kinds iterates over the single interpretations of kind in priority order.
func (kind ImmKind) Kinds() iter.Seq[ImmKind] {
	return func(yield func(ImmKind) bool) {
		for _, one := range immKindOrder {
			if kind.Has(one) && !yield(one) {
				return
			}
		}
	}
}

func (kind ImmKind) String() string {
	if kind == IMM_NONE {
		return "none"
	}
	var names []string
	for one := range kind.Kinds() {
		names = append(names, immKindName[one])
	}
	return strings.Join(names, "|")
}

// Shape is the operand layout of an instruction.
type Shape struct {
	Ra  bool    // Register A is present.
	Rb  bool    // Register B is present.
	Rc  bool    // Register C is present.
	Imm ImmKind // Immediate interpretations, IMM_NONE when absent.
}

// Registers returns the number of register operands.
func (shape Shape) Registers() (count int) {
	for _, present := range []bool{shape.Ra, shape.Rb, shape.Rc} {
		if present {
			count++
		}
	}
	return
}

// Operands returns the number of source tokens the shape consumes.
func (shape Shape) Operands() (count int) {
	count = shape.Registers()
	if shape.Imm != IMM_NONE {
		count++
	}
	return
}

// Expand identifies a pseudo-instruction expansion.
type Expand int

const (
	EXPAND_NONE   = Expand(0) // Primitive instruction.
	EXPAND_LOAD32 = Expand(1) // LUH + ADDUI pair loading a 32-bit constant.
)

// Descriptor is the static description of one mnemonic.
type Descriptor struct {
	Mnemonic string
	Opcode   Opcode
	Shape    Shape
	Width    uint32 // Encoded width in bytes.
	Expand   Expand
}

var (
	shapeNone   = Shape{}
	shapeA      = Shape{Ra: true}
	shapeAB     = Shape{Ra: true, Rb: true}
	shapeABC    = Shape{Ra: true, Rb: true, Rc: true}
	shapeABU16  = Shape{Ra: true, Rb: true, Imm: IMM_U16}
	shapeABS16  = Shape{Ra: true, Rb: true, Imm: IMM_S16}
	shapeAU16   = Shape{Ra: true, Imm: IMM_U16}
	shapeAS16   = Shape{Ra: true, Imm: IMM_S16}
	shapeABrch  = Shape{Ra: true, Imm: IMM_S16 | IMM_REL16}
	shapeBranch = Shape{Imm: IMM_S16 | IMM_REL16}
)

var table = []Descriptor{
	{"ADD", OP_ADD, shapeABC, 4, EXPAND_NONE},
	{"ADDI", OP_ADDI, shapeABS16, 4, EXPAND_NONE},
	{"ADDUI", OP_ADDUI, shapeABU16, 4, EXPAND_NONE},
	{"LUH", OP_LUH, shapeAU16, 4, EXPAND_NONE},
	{"MUL", OP_MUL, shapeABC, 4, EXPAND_NONE},
	{"MULI", OP_MULI, shapeABS16, 4, EXPAND_NONE},
	{"PUSH", OP_PUSH, shapeA, 4, EXPAND_NONE},
	{"PUSHI", OP_PUSHI, Shape{Imm: IMM_U16 | IMM_S16}, 4, EXPAND_NONE},
	{"POP", OP_POP, shapeA, 4, EXPAND_NONE},
	{"JUMP", OP_JUMP, shapeA, 4, EXPAND_NONE},
	{"JUMPI", OP_JUMPI, shapeAS16, 4, EXPAND_NONE},
	{"BR", OP_BR, shapeA, 4, EXPAND_NONE},
	{"BI", OP_BI, shapeBranch, 4, EXPAND_NONE},
	{"CALL", OP_CALL, shapeA, 4, EXPAND_NONE},
	{"MOV", OP_MOV, shapeAB, 4, EXPAND_NONE},
	{"HALT", OP_HALT, shapeNone, 4, EXPAND_NONE},
	{"DUMP", OP_DUMP, shapeNone, 4, EXPAND_NONE},
	{"LOAD", OP_LOAD, shapeAB, 4, EXPAND_NONE},
	{"STOR", OP_STOR, shapeAB, 4, EXPAND_NONE},
	{"RET", OP_RET, shapeNone, 4, EXPAND_NONE},
	{"JZ", OP_JZ, shapeAB, 4, EXPAND_NONE},
	{"JZI", OP_JZI, shapeABS16, 4, EXPAND_NONE},
	{"BZ", OP_BZ, shapeAB, 4, EXPAND_NONE},
	{"BZI", OP_BZI, shapeABrch, 4, EXPAND_NONE},
	{"JLT", OP_JLT, shapeAB, 4, EXPAND_NONE},
	{"JLTI", OP_JLTI, shapeABS16, 4, EXPAND_NONE},
	{"BLT", OP_BLT, shapeAB, 4, EXPAND_NONE},
	{"BLTI", OP_BLTI, shapeABrch, 4, EXPAND_NONE},
	{"MOVZ", OP_MOVZ, shapeABC, 4, EXPAND_NONE},
	{"MOVLT", OP_MOVLT, shapeABC, 4, EXPAND_NONE},
	{"AND", OP_AND, shapeABC, 4, EXPAND_NONE},
	{"ANDI", OP_ANDI, shapeABU16, 4, EXPAND_NONE},
	{"OR", OP_OR, shapeABC, 4, EXPAND_NONE},
	{"ORI", OP_ORI, shapeABU16, 4, EXPAND_NONE},
	{"INV", OP_INV, shapeAB, 4, EXPAND_NONE},
	{"XOR", OP_XOR, shapeABC, 4, EXPAND_NONE},
	{"XORI", OP_XORI, shapeABU16, 4, EXPAND_NONE},
	{"LOADH", OP_LOADH, shapeAB, 4, EXPAND_NONE},
	{"STORH", OP_STORH, shapeAB, 4, EXPAND_NONE},
	{"LOADB", OP_LOADB, shapeAB, 4, EXPAND_NONE},
	{"STORB", OP_STORB, shapeAB, 4, EXPAND_NONE},
	{"SAR", OP_SAR, shapeABC, 4, EXPAND_NONE},
	{"SLL", OP_SLL, shapeABC, 4, EXPAND_NONE},
	{"SLR", OP_SLR, shapeABC, 4, EXPAND_NONE},
	{"SARI", OP_SARI, shapeABS16, 4, EXPAND_NONE},
	{"BALI", OP_BALI, shapeBranch, 4, EXPAND_NONE},
	{"LI", OP_LI, Shape{Ra: true, Imm: IMM_WORD}, 8, EXPAND_LOAD32},
}

var (
	byMnemonic = make(map[string]*Descriptor, len(table))
	byOpcode   = make(map[Opcode]*Descriptor, len(table))
)

func init() {
	for n := range table {
		desc := &table[n]
		byMnemonic[desc.Mnemonic] = desc
		if desc.Expand == EXPAND_NONE {
			byOpcode[desc.Opcode] = desc
		}
	}
}

// Lookup finds the descriptor for a mnemonic, ignoring case.
func Lookup(mnemonic string) (desc *Descriptor, ok bool) {
	desc, ok = byMnemonic[strings.ToUpper(mnemonic)]
	return
}

// LookupOpcode finds the primitive descriptor for an opcode.
func LookupOpcode(op Opcode) (desc *Descriptor, ok bool) {
	desc, ok = byOpcode[op]
	return
}

// Descriptors iterates over the full instruction table in opcode order.
func Descriptors() iter.Seq[*Descriptor] {
	return func(yield func(*Descriptor) bool) {
		for n := range table {
			if !yield(&table[n]) {
				return
			}
		}
	}
}

// String returns the mnemonic of a primitive opcode.
func (op Opcode) String() string {
	if desc, ok := byOpcode[op]; ok {
		return desc.Mnemonic
	}
	if op == OP_LI {
		return "LI"
	}
	return fmt.Sprintf("OP(%#02x)", uint8(op))
}

// Mnemonics returns the sorted list of known mnemonics.
func Mnemonics() (names []string) {
	for name := range byMnemonic {
		names = append(names, name)
	}
	slices.Sort(names)
	return
}
