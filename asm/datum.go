package asm

import (
	"encoding/binary"

	"github.com/ezrec/flashasm/isa"
)

// DatumKind is the variant tag of a Datum.
type DatumKind int

//go:generate go tool stringer -linecomment -type=DatumKind
const (
	DATUM_RAW         = DatumKind(0) // raw
	DATUM_INSTRUCTION = DatumKind(1) // instruction
	DATUM_EXPAND      = DatumKind(2) // expand
)

// Source is the line of assembly text a datum came from.
type Source struct {
	LineNo int
	Line   string
}

// Resolver looks up the absolute address of a label.
type Resolver interface {
	Address(label string) (addr uint32, err error)
}

// Datum is one unit of region content.
type Datum struct {
	Kind   DatumKind
	Source Source
	Offset uint32 // Byte offset inside the owning region.

	Desc       *isa.Descriptor // Instruction description, nil for raw data.
	Ra, Rb, Rc isa.Register
	Imm        *Operand // Immediate or raw value, nil if none.

	width uint32
}

// Width returns the number of bytes the datum occupies.
func (d *Datum) Width() uint32 {
	return d.width
}

// Words returns the instruction words of an instruction or pseudo-instruction
// placed at pc. Raw data has no words.
func (d *Datum) Words(res Resolver, pc uint32) (words []isa.Word, err error) {
	switch d.Kind {
	case DATUM_INSTRUCTION:
		var imm uint16
		if d.Imm != nil {
			imm, err = d.Imm.immediate(res, pc)
			if err != nil {
				return
			}
		}
		words = []isa.Word{isa.MakeWord(d.Desc.Opcode, d.Ra, d.Rb, d.Rc, imm)}
	case DATUM_EXPAND:
		switch d.Desc.Expand {
		case isa.EXPAND_LOAD32:
			var value uint32
			value, err = d.Imm.word(res)
			if err != nil {
				return
			}
			words = []isa.Word{
				isa.MakeWord(isa.OP_LUH, d.Ra, 0, 0, uint16(value>>16)),
				isa.MakeWord(isa.OP_ADDUI, d.Ra, d.Ra, 0, uint16(value)),
			}
		default:
			err = ErrMnemonicUnknown(d.Desc.Mnemonic)
		}
	}

	return
}

// Value returns the bytes of the datum placed at pc, and the instruction
// words they hold.
func (d *Datum) Value(res Resolver, pc uint32, order binary.ByteOrder) (data []byte, words []isa.Word, err error) {
	data = make([]byte, d.width)

	switch d.Kind {
	case DATUM_RAW:
		var value uint32
		value, err = d.Imm.word(res)
		if err != nil {
			return
		}
		switch d.width {
		case 1:
			data[0] = byte(value)
		case 2:
			order.PutUint16(data, uint16(value))
		case 4:
			order.PutUint32(data, value)
		}
	default:
		words, err = d.Words(res, pc)
		if err != nil {
			return
		}
		for n, word := range words {
			order.PutUint32(data[n*4:], uint32(word))
		}
	}

	return
}
