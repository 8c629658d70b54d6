package isa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeWord(t *testing.T) {
	assert := assert.New(t)

	word := MakeWord(OP_ADD, 1, 2, 3, 0)
	assert.Equal(Word(0x0012_3000), word)

	word = MakeWord(OP_LUH, 3, 0, 0, 0xDEAD)
	assert.Equal(Word(0x0330_DEAD), word)

	word = MakeWord(OP_ADDUI, 3, 3, 0, 0xBEEF)
	assert.Equal(Word(0x0233_BEEF), word)
}

// Every mnemonic round trips its minimal and maximal operand values.
func TestWordRoundTrip(t *testing.T) {
	assert := assert.New(t)

	for desc := range Descriptors() {
		if desc.Expand != EXPAND_NONE {
			continue
		}
		shape := desc.Shape
		for _, value := range []struct {
			reg Register
			imm uint16
		}{{0, 0}, {15, 0xFFFF}} {
			var ra, rb, rc Register
			var imm uint16
			if shape.Ra {
				ra = value.reg
			}
			if shape.Rb {
				rb = value.reg
			}
			if shape.Rc {
				rc = value.reg
			}
			if shape.Imm != IMM_NONE {
				imm = value.imm
			}
			word := MakeWord(desc.Opcode, ra, rb, rc, imm)
			op, dra, drb, drc, dimm := word.Decode()
			assert.Equal(desc.Opcode, op, desc.Mnemonic)
			assert.Equal(ra, dra, desc.Mnemonic)
			assert.Equal(rb, drb, desc.Mnemonic)
			// rc shares bits 15-12 with imm, so compare one or the other.
			if shape.Imm == IMM_NONE {
				assert.Equal(rc, drc, desc.Mnemonic)
			} else {
				assert.Equal(imm, dimm, desc.Mnemonic)
			}
		}
	}
}

func TestWordString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("ADDUI R3 R3 0xbeef", MakeWord(OP_ADDUI, 3, 3, 0, 0xBEEF).String())
	assert.Equal("ADD R1 R2 R3", MakeWord(OP_ADD, 1, 2, 3, 0).String())
	assert.Equal("BI -4", MakeWord(OP_BI, 0, 0, 0, 0xFFFC).String())
	assert.Equal("HALT", MakeWord(OP_HALT, 0, 0, 0, 0).String())
	assert.Equal("$w:0xee000000", Word(0xEE00_0000).String())
}

func TestSignedImm(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint32(0xFFFF_FFFC), MakeWord(OP_BI, 0, 0, 0, 0xFFFC).SignedImm())
	assert.Equal(uint32(0x7FFF), MakeWord(OP_BI, 0, 0, 0, 0x7FFF).SignedImm())
}

func FuzzWord(f *testing.F) {
	f.Add(uint32(0))
	f.Add(uint32(0xFFFF_FFFF))
	f.Add(uint32(0x0233_BEEF))

	f.Fuzz(func(t *testing.T, value uint32) {
		word := Word(value)
		op, ra, rb, _, imm := word.Decode()
		again := MakeWord(op, ra, rb, 0, imm)
		if again != word {
			t.Fatalf("%#08x decoded and packed to %#08x", value, uint32(again))
		}
		_ = word.String()
	})
}
