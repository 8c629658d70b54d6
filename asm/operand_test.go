package asm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/flashasm/isa"
)

type resolverMap map[string]uint32

func (rm resolverMap) Address(label string) (addr uint32, err error) {
	addr, ok := rm[label]
	if !ok {
		err = ErrLabelMissing(label)
	}
	return
}

func TestOperandImmediate(t *testing.T) {
	assert := assert.New(t)

	res := resolverMap{"near": 0x1010, "far": 0x20000}

	table := []struct {
		token string
		kind  isa.ImmKind
		pc    uint32
		imm   uint16
		ok    bool
	}{
		{"0xFFFF", isa.IMM_U16, 0, 0xFFFF, true},
		{"-1", isa.IMM_U16, 0, 0, false},
		{"-1", isa.IMM_S16, 0, 0xFFFF, true},
		{"-32768", isa.IMM_S16, 0, 0x8000, true},
		{"near", isa.IMM_S16 | isa.IMM_REL16, 0x1000, 0x0010, true},
		{"near", isa.IMM_S16 | isa.IMM_REL16, 0x1020, 0xFFF0, true},
		{"far", isa.IMM_S16 | isa.IMM_REL16, 0x1000, 0, false},
		{"ghost", isa.IMM_S16 | isa.IMM_REL16, 0x1000, 0, false},
		{"0x1010", isa.IMM_REL16, 0x1000, 0x0010, true},
		{"12", isa.IMM_S16 | isa.IMM_REL16, 0x1000, 12, true},
	}

	for _, entry := range table {
		op, err := parseOperand("OP", entry.token, entry.kind)
		if !entry.ok && err != nil {
			continue
		}
		assert.NoError(err, entry.token)

		imm, err := op.immediate(res, entry.pc)
		if entry.ok {
			assert.NoError(err, entry.token)
			assert.Equal(entry.imm, imm, entry.token)
		} else {
			var unresolvable ErrImmediateUnresolvable
			assert.True(errors.As(err, &unresolvable), entry.token)
		}
	}
}

func TestOperandParse(t *testing.T) {
	assert := assert.New(t)

	op, err := parseOperand("BI", "loop", isa.IMM_S16|isa.IMM_REL16)
	assert.NoError(err)
	assert.Equal("loop", op.Label)

	op, err = parseOperand("LI", "-1", isa.IMM_WORD)
	assert.NoError(err)
	assert.Equal(int64(-1), op.Value)

	_, err = parseOperand("ADDUI", "loop", isa.IMM_U16)
	assert.Equal(ErrImmediateUnresolvable{Mnemonic: "ADDUI", Token: "loop", Err: ErrMalformedLiteral("loop")}, err)

	_, err = parseOperand("ADDUI", "70000", isa.IMM_U16)
	assert.Equal(ErrImmediateUnresolvable{Mnemonic: "ADDUI", Token: "70000"}, err)

	_, err = parseOperand("BI", "1bad", isa.IMM_S16|isa.IMM_REL16)
	assert.True(errors.Is(err, ErrMalformedLiteral("1bad")))
}

func TestOperandWord(t *testing.T) {
	assert := assert.New(t)

	res := resolverMap{"table": 0x01000100}

	op, err := parseOperand("LI", "table", isa.IMM_WORD)
	assert.NoError(err)
	value, err := op.word(res)
	assert.NoError(err)
	assert.Equal(uint32(0x01000100), value)

	op, err = parseOperand("LI", "ghost", isa.IMM_WORD)
	assert.NoError(err)
	_, err = op.word(res)
	assert.True(errors.Is(err, ErrLabelMissing("ghost")))
}
