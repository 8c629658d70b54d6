package cpu

import (
	"errors"

	"github.com/ezrec/flashasm/isa"
	"github.com/ezrec/flashasm/translate"
)

var f = translate.From

var (
	ErrHalted = errors.New(f("cpu halted"))
	ErrNoBus  = errors.New(f("cpu has no bus"))
)

// ErrOpcode is an instruction word that does not decode.
type ErrOpcode isa.Word

func (err ErrOpcode) Error() string {
	return f("opcode 0x%02x of 0x%08x does not decode", uint8(isa.Word(err).Opcode()), uint32(err))
}
