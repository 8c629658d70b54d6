package isa

import (
	"github.com/ezrec/flashasm/translate"
)

var f = translate.From

// ErrRegisterUnknown is returned for a token that names no register.
type ErrRegisterUnknown string

func (err ErrRegisterUnknown) Error() string {
	return f("unknown register %v", string(err))
}
