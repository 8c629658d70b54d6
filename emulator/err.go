package emulator

import (
	"errors"

	"github.com/ezrec/flashasm/translate"
)

var f = translate.From

var (
	ErrTickLimit = errors.New(f("tick limit reached"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Pc     uint32
	LineNo int // Source line, zero when unknown.
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo != 0 {
		return f("pc 0x%08x line %d %v", err.Pc, err.LineNo, err.Err)
	}
	return f("pc 0x%08x %v", err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
