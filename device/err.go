package device

import (
	"errors"

	"github.com/ezrec/flashasm/translate"
)

var f = translate.From

var (
	ErrReadOnly = errors.New(f("device is read only"))
	ErrTooLarge = errors.New(f("data larger than device"))
)

// ErrBusFault is an access to an address no device decodes.
type ErrBusFault uint32

func (err ErrBusFault) Error() string {
	return f("bus fault at 0x%08x", uint32(err))
}
