package asm

import (
	"strconv"
	"strings"
)

// Literals are limited to 33 bits so both signed and unsigned 32-bit
// values are representable.
const (
	literalMax = int64(0xFFFF_FFFF)
	literalMin = -int64(0x1_0000_0000)
)

var literalBase = map[string]int{
	"0x": 16,
	"0b": 2,
	"0o": 8,
}

// ParseNumber parses an optionally negative literal with an optional
// 0x, 0b or 0o base prefix.
func ParseNumber(token string) (value int64, err error) {
	digits, negative := strings.CutPrefix(token, "-")

	base := 10
	if len(digits) >= 2 {
		prefixed, ok := literalBase[strings.ToLower(digits[:2])]
		if ok {
			base = prefixed
			digits = digits[2:]
		}
	}

	magnitude, perr := strconv.ParseUint(digits, base, 64)
	if perr != nil || magnitude > uint64(-literalMin) {
		err = ErrMalformedLiteral(token)
		return
	}

	value = int64(magnitude)
	if negative {
		value = -value
	}

	if value > literalMax || value < literalMin {
		err = ErrMalformedLiteral(token)
		return
	}

	return
}
