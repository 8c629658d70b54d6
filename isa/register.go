package isa

import (
	"fmt"
	"strconv"
	"strings"
)

// Register is a 4-bit register index.
type Register uint8

const (
	REG_COUNT = 16

	REG_PC = Register(12) // Program counter.
	REG_LR = Register(13) // Link register.
	REG_SP = Register(14) // Stack pointer.
	REG_SR = Register(15) // Status register.
)

var specialRegister = map[string]Register{
	"PC": REG_PC,
	"LR": REG_LR,
	"SP": REG_SP,
	"SR": REG_SR,
}

// ParseRegister maps R0..R15, PC, LR, SP or SR (any case) to its index.
func ParseRegister(name string) (reg Register, err error) {
	upper := strings.ToUpper(name)

	reg, ok := specialRegister[upper]
	if ok {
		return
	}

	digits, ok := strings.CutPrefix(upper, "R")
	if !ok || len(digits) == 0 {
		err = ErrRegisterUnknown(name)
		return
	}

	index, perr := strconv.ParseUint(digits, 10, 8)
	if perr != nil || index >= REG_COUNT {
		err = ErrRegisterUnknown(name)
		return
	}

	reg = Register(index)
	return
}

func (reg Register) String() string {
	for name, special := range specialRegister {
		if special == reg {
			return name
		}
	}
	return fmt.Sprintf("R%d", uint8(reg))
}
