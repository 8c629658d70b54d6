package asm

import (
	"regexp"

	"github.com/ezrec/flashasm/isa"
)

var labelPattern = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)

// isLabelName returns true if word can name a label.
func isLabelName(word string) bool {
	return labelPattern.MatchString(word)
}

// Operand is an immediate operand: a literal value or a label reference.
type Operand struct {
	Mnemonic string      // Owning instruction, for diagnostics.
	Token    string      // Source token.
	Kind     isa.ImmKind // Accepted interpretations.
	Label    string      // Referenced label, empty for a literal.
	Value    int64       // Literal value.
}

// parseOperand classifies an immediate token. Interpretations that do not
// depend on a label are checked immediately.
func parseOperand(mnemonic string, token string, kind isa.ImmKind) (op *Operand, err error) {
	op = &Operand{Mnemonic: mnemonic, Token: token, Kind: kind}

	symbolic := kind.Has(isa.IMM_REL16) || kind.Has(isa.IMM_WORD)

	value, perr := ParseNumber(token)
	if perr == nil {
		op.Value = value
		if !symbolic {
			_, err = op.immediate(nil, 0)
		}
		return
	}

	if !symbolic || !isLabelName(token) {
		err = ErrImmediateUnresolvable{Mnemonic: mnemonic, Token: token, Err: perr}
		return
	}

	op.Label = token
	return
}

// target returns the address of a label operand, or the literal taken as
// an absolute address.
func (op *Operand) target(res Resolver) (addr uint32, err error) {
	if len(op.Label) != 0 {
		return res.Address(op.Label)
	}
	if op.Value < 0 || op.Value > literalMax {
		err = ErrMalformedLiteral(op.Token)
		return
	}
	addr = uint32(op.Value)
	return
}

// immediate resolves the 16-bit immediate field for an instruction at pc,
// trying each accepted interpretation in priority order.
func (op *Operand) immediate(res Resolver, pc uint32) (imm uint16, err error) {
	var reason error

	literal := len(op.Label) == 0
	for kind := range op.Kind.Kinds() {
		switch kind {
		case isa.IMM_U16:
			if literal && op.Value >= 0 && op.Value <= 0xFFFF {
				imm = uint16(op.Value)
				return
			}
		case isa.IMM_S16:
			if literal && op.Value >= -0x8000 && op.Value <= 0xFFFF {
				imm = uint16(op.Value)
				return
			}
		case isa.IMM_REL16:
			addr, terr := op.target(res)
			if terr != nil {
				reason = terr
				continue
			}
			distance := int64(addr) - int64(pc)
			if distance >= -0x8000 && distance <= 0x7FFF {
				imm = uint16(distance)
				return
			}
		}
	}

	err = ErrImmediateUnresolvable{Mnemonic: op.Mnemonic, Token: op.Token, Err: reason}
	return
}

// word resolves the operand to a full 32-bit value.
func (op *Operand) word(res Resolver) (value uint32, err error) {
	if len(op.Label) != 0 {
		value, err = res.Address(op.Label)
		if err != nil {
			err = ErrImmediateUnresolvable{Mnemonic: op.Mnemonic, Token: op.Token, Err: err}
		}
		return
	}

	value = uint32(op.Value)
	return
}
