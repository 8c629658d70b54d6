package asm

import (
	"errors"
	"strings"

	"github.com/ezrec/flashasm/translate"
)

var f = translate.From

var (
	ErrRegionMissing = errors.New(f("no region open, declare name@address: first"))
	ErrLabelSyntax   = errors.New(f("label syntax"))
)

// ErrMalformedLiteral is a token that is not a valid number in its base.
type ErrMalformedLiteral string

func (err ErrMalformedLiteral) Error() string {
	return f("'%v' is not a number", string(err))
}

// ErrMnemonicUnknown is an instruction name missing from the table.
type ErrMnemonicUnknown string

func (err ErrMnemonicUnknown) Error() string {
	return f("unknown instruction %v", string(err))
}

// ErrDataSyntax is a '$' token that is not $w:, $h: or $b:.
type ErrDataSyntax string

func (err ErrDataSyntax) Error() string {
	return f("'%v' is not $w:, $h: or $b: data", string(err))
}

// ErrDataRange is a raw datum that does not fit its width.
type ErrDataRange struct {
	Token string
	Width uint32
}

func (err ErrDataRange) Error() string {
	return f("'%v' does not fit in %v bytes", err.Token, err.Width)
}

// ErrParseExpression is a $(...) expression that did not yield an integer.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrArityMismatch is an instruction given the wrong number of operands.
type ErrArityMismatch struct {
	Mnemonic string
	Expected int
	Given    int
}

func (err ErrArityMismatch) Error() string {
	return f("%v expects %v operands, given %v", err.Mnemonic, err.Expected, err.Given)
}

// ErrImmediateUnresolvable is an immediate token no accepted interpretation fits.
type ErrImmediateUnresolvable struct {
	Mnemonic string
	Token    string
	Err      error // Reason the last interpretation failed, if any.
}

func (err ErrImmediateUnresolvable) Error() string {
	if err.Err != nil {
		return f("%v immediate '%v' unresolvable: %v", err.Mnemonic, err.Token, err.Err)
	}
	return f("%v immediate '%v' unresolvable", err.Mnemonic, err.Token)
}

func (err ErrImmediateUnresolvable) Unwrap() error {
	return err.Err
}

// ErrLabelDuplicate is a label declared more than once.
type ErrLabelDuplicate string

func (err ErrLabelDuplicate) Error() string {
	return f("label %v duplicated", string(err))
}

// ErrLabelMissing is a reference to a label that was never declared.
type ErrLabelMissing string

func (err ErrLabelMissing) Error() string {
	return f("label %v missing", string(err))
}

// ErrLabelCycle is a chain of labels whose addresses depend on each other.
type ErrLabelCycle []string

func (err ErrLabelCycle) Error() string {
	return f("label cycle %v", strings.Join(err, " -> "))
}

// ErrRegionMisaligned is a region whose offset is not word aligned.
type ErrRegionMisaligned struct {
	Region string
	Offset uint32
}

func (err ErrRegionMisaligned) Error() string {
	return f("region %v at %#x is not word aligned", err.Region, err.Offset)
}

// ErrRegionOverlap names two regions whose byte ranges intersect.
type ErrRegionOverlap struct {
	Region string
	Other  string
}

func (err ErrRegionOverlap) Error() string {
	return f("region %v overlaps region %v", err.Region, err.Other)
}

// ErrRegionOutOfBounds is a region extending outside the target window.
type ErrRegionOutOfBounds struct {
	Region string
	Offset uint32
	Length uint32
}

func (err ErrRegionOutOfBounds) Error() string {
	return f("region %v [%#x, %#x) is outside the target window", err.Region, err.Offset, uint64(err.Offset)+uint64(err.Length))
}

// ErrSyntax locates an error at a line of source.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}
