package asm

import (
	"iter"
	"slices"
)

// Region is a contiguous run of datums anchored at its defining label.
type Region struct {
	Name   string // Defining label.
	Source Source // Line of the defining label.
	Datums []*Datum

	size    uint32
	symbols *symbolTable
}

// Append adds a datum at the current end of the region.
func (r *Region) Append(d *Datum) {
	d.Offset = r.size
	r.size += d.Width()
	r.Datums = append(r.Datums, d)
}

// Size returns the sum of the datum widths.
func (r *Region) Size() uint32 {
	return r.size
}

// Length returns the size rounded up to a whole word.
func (r *Region) Length() uint32 {
	return (r.size + 3) &^ 3
}

// Offset resolves the absolute address of the region.
func (r *Region) Offset() (uint32, error) {
	return r.symbols.Address(r.Name)
}

// All iterates over the datums of the region in source order.
func (r *Region) All() iter.Seq[*Datum] {
	return slices.Values(r.Datums)
}
