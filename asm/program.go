package asm

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/ezrec/flashasm/internal"
	"github.com/ezrec/flashasm/isa"
)

// Program is an assembled, laid out set of regions.
type Program struct {
	Window  Window
	Order   binary.ByteOrder
	Regions []*Region

	symbols *symbolTable
}

var _ Resolver = (*Program)(nil)

// Address resolves a label.
func (prog *Program) Address(label string) (uint32, error) {
	return prog.symbols.Address(label)
}

// Symbol is a resolved label.
type Symbol struct {
	Name    string
	Address uint32
}

// Symbols returns every label sorted by address, then name. The first label
// that does not resolve stops the walk with its error.
func (prog *Program) Symbols() (symbols []Symbol, err error) {
	for _, rule := range prog.symbols.order {
		var addr uint32
		addr, err = prog.symbols.Address(rule.Name)
		if err != nil {
			symbols = nil
			err = ErrSyntax{LineNo: rule.Source.LineNo, Line: rule.Source.Line, Err: err}
			return
		}
		symbols = append(symbols, Symbol{Name: rule.Name, Address: addr})
	}

	slices.SortFunc(symbols, func(a, b Symbol) int {
		if c := cmp.Compare(a.Address, b.Address); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	return
}

// Datums iterates over the datums of every region in declaration order.
func (prog *Program) Datums() iter.Seq[*Datum] {
	seqs := make([]iter.Seq[*Datum], 0, len(prog.Regions))
	for _, region := range prog.Regions {
		seqs = append(seqs, region.All())
	}
	return internal.Concat(seqs...)
}

// Source returns the source line of the datum covering an absolute address.
func (prog *Program) Source(addr uint32) (src Source, ok bool) {
	for _, region := range prog.Regions {
		offset, err := region.Offset()
		if err != nil || addr < offset || addr-offset >= region.Size() {
			continue
		}
		for d := range region.All() {
			if addr-offset >= d.Offset && addr-offset < d.Offset+d.Width() {
				return d.Source, true
			}
		}
	}
	return
}

// placed calls fn with the address, bytes and instruction words of every
// datum, region by region.
func (prog *Program) placed(fn func(region *Region, d *Datum, pc uint32, data []byte, words []isa.Word) error) (err error) {
	order := prog.Order
	if order == nil {
		order = binary.LittleEndian
	}

	for _, region := range prog.Regions {
		var offset uint32
		offset, err = region.Offset()
		if err != nil {
			err = ErrSyntax{LineNo: region.Source.LineNo, Line: region.Source.Line, Err: err}
			return
		}
		for d := range region.All() {
			pc := offset + d.Offset
			var data []byte
			var words []isa.Word
			data, words, err = d.Value(prog, pc, order)
			if err != nil {
				err = ErrSyntax{LineNo: d.Source.LineNo, Line: d.Source.Line, Err: err}
				return
			}
			err = fn(region, d, pc, data, words)
			if err != nil {
				return
			}
		}
	}

	return
}

// Image serializes the regions into a flat image starting at the window base.
// Gaps between regions and region padding are zero.
func (prog *Program) Image() (data []byte, err error) {
	img := &Image{Base: prog.Window.Base}

	for _, region := range prog.Regions {
		if region.Length() == 0 {
			continue
		}
		var offset uint32
		offset, err = region.Offset()
		if err != nil {
			return
		}
		// Reserve the padded region so trailing alignment bytes are present.
		err = img.Place(offset, make([]byte, region.Length()))
		if err != nil {
			return
		}
	}

	err = prog.placed(func(_ *Region, _ *Datum, pc uint32, bytes []byte, _ []isa.Word) error {
		return img.Place(pc, bytes)
	})
	if err != nil {
		return
	}

	data = img.Bytes()
	return
}

// Listing writes an address, bytes and disassembly line for every datum.
func (prog *Program) Listing(w io.Writer) (err error) {
	var last *Region

	err = prog.placed(func(region *Region, d *Datum, pc uint32, data []byte, words []isa.Word) (err error) {
		if region != last {
			last = region
			_, err = fmt.Fprintf(w, "%08x <%v>:\n", pc-d.Offset, region.Name)
			if err != nil {
				return
			}
		}

		text := d.Source.Line
		if d.Kind != DATUM_RAW {
			texts := make([]string, 0, len(words))
			for _, word := range words {
				texts = append(texts, word.String())
			}
			text = strings.Join(texts, "; ")
		}

		_, err = fmt.Fprintf(w, "%08x: % x\t%v\n", pc, data, text)
		return
	})

	return
}
