package asm

import (
	"github.com/golang/glog"
)

const (
	DEFAULT_BASE = uint32(0x0100_0000) // Flash base address.
	DEFAULT_SIZE = uint32(256 * 1024)  // Flash size in bytes.
)

// Window is the absolute byte range an image may occupy.
type Window struct {
	Base uint32
	Size uint32
}

// Contains returns true if [offset, offset+length) lies inside the window.
func (w Window) Contains(offset, length uint32) bool {
	start := uint64(offset)
	end := start + uint64(length)
	return start >= uint64(w.Base) && end <= uint64(w.Base)+uint64(w.Size)
}

// extent is a region with its resolved byte range.
type extent struct {
	region *Region
	offset uint32
	length uint32
}

func (e extent) end() uint64 {
	return uint64(e.offset) + uint64(e.length)
}

func (e extent) overlaps(other extent) bool {
	return uint64(e.offset) < other.end() && uint64(other.offset) < e.end()
}

// extents resolves the offset of every region in declaration order.
func (prog *Program) extents() (extents []extent, err error) {
	for _, region := range prog.Regions {
		var offset uint32
		offset, err = region.Offset()
		if err != nil {
			err = ErrSyntax{LineNo: region.Source.LineNo, Line: region.Source.Line, Err: err}
			return
		}
		extents = append(extents, extent{region: region, offset: offset, length: region.Length()})
	}
	return
}

// Validate checks region alignment, then overlap, then window bounds.
func (prog *Program) Validate() (err error) {
	extents, err := prog.extents()
	if err != nil {
		return
	}

	for _, e := range extents {
		if e.offset%4 != 0 {
			err = ErrRegionMisaligned{Region: e.region.Name, Offset: e.offset}
			return
		}
	}

	for n, e := range extents {
		for _, other := range extents[n+1:] {
			if e.overlaps(other) {
				err = ErrRegionOverlap{Region: e.region.Name, Other: other.region.Name}
				return
			}
		}
	}

	for _, e := range extents {
		if !prog.Window.Contains(e.offset, e.length) {
			err = ErrRegionOutOfBounds{Region: e.region.Name, Offset: e.offset, Length: e.length}
			return
		}
		glog.V(1).Infof("region %v [%#x, %#x)", e.region.Name, e.offset, e.end())
	}

	return
}
