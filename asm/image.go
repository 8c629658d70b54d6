package asm

import (
	"errors"
)

var ErrImageUnderflow = errors.New(f("address below image base"))

// Image is a growable memory image addressed from a base address.
type Image struct {
	Base uint32
	data []byte
}

// Place writes data at an absolute address, zero filling any gap.
func (img *Image) Place(addr uint32, data []byte) (err error) {
	if addr < img.Base {
		err = ErrImageUnderflow
		return
	}

	start := uint64(addr - img.Base)
	end := start + uint64(len(data))
	if end > uint64(len(img.data)) {
		img.data = append(img.data, make([]byte, end-uint64(len(img.data)))...)
	}
	copy(img.data[start:end], data)

	return
}

// Len returns the number of bytes from the base to the highest placed byte.
func (img *Image) Len() int {
	return len(img.data)
}

// Bytes returns the image contents.
func (img *Image) Bytes() []byte {
	return img.data
}
