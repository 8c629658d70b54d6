// Package device provides the memory mapped peripherals of the flash board
// simulation. It includes plain memories (Memory) for flash and RAM, the
// console port (Uart), and the Bus that routes processor accesses to them.
package device

import (
	"iter"
)

// Device defines the interface for all memory mapped devices.
// Accesses are byte granular; the Bus assembles wider values.
type Device interface {
	// Name identifies the device in diagnostics.
	Name() string
	// Contains returns true if the address is decoded by the device.
	Contains(addr uint32) bool
	// LoadByte reads the byte at an absolute address.
	LoadByte(addr uint32) (value byte, err error)
	// StoreByte writes the byte at an absolute address.
	StoreByte(addr uint32, value byte) (err error)
	// Update runs the device once after every executed instruction.
	Update() (err error)
	// Reset returns the device to its power-on state.
	Reset()
	// Defines returns the assembler symbols describing the device.
	Defines() iter.Seq2[string, string]
}
