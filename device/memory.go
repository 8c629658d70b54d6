package device

import (
	"fmt"
	"iter"
	"maps"
	"strings"
)

// Memory is a flat byte store at a base address, such as flash or RAM.
type Memory struct {
	Label    string // Device name, and the prefix of its defines.
	Base     uint32
	Data     []byte
	ReadOnly bool // Set to reject processor writes.
}

var _ Device = (*Memory)(nil)

// NewMemory creates a zeroed memory.
func NewMemory(label string, base uint32, size uint32, readOnly bool) *Memory {
	return &Memory{
		Label:    label,
		Base:     base,
		Data:     make([]byte, size),
		ReadOnly: readOnly,
	}
}

func (mem *Memory) Name() string {
	return mem.Label
}

func (mem *Memory) Contains(addr uint32) bool {
	return addr >= mem.Base && uint64(addr-mem.Base) < uint64(len(mem.Data))
}

func (mem *Memory) LoadByte(addr uint32) (value byte, err error) {
	if !mem.Contains(addr) {
		err = ErrBusFault(addr)
		return
	}
	value = mem.Data[addr-mem.Base]
	return
}

func (mem *Memory) StoreByte(addr uint32, value byte) (err error) {
	if !mem.Contains(addr) {
		err = ErrBusFault(addr)
		return
	}
	if mem.ReadOnly {
		err = ErrReadOnly
		return
	}
	mem.Data[addr-mem.Base] = value
	return
}

func (mem *Memory) Update() error {
	return nil
}

// Reset clears a writable memory. Read only contents are kept.
func (mem *Memory) Reset() {
	if !mem.ReadOnly {
		clear(mem.Data)
	}
}

// Load replaces the start of the memory with data, zeroing the rest.
func (mem *Memory) Load(data []byte) (err error) {
	if len(data) > len(mem.Data) {
		err = ErrTooLarge
		return
	}
	clear(mem.Data)
	copy(mem.Data, data)
	return
}

func (mem *Memory) Defines() iter.Seq2[string, string] {
	return MemoryDefines(mem.Label, mem.Base, uint32(len(mem.Data)))
}

// MemoryDefines returns the <LABEL>_BASE and <LABEL>_SIZE defines of a
// memory window.
func MemoryDefines(label string, base uint32, size uint32) iter.Seq2[string, string] {
	prefix := strings.ToUpper(label)
	return maps.All(map[string]string{
		prefix + "_BASE": fmt.Sprintf("0x%x", base),
		prefix + "_SIZE": fmt.Sprintf("0x%x", size),
	})
}
