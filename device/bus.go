package device

import (
	"encoding/binary"
	"iter"

	"github.com/golang/glog"

	"github.com/ezrec/flashasm/internal"
)

// Bus routes processor accesses to the attached devices.
type Bus struct {
	Order binary.ByteOrder // Byte order of wide accesses, little-endian when nil.

	devices []Device
}

// Attach adds a device. Earlier devices win when address ranges overlap.
func (bus *Bus) Attach(dev Device) {
	bus.devices = append(bus.devices, dev)
}

// Devices returns the attached devices.
func (bus *Bus) Devices() []Device {
	return bus.devices
}

func (bus *Bus) order() binary.ByteOrder {
	if bus.Order == nil {
		return binary.LittleEndian
	}
	return bus.Order
}

func (bus *Bus) device(addr uint32) (dev Device, err error) {
	for _, dev = range bus.devices {
		if dev.Contains(addr) {
			return
		}
	}
	dev = nil
	err = ErrBusFault(addr)
	return
}

// Load reads a width byte value (1, 2 or 4) starting at addr.
func (bus *Bus) Load(addr uint32, width int) (value uint32, err error) {
	var data [4]byte
	for n := range width {
		var dev Device
		dev, err = bus.device(addr + uint32(n))
		if err != nil {
			return
		}
		data[n], err = dev.LoadByte(addr + uint32(n))
		if err != nil {
			return
		}
	}

	order := bus.order()
	switch width {
	case 1:
		value = uint32(data[0])
	case 2:
		value = uint32(order.Uint16(data[:2]))
	default:
		value = order.Uint32(data[:4])
	}

	glog.V(2).Infof("bus: load%d %08x -> %08x", width*8, addr, value)
	return
}

// Store writes the low width bytes (1, 2 or 4) of value starting at addr.
func (bus *Bus) Store(addr uint32, width int, value uint32) (err error) {
	var data [4]byte
	order := bus.order()
	switch width {
	case 1:
		data[0] = byte(value)
	case 2:
		order.PutUint16(data[:2], uint16(value))
	default:
		order.PutUint32(data[:4], value)
	}

	glog.V(2).Infof("bus: store%d %08x <- %08x", width*8, addr, value)

	for n := range width {
		var dev Device
		dev, err = bus.device(addr + uint32(n))
		if err != nil {
			return
		}
		err = dev.StoreByte(addr+uint32(n), data[n])
		if err != nil {
			return
		}
	}

	return
}

// Update runs every device once.
func (bus *Bus) Update() (err error) {
	for _, dev := range bus.devices {
		err = dev.Update()
		if err != nil {
			return
		}
	}
	return
}

// Reset resets every device.
func (bus *Bus) Reset() {
	for _, dev := range bus.devices {
		dev.Reset()
	}
}

// Defines returns the defines of every device.
func (bus *Bus) Defines() iter.Seq2[string, string] {
	seqs := make([]iter.Seq2[string, string], 0, len(bus.devices))
	for _, dev := range bus.devices {
		seqs = append(seqs, dev.Defines())
	}
	return internal.Concat2(seqs...)
}
