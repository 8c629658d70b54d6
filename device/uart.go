package device

import (
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/golang/glog"
)

const (
	UART_TX      = 0  // Transmit buffer register offset.
	UART_RX      = 4  // Receive buffer register offset.
	UART_CONTROL = 8  // Control register offset.
	UART_SIZE    = 12 // Bytes decoded by the UART.

	UART_CONTROL_TX = uint32(1 << 0) // Set to send the low byte of TX.
)

// Uart is the console port. Setting UART_CONTROL_TX sends the low byte of
// the transmit register to Output on the next Update, then clears the bit.
type Uart struct {
	Base   uint32
	Output io.Writer        // Transmitted bytes, discarded when nil.
	Order  binary.ByteOrder // Register byte order, little-endian when nil.

	regs [UART_SIZE]byte
}

var _ Device = (*Uart)(nil)

func (uart *Uart) order() binary.ByteOrder {
	if uart.Order == nil {
		return binary.LittleEndian
	}
	return uart.Order
}

func (uart *Uart) Name() string {
	return "uart"
}

func (uart *Uart) Contains(addr uint32) bool {
	return addr >= uart.Base && uint64(addr-uart.Base) < UART_SIZE
}

func (uart *Uart) LoadByte(addr uint32) (value byte, err error) {
	if !uart.Contains(addr) {
		err = ErrBusFault(addr)
		return
	}
	value = uart.regs[addr-uart.Base]
	return
}

func (uart *Uart) StoreByte(addr uint32, value byte) (err error) {
	if !uart.Contains(addr) {
		err = ErrBusFault(addr)
		return
	}
	uart.regs[addr-uart.Base] = value
	return
}

// Register returns the 32-bit register at offset.
func (uart *Uart) Register(offset uint32) uint32 {
	return uart.order().Uint32(uart.regs[offset:])
}

// SetRegister sets the 32-bit register at offset.
func (uart *Uart) SetRegister(offset uint32, value uint32) {
	uart.order().PutUint32(uart.regs[offset:], value)
}

func (uart *Uart) Update() (err error) {
	control := uart.Register(UART_CONTROL)
	if (control & UART_CONTROL_TX) == 0 {
		return
	}

	value := byte(uart.Register(UART_TX))
	glog.V(2).Infof("uart: tx %#02x", value)

	uart.SetRegister(UART_CONTROL, control&^UART_CONTROL_TX)

	if uart.Output != nil {
		_, err = uart.Output.Write([]byte{value})
	}
	return
}

func (uart *Uart) Reset() {
	clear(uart.regs[:])
}

func (uart *Uart) Defines() iter.Seq2[string, string] {
	return UartDefines(uart.Base)
}

// UartDefines returns the register addresses of a UART at base.
func UartDefines(base uint32) iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"UART_BASE":       fmt.Sprintf("0x%x", base),
		"UART_TX":         fmt.Sprintf("0x%x", base+UART_TX),
		"UART_RX":         fmt.Sprintf("0x%x", base+UART_RX),
		"UART_CONTROL":    fmt.Sprintf("0x%x", base+UART_CONTROL),
		"UART_CONTROL_TX": fmt.Sprintf("0x%x", UART_CONTROL_TX),
	})
}
