// Package config holds the memory map and assembler settings shared by the
// flashasm tools. Settings load from TOML or YAML files.
package config

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	"github.com/ezrec/flashasm/asm"
	"github.com/ezrec/flashasm/cpu"
	"github.com/ezrec/flashasm/device"
	"github.com/ezrec/flashasm/internal"
	"github.com/ezrec/flashasm/translate"
)

var f = translate.From

var ErrByteOrder = errors.New(f("byte order must be 'little' or 'big'"))

// ErrFormatUnknown is a configuration file extension with no decoder.
type ErrFormatUnknown string

func (err ErrFormatUnknown) Error() string {
	return f("unknown configuration format '%v'", string(err))
}

const (
	FLASH_BASE = uint32(0x0100_0000)
	FLASH_SIZE = uint32(256 * 1024)
	RAM_BASE   = uint32(0x0200_0000)
	RAM_SIZE   = uint32(32 * 1024)
	UART_BASE  = uint32(0x5000_0000)
)

// Window is a base address and byte size.
type Window struct {
	Base uint32 `toml:"base" yaml:"base"`
	Size uint32 `toml:"size" yaml:"size"`
}

// ByteOrder selects the order of multi-byte values in the image and on the bus.
type ByteOrder int

const (
	LITTLE_ENDIAN = ByteOrder(0)
	BIG_ENDIAN    = ByteOrder(1)
)

// Binary returns the encoding/binary implementation of the order.
func (order ByteOrder) Binary() binary.ByteOrder {
	if order == BIG_ENDIAN {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (order ByteOrder) String() string {
	if order == BIG_ENDIAN {
		return "big"
	}
	return "little"
}

func (order ByteOrder) MarshalText() ([]byte, error) {
	return []byte(order.String()), nil
}

func (order *ByteOrder) UnmarshalText(text []byte) (err error) {
	switch strings.ToLower(string(text)) {
	case "little", "little-endian", "le":
		*order = LITTLE_ENDIAN
	case "big", "big-endian", "be":
		*order = BIG_ENDIAN
	default:
		err = ErrByteOrder
	}
	return
}

func (order *ByteOrder) UnmarshalYAML(value *yaml.Node) error {
	return order.UnmarshalText([]byte(value.Value))
}

// Config describes the target memory map.
type Config struct {
	Flash     Window            `toml:"flash" yaml:"flash"`
	Ram       Window            `toml:"ram" yaml:"ram"`
	Uart      uint32            `toml:"uart" yaml:"uart"`
	ByteOrder ByteOrder         `toml:"byte_order" yaml:"byte_order"`
	Defines   map[string]string `toml:"defines" yaml:"defines"`
}

// Default returns the configuration of the reference board.
func Default() *Config {
	return &Config{
		Flash:     Window{Base: FLASH_BASE, Size: FLASH_SIZE},
		Ram:       Window{Base: RAM_BASE, Size: RAM_SIZE},
		Uart:      UART_BASE,
		ByteOrder: LITTLE_ENDIAN,
		Defines:   map[string]string{},
	}
}

// Load reads a configuration file over the defaults. The extension selects
// TOML (.toml) or YAML (.yaml, .yml).
func Load(path string) (cfg *Config, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	cfg, err = Decode(bytes.NewReader(data), filepath.Ext(path))
	if err != nil {
		return
	}

	glog.V(1).Infof("config: loaded %v", path)
	return
}

// Decode reads a configuration in the named format over the defaults.
func Decode(input io.Reader, format string) (cfg *Config, err error) {
	cfg = Default()

	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "toml":
		_, err = toml.NewDecoder(input).Decode(cfg)
	case "yaml", "yml":
		err = yaml.NewDecoder(input).Decode(cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		err = ErrFormatUnknown(format)
	}

	if err != nil {
		cfg = nil
		return
	}

	if cfg.Defines == nil {
		cfg.Defines = map[string]string{}
	}

	return
}

// Assembler returns an assembler targeting the flash window, with the
// configuration defines visible to expressions.
func (cfg *Config) Assembler() (assembler *asm.Assembler) {
	assembler = &asm.Assembler{
		Window: asm.Window{Base: cfg.Flash.Base, Size: cfg.Flash.Size},
		Order:  cfg.ByteOrder.Binary(),
	}

	for name, value := range cfg.Defines {
		assembler.Predefine(name, value)
	}

	return
}

// StackTop returns the initial stack pointer, the last word of RAM.
func (cfg *Config) StackTop() uint32 {
	return cfg.Ram.Base + cfg.Ram.Size - 4
}

// BoardDefines returns the board memory map and register defines, without
// the configuration defines.
func (cfg *Config) BoardDefines() iter.Seq2[string, string] {
	return internal.Concat2(
		maps.All(map[string]string{
			"STACK_TOP": fmt.Sprintf("0x%x", cfg.StackTop()),
		}),
		cpu.Defines(),
		device.MemoryDefines("flash", cfg.Flash.Base, cfg.Flash.Size),
		device.MemoryDefines("ram", cfg.Ram.Base, cfg.Ram.Size),
		device.UartDefines(cfg.Uart),
	)
}
