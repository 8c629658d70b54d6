// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator runs flash images on the simulated board: the CPU with
// flash, RAM and the UART on its bus.
package emulator

import (
	"fmt"
	"iter"
	"maps"

	"github.com/golang/glog"

	"github.com/ezrec/flashasm/asm"
	"github.com/ezrec/flashasm/config"
	"github.com/ezrec/flashasm/cpu"
	"github.com/ezrec/flashasm/device"
	"github.com/ezrec/flashasm/internal"
)

// Emulator state. CPU + bus + devices.
type Emulator struct {
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *asm.Program // Optional listing of the loaded image, for line numbers.

	Bus   *device.Bus    // Processor bus.
	Flash *device.Memory // Read only program memory.
	Ram   *device.Memory // Data and stack memory.
	Uart  *device.Uart   // Console port.

	config *config.Config
}

// NewEmulator creates a new emulator for a board configuration, or for the
// default board when cfg is nil.
func NewEmulator(cfg *config.Config) (emu *Emulator) {
	if cfg == nil {
		cfg = config.Default()
	}

	order := cfg.ByteOrder.Binary()

	emu = &Emulator{
		Bus:    &device.Bus{Order: order},
		Flash:  device.NewMemory("flash", cfg.Flash.Base, cfg.Flash.Size, true),
		Ram:    device.NewMemory("ram", cfg.Ram.Base, cfg.Ram.Size, false),
		Uart:   &device.Uart{Base: cfg.Uart, Order: order},
		config: cfg,
	}

	emu.Bus.Attach(emu.Flash)
	emu.Bus.Attach(emu.Ram)
	emu.Bus.Attach(emu.Uart)

	emu.Cpu = cpu.NewCpu(emu.Bus)
	emu.Reset()

	return
}

// StackTop returns the initial stack pointer, the last word of RAM.
func (emu *Emulator) StackTop() uint32 {
	return emu.config.StackTop()
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Concat2(
		maps.All(map[string]string{
			"STACK_TOP": fmt.Sprintf("0x%x", emu.StackTop()),
		}),
		emu.Cpu.Defines(),
		emu.Bus.Defines(),
	)
}

// Load copies an image into flash and resets the board.
func (emu *Emulator) Load(image []byte) (err error) {
	err = emu.Flash.Load(image)
	if err != nil {
		return
	}

	glog.V(1).Infof("emulator: loaded %d bytes at 0x%08x", len(image), emu.Flash.Base)

	emu.Reset()
	return
}

// Reset the board: RAM and UART are cleared, PC is the flash base and SP
// is the top of RAM.
func (emu *Emulator) Reset() {
	emu.Bus.Reset()
	emu.Cpu.Reset(emu.Flash.Base, emu.StackTop())
}

// LineNo returns the source line number for the executing instruction,
// or zero without a program listing.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	src, ok := emu.Program.Source(emu.Cpu.Pc())
	if !ok {
		return 0
	}

	return src.LineNo
}

// Tick performs a single tick of the emulator: one instruction, then one
// update of every device.
func (emu *Emulator) Tick() (done bool, err error) {
	if emu.Cpu.Halted {
		done = true
		return
	}

	pc := emu.Cpu.Pc()
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	err = emu.Bus.Update()
	if err != nil {
		return
	}

	done = emu.Cpu.Halted
	return
}

// Run ticks until HALT, an error, or limit ticks when limit is positive.
func (emu *Emulator) Run(limit int) (err error) {
	for ticks := 0; limit <= 0 || ticks < limit; ticks++ {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}

	err = ErrTickLimit
	return
}
