// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/golang/glog"

	"github.com/ezrec/flashasm/isa"
)

// Status register flags.
const (
	SR_ALU_Z        = uint32(1 << 0)  // Result was zero.
	SR_ALU_O        = uint32(1 << 1)  // Signed overflow.
	SR_ALU_N        = uint32(1 << 2)  // Result was negative.
	SR_ALU_MASK     = uint32(0b111)   // Mask of the ALU flags.
	SR_FAULT_DECODE = uint32(1 << 30) // An instruction did not decode.
	SR_FAULT        = uint32(1 << 31) // A fault has occurred.
)

var _cpu_defines = map[string]string{
	"SR_ALU_Z":        fmt.Sprintf("0x%x", SR_ALU_Z),
	"SR_ALU_O":        fmt.Sprintf("0x%x", SR_ALU_O),
	"SR_ALU_N":        fmt.Sprintf("0x%x", SR_ALU_N),
	"SR_ALU_MASK":     fmt.Sprintf("0x%x", SR_ALU_MASK),
	"SR_FAULT_DECODE": fmt.Sprintf("0x%x", SR_FAULT_DECODE),
	"SR_FAULT":        fmt.Sprintf("0x%x", SR_FAULT),
}

// Bus is the memory system seen by the CPU.
type Bus interface {
	// Load reads a 1, 2 or 4 byte value.
	Load(addr uint32, width int) (value uint32, err error)
	// Store writes the low 1, 2 or 4 bytes of value.
	Store(addr uint32, width int, value uint32) (err error)
}

// Cpu is the simulation context for the processor.
type Cpu struct {
	Register [isa.REG_COUNT]uint32 // Register bank, PC to SR at the top.
	Bus      Bus                   // Memory system.
	Dump     io.Writer             // DUMP output, logged when nil.

	Halted bool // Set by HALT.
	Ticks  int  // Executed instructions since the last reset.
}

// NewCpu creates a new CPU on a bus.
func NewCpu(bus Bus) (cpu *Cpu) {
	cpu = &Cpu{
		Bus: bus,
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return Defines()
}

// Defines returns the status register masks.
func Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Pc returns the program counter.
func (cpu *Cpu) Pc() uint32 {
	return cpu.Register[isa.REG_PC]
}

// String returns the register bank as a string.
func (cpu *Cpu) String() (text string) {
	text = fmt.Sprintf("registers at PC=0x%08x:\n", cpu.Pc())
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 4s: 0x%08x\n", isa.Register(n), val)
	}

	return
}

// Reset the CPU state.
// - Clears the registers and tick counter.
// - Sets PC to the entry point and SP to the top of the stack.
func (cpu *Cpu) Reset(pc uint32, sp uint32) {
	glog.V(1).Infof("cpu: reset pc=0x%08x sp=0x%08x", pc, sp)

	clear(cpu.Register[:])
	cpu.Register[isa.REG_PC] = pc
	cpu.Register[isa.REG_SP] = sp
	cpu.Halted = false
	cpu.Ticks = 0
}

// Tick fetches and executes a single instruction.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	if cpu.Bus == nil {
		err = ErrNoBus
		return
	}

	value, err := cpu.Bus.Load(cpu.Pc(), 4)
	if err != nil {
		cpu.Register[isa.REG_SR] |= SR_FAULT
		return
	}

	err = cpu.Execute(isa.Word(value))
	return
}

// addFlags returns the ALU flags of sum = a + b.
func addFlags(a, b, sum uint32) (sr uint32) {
	if ((a ^ sum) & (b ^ sum) & 0x8000_0000) != 0 {
		sr |= SR_ALU_O
	}
	return sr | resultFlags(sum)
}

// resultFlags returns the zero and negative flags of a result.
func resultFlags(result uint32) (sr uint32) {
	if result == 0 {
		sr |= SR_ALU_Z
	}
	if (result & 0x8000_0000) != 0 {
		sr |= SR_ALU_N
	}
	return
}

// Execute executes a single instruction word at the current PC.
// Instructions that write PC do not advance it.
func (cpu *Cpu) Execute(word isa.Word) (err error) {
	ra, rb, rc := word.Ra(), word.Rb(), word.Rc()
	imm := word.Imm()
	simm := word.SignedImm()

	reg := &cpu.Register
	pc := reg[isa.REG_PC]
	next := pc + 4

	glog.V(2).Infof("%08x: %v", pc, word)

	var sr uint32

	set := func(r isa.Register, value uint32) {
		reg[r] = value
		if r == isa.REG_PC {
			next = value
		}
	}
	jump := func(target uint32) {
		next = target
	}
	negative := func(r isa.Register) bool {
		return int32(reg[r]) < 0
	}
	load := func(r isa.Register, addr uint32, width int) {
		var value uint32
		value, err = cpu.Bus.Load(addr, width)
		if err == nil {
			set(r, value)
		}
	}
	store := func(addr uint32, width int, value uint32) {
		err = cpu.Bus.Store(addr, width, value)
	}

	switch word.Opcode() {
	case isa.OP_ADD:
		a, b := reg[ra], reg[rb]
		set(rc, a+b)
		sr = addFlags(a, b, a+b)
	case isa.OP_ADDI:
		a := reg[ra]
		set(rb, a+simm)
		sr = addFlags(a, simm, a+simm)
	case isa.OP_ADDUI:
		a := reg[ra]
		set(rb, a+uint32(imm))
		sr = addFlags(a, uint32(imm), a+uint32(imm))
	case isa.OP_LUH:
		set(ra, uint32(imm)<<16)
	case isa.OP_MUL:
		set(rc, reg[ra]*reg[rb])
		sr = resultFlags(reg[rc])
	case isa.OP_MULI:
		set(rb, reg[ra]*simm)
		sr = resultFlags(reg[rb])
	case isa.OP_PUSH:
		store(reg[isa.REG_SP], 4, reg[ra])
		if err == nil {
			reg[isa.REG_SP] -= 4
		}
	case isa.OP_PUSHI:
		store(reg[isa.REG_SP], 4, simm)
		if err == nil {
			reg[isa.REG_SP] -= 4
		}
	case isa.OP_POP:
		reg[isa.REG_SP] += 4
		load(ra, reg[isa.REG_SP], 4)
	case isa.OP_JUMP:
		jump(reg[ra])
	case isa.OP_JUMPI:
		jump(reg[ra] + simm)
	case isa.OP_BR:
		jump(pc + reg[ra])
	case isa.OP_BI:
		jump(pc + simm)
	case isa.OP_CALL:
		target := reg[ra]
		reg[isa.REG_LR] = next
		jump(target)
	case isa.OP_BALI:
		reg[isa.REG_LR] = next
		jump(pc + simm)
	case isa.OP_RET:
		jump(reg[isa.REG_LR])
	case isa.OP_MOV:
		set(rb, reg[ra])
	case isa.OP_HALT:
		glog.V(1).Infof("cpu: halt at 0x%08x", pc)
		cpu.Halted = true
		next = pc
	case isa.OP_DUMP:
		if cpu.Dump != nil {
			_, err = io.WriteString(cpu.Dump, cpu.String())
		} else {
			glog.Info(cpu.String())
		}
	case isa.OP_LOAD:
		load(ra, reg[rb], 4)
	case isa.OP_STOR:
		store(reg[rb], 4, reg[ra])
	case isa.OP_LOADH:
		load(ra, reg[rb], 2)
	case isa.OP_STORH:
		store(reg[rb], 2, reg[ra]&0xFFFF)
	case isa.OP_LOADB:
		load(ra, reg[rb], 1)
	case isa.OP_STORB:
		store(reg[rb], 1, reg[ra]&0xFF)
	case isa.OP_JZ:
		if reg[ra] == 0 {
			jump(reg[rb])
		}
	case isa.OP_JZI:
		if reg[ra] == 0 {
			jump(reg[rb] + simm)
		}
	case isa.OP_BZ:
		if reg[ra] == 0 {
			jump(pc + reg[rb])
		}
	case isa.OP_BZI:
		if reg[ra] == 0 {
			jump(pc + simm)
		}
	case isa.OP_JLT:
		if negative(ra) {
			jump(reg[rb])
		}
	case isa.OP_JLTI:
		if negative(ra) {
			jump(reg[rb] + simm)
		}
	case isa.OP_BLT:
		if negative(ra) {
			jump(pc + reg[rb])
		}
	case isa.OP_BLTI:
		if negative(ra) {
			jump(pc + simm)
		}
	case isa.OP_MOVZ:
		if reg[ra] == 0 {
			set(rc, reg[rb])
		}
	case isa.OP_MOVLT:
		if negative(ra) {
			set(rc, reg[rb])
		}
	case isa.OP_AND:
		set(rc, reg[ra]&reg[rb])
	case isa.OP_ANDI:
		set(rb, reg[ra]&uint32(imm))
	case isa.OP_OR:
		set(rc, reg[ra]|reg[rb])
	case isa.OP_ORI:
		set(rb, reg[ra]|uint32(imm))
	case isa.OP_XOR:
		set(rc, reg[ra]^reg[rb])
	case isa.OP_XORI:
		set(rb, reg[ra]^uint32(imm))
	case isa.OP_INV:
		set(rb, ^reg[ra])
	case isa.OP_SAR:
		set(rc, uint32(int32(reg[ra])>>reg[rb]))
	case isa.OP_SARI:
		set(rb, uint32(int32(reg[ra])>>simm))
	case isa.OP_SLL:
		set(rc, reg[ra]<<reg[rb])
	case isa.OP_SLR:
		set(rc, reg[ra]>>reg[rb])
	default:
		reg[isa.REG_SR] |= SR_FAULT_DECODE | SR_FAULT
		err = ErrOpcode(word)
		return
	}

	if err != nil {
		reg[isa.REG_SR] |= SR_FAULT
		return
	}

	cpu.Ticks++
	reg[isa.REG_PC] = next
	reg[isa.REG_SR] = (reg[isa.REG_SR] &^ SR_ALU_MASK) | sr

	return
}
