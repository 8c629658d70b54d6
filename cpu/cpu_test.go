package cpu

import (
	"bytes"
	"encoding/binary"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/flashasm/asm"
	"github.com/ezrec/flashasm/device"
	"github.com/ezrec/flashasm/isa"
)

const (
	testPc   = uint32(0x1000)
	testSp   = uint32(0x10FC)
	testData = uint32(0x1080)
)

func newTestCpu() (cpu *Cpu, ram *device.Memory) {
	ram = device.NewMemory("ram", 0x1000, 0x100, false)
	bus := &device.Bus{}
	bus.Attach(ram)

	cpu = NewCpu(bus)
	cpu.Reset(testPc, testSp)
	return
}

type regs map[isa.Register]uint32

const (
	r1 = isa.Register(1)
	r2 = isa.Register(2)
	r3 = isa.Register(3)
	pc = isa.REG_PC
	lr = isa.REG_LR
	sp = isa.REG_SP
	sr = isa.REG_SR
)

func TestExecute(t *testing.T) {
	assert := assert.New(t)

	w := isa.MakeWord
	neg := func(v int16) uint16 { return uint16(v) }

	table := []struct {
		name   string
		word   isa.Word
		before regs
		after  regs
	}{
		{"add", w(isa.OP_ADD, r1, r2, r3, 0), regs{r1: 2, r2: 3}, regs{r3: 5, pc: 0x1004, sr: 0}},
		{"add-overflow", w(isa.OP_ADD, r1, r2, r3, 0), regs{r1: 0x7FFF_FFFF, r2: 1}, regs{r3: 0x8000_0000, sr: SR_ALU_O | SR_ALU_N}},
		{"add-zero", w(isa.OP_ADD, r1, r2, r3, 0), regs{r1: 1, r2: 0xFFFF_FFFF}, regs{r3: 0, sr: SR_ALU_Z}},
		{"add-flags-clear", w(isa.OP_ADD, r1, r2, r3, 0), regs{r1: 1, sr: SR_ALU_Z | SR_FAULT}, regs{r3: 1, sr: SR_FAULT}},
		{"addi", w(isa.OP_ADDI, r1, r2, 0, neg(-1)), regs{r1: 5}, regs{r2: 4}},
		{"addui", w(isa.OP_ADDUI, r1, r2, 0, 0xFFFF), regs{r1: 1}, regs{r2: 0x1_0000}},
		{"luh", w(isa.OP_LUH, r1, 0, 0, 0xDEAD), regs{r1: 0x1234}, regs{r1: 0xDEAD_0000}},
		{"mul", w(isa.OP_MUL, r1, r2, r3, 0), regs{r1: 6, r2: 7}, regs{r3: 42}},
		{"muli", w(isa.OP_MULI, r1, r2, 0, neg(-2)), regs{r1: 3}, regs{r2: 0xFFFF_FFFA, sr: SR_ALU_N}},
		{"jump", w(isa.OP_JUMP, r1, 0, 0, 0), regs{r1: 0x2000}, regs{pc: 0x2000}},
		{"jumpi", w(isa.OP_JUMPI, r1, 0, 0, neg(-4)), regs{r1: 0x2000}, regs{pc: 0x1FFC}},
		{"br", w(isa.OP_BR, r1, 0, 0, 0), regs{r1: 8}, regs{pc: 0x1008}},
		{"bi", w(isa.OP_BI, 0, 0, 0, neg(-4)), regs{}, regs{pc: 0x0FFC}},
		{"call", w(isa.OP_CALL, r1, 0, 0, 0), regs{r1: 0x3000}, regs{lr: 0x1004, pc: 0x3000}},
		{"call-lr", w(isa.OP_CALL, lr, 0, 0, 0), regs{lr: 0x3000}, regs{lr: 0x1004, pc: 0x3000}},
		{"bali", w(isa.OP_BALI, 0, 0, 0, 0x10), regs{}, regs{lr: 0x1004, pc: 0x1010}},
		{"ret", w(isa.OP_RET, 0, 0, 0, 0), regs{lr: 0x4000}, regs{pc: 0x4000}},
		{"mov", w(isa.OP_MOV, r1, r2, 0, 0), regs{r1: 9}, regs{r2: 9, pc: 0x1004}},
		{"mov-pc", w(isa.OP_MOV, r1, pc, 0, 0), regs{r1: 0x5000}, regs{pc: 0x5000}},
		{"jz-taken", w(isa.OP_JZ, r1, r2, 0, 0), regs{r2: 0x6000}, regs{pc: 0x6000}},
		{"jz-not", w(isa.OP_JZ, r1, r2, 0, 0), regs{r1: 1, r2: 0x6000}, regs{pc: 0x1004}},
		{"jzi", w(isa.OP_JZI, r1, r2, 0, 4), regs{r2: 0x6000}, regs{pc: 0x6004}},
		{"bz", w(isa.OP_BZ, r1, r2, 0, 0), regs{r2: 0x20}, regs{pc: 0x1020}},
		{"bzi", w(isa.OP_BZI, r1, 0, 0, 8), regs{}, regs{pc: 0x1008}},
		{"bzi-not", w(isa.OP_BZI, r1, 0, 0, 8), regs{r1: 3}, regs{pc: 0x1004}},
		{"jlt-taken", w(isa.OP_JLT, r1, r2, 0, 0), regs{r1: 0x8000_0000, r2: 0x7000}, regs{pc: 0x7000}},
		{"jlt-not", w(isa.OP_JLT, r1, r2, 0, 0), regs{r1: 0x7FFF_FFFF, r2: 0x7000}, regs{pc: 0x1004}},
		{"jlti", w(isa.OP_JLTI, r1, r2, 0, neg(-4)), regs{r1: 0xFFFF_FFFF, r2: 0x7000}, regs{pc: 0x6FFC}},
		{"blt", w(isa.OP_BLT, r1, r2, 0, 0), regs{r1: 0xFFFF_FFFF, r2: 0xC}, regs{pc: 0x100C}},
		{"blti", w(isa.OP_BLTI, r1, 0, 0, neg(-8)), regs{r1: 0x8000_0000}, regs{pc: 0x0FF8}},
		{"movz", w(isa.OP_MOVZ, r1, r2, r3, 0), regs{r2: 9}, regs{r3: 9}},
		{"movz-not", w(isa.OP_MOVZ, r1, r2, r3, 0), regs{r1: 1, r2: 9, r3: 1}, regs{r3: 1}},
		{"movlt-pc", w(isa.OP_MOVLT, r1, r2, pc, 0), regs{r1: 0xFFFF_FFFF, r2: 0x7000}, regs{pc: 0x7000}},
		{"and", w(isa.OP_AND, r1, r2, r3, 0), regs{r1: 0b1100, r2: 0b1010}, regs{r3: 0b1000}},
		{"andi", w(isa.OP_ANDI, r1, r2, 0, 0x00FF), regs{r1: 0x1234}, regs{r2: 0x34}},
		{"or", w(isa.OP_OR, r1, r2, r3, 0), regs{r1: 0b1100, r2: 0b1010}, regs{r3: 0b1110}},
		{"ori", w(isa.OP_ORI, r1, r2, 0, 0x8000), regs{r1: 0xFFFF_0000}, regs{r2: 0xFFFF_8000}},
		{"xor", w(isa.OP_XOR, r1, r2, r3, 0), regs{r1: 0b1100, r2: 0b1010}, regs{r3: 0b0110}},
		{"xori", w(isa.OP_XORI, r1, r2, 0, 0xFFFF), regs{r1: 0x0000_00FF}, regs{r2: 0x0000_FF00}},
		{"inv", w(isa.OP_INV, r1, r2, 0, 0), regs{r1: 0x0F0F_0F0F}, regs{r2: 0xF0F0_F0F0}},
		{"sar", w(isa.OP_SAR, r1, r2, r3, 0), regs{r1: 0x8000_0000, r2: 4}, regs{r3: 0xF800_0000}},
		{"sar-wide", w(isa.OP_SAR, r1, r2, r3, 0), regs{r1: 0x8000_0000, r2: 40}, regs{r3: 0xFFFF_FFFF}},
		{"sari", w(isa.OP_SARI, r1, r2, 0, 8), regs{r1: 0x4000_0000}, regs{r2: 0x0040_0000}},
		{"sll", w(isa.OP_SLL, r1, r2, r3, 0), regs{r1: 0x0000_0003, r2: 30}, regs{r3: 0xC000_0000}},
		{"slr", w(isa.OP_SLR, r1, r2, r3, 0), regs{r1: 0x8000_0000, r2: 31}, regs{r3: 1}},
	}

	for _, entry := range table {
		cpu, _ := newTestCpu()
		for r, v := range maps.All(entry.before) {
			cpu.Register[r] = v
		}

		err := cpu.Execute(entry.word)
		assert.NoError(err, entry.name)
		if _, ok := entry.after[pc]; !ok {
			assert.Equal(testPc+4, cpu.Pc(), entry.name)
		}
		for r, v := range maps.All(entry.after) {
			assert.Equal(v, cpu.Register[r], "%v: %v", entry.name, r)
		}
		assert.Equal(1, cpu.Ticks, entry.name)
	}
}

// AB+imm instructions read RA and write RB, in source operand order.
func TestImmediateDestination(t *testing.T) {
	assert := assert.New(t)

	table := map[string]uint32{
		"ADDI R1 R2 -1":      0x1233,
		"ADDI R1 R2 -0x8000": 0xFFFF_9234,
		"ADDUI R1 R2 0x10":   0x1244,
		"ADDUI R1 R2 65535":  0x1_1233,
		"ADDUI R0 R2 0x41":   0x41,
		"MULI R1 R2 2":       0x2468,
		"MULI R1 R3 -1":      0xFFFF_EDCC,
		"ANDI R1 R2 0xFF":    0x34,
		"ORI R1 R2 0xF":      0x123F,
		"XORI R1 R2 0x1234":  0,
		"SARI R1 R2 4":       0x123,
	}

	for source, expected := range table {
		image, err := asm.Assemble(strings.NewReader("start@0x1000000:\n" + source))
		require.NoError(t, err, source)
		require.Len(t, image, 4, source)

		cpu, _ := newTestCpu()
		cpu.Register[r1] = 0x1234
		cpu.Register[r2] = 0xDEAD
		cpu.Register[r3] = 0xBEEF

		word := isa.Word(binary.LittleEndian.Uint32(image))
		assert.NoError(cpu.Execute(word), source)

		fields := strings.Fields(source)
		ra, err := isa.ParseRegister(fields[1])
		require.NoError(t, err)
		rb, err := isa.ParseRegister(fields[2])
		require.NoError(t, err)

		before := regs{r1: 0x1234, r2: 0xDEAD, r3: 0xBEEF}
		assert.Equal(expected, cpu.Register[rb], source)
		assert.Equal(before[ra], cpu.Register[ra], source)
	}
}

func TestMemoryAccess(t *testing.T) {
	assert := assert.New(t)

	w := isa.MakeWord

	cpu, ram := newTestCpu()
	cpu.Register[r1] = 0xCAFE_BABE
	cpu.Register[r2] = testData

	assert.NoError(cpu.Execute(w(isa.OP_STOR, r1, r2, 0, 0)))
	assert.Equal([]byte{0xBE, 0xBA, 0xFE, 0xCA}, ram.Data[0x80:0x84])

	assert.NoError(cpu.Execute(w(isa.OP_LOAD, r3, r2, 0, 0)))
	assert.Equal(uint32(0xCAFE_BABE), cpu.Register[r3])

	assert.NoError(cpu.Execute(w(isa.OP_LOADH, r3, r2, 0, 0)))
	assert.Equal(uint32(0xBABE), cpu.Register[r3])

	assert.NoError(cpu.Execute(w(isa.OP_LOADB, r3, r2, 0, 0)))
	assert.Equal(uint32(0xBE), cpu.Register[r3])

	cpu.Register[r1] = 0x1234_5678
	assert.NoError(cpu.Execute(w(isa.OP_STORH, r1, r2, 0, 0)))
	assert.Equal([]byte{0x78, 0x56, 0xFE, 0xCA}, ram.Data[0x80:0x84])

	assert.NoError(cpu.Execute(w(isa.OP_STORB, r1, r2, 0, 0)))
	assert.Equal([]byte{0x78, 0x56, 0xFE, 0xCA}, ram.Data[0x80:0x84])

	cpu.Register[r1] = 0xAA
	assert.NoError(cpu.Execute(w(isa.OP_STORB, r1, r2, 0, 0)))
	assert.Equal([]byte{0xAA, 0x56, 0xFE, 0xCA}, ram.Data[0x80:0x84])

	assert.Equal(testPc+7*4, cpu.Pc())
}

func TestStack(t *testing.T) {
	assert := assert.New(t)

	w := isa.MakeWord

	cpu, ram := newTestCpu()
	cpu.Register[r1] = 0x1111_2222

	assert.NoError(cpu.Execute(w(isa.OP_PUSH, r1, 0, 0, 0)))
	assert.Equal(testSp-4, cpu.Register[sp])
	assert.NoError(cpu.Execute(w(isa.OP_PUSHI, 0, 0, 0, 0xFFFE)))
	assert.Equal(testSp-8, cpu.Register[sp])

	assert.Equal([]byte{0x22, 0x22, 0x11, 0x11}, ram.Data[0xFC:0x100])
	assert.Equal([]byte{0xFE, 0xFF, 0xFF, 0xFF}, ram.Data[0xF8:0xFC])

	assert.NoError(cpu.Execute(w(isa.OP_POP, r2, 0, 0, 0)))
	assert.Equal(uint32(0xFFFF_FFFE), cpu.Register[r2])
	assert.NoError(cpu.Execute(w(isa.OP_POP, r3, 0, 0, 0)))
	assert.Equal(uint32(0x1111_2222), cpu.Register[r3])
	assert.Equal(testSp, cpu.Register[sp])
}

func TestFaults(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu()

	bad := isa.Word(0xEE00_0000)
	err := cpu.Execute(bad)
	assert.Equal(ErrOpcode(bad), err)
	assert.Equal(SR_FAULT_DECODE|SR_FAULT, cpu.Register[sr])
	assert.Equal(testPc, cpu.Pc())
	assert.Equal(0, cpu.Ticks)

	cpu, _ = newTestCpu()
	cpu.Register[r2] = 0x10
	err = cpu.Execute(isa.MakeWord(isa.OP_LOAD, r1, r2, 0, 0))
	assert.Equal(device.ErrBusFault(0x10), err)
	assert.Equal(SR_FAULT, cpu.Register[sr])
	assert.Equal(testPc, cpu.Pc())

	cpu.Register[isa.REG_PC] = 0
	assert.Equal(device.ErrBusFault(0), cpu.Tick())

	cpu = NewCpu(nil)
	assert.Equal(ErrNoBus, cpu.Tick())
}

func TestTick(t *testing.T) {
	assert := assert.New(t)

	cpu, ram := newTestCpu()

	program := []isa.Word{
		isa.MakeWord(isa.OP_ADDUI, r1, r1, 0, 3),
		isa.MakeWord(isa.OP_ADDI, r1, r1, 0, 0xFFFF),
		isa.MakeWord(isa.OP_BZI, r1, 0, 0, 8),
		isa.MakeWord(isa.OP_BI, 0, 0, 0, 0xFFF8),
		isa.MakeWord(isa.OP_HALT, 0, 0, 0, 0),
	}
	for n, word := range program {
		ram.Data[n*4+0] = byte(word)
		ram.Data[n*4+1] = byte(word >> 8)
		ram.Data[n*4+2] = byte(word >> 16)
		ram.Data[n*4+3] = byte(word >> 24)
	}

	var err error
	for range 100 {
		err = cpu.Tick()
		if err != nil || cpu.Halted {
			break
		}
	}
	assert.NoError(err)
	assert.True(cpu.Halted)
	assert.Equal(uint32(0), cpu.Register[r1])
	assert.Equal(testPc+16, cpu.Pc())
	// ADDUI, two ADDI BZI BI loops, a final ADDI BZI, then HALT.
	assert.Equal(1+2*3+2+1, cpu.Ticks)

	assert.Equal(ErrHalted, cpu.Tick())

	cpu.Reset(testPc, testSp)
	assert.False(cpu.Halted)
	assert.Equal(0, cpu.Ticks)
}

func TestDump(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu()
	out := &bytes.Buffer{}
	cpu.Dump = out
	cpu.Register[r3] = 0xDEAD_BEEF

	assert.NoError(cpu.Execute(isa.MakeWord(isa.OP_DUMP, 0, 0, 0, 0)))
	assert.Contains(out.String(), "registers at PC=0x00001000")
	assert.Contains(out.String(), "  R3: 0xdeadbeef")
	assert.Contains(out.String(), "  SP: 0x000010fc")
}

func TestDefines(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu()
	defines := maps.Collect(cpu.Defines())
	assert.Equal("0x40000000", defines["SR_FAULT_DECODE"])
	assert.Equal("0x7", defines["SR_ALU_MASK"])
}
