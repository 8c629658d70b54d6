// Package cpu implements the processor of the flash board.
//
// The CPU consists of sixteen 32-bit registers (R0-R11, PC, LR, SP and SR),
// executing one fixed-format instruction word per tick from the bus. The
// status register SR carries the ALU zero, overflow and negative flags of
// the last instruction, and sticky fault flags.
package cpu
