// Package asm implements the two-pass assembler for the flash image.
//
// Source lines are classified into labels, raw data and instructions.
// Instructions are encoded as far as possible while parsing; operands that
// name labels are kept symbolic and resolved once every label is known.
// Labels are bound to address rules (a constant, an alias of another label,
// or an offset inside a region) that are evaluated after parsing, with cycle
// detection. Regions are then checked for alignment, overlap and placement
// inside the target window before the image is emitted.
package asm
