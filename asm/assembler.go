// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"maps"
	"strings"
	"unicode"

	"github.com/golang/glog"

	"github.com/ezrec/flashasm/isa"
)

// dataWidth maps raw data prefixes to their byte width.
var dataWidth = map[string]uint32{
	"$w:": 4,
	"$h:": 2,
	"$b:": 1,
}

// Assembler turns source text into a laid out Program.
type Assembler struct {
	Window Window           // Target window, the flash when zero.
	Order  binary.ByteOrder // Byte order, little-endian when nil.

	predefine map[string]string
	equate    map[string]string // Expression symbols for the current Parse.

	symbols *symbolTable
	regions []*Region
	current *Region // Region open for appends.
}

// Predefine defines a symbol visible to $(...) expressions.
func (asm *Assembler) Predefine(name string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{name: value}
	} else {
		asm.predefine[name] = value
	}
}

// window returns the configured target window.
func (asm *Assembler) window() Window {
	if asm.Window.Size == 0 {
		return Window{Base: DEFAULT_BASE, Size: DEFAULT_SIZE}
	}
	return asm.Window
}

// Parse reads source lines, lays out the regions and validates them.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil && lineno > 0 {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	window := asm.window()

	asm.symbols = newSymbolTable()
	asm.regions = nil
	asm.current = nil
	asm.equate = map[string]string{
		"LINENO":     "0",
		"FLASH_BASE": fmt.Sprintf("%#x", window.Base),
		"FLASH_SIZE": fmt.Sprintf("%#x", window.Size),
	}
	maps.Copy(asm.equate, asm.predefine)

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		glog.V(2).Infof("%v: %v", lineno, text)

		text, _, _ = strings.Cut(text, "#")
		line = strings.TrimSpace(text)

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, Source{LineNo: lineno, Line: line})
		if err != nil {
			return
		}
	}

	lineno = 0
	err = scanner.Err()
	if err != nil {
		return
	}

	asm.closeRegion()

	prog = &Program{
		Window:  window,
		Order:   asm.Order,
		Regions: asm.regions,
		symbols: asm.symbols,
	}

	err = prog.Validate()
	if err != nil {
		prog = nil
		return
	}

	return
}

// parseLine expands expressions and splits a line into words.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	asm.equate["LINENO"] = fmt.Sprintf("%v", lineno)

	if strings.Contains(line, "$(") {
		line, err = asm.expandExpressions(line)
		if err != nil {
			return
		}
	}

	words = strings.FieldsFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})

	return
}

// parseWords classifies the words of one line.
func (asm *Assembler) parseWords(words []string, src Source) (err error) {
	for len(words) > 0 && strings.HasSuffix(words[0], ":") && !strings.HasPrefix(words[0], "$") {
		err = asm.declareLabel(strings.TrimSuffix(words[0], ":"), src)
		if err != nil {
			return
		}
		words = words[1:]
	}

	if len(words) == 0 {
		return
	}

	if strings.HasPrefix(words[0], "$") {
		return asm.parseData(words, src)
	}

	return asm.parseInstruction(words, src)
}

// closeRegion moves the open region to the finished list.
func (asm *Assembler) closeRegion() {
	if asm.current == nil {
		return
	}

	glog.V(1).Infof("region %v closed, %d bytes", asm.current.Name, asm.current.Size())
	asm.regions = append(asm.regions, asm.current)
	asm.current = nil
}

// declareLabel handles name@address (opens a region) and name (relative).
func (asm *Assembler) declareLabel(label string, src Source) (err error) {
	name, where, anchored := strings.Cut(label, "@")
	if !isLabelName(name) {
		err = ErrLabelSyntax
		return
	}

	if !anchored {
		if asm.current == nil {
			err = ErrRegionMissing
			return
		}
		return asm.symbols.declare(&labelRule{
			Name:   name,
			Source: src,
			Kind:   RULE_RELATIVE,
			Region: asm.current,
			Offset: asm.current.Size(),
		})
	}

	rule := &labelRule{Name: name, Source: src}
	value, perr := ParseNumber(where)
	switch {
	case perr == nil:
		if value < 0 {
			err = ErrMalformedLiteral(where)
			return
		}
		rule.Kind = RULE_CONST
		rule.Address = uint32(value)
	case isLabelName(where):
		rule.Kind = RULE_ALIAS
		rule.Alias = where
	default:
		err = perr
		return
	}

	err = asm.symbols.declare(rule)
	if err != nil {
		return
	}

	asm.closeRegion()
	asm.current = &Region{
		Name:    name,
		Source:  src,
		symbols: asm.symbols,
	}

	return
}

// parseData appends $w:, $h: and $b: raw data.
func (asm *Assembler) parseData(words []string, src Source) (err error) {
	if asm.current == nil {
		err = ErrRegionMissing
		return
	}

	for _, word := range words {
		if len(word) < 3 {
			err = ErrDataSyntax(word)
			return
		}
		width, ok := dataWidth[strings.ToLower(word[:3])]
		if !ok {
			err = ErrDataSyntax(word)
			return
		}

		token := word[3:]
		op := &Operand{Mnemonic: word[:2], Token: token, Kind: isa.IMM_WORD}

		value, perr := ParseNumber(token)
		switch {
		case perr == nil:
			bits := 8 * width
			if value < -(int64(1)<<(bits-1)) || value >= int64(1)<<bits {
				err = ErrDataRange{Token: token, Width: width}
				return
			}
			op.Value = value
		case width == 4 && isLabelName(token):
			op.Label = token
		default:
			err = perr
			return
		}

		asm.current.Append(&Datum{
			Kind:   DATUM_RAW,
			Source: src,
			Imm:    op,
			width:  width,
		})
	}

	return
}

// parseInstruction encodes a mnemonic and its operands.
func (asm *Assembler) parseInstruction(words []string, src Source) (err error) {
	desc, ok := isa.Lookup(words[0])
	if !ok {
		err = ErrMnemonicUnknown(words[0])
		return
	}

	if asm.current == nil {
		err = ErrRegionMissing
		return
	}

	shape := desc.Shape
	operands := words[1:]
	if len(operands) != shape.Operands() {
		err = ErrArityMismatch{Mnemonic: desc.Mnemonic, Expected: shape.Operands(), Given: len(operands)}
		return
	}

	d := &Datum{
		Kind:   DATUM_INSTRUCTION,
		Source: src,
		Desc:   desc,
		width:  desc.Width,
	}
	if desc.Expand != isa.EXPAND_NONE {
		d.Kind = DATUM_EXPAND
	}

	for _, reg := range []struct {
		present bool
		target  *isa.Register
	}{{shape.Ra, &d.Ra}, {shape.Rb, &d.Rb}, {shape.Rc, &d.Rc}} {
		if !reg.present {
			continue
		}
		*reg.target, err = isa.ParseRegister(operands[0])
		if err != nil {
			return
		}
		operands = operands[1:]
	}

	if shape.Imm != isa.IMM_NONE {
		d.Imm, err = parseOperand(desc.Mnemonic, operands[0], shape.Imm)
		if err != nil {
			return
		}
	}

	asm.current.Append(d)

	return
}

// Assemble parses a program with the default window and byte order and
// returns its image.
func Assemble(input io.Reader) (image []byte, err error) {
	asm := &Assembler{}
	prog, err := asm.Parse(input)
	if err != nil {
		return
	}
	return prog.Image()
}
