package asm

import (
	"fmt"
	"regexp"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var exprPattern = regexp.MustCompile(`\$\([^\$]*\)`)

// parenEval does compile-time $(...) evaluation over the numeric equates.
// Labels are not visible, their addresses are only known after layout.
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "expr"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.equate {
		number, perr := ParseNumber(str)
		if perr != nil {
			// Non-numeric defines are not visible to expressions.
			continue
		}
		pred[key] = starlark.MakeInt64(number)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok || value > literalMax || value < literalMin {
		err = ErrParseExpression(expr)
		return
	}

	return
}

// expandExpressions replaces every $(...) in a line with its decimal value.
func (asm *Assembler) expandExpressions(line string) (expanded string, err error) {
	expanded = exprPattern.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			if err == nil {
				err = _err
			}
			return str
		}
		return fmt.Sprintf("%d", value)
	})
	return
}
