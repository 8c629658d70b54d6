package asm

import (
	"slices"

	"github.com/golang/glog"
)

// ruleKind is how a label computes its address.
type ruleKind int

const (
	RULE_CONST    = ruleKind(iota) // name@0xADDR: fixed address.
	RULE_ALIAS                     // name@other: address of another label.
	RULE_RELATIVE                  // name: region offset plus bytes before the label.
)

// labelRule binds a label name to its address computation.
type labelRule struct {
	Name   string
	Source Source
	Kind   ruleKind

	Address uint32  // RULE_CONST
	Alias   string  // RULE_ALIAS
	Region  *Region // RULE_RELATIVE
	Offset  uint32  // RULE_RELATIVE, region length when declared.
}

// symbolTable holds every label rule in declaration order.
type symbolTable struct {
	rules map[string]*labelRule
	order []*labelRule
}

func newSymbolTable() *symbolTable {
	return &symbolTable{
		rules: make(map[string]*labelRule, 16),
	}
}

// declare binds a new label, which must not already exist.
func (st *symbolTable) declare(rule *labelRule) (err error) {
	_, ok := st.rules[rule.Name]
	if ok {
		err = ErrLabelDuplicate(rule.Name)
		return
	}

	st.rules[rule.Name] = rule
	st.order = append(st.order, rule)

	glog.V(2).Infof("label %v declared on line %d", rule.Name, rule.Source.LineNo)
	return
}

// Address evaluates the rule of a label.
func (st *symbolTable) Address(name string) (addr uint32, err error) {
	return st.resolve(name, nil)
}

// resolve evaluates a rule, with path holding the labels currently being
// evaluated so that a self-referential chain is reported, not followed.
func (st *symbolTable) resolve(name string, path []string) (addr uint32, err error) {
	if slices.Contains(path, name) {
		err = ErrLabelCycle(append(slices.Clone(path), name))
		return
	}

	rule, ok := st.rules[name]
	if !ok {
		err = ErrLabelMissing(name)
		return
	}

	path = append(path, name)

	switch rule.Kind {
	case RULE_CONST:
		addr = rule.Address
	case RULE_ALIAS:
		addr, err = st.resolve(rule.Alias, path)
	case RULE_RELATIVE:
		addr, err = st.resolve(rule.Region.Name, path)
		if err == nil {
			addr += rule.Offset
		}
	}

	return
}
