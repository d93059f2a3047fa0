package symbolic

import (
	"slices"
	"strings"
)

// Symbol is a named scalar quantity. Dynamic symbols vary with time and may
// carry a derivative order; constant symbols are free coefficients.
type Symbol struct {
	name    string
	order   int
	dynamic bool
}

func NewSymbol(name string) Symbol { return Symbol{name: name} }

// Dynamic returns a time-varying symbol.
func Dynamic(name string) Symbol { return Symbol{name: name, dynamic: true} }

// Symbols splits a comma or space separated list into constant symbols.
func Symbols(names string) []Symbol {
	fields := splitNames(names)
	out := make([]Symbol, len(fields))
	for i, n := range fields {
		out[i] = NewSymbol(n)
	}
	return out
}

// DynamicSymbols splits a comma or space separated list into dynamic symbols.
func DynamicSymbols(names string) []Symbol {
	fields := splitNames(names)
	out := make([]Symbol, len(fields))
	for i, n := range fields {
		out[i] = Dynamic(n)
	}
	return out
}

func splitNames(names string) []string {
	return strings.FieldsFunc(names, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func (s Symbol) Name() string    { return s.name }
func (s Symbol) Order() int      { return s.order }
func (s Symbol) IsDynamic() bool { return s.dynamic }
func (s Symbol) IsZero() bool    { return s.name == "" }

// Diff returns the first time derivative of s. Only meaningful for dynamic
// symbols; the derivative of a constant is handled at the Expr level.
func (s Symbol) Diff() Symbol {
	s.order++
	return s
}

// Base strips any derivative order.
func (s Symbol) Base() Symbol {
	s.order = 0
	return s
}

func (s Symbol) String() string {
	return s.name + strings.Repeat("'", s.order)
}

// Expr lifts the symbol into an expression.
func (s Symbol) Expr() Expr { return Sym(s) }

func compareSymbols(a, b Symbol) int {
	switch {
	case a.name < b.name:
		return -1
	case a.name > b.name:
		return 1
	case a.order != b.order:
		if a.order < b.order {
			return -1
		}
		return 1
	case a.dynamic != b.dynamic:
		if !a.dynamic {
			return -1
		}
		return 1
	}
	return 0
}

// SortSymbols orders symbols by name, then derivative order.
func SortSymbols(syms []Symbol) {
	slices.SortFunc(syms, compareSymbols)
}
