package symbolic

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Parse reads an arithmetic expression in HCL native syntax. Identifiers
// found in scope resolve to those symbols (typically the dynamic ones);
// any other identifier becomes a constant symbol. Supported forms are
// numbers, + - * /, unary minus, parentheses, pow(x, n) with an integer n,
// and der(x) for the time derivative. A minus sign always subtracts, even
// without surrounding spaces: "F-b*v" is F - b*v.
func Parse(src string, scope map[string]Symbol) (Expr, error) {
	b := []byte(spaceMinus(src))
	node, diags := hclsyntax.ParseExpression(b, "expr", hcl.InitialPos)
	if diags.HasErrors() {
		return Expr{}, fmt.Errorf("symbolic: parse %q: %s", src, diags.Error())
	}
	p := parser{src: b, scope: scope}
	e, err := p.convert(node)
	if err != nil {
		return Expr{}, fmt.Errorf("symbolic: parse %q: %w", src, err)
	}
	return e, nil
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(src string, scope map[string]Symbol) Expr {
	e, err := Parse(src, scope)
	if err != nil {
		panic(err)
	}
	return e
}

// spaceMinus pads every minus sign outside number exponents with spaces.
// HCL identifiers may contain '-', so "x-y" would otherwise read as one
// name.
func spaceMinus(src string) string {
	if !strings.Contains(src, "-") {
		return src
	}
	rs := []rune(src)
	var out strings.Builder
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case r == '_' || unicode.IsLetter(r):
			j := i + 1
			for j < len(rs) && (rs[j] == '_' || unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j])) {
				j++
			}
			out.WriteString(string(rs[i:j]))
			i = j
		case unicode.IsDigit(r):
			j := scanNumber(rs, i)
			out.WriteString(string(rs[i:j]))
			i = j
		case r == '-':
			out.WriteString(" - ")
			i++
		default:
			out.WriteRune(r)
			i++
		}
	}
	return out.String()
}

// scanNumber returns the end of the number literal starting at i.
func scanNumber(rs []rune, i int) int {
	digits := func(j int) int {
		for j < len(rs) && unicode.IsDigit(rs[j]) {
			j++
		}
		return j
	}
	j := digits(i)
	if j+1 < len(rs) && rs[j] == '.' && unicode.IsDigit(rs[j+1]) {
		j = digits(j + 1)
	}
	if j < len(rs) && (rs[j] == 'e' || rs[j] == 'E') {
		k := j + 1
		if k < len(rs) && (rs[k] == '+' || rs[k] == '-') {
			k++
		}
		if k < len(rs) && unicode.IsDigit(rs[k]) {
			j = digits(k)
		}
	}
	return j
}

type parser struct {
	src   []byte
	scope map[string]Symbol
}

func (p parser) convert(node hclsyntax.Expression) (Expr, error) {
	switch n := node.(type) {
	case *hclsyntax.LiteralValueExpr:
		return p.literal(n)

	case *hclsyntax.ScopeTraversalExpr:
		if len(n.Traversal) != 1 {
			return Expr{}, fmt.Errorf("attribute access is not supported")
		}
		name := n.Traversal.RootName()
		if strings.Contains(name, "-") {
			return Expr{}, fmt.Errorf("invalid name %q", name)
		}
		if s, ok := p.scope[name]; ok {
			return Sym(s), nil
		}
		return Sym(NewSymbol(name)), nil

	case *hclsyntax.ParenthesesExpr:
		return p.convert(n.Expression)

	case *hclsyntax.UnaryOpExpr:
		if n.Op != hclsyntax.OpNegate {
			return Expr{}, fmt.Errorf("unsupported unary operator")
		}
		v, err := p.convert(n.Val)
		if err != nil {
			return Expr{}, err
		}
		return v.Neg(), nil

	case *hclsyntax.BinaryOpExpr:
		lhs, err := p.convert(n.LHS)
		if err != nil {
			return Expr{}, err
		}
		rhs, err := p.convert(n.RHS)
		if err != nil {
			return Expr{}, err
		}
		switch n.Op {
		case hclsyntax.OpAdd:
			return lhs.Add(rhs), nil
		case hclsyntax.OpSubtract:
			return lhs.Sub(rhs), nil
		case hclsyntax.OpMultiply:
			return lhs.Mul(rhs), nil
		case hclsyntax.OpDivide:
			if rhs.IsZero() {
				return Expr{}, fmt.Errorf("division by zero")
			}
			return lhs.Div(rhs), nil
		}
		return Expr{}, fmt.Errorf("unsupported binary operator")

	case *hclsyntax.FunctionCallExpr:
		return p.call(n)
	}
	return Expr{}, fmt.Errorf("unsupported expression %T", node)
}

func (p parser) literal(n *hclsyntax.LiteralValueExpr) (Expr, error) {
	if n.Val.IsNull() || n.Val.Type() != cty.Number {
		return Expr{}, fmt.Errorf("only numeric literals are supported")
	}
	// Read the source text so decimals stay exact (0.1 is 1/10, not a
	// binary approximation).
	rng := n.SrcRange
	if rng.Start.Byte >= 0 && rng.End.Byte <= len(p.src) && rng.Start.Byte < rng.End.Byte {
		if r, ok := new(big.Rat).SetString(string(p.src[rng.Start.Byte:rng.End.Byte])); ok {
			return Number(r), nil
		}
	}
	r, _ := n.Val.AsBigFloat().Rat(nil)
	return Number(r), nil
}

func (p parser) call(n *hclsyntax.FunctionCallExpr) (Expr, error) {
	switch n.Name {
	case "der":
		if len(n.Args) != 1 {
			return Expr{}, fmt.Errorf("der takes one argument")
		}
		arg, err := p.convert(n.Args[0])
		if err != nil {
			return Expr{}, err
		}
		return arg.TimeDiff(), nil

	case "pow":
		if len(n.Args) != 2 {
			return Expr{}, fmt.Errorf("pow takes two arguments")
		}
		base, err := p.convert(n.Args[0])
		if err != nil {
			return Expr{}, err
		}
		exp, err := p.convert(n.Args[1])
		if err != nil {
			return Expr{}, err
		}
		r, ok := exp.Numeric()
		if !ok || !r.IsInt() || !r.Num().IsInt64() {
			return Expr{}, fmt.Errorf("pow exponent must be an integer")
		}
		k := r.Num().Int64()
		if k < 0 && base.IsZero() {
			return Expr{}, fmt.Errorf("division by zero")
		}
		return base.Pow(int(k)), nil
	}
	return Expr{}, fmt.Errorf("unknown function %q", n.Name)
}
