package symbolic

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

// Expr is an immutable rational function num/den over Laurent monomials
// with exact rational coefficients. The zero value is the number 0.
//
// Expressions are kept in a normal form: monomial factors shared by the
// numerator and denominator are cancelled, a monomial denominator is folded
// into the numerator, exact polynomial quotients are taken, and the leading
// coefficient of a polynomial denominator is 1. Two equal expressions built
// the same way therefore print identically; Equal is exact in all cases.
type Expr struct {
	num poly
	den poly // nil means 1
}

var ErrUnbound = errors.New("symbolic: unbound symbol")

func Int(n int64) Expr { return Expr{num: constPoly(big.NewRat(n, 1))} }

// Rat returns p/q.
func Rat(p, q int64) Expr {
	if q == 0 {
		panic("symbolic: zero denominator")
	}
	return Expr{num: constPoly(big.NewRat(p, q))}
}

// Number lifts an exact rational.
func Number(r *big.Rat) Expr { return Expr{num: constPoly(r)} }

func Sym(s Symbol) Expr {
	return Expr{num: poly{{coeff: big.NewRat(1, 1), mono: monomial{{sym: s, exp: 1}}}}}
}

func (e Expr) denom() poly {
	if e.den == nil {
		return onePoly()
	}
	return e.den
}

func newExpr(num, den poly) Expr {
	if den.isZero() {
		panic("symbolic: division by zero")
	}
	if num.isZero() {
		return Expr{}
	}
	cn, cd := num.content(), den.content()
	num = num.mulMono(cn.inv())
	den = den.mulMono(cd.inv())
	m := cn.mul(cd.inv())

	if c, ok := den.constant(); ok {
		num = num.scale(new(big.Rat).Inv(c))
		den = nil
	} else if q, ok := num.divExact(den); ok {
		num, den = q, nil
	} else if q, ok := den.divExact(num); ok {
		num, den = onePoly(), q
	}

	if den != nil {
		lc := new(big.Rat).Inv(den[0].coeff)
		num = num.scale(lc)
		den = den.scale(lc)
		pos, neg := m.split()
		num = num.mulMono(pos)
		den = den.mulMono(neg)
		return Expr{num: num, den: den}
	}
	return Expr{num: num.mulMono(m)}
}

func Add(terms ...Expr) Expr {
	acc := Expr{}
	for _, t := range terms {
		acc = acc.Add(t)
	}
	return acc
}

func Mul(factors ...Expr) Expr {
	acc := Int(1)
	for _, f := range factors {
		acc = acc.Mul(f)
	}
	return acc
}

func (e Expr) Add(o Expr) Expr {
	if e.den == nil && o.den == nil {
		return Expr{num: e.num.add(o.num)}
	}
	ed, od := e.denom(), o.denom()
	if ed.equal(od) {
		return newExpr(e.num.add(o.num), ed)
	}
	return newExpr(e.num.mul(od).add(o.num.mul(ed)), ed.mul(od))
}

func (e Expr) Sub(o Expr) Expr { return e.Add(o.Neg()) }

func (e Expr) Neg() Expr { return Expr{num: e.num.neg(), den: e.den} }

func (e Expr) Mul(o Expr) Expr {
	if e.IsZero() || o.IsZero() {
		return Expr{}
	}
	if e.den == nil && o.den == nil {
		return Expr{num: e.num.mul(o.num)}
	}
	return newExpr(e.num.mul(o.num), e.denom().mul(o.denom()))
}

// Div panics when o is zero, like big.Rat.Quo.
func (e Expr) Div(o Expr) Expr {
	if o.IsZero() {
		panic("symbolic: division by zero")
	}
	return newExpr(e.num.mul(o.denom()), e.denom().mul(o.num))
}

// Pow raises e to an integer power.
func (e Expr) Pow(n int) Expr {
	if n < 0 {
		return Int(1).Div(e.Pow(-n))
	}
	acc := Int(1)
	for i := 0; i < n; i++ {
		acc = acc.Mul(e)
	}
	return acc
}

func (e Expr) IsZero() bool { return e.num.isZero() }

// Numeric returns the value of a symbol-free expression.
func (e Expr) Numeric() (*big.Rat, bool) {
	if e.den != nil {
		return nil, false
	}
	return e.num.constant()
}

func (e Expr) Equal(o Expr) bool {
	if e.den == nil && o.den == nil {
		return e.num.equal(o.num)
	}
	return e.num.mul(o.denom()).equal(o.num.mul(e.denom()))
}

// Symbol returns the symbol when e is exactly one symbol.
func (e Expr) Symbol() (Symbol, bool) {
	if e.den != nil || len(e.num) != 1 {
		return Symbol{}, false
	}
	t := e.num[0]
	if len(t.mono) != 1 || t.mono[0].exp != 1 || t.coeff.Cmp(big.NewRat(1, 1)) != 0 {
		return Symbol{}, false
	}
	return t.mono[0].sym, true
}

func (e Expr) Contains(s Symbol) bool {
	return e.num.hasSymbol(s) || e.den.hasSymbol(s)
}

// FreeSymbols lists every symbol in e, sorted.
func (e Expr) FreeSymbols() []Symbol {
	set := map[Symbol]struct{}{}
	e.num.symbols(set)
	e.den.symbols(set)
	out := make([]Symbol, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	SortSymbols(out)
	return out
}

// Subs replaces every occurrence of s with v.
func (e Expr) Subs(s Symbol, v Expr) Expr {
	return e.SubsAll(map[Symbol]Expr{s: v})
}

// SubsAll performs a simultaneous substitution.
func (e Expr) SubsAll(repl map[Symbol]Expr) Expr {
	if len(repl) == 0 {
		return e
	}
	num := substitutePoly(e.num, repl)
	if e.den == nil {
		return num
	}
	return num.Div(substitutePoly(e.den, repl))
}

func substitutePoly(p poly, repl map[Symbol]Expr) Expr {
	acc := Expr{}
	for _, t := range p {
		keep := make(monomial, 0, len(t.mono))
		value := Number(t.coeff)
		for _, f := range t.mono {
			if v, ok := repl[f.sym]; ok {
				value = value.Mul(v.Pow(f.exp))
				continue
			}
			keep = append(keep, f)
		}
		acc = acc.Add(value.Mul(Expr{num: poly{{coeff: big.NewRat(1, 1), mono: keep}}}))
	}
	return acc
}

// Partial differentiates e with respect to s, treating every other symbol
// as independent.
func (e Expr) Partial(s Symbol) Expr {
	dn := e.num.partial(s)
	if e.den == nil {
		return Expr{num: dn}
	}
	dd := e.den.partial(s)
	return newExpr(dn.mul(e.den).add(e.num.mul(dd).neg()), e.den.mul(e.den))
}

// TimeDiff is the total time derivative: constant symbols have zero
// derivative, dynamic symbols s contribute ∂e/∂s · s'.
func (e Expr) TimeDiff() Expr {
	acc := Expr{}
	for _, s := range e.FreeSymbols() {
		if !s.dynamic {
			continue
		}
		acc = acc.Add(e.Partial(s).Mul(Sym(s.Diff())))
	}
	return acc
}

// Eval computes a float64 value with every symbol bound.
func (e Expr) Eval(bind map[Symbol]float64) (float64, error) {
	n, err := evalPoly(e.num, bind)
	if err != nil {
		return 0, err
	}
	if e.den == nil {
		return n, nil
	}
	d, err := evalPoly(e.den, bind)
	if err != nil {
		return 0, err
	}
	return n / d, nil
}

func evalPoly(p poly, bind map[Symbol]float64) (float64, error) {
	sum := 0.0
	for _, t := range p {
		c, _ := t.coeff.Float64()
		for _, f := range t.mono {
			v, ok := bind[f.sym]
			if !ok {
				return 0, fmt.Errorf("%w: %s", ErrUnbound, f.sym)
			}
			c *= math.Pow(v, float64(f.exp))
		}
		sum += c
	}
	return sum, nil
}
