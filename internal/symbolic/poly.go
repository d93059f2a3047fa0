package symbolic

import (
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// factor is sym^exp with exp != 0. Negative exponents are allowed, so the
// polynomials below are Laurent polynomials.
type factor struct {
	sym Symbol
	exp int
}

// monomial is a product of factors sorted by symbol.
type monomial []factor

func (m monomial) key() string {
	var sb strings.Builder
	for _, f := range m {
		sb.WriteString(f.sym.name)
		sb.WriteByte('\x00')
		sb.WriteString(strconv.Itoa(f.sym.order))
		if f.sym.dynamic {
			sb.WriteByte('d')
		}
		sb.WriteByte('^')
		sb.WriteString(strconv.Itoa(f.exp))
		sb.WriteByte(';')
	}
	return sb.String()
}

func (m monomial) mul(o monomial) monomial {
	out := make(monomial, 0, len(m)+len(o))
	i, j := 0, 0
	for i < len(m) || j < len(o) {
		switch {
		case j >= len(o) || (i < len(m) && compareSymbols(m[i].sym, o[j].sym) < 0):
			out = append(out, m[i])
			i++
		case i >= len(m) || compareSymbols(m[i].sym, o[j].sym) > 0:
			out = append(out, o[j])
			j++
		default:
			if e := m[i].exp + o[j].exp; e != 0 {
				out = append(out, factor{sym: m[i].sym, exp: e})
			}
			i++
			j++
		}
	}
	return out
}

func (m monomial) inv() monomial {
	out := make(monomial, len(m))
	for i, f := range m {
		out[i] = factor{sym: f.sym, exp: -f.exp}
	}
	return out
}

func (m monomial) degree(s Symbol) int {
	for _, f := range m {
		if f.sym == s {
			return f.exp
		}
	}
	return 0
}

func (m monomial) without(s Symbol) monomial {
	out := make(monomial, 0, len(m))
	for _, f := range m {
		if f.sym != s {
			out = append(out, f)
		}
	}
	return out
}

// split separates positive and negative exponents; both results have
// positive exponents.
func (m monomial) split() (pos, neg monomial) {
	for _, f := range m {
		if f.exp > 0 {
			pos = append(pos, f)
		} else {
			neg = append(neg, factor{sym: f.sym, exp: -f.exp})
		}
	}
	return pos, neg
}

// divides reports whether m divides o with non-negative exponents left over.
func (m monomial) divides(o monomial) bool {
	q := o.mul(m.inv())
	for _, f := range q {
		if f.exp < 0 {
			return false
		}
	}
	return true
}

// compareMonomials is a lexicographic order in which the smallest symbol is
// the most significant. It is compatible with multiplication.
func compareMonomials(a, b monomial) int {
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		var ea, eb int
		switch {
		case j >= len(b) || (i < len(a) && compareSymbols(a[i].sym, b[j].sym) < 0):
			ea = a[i].exp
			i++
		case i >= len(a) || compareSymbols(a[i].sym, b[j].sym) > 0:
			eb = b[j].exp
			j++
		default:
			ea, eb = a[i].exp, b[j].exp
			i++
			j++
		}
		if ea != eb {
			if ea < eb {
				return -1
			}
			return 1
		}
	}
	return 0
}

type term struct {
	coeff *big.Rat
	mono  monomial
}

// poly is a canonical Laurent polynomial: unique monomials, non-zero
// coefficients, sorted by descending monomial order.
type poly []term

func collect(terms []term) poly {
	acc := make(map[string]*term, len(terms))
	order := make([]string, 0, len(terms))
	for _, t := range terms {
		k := t.mono.key()
		if cur, ok := acc[k]; ok {
			cur.coeff = new(big.Rat).Add(cur.coeff, t.coeff)
			continue
		}
		acc[k] = &term{coeff: new(big.Rat).Set(t.coeff), mono: t.mono}
		order = append(order, k)
	}
	out := make(poly, 0, len(order))
	for _, k := range order {
		if t := acc[k]; t.coeff.Sign() != 0 {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return compareMonomials(out[i].mono, out[j].mono) > 0
	})
	return out
}

func constPoly(r *big.Rat) poly {
	if r.Sign() == 0 {
		return nil
	}
	return poly{{coeff: new(big.Rat).Set(r), mono: nil}}
}

func onePoly() poly { return constPoly(big.NewRat(1, 1)) }

func (p poly) isZero() bool { return len(p) == 0 }

// constant returns the value of a polynomial without symbols.
func (p poly) constant() (*big.Rat, bool) {
	switch {
	case len(p) == 0:
		return new(big.Rat), true
	case len(p) == 1 && len(p[0].mono) == 0:
		return new(big.Rat).Set(p[0].coeff), true
	}
	return nil, false
}

func (p poly) isOne() bool {
	c, ok := p.constant()
	return ok && c.Cmp(big.NewRat(1, 1)) == 0
}

func (p poly) add(q poly) poly {
	terms := make([]term, 0, len(p)+len(q))
	terms = append(terms, p...)
	terms = append(terms, q...)
	return collect(terms)
}

func (p poly) neg() poly {
	return p.scale(big.NewRat(-1, 1))
}

func (p poly) scale(r *big.Rat) poly {
	if r.Sign() == 0 {
		return nil
	}
	out := make(poly, len(p))
	for i, t := range p {
		out[i] = term{coeff: new(big.Rat).Mul(t.coeff, r), mono: t.mono}
	}
	return out
}

func (p poly) mulTerm(c *big.Rat, m monomial) poly {
	terms := make([]term, len(p))
	for i, t := range p {
		terms[i] = term{coeff: new(big.Rat).Mul(t.coeff, c), mono: t.mono.mul(m)}
	}
	return collect(terms)
}

func (p poly) mulMono(m monomial) poly {
	return p.mulTerm(big.NewRat(1, 1), m)
}

func (p poly) mul(q poly) poly {
	terms := make([]term, 0, len(p)*len(q))
	for _, a := range p {
		for _, b := range q {
			terms = append(terms, term{coeff: new(big.Rat).Mul(a.coeff, b.coeff), mono: a.mono.mul(b.mono)})
		}
	}
	return collect(terms)
}

func (p poly) equal(q poly) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i].coeff.Cmp(q[i].coeff) != 0 || compareMonomials(p[i].mono, q[i].mono) != 0 {
			return false
		}
	}
	return true
}

// content is the monomial gcd of all terms: the minimum exponent of every
// symbol, counting absent symbols as exponent zero.
func (p poly) content() monomial {
	if len(p) == 0 {
		return nil
	}
	mins := map[Symbol]int{}
	seen := map[Symbol]int{}
	for _, t := range p {
		for _, f := range t.mono {
			seen[f.sym]++
			if cur, ok := mins[f.sym]; !ok || f.exp < cur {
				mins[f.sym] = f.exp
			}
		}
	}
	var out monomial
	for s, e := range mins {
		if seen[s] < len(p) && e > 0 {
			e = 0
		}
		if e != 0 {
			out = append(out, factor{sym: s, exp: e})
		}
	}
	sort.Slice(out, func(i, j int) bool { return compareSymbols(out[i].sym, out[j].sym) < 0 })
	return out
}

func (p poly) hasSymbol(s Symbol) bool {
	for _, t := range p {
		if t.mono.degree(s) != 0 {
			return true
		}
	}
	return false
}

func (p poly) symbols(out map[Symbol]struct{}) {
	for _, t := range p {
		for _, f := range t.mono {
			out[f.sym] = struct{}{}
		}
	}
}

// divExact divides p by d when both have non-negative exponents. It reports
// false when d does not divide p.
func (p poly) divExact(d poly) (poly, bool) {
	if d.isZero() {
		return nil, false
	}
	lead := d[0]
	var q []term
	r := p
	for steps := 0; !r.isZero(); steps++ {
		if steps > 4096 || !lead.mono.divides(r[0].mono) {
			return nil, false
		}
		t := term{
			coeff: new(big.Rat).Quo(r[0].coeff, lead.coeff),
			mono:  r[0].mono.mul(lead.mono.inv()),
		}
		q = append(q, t)
		r = r.add(d.mulTerm(t.coeff, t.mono).neg())
	}
	return collect(q), true
}

// partial differentiates p with respect to s.
func (p poly) partial(s Symbol) poly {
	terms := make([]term, 0, len(p))
	for _, t := range p {
		e := t.mono.degree(s)
		if e == 0 {
			continue
		}
		m := t.mono.without(s)
		if e != 1 {
			m = m.mul(monomial{{sym: s, exp: e - 1}})
		}
		terms = append(terms, term{coeff: new(big.Rat).Mul(t.coeff, big.NewRat(int64(e), 1)), mono: m})
	}
	return collect(terms)
}
