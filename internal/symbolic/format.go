package symbolic

import (
	"math/big"
	"strconv"
	"strings"
)

func (e Expr) String() string {
	if e.den == nil {
		return formatPoly(e.num)
	}
	num, den := formatPoly(e.num), formatPoly(e.den)
	if len(e.num) > 1 {
		num = "(" + num + ")"
	}
	if len(e.den) > 1 || len(e.den[0].mono) > 1 || e.den[0].coeff.Cmp(big.NewRat(1, 1)) != 0 {
		den = "(" + den + ")"
	}
	return num + "/" + den
}

func formatPoly(p poly) string {
	if len(p) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range p {
		neg := t.coeff.Sign() < 0
		body := formatTerm(new(big.Rat).Abs(t.coeff), t.mono)
		switch {
		case i == 0 && neg:
			sb.WriteString("-")
		case i > 0 && neg:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		sb.WriteString(body)
	}
	return sb.String()
}

// formatTerm renders a positive coefficient and a monomial as a/b with
// negative exponents moved below the line.
func formatTerm(c *big.Rat, m monomial) string {
	pos, neg := m.split()
	var up, down []string
	if !c.Num().IsInt64() || c.Num().Int64() != 1 || len(pos) == 0 {
		up = append(up, c.Num().String())
	}
	if !c.IsInt() {
		down = append(down, c.Denom().String())
	}
	up = append(up, formatFactors(pos)...)
	down = append(down, formatFactors(neg)...)

	s := strings.Join(up, "*")
	switch len(down) {
	case 0:
	case 1:
		s += "/" + down[0]
	default:
		s += "/(" + strings.Join(down, "*") + ")"
	}
	return s
}

func formatFactors(m monomial) []string {
	out := make([]string, len(m))
	for i, f := range m {
		out[i] = f.sym.String()
		if f.exp != 1 {
			out[i] += "^" + strconv.Itoa(f.exp)
		}
	}
	return out
}
