package symbolic

import "errors"

var (
	// ErrNonlinear indicates an unknown that cannot be isolated linearly.
	ErrNonlinear = errors.New("symbolic: unknown appears nonlinearly")

	// ErrAbsent indicates the unknown does not occur in the expression.
	ErrAbsent = errors.New("symbolic: unknown does not occur")
)

// Equation is LHS = RHS.
type Equation struct {
	LHS Expr
	RHS Expr
}

func Eq(lhs, rhs Expr) Equation { return Equation{LHS: lhs, RHS: rhs} }

// Residual returns LHS - RHS.
func (q Equation) Residual() Expr { return q.LHS.Sub(q.RHS) }

func (q Equation) Equal(o Equation) bool {
	return q.LHS.Equal(o.LHS) && q.RHS.Equal(o.RHS)
}

// Equivalent reports whether both equations have proportional residuals of
// equal sign, i.e. describe the same constraint written differently.
func (q Equation) Equivalent(o Equation) bool {
	a, b := q.Residual(), o.Residual()
	if a.IsZero() || b.IsZero() {
		return a.IsZero() && b.IsZero()
	}
	r, ok := a.Div(b).Numeric()
	return ok && r.Sign() != 0
}

func (q Equation) Subs(s Symbol, v Expr) Equation {
	return Equation{LHS: q.LHS.Subs(s, v), RHS: q.RHS.Subs(s, v)}
}

func (q Equation) SubsAll(repl map[Symbol]Expr) Equation {
	return Equation{LHS: q.LHS.SubsAll(repl), RHS: q.RHS.SubsAll(repl)}
}

func (q Equation) Contains(s Symbol) bool {
	return q.LHS.Contains(s) || q.RHS.Contains(s)
}

// FreeSymbols lists the symbols of both sides, sorted and deduplicated.
func (q Equation) FreeSymbols() []Symbol {
	seen := map[Symbol]struct{}{}
	var out []Symbol
	for _, s := range append(q.LHS.FreeSymbols(), q.RHS.FreeSymbols()...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	SortSymbols(out)
	return out
}

func (q Equation) String() string {
	return q.LHS.String() + " = " + q.RHS.String()
}

// LinearIn splits e into coeff*u + rest where coeff does not contain u.
// Other symbols, including other unknowns, may appear in either part.
// A u in the denominator or with an exponent other than one is reported
// as ErrNonlinear; an absent u yields a zero coefficient.
func (e Expr) LinearIn(u Symbol) (coeff, rest Expr, err error) {
	if e.den.hasSymbol(u) {
		return Expr{}, Expr{}, ErrNonlinear
	}
	var with, without []term
	for _, t := range e.num {
		switch t.mono.degree(u) {
		case 0:
			without = append(without, t)
		case 1:
			with = append(with, term{coeff: t.coeff, mono: t.mono.without(u)})
		default:
			return Expr{}, Expr{}, ErrNonlinear
		}
	}
	den := e.denom()
	coeff = newExprOrZero(collect(with), den)
	rest = newExprOrZero(collect(without), den)
	return coeff, rest, nil
}

func newExprOrZero(num, den poly) Expr {
	if num.isZero() {
		return Expr{}
	}
	return newExpr(num, den)
}

// SolveFor isolates u in e = 0.
func SolveFor(e Expr, u Symbol) (Expr, error) {
	coeff, rest, err := e.LinearIn(u)
	if err != nil {
		return Expr{}, err
	}
	if coeff.IsZero() {
		return Expr{}, ErrAbsent
	}
	return rest.Neg().Div(coeff), nil
}

// Solve isolates u in the equation.
func (q Equation) Solve(u Symbol) (Expr, error) {
	return SolveFor(q.Residual(), u)
}
