package bondgraph

import (
	"errors"
	"fmt"

	"github.com/san-kum/bondsim/internal/symbolic"
)

// Derivation is the state-space description reachable from one junction.
type Derivation struct {
	States     []symbolic.Symbol
	Inputs     []symbolic.Symbol
	Parameters []symbolic.Symbol
	Equations  []symbolic.Equation
}

// StateEquations returns d(s)/dt = rhs for every state in States order,
// with every bond variable eliminated. Failures are *DerivationError.
func (j *Junction) StateEquations() ([]symbolic.Equation, error) {
	d, err := j.Derive()
	if err != nil {
		return nil, err
	}
	return d.Equations, nil
}

// Derive classifies and eliminates in one traversal.
func (j *Junction) Derive() (*Derivation, error) {
	_, bonds := j.graph.reach(j)
	sys := j.graph.assemble(j)
	if err := sys.eliminate(); err != nil {
		return nil, err
	}
	eqs, err := sys.stateEquations()
	if err != nil {
		return nil, err
	}
	j.graph.log.Debug("derived state equations", "junction", j.describe(), "states", len(eqs),
		"unknowns", len(sys.order))
	return &Derivation{
		States:     collectSymbols(bonds, (*Port).State),
		Inputs:     collectSymbols(bonds, (*Port).Input),
		Parameters: parameters(bonds),
		Equations:  eqs,
	}, nil
}

// system is the algebraic problem collected from one connected graph.
type system struct {
	g        *Graph
	residual []symbolic.Expr
	unknowns []symbolic.Symbol
	free     map[symbolic.Symbol]bool
	solved   map[symbolic.Symbol]symbolic.Expr
	order    []symbolic.Symbol
	storage  []*Bond
}

// assemble collects junction laws, port laws and two-port couplings with
// source inputs and inertia flows already substituted.
func (g *Graph) assemble(root *Junction) *system {
	junctions, bonds := g.reach(root)
	sys := &system{
		g:      g,
		free:   make(map[symbolic.Symbol]bool),
		solved: make(map[symbolic.Symbol]symbolic.Expr),
	}

	fixed := make(map[symbolic.Symbol]symbolic.Expr)
	for _, b := range bonds {
		e, f := b.effortVar(), b.flowVar()
		switch {
		case b.port != nil && b.port.kind == EffortSource:
			fixed[e] = symbolic.Sym(b.port.effort)
			sys.addUnknown(f)
		case b.port != nil && b.port.kind == FlowSource:
			fixed[f] = symbolic.Sym(b.port.flow)
			sys.addUnknown(e)
		case b.port != nil && b.port.kind == Inertia:
			fixed[f] = symbolic.Sym(b.port.state)
			sys.addUnknown(e)
		default:
			sys.addUnknown(e)
			sys.addUnknown(f)
		}
	}

	var eqs []symbolic.Equation
	for _, n := range junctions {
		eqs = append(eqs, n.conservation()...)
	}
	coupled := make(map[*Port]bool)
	for _, b := range bonds {
		switch {
		case b.port == nil || b.port.kind.IsSource():
		case b.port.kind == Inertia:
			sys.storage = append(sys.storage, b)
		case b.port.kind.IsTwoPort():
			other := g.otherSide(b)
			if other == nil || coupled[b.port] {
				continue
			}
			coupled[b.port] = true
			in, out := b, other
			if b.end == OutputEnd {
				in, out = other, b
			}
			p := b.port
			repl := map[symbolic.Symbol]symbolic.Expr{
				p.effort:     symbolic.Sym(in.effortVar()),
				p.flow:       symbolic.Sym(in.flowVar()),
				p.out.Effort: symbolic.Sym(out.effortVar()),
				p.out.Flow:   symbolic.Sym(out.flowVar()),
			}
			for _, law := range p.laws {
				eqs = append(eqs, law.SubsAll(repl))
			}
		default:
			if b.port.kind == Compliance {
				sys.storage = append(sys.storage, b)
			}
			eqs = append(eqs, b.port.laws[0].SubsAll(b.rename()))
		}
	}

	for _, q := range eqs {
		sys.residual = append(sys.residual, q.SubsAll(fixed).Residual())
	}
	sys.preset(fixed)
	return sys
}

// preset records substituted bond variables as already solved.
func (s *system) preset(vals map[symbolic.Symbol]symbolic.Expr) {
	for k, v := range vals {
		s.solved[k] = v
	}
}

func (s *system) addUnknown(u symbolic.Symbol) {
	s.unknowns = append(s.unknowns, u)
	s.free[u] = true
}

// rename maps a one-port's own effort and flow onto the bond variables.
func (b *Bond) rename() map[symbolic.Symbol]symbolic.Expr {
	return map[symbolic.Symbol]symbolic.Expr{
		b.port.effort: symbolic.Sym(b.effortVar()),
		b.port.flow:   symbolic.Sym(b.flowVar()),
	}
}

// conservation returns the common-variable equalities and the signed sum
// of the complementary variable. A bond counts +1 when its power enters n.
func (n *Junction) conservation() []symbolic.Equation {
	type leg struct {
		b    *Bond
		sign int
	}
	var legs []leg
	for _, b := range n.bonds {
		legs = append(legs, leg{b, -b.dir})
	}
	for _, l := range n.links {
		legs = append(legs, leg{l, l.dir})
	}
	if len(legs) == 0 {
		return nil
	}

	common, summed := (*Bond).effortVar, (*Bond).flowVar
	if n.kind == CommonFlow {
		common, summed = summed, common
	}
	var eqs []symbolic.Equation
	first := symbolic.Sym(common(legs[0].b))
	for _, l := range legs[1:] {
		eqs = append(eqs, symbolic.Eq(first, symbolic.Sym(common(l.b))))
	}
	sum := symbolic.Int(0)
	for _, l := range legs {
		sum = sum.Add(symbolic.Int(int64(l.sign)).Mul(symbolic.Sym(summed(l.b))))
	}
	return append(eqs, symbolic.Eq(sum, symbolic.Int(0)))
}

// eliminate solves the residuals one unknown at a time: the equation with
// the fewest unknowns first, an unknown with a numeric coefficient first.
func (s *system) eliminate() error {
	for {
		s.dropZero()
		if len(s.residual) == 0 {
			break
		}
		idx, u, val, err := s.pick()
		if err != nil {
			return err
		}
		s.residual = append(s.residual[:idx:idx], s.residual[idx+1:]...)
		s.assign(u, val)
		s.g.log.Trace("eliminated", "unknown", u.String(), "value", val.String())
	}

	var free []symbolic.Symbol
	for _, u := range s.unknowns {
		if s.free[u] {
			free = append(free, u)
		}
	}
	if len(free) > 0 {
		return &DerivationError{Free: free, Wrapped: ErrUnderdetermined}
	}
	return nil
}

func (s *system) dropZero() {
	kept := s.residual[:0]
	for _, r := range s.residual {
		if !r.IsZero() {
			kept = append(kept, r)
		}
	}
	s.residual = kept
}

func (s *system) unknownsIn(r symbolic.Expr) []symbolic.Symbol {
	var out []symbolic.Symbol
	for _, u := range s.unknowns {
		if s.free[u] && r.Contains(u) {
			out = append(out, u)
		}
	}
	return out
}

// pick selects the next equation and unknown to eliminate.
func (s *system) pick() (int, symbolic.Symbol, symbolic.Expr, error) {
	counts := make([]int, len(s.residual))
	for i, r := range s.residual {
		counts[i] = len(s.unknownsIn(r))
		if counts[i] == 0 {
			return 0, symbolic.Symbol{}, symbolic.Expr{}, s.fail(ErrOverdetermined)
		}
	}
	tried := make([]bool, len(s.residual))
	for range s.residual {
		best := -1
		for i := range s.residual {
			if !tried[i] && (best < 0 || counts[i] < counts[best]) {
				best = i
			}
		}
		tried[best] = true
		if u, val, ok := s.isolate(s.residual[best]); ok {
			return best, u, val, nil
		}
	}
	return 0, symbolic.Symbol{}, symbolic.Expr{}, s.fail(ErrNoSolution)
}

// isolate finds an unknown r is linear in with a coefficient free of
// other unknowns, preferring numeric coefficients.
func (s *system) isolate(r symbolic.Expr) (symbolic.Symbol, symbolic.Expr, bool) {
	var (
		found    bool
		bestU    symbolic.Symbol
		bestVal  symbolic.Expr
		bestNumb bool
	)
	for _, u := range s.unknownsIn(r) {
		coeff, rest, err := r.LinearIn(u)
		if err != nil || coeff.IsZero() || len(s.unknownsIn(coeff)) > 0 {
			continue
		}
		_, numeric := coeff.Numeric()
		if found && (bestNumb || !numeric) {
			continue
		}
		found, bestU, bestVal, bestNumb = true, u, rest.Neg().Div(coeff), numeric
		if numeric {
			break
		}
	}
	return bestU, bestVal, found
}

// assign records u = val and substitutes it everywhere.
func (s *system) assign(u symbolic.Symbol, val symbolic.Expr) {
	for i, r := range s.residual {
		if r.Contains(u) {
			s.residual[i] = r.Subs(u, val)
		}
	}
	for _, k := range s.order {
		if s.solved[k].Contains(u) {
			s.solved[k] = s.solved[k].Subs(u, val)
		}
	}
	s.solved[u] = val
	s.free[u] = false
	s.order = append(s.order, u)
}

func (s *system) fail(sentinel error) error {
	var free []symbolic.Symbol
	for _, u := range s.unknowns {
		if s.free[u] {
			free = append(free, u)
		}
	}
	res := make([]symbolic.Equation, len(s.residual))
	for i, r := range s.residual {
		res[i] = symbolic.Eq(r, symbolic.Int(0))
	}
	return &DerivationError{Residual: res, Free: free, Wrapped: sentinel}
}

// stateEquations builds one equation per distinct state, in traversal
// order; storage bonds were collected in that order.
func (s *system) stateEquations() ([]symbolic.Equation, error) {
	var out []symbolic.Equation
	seen := make(map[symbolic.Symbol]bool)
	for _, b := range s.storage {
		st := b.port.state
		if seen[st] {
			continue
		}
		seen[st] = true
		rate := symbolic.Sym(st.Diff())
		switch b.port.kind {
		case Compliance:
			out = append(out, symbolic.Eq(rate, s.value(b.flowVar())))
		case Inertia:
			law := b.port.laws[0].SubsAll(b.rename())
			law = law.SubsAll(map[symbolic.Symbol]symbolic.Expr{
				b.effortVar(): s.value(b.effortVar()),
				b.flowVar():   symbolic.Sym(st),
			})
			val, err := law.Solve(st.Diff())
			if err != nil {
				if errors.Is(err, symbolic.ErrNonlinear) || errors.Is(err, symbolic.ErrAbsent) {
					return nil, &DerivationError{Residual: []symbolic.Equation{law}, Wrapped: ErrNoSolution}
				}
				return nil, fmt.Errorf("solve %s: %w", st.Diff(), err)
			}
			out = append(out, symbolic.Eq(rate, val))
		}
	}
	return out, nil
}

func (s *system) value(u symbolic.Symbol) symbolic.Expr {
	if v, ok := s.solved[u]; ok {
		return v
	}
	return symbolic.Sym(u)
}
