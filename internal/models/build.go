package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/bondsim/internal/bondgraph"
	"github.com/san-kum/bondsim/internal/config"
	"github.com/san-kum/bondsim/internal/symbolic"
)

// Model is a built model document: the graph plus name lookups.
type Model struct {
	Spec      *config.ModelSpec
	Graph     *bondgraph.Graph
	Root      *bondgraph.Junction
	Ports     map[string]*bondgraph.Port
	Junctions map[string]*bondgraph.Junction

	// scope maps every port variable name to its dynamic symbol.
	scope map[string]symbolic.Symbol
}

// Build validates spec and assembles its bond graph.
func Build(spec *config.ModelSpec, opts ...bondgraph.GraphOption) (*Model, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	m := &Model{
		Spec:      spec,
		Graph:     bondgraph.New(opts...),
		Ports:     make(map[string]*bondgraph.Port),
		Junctions: make(map[string]*bondgraph.Junction),
		scope:     scopeOf(spec),
	}

	for _, ps := range spec.Ports {
		p, err := m.buildPort(ps)
		if err != nil {
			return nil, fmt.Errorf("port %q: %w", ps.Name, err)
		}
		m.Ports[ps.Name] = p
	}

	for _, js := range spec.Junctions {
		kind, _ := bondgraph.ParseJunctionKind(js.Kind)
		elems := make([]bondgraph.Element, 0, len(js.Elements))
		for _, ref := range js.Elements {
			el, err := m.element(ref)
			if err != nil {
				return nil, fmt.Errorf("junction %q: %w", js.Name, err)
			}
			elems = append(elems, el)
		}
		j, err := m.Graph.NewJunction(kind, elems...)
		if err != nil {
			return nil, fmt.Errorf("junction %q: %w", js.Name, err)
		}
		j.SetName(js.Name)
		m.Junctions[js.Name] = j
	}

	for _, js := range spec.Junctions {
		// descending so earlier positions stay valid
		pos := append([]int(nil), js.Remove...)
		sort.Sort(sort.Reverse(sort.IntSlice(pos)))
		for _, i := range pos {
			if _, err := m.Junctions[js.Name].RemoveBond(i); err != nil {
				return nil, fmt.Errorf("junction %q: %w", js.Name, err)
			}
		}
	}

	for _, js := range spec.Junctions {
		for _, ref := range js.Inputs {
			el, err := m.element(ref)
			if err != nil {
				return nil, fmt.Errorf("junction %q: %w", js.Name, err)
			}
			if _, err := m.Junctions[js.Name].AddInput(el); err != nil {
				return nil, fmt.Errorf("junction %q: %w", js.Name, err)
			}
		}
	}

	m.Root = m.Junctions[spec.Root]
	return m, nil
}

// Derive runs the derivation from the root junction.
func (m *Model) Derive() (*bondgraph.Derivation, error) {
	return m.Root.Derive()
}

// Symbol resolves a name the way laws in the document resolve it.
func (m *Model) Symbol(name string) symbolic.Symbol {
	if s, ok := m.scope[name]; ok {
		return s
	}
	return symbolic.NewSymbol(name)
}

// Bindings returns the document values keyed by symbol.
func (m *Model) Bindings() map[symbolic.Symbol]float64 {
	out := make(map[symbolic.Symbol]float64, len(m.Spec.Values))
	for name, v := range m.Spec.Values {
		out[m.Symbol(name)] = v
	}
	return out
}

func scopeOf(spec *config.ModelSpec) map[string]symbolic.Symbol {
	scope := make(map[string]symbolic.Symbol)
	add := func(names ...string) {
		for _, n := range names {
			if n != "" {
				scope[n] = symbolic.Dynamic(n)
			}
		}
	}
	for _, p := range spec.Ports {
		add(p.Effort, p.Flow, p.Displacement)
		for _, pair := range []*config.PairSpec{p.Input, p.Output} {
			if pair != nil {
				add(pair.Effort, pair.Flow)
			}
		}
	}
	return scope
}

func (m *Model) parse(src string) (symbolic.Expr, error) {
	return symbolic.Parse(src, m.scope)
}

// lawOption reads "rhs" as the effort expression and "lhs = rhs" as a full
// equation.
func (m *Model) lawOption(src string) (bondgraph.Option, error) {
	lhs, rhs, isEq := strings.Cut(src, "=")
	if !isEq {
		e, err := m.parse(src)
		if err != nil {
			return nil, err
		}
		return bondgraph.WithLaw(e), nil
	}
	l, err := m.parse(lhs)
	if err != nil {
		return nil, err
	}
	r, err := m.parse(rhs)
	if err != nil {
		return nil, err
	}
	return bondgraph.WithEquation(symbolic.Eq(l, r)), nil
}

func (m *Model) buildPort(ps config.PortSpec) (*bondgraph.Port, error) {
	opts := []bondgraph.Option{bondgraph.WithName(ps.Name)}
	if ps.Law != "" {
		o, err := m.lawOption(ps.Law)
		if err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	if ps.Coefficient != "" {
		c, err := m.parse(ps.Coefficient)
		if err != nil {
			return nil, err
		}
		opts = append(opts, bondgraph.WithCoefficient(c))
	}

	sym := m.Symbol
	switch ps.Kind {
	case "resistor":
		return bondgraph.NewResistor(sym(ps.Effort), sym(ps.Flow), opts...)
	case "compliance":
		if ps.Flow != "" {
			opts = append(opts, bondgraph.WithFlow(sym(ps.Flow)))
		}
		return bondgraph.NewCompliance(sym(ps.Effort), sym(ps.Displacement), opts...)
	case "inertia":
		return bondgraph.NewInertia(sym(ps.Effort), sym(ps.Flow), opts...)
	case "effort_source":
		if ps.Flow != "" {
			opts = append(opts, bondgraph.WithFlow(sym(ps.Flow)))
		}
		return bondgraph.NewEffortSource(sym(ps.Effort), opts...)
	case "flow_source":
		return bondgraph.NewFlowSource(sym(ps.Flow), opts...)
	case "transformer":
		return bondgraph.NewTransformer(m.pair(ps.Input), m.pair(ps.Output), opts...)
	case "gyrator":
		return bondgraph.NewGyrator(m.pair(ps.Input), m.pair(ps.Output), opts...)
	}
	return nil, fmt.Errorf("unknown kind %q", ps.Kind)
}

func (m *Model) pair(p *config.PairSpec) bondgraph.Pair {
	return bondgraph.Pair{Effort: m.Symbol(p.Effort), Flow: m.Symbol(p.Flow)}
}

// element resolves "name", "name.input" or "name.output" against the built
// ports and junctions.
func (m *Model) element(s string) (bondgraph.Element, error) {
	ref := config.ParseRef(s)
	if j, ok := m.Junctions[ref.Name]; ok {
		return j, nil
	}
	p, ok := m.Ports[ref.Name]
	if !ok {
		return nil, fmt.Errorf("element %q: not built yet", s)
	}
	switch ref.Side {
	case "input":
		return p.InputSide(), nil
	case "output":
		return p.OutputSide(), nil
	}
	return p, nil
}
