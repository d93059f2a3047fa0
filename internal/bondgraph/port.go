package bondgraph

import (
	"github.com/san-kum/bondsim/internal/symbolic"
)

// Kind tags the closed set of port variants.
type Kind int

const (
	Resistor Kind = iota + 1
	Compliance
	Inertia
	EffortSource
	FlowSource
	Transformer
	Gyrator
)

var kindNames = map[Kind][2]string{
	Resistor:     {"resistor", "R"},
	Compliance:   {"compliance", "C"},
	Inertia:      {"inertia", "I"},
	EffortSource: {"effort_source", "Se"},
	FlowSource:   {"flow_source", "Sf"},
	Transformer:  {"transformer", "TF"},
	Gyrator:      {"gyrator", "GY"},
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n[0]
	}
	return "unknown"
}

// Label is the conventional diagram mnemonic (R, C, I, Se, Sf, TF, GY).
func (k Kind) Label() string {
	if n, ok := kindNames[k]; ok {
		return n[1]
	}
	return "?"
}

// ParseKind accepts the String form of a kind.
func ParseKind(s string) (Kind, bool) {
	for k, n := range kindNames {
		if n[0] == s {
			return k, true
		}
	}
	return 0, false
}

func (k Kind) IsSource() bool  { return k == EffortSource || k == FlowSource }
func (k Kind) IsStorage() bool { return k == Compliance || k == Inertia }
func (k Kind) IsTwoPort() bool { return k == Transformer || k == Gyrator }

// Pair is the effort/flow pair seen at one end of a bond.
type Pair struct {
	Effort symbolic.Symbol
	Flow   symbolic.Symbol
}

// Port is an immutable energy element. The constitutive law is synthesized
// once at construction, whichever form the caller supplied.
type Port struct {
	kind   Kind
	name   string
	effort symbolic.Symbol
	flow   symbolic.Symbol
	state  symbolic.Symbol
	out    Pair
	ratio  symbolic.Expr
	laws   []symbolic.Equation
	deriv  symbolic.Equation
}

type portSpec struct {
	rhs   *symbolic.Expr
	eq    *symbolic.Equation
	coeff *symbolic.Expr
	name  string
	flow  symbolic.Symbol
}

// Option configures a port under construction.
type Option func(*portSpec)

// WithLaw gives the law as the expression the effort equals.
func WithLaw(rhs symbolic.Expr) Option {
	return func(s *portSpec) { s.rhs = &rhs }
}

// WithEquation gives the law as a full equation mentioning the effort.
func WithEquation(eq symbolic.Equation) Option {
	return func(s *portSpec) { s.eq = &eq }
}

// WithCoefficient selects the linear shorthand (or the two-port ratio).
func WithCoefficient(c symbolic.Expr) Option {
	return func(s *portSpec) { s.coeff = &c }
}

// WithName labels the port for display.
func WithName(name string) Option {
	return func(s *portSpec) { s.name = name }
}

// WithFlow names the flow of a Compliance or the flow of an EffortSource.
func WithFlow(f symbolic.Symbol) Option {
	return func(s *portSpec) { s.flow = f }
}

func buildSpec(opts []Option) portSpec {
	var s portSpec
	for _, o := range opts {
		o(&s)
	}
	return s
}

// law resolves the explicit-or-linear choice into one equation.
func (s portSpec) law(k Kind, effort symbolic.Symbol, linear func(c symbolic.Expr) symbolic.Expr) (symbolic.Equation, error) {
	given := 0
	for _, set := range []bool{s.rhs != nil, s.eq != nil, s.coeff != nil} {
		if set {
			given++
		}
	}
	switch {
	case given == 0:
		return symbolic.Equation{}, portErr(k, "one of law or linear coefficient is required")
	case given > 1:
		return symbolic.Equation{}, portErr(k, "law and linear coefficient are mutually exclusive")
	case s.coeff != nil:
		return symbolic.Eq(symbolic.Sym(effort), linear(*s.coeff)), nil
	case s.rhs != nil:
		return symbolic.Eq(symbolic.Sym(effort), *s.rhs), nil
	}
	if !s.eq.Contains(effort) {
		return symbolic.Equation{}, portErr(k, "law does not mention effort %s", effort)
	}
	return *s.eq, nil
}

// rejectFlow refuses WithFlow on kinds whose flow is fixed by their
// arguments.
func (s portSpec) rejectFlow(k Kind) error {
	if !s.flow.IsZero() {
		return portErr(k, "flow option applies only to compliance and effort sources")
	}
	return nil
}

func requireDynamic(k Kind, role string, s symbolic.Symbol) error {
	if s.IsZero() {
		return portErr(k, "%s symbol is required", role)
	}
	if !s.IsDynamic() || s.Order() != 0 {
		return portErr(k, "%s %s must be an underived dynamic symbol", role, s)
	}
	return nil
}

// NewResistor builds effort = f(flow); the linear form is effort = c*flow.
func NewResistor(effort, flow symbolic.Symbol, opts ...Option) (*Port, error) {
	if err := requireDistinct(Resistor, effort, flow); err != nil {
		return nil, err
	}
	spec := buildSpec(opts)
	if err := spec.rejectFlow(Resistor); err != nil {
		return nil, err
	}
	law, err := spec.law(Resistor, effort, func(c symbolic.Expr) symbolic.Expr {
		return c.Mul(symbolic.Sym(flow))
	})
	if err != nil {
		return nil, err
	}
	return &Port{kind: Resistor, name: spec.name, effort: effort, flow: flow, laws: []symbolic.Equation{law}}, nil
}

// NewCompliance builds a storage port whose effort depends on the
// displacement state. The linear form is effort = c*displacement, so a
// spring of stiffness k takes c = k and a capacitor of capacitance C takes
// c = 1/C. The flow defaults to the displacement's time derivative.
func NewCompliance(effort, displacement symbolic.Symbol, opts ...Option) (*Port, error) {
	spec := buildSpec(opts)
	flow := spec.flow
	if flow.IsZero() {
		flow = displacement.Diff()
	} else if err := requireDynamic(Compliance, "flow", flow); err != nil {
		return nil, err
	}
	if err := requireDynamic(Compliance, "effort", effort); err != nil {
		return nil, err
	}
	if err := requireDynamic(Compliance, "displacement", displacement); err != nil {
		return nil, err
	}
	if effort == displacement || effort == flow {
		return nil, portErr(Compliance, "effort must differ from displacement and flow")
	}
	law, err := spec.law(Compliance, effort, func(c symbolic.Expr) symbolic.Expr {
		return c.Mul(symbolic.Sym(displacement))
	})
	if err != nil {
		return nil, err
	}
	if !law.Contains(displacement) {
		return nil, portErr(Compliance, "law does not depend on displacement %s", displacement)
	}
	return &Port{
		kind:   Compliance,
		name:   spec.name,
		effort: effort,
		flow:   flow,
		state:  displacement,
		laws:   []symbolic.Equation{law},
		deriv:  symbolic.Eq(symbolic.Sym(displacement.Diff()), symbolic.Sym(flow)),
	}, nil
}

// NewInertia builds a storage port whose law relates effort to the time
// derivative of its flow; the linear form is effort = c*d(flow)/dt.
func NewInertia(effort, flow symbolic.Symbol, opts ...Option) (*Port, error) {
	if err := requireDistinct(Inertia, effort, flow); err != nil {
		return nil, err
	}
	spec := buildSpec(opts)
	if err := spec.rejectFlow(Inertia); err != nil {
		return nil, err
	}
	law, err := spec.law(Inertia, effort, func(c symbolic.Expr) symbolic.Expr {
		return c.Mul(symbolic.Sym(flow.Diff()))
	})
	if err != nil {
		return nil, err
	}
	rate, err := law.Solve(flow.Diff())
	if err != nil {
		return nil, portErr(Inertia, "law cannot be solved for %s: %v", flow.Diff(), err)
	}
	return &Port{
		kind:   Inertia,
		name:   spec.name,
		effort: effort,
		flow:   flow,
		state:  flow,
		laws:   []symbolic.Equation{law},
		deriv:  symbolic.Eq(symbolic.Sym(flow.Diff()), rate),
	}, nil
}

// NewEffortSource fixes the effort of its bond to the input symbol.
func NewEffortSource(effort symbolic.Symbol, opts ...Option) (*Port, error) {
	return newSource(EffortSource, effort, opts)
}

// NewFlowSource fixes the flow of its bond to the input symbol.
func NewFlowSource(flow symbolic.Symbol, opts ...Option) (*Port, error) {
	return newSource(FlowSource, flow, opts)
}

func newSource(k Kind, input symbolic.Symbol, opts []Option) (*Port, error) {
	if err := requireDynamic(k, "input", input); err != nil {
		return nil, err
	}
	spec := buildSpec(opts)
	if spec.rhs != nil || spec.eq != nil || spec.coeff != nil {
		return nil, portErr(k, "sources take neither a law nor a coefficient")
	}
	if k == FlowSource {
		if err := spec.rejectFlow(k); err != nil {
			return nil, err
		}
	}
	p := &Port{kind: k, name: spec.name, laws: []symbolic.Equation{symbolic.Eq(symbolic.Sym(input), symbolic.Sym(input))}}
	if k == EffortSource {
		p.effort, p.flow = input, spec.flow
	} else {
		p.flow = input
	}
	return p, nil
}

// NewTransformer couples e_out = r*e_in and f_in = r*f_out.
func NewTransformer(in, out Pair, opts ...Option) (*Port, error) {
	return newTwoPort(Transformer, in, out, opts)
}

// NewGyrator couples e_out = r*f_in and e_in = r*f_out.
func NewGyrator(in, out Pair, opts ...Option) (*Port, error) {
	return newTwoPort(Gyrator, in, out, opts)
}

func newTwoPort(k Kind, in, out Pair, opts []Option) (*Port, error) {
	syms := []symbolic.Symbol{in.Effort, in.Flow, out.Effort, out.Flow}
	seen := map[symbolic.Symbol]bool{}
	for _, s := range syms {
		if err := requireDynamic(k, "port", s); err != nil {
			return nil, err
		}
		if seen[s] {
			return nil, portErr(k, "symbol %s used twice", s)
		}
		seen[s] = true
	}
	spec := buildSpec(opts)
	if spec.rhs != nil || spec.eq != nil {
		return nil, portErr(k, "two-ports take a ratio, not a law")
	}
	if err := spec.rejectFlow(k); err != nil {
		return nil, err
	}
	if spec.coeff == nil {
		return nil, portErr(k, "ratio is required")
	}
	r := *spec.coeff
	if r.IsZero() {
		return nil, portErr(k, "ratio must be non-zero")
	}
	for _, s := range r.FreeSymbols() {
		if seen[s.Base()] {
			return nil, portErr(k, "ratio depends on port variable %s", s)
		}
	}
	p := &Port{kind: k, name: spec.name, effort: in.Effort, flow: in.Flow, out: out, ratio: r}
	if k == Transformer {
		p.laws = []symbolic.Equation{
			symbolic.Eq(symbolic.Sym(out.Effort), r.Mul(symbolic.Sym(in.Effort))),
			symbolic.Eq(symbolic.Sym(in.Flow), r.Mul(symbolic.Sym(out.Flow))),
		}
	} else {
		p.laws = []symbolic.Equation{
			symbolic.Eq(symbolic.Sym(out.Effort), r.Mul(symbolic.Sym(in.Flow))),
			symbolic.Eq(symbolic.Sym(in.Effort), r.Mul(symbolic.Sym(out.Flow))),
		}
	}
	return p, nil
}

func requireDistinct(k Kind, effort, flow symbolic.Symbol) error {
	if err := requireDynamic(k, "effort", effort); err != nil {
		return err
	}
	if err := requireDynamic(k, "flow", flow); err != nil {
		return err
	}
	if effort == flow {
		return portErr(k, "effort and flow must differ")
	}
	return nil
}

func (p *Port) Kind() Kind   { return p.kind }
func (p *Port) Name() string { return p.name }

// Effort is the effort symbol; for two-ports, the input side's.
func (p *Port) Effort() symbolic.Symbol { return p.effort }

// Flow is the flow symbol; for two-ports, the input side's. Zero for an
// EffortSource built without WithFlow.
func (p *Port) Flow() symbolic.Symbol { return p.flow }

// ConstitutiveEquation is the port law; for two-ports the effort coupling.
func (p *Port) ConstitutiveEquation() symbolic.Equation { return p.laws[0] }

// Equations lists every law the port contributes.
func (p *Port) Equations() []symbolic.Equation {
	out := make([]symbolic.Equation, len(p.laws))
	copy(out, p.laws)
	return out
}

// State is the displacement of a Compliance or the flow of an Inertia.
func (p *Port) State() (symbolic.Symbol, bool) {
	return p.state, p.kind.IsStorage()
}

// StateDerivativeEquation is d(state)/dt expressed in the port's own
// variables: d(x)/dt = flow for a Compliance, the law solved for d(v)/dt
// for an Inertia.
func (p *Port) StateDerivativeEquation() (symbolic.Equation, bool) {
	return p.deriv, p.kind.IsStorage()
}

// Input is the externally driven symbol of a source.
func (p *Port) Input() (symbolic.Symbol, bool) {
	switch p.kind {
	case EffortSource:
		return p.effort, true
	case FlowSource:
		return p.flow, true
	}
	return symbolic.Symbol{}, false
}

// Ratio is the two-port modulus; zero for one-ports.
func (p *Port) Ratio() symbolic.Expr { return p.ratio }

func (p *Port) InputPair() Pair { return Pair{Effort: p.effort, Flow: p.flow} }

func (p *Port) OutputPair() Pair { return p.out }

// InputSide and OutputSide address the two ends of a two-port for
// attachment. On one-ports they yield sides that fail to attach.
func (p *Port) InputSide() Side  { return Side{port: p, end: InputEnd} }
func (p *Port) OutputSide() Side { return Side{port: p, end: OutputEnd} }

// variables are the port's own dynamic symbols, excluded from parameters.
func (p *Port) variables() []symbolic.Symbol {
	vars := []symbolic.Symbol{p.effort, p.flow, p.state, p.out.Effort, p.out.Flow}
	out := vars[:0]
	for _, s := range vars {
		if !s.IsZero() {
			out = append(out, s)
		}
	}
	return out
}

func (p *Port) Label() string { return p.describe() }

func (p *Port) describe() string {
	if p == nil {
		return "<nil>"
	}
	if p.name != "" {
		return p.kind.Label() + ":" + p.name
	}
	return p.kind.Label()
}

func (p *Port) String() string {
	return p.describe() + " " + p.laws[0].String()
}

// End selects one side of a two-port.
type End int

const (
	InputEnd End = iota
	OutputEnd
)

func (e End) String() string {
	if e == OutputEnd {
		return "output"
	}
	return "input"
}

// Side is one end of a two-port, attachable on its own.
type Side struct {
	port *Port
	end  End
}

func (s Side) Port() *Port { return s.port }
func (s Side) End() End    { return s.end }

func (s Side) Pair() Pair {
	if s.end == OutputEnd {
		return s.port.out
	}
	return s.port.InputPair()
}

func (s Side) describe() string {
	if s.port == nil {
		return "side:<nil>"
	}
	return s.port.describe() + "." + s.end.String()
}
