package bondgraph

import (
	"fmt"
)

// JunctionKind selects which variable a junction holds in common.
type JunctionKind int

const (
	// CommonEffort is the 0-junction: one effort, flows sum to zero.
	CommonEffort JunctionKind = iota + 1
	// CommonFlow is the 1-junction: one flow, efforts sum to zero.
	CommonFlow
)

func (k JunctionKind) String() string {
	switch k {
	case CommonEffort:
		return "effort"
	case CommonFlow:
		return "flow"
	}
	return "unknown"
}

// Label is the diagram marker, "0" or "1".
func (k JunctionKind) Label() string {
	switch k {
	case CommonEffort:
		return "0"
	case CommonFlow:
		return "1"
	}
	return "?"
}

// ParseJunctionKind accepts effort, flow, 0 or 1.
func ParseJunctionKind(s string) (JunctionKind, bool) {
	switch s {
	case "effort", "0":
		return CommonEffort, true
	case "flow", "1":
		return CommonFlow, true
	}
	return 0, false
}

// fixedBy is the source kind that pins the junction's common variable.
func (k JunctionKind) fixedBy() Kind {
	if k == CommonEffort {
		return EffortSource
	}
	return FlowSource
}

// Junction is a conservation node holding an ordered bond sequence.
type Junction struct {
	id    int
	kind  JunctionKind
	name  string
	graph *Graph
	bonds []*Bond
	links []*Bond
}

func (j *Junction) ID() int            { return j.id }
func (j *Junction) Kind() JunctionKind { return j.kind }
func (j *Junction) Name() string       { return j.name }
func (j *Junction) Graph() *Graph      { return j.graph }

// SetName labels the junction for display.
func (j *Junction) SetName(name string) { j.name = name }

// Bonds is a snapshot of the owned bonds in position order.
func (j *Junction) Bonds() []*Bond {
	out := make([]*Bond, len(j.bonds))
	copy(out, j.bonds)
	return out
}

// Links are the bonds other junctions own that end at j.
func (j *Junction) Links() []*Bond {
	out := make([]*Bond, len(j.links))
	copy(out, j.links)
	return out
}

func (j *Junction) Len() int { return len(j.bonds) }

func (j *Junction) Bond(i int) (*Bond, error) {
	if i < 0 || i >= len(j.bonds) {
		return nil, fmt.Errorf("%w: %d of %d", ErrBondIndex, i, len(j.bonds))
	}
	return j.bonds[i], nil
}

// RemoveBond deletes the bond at position i. Later bonds shift down one
// position; bond IDs never change and the endpoint is left intact.
func (j *Junction) RemoveBond(i int) (*Bond, error) {
	b, err := j.Bond(i)
	if err != nil {
		return nil, err
	}
	j.bonds = append(j.bonds[:i:i], j.bonds[i+1:]...)
	j.graph.detach(b)
	j.graph.log.Debug("bond removed", "junction", j.describe(), "position", i, "bond", b.id)
	return b, nil
}

// AddInput attaches x as an additional bond supplying power to j: sources
// and linked junctions point inward, passive ports outward, and a bare
// two-port attaches its output side.
func (j *Junction) AddInput(x Element) (*Bond, error) {
	b, err := j.attach(x, true)
	if err != nil {
		return nil, &AttachError{Junction: j.id, Position: len(j.bonds), Element: describe(x), Wrapped: err}
	}
	j.graph.log.Debug("input added", "junction", j.describe(), "bond", b.id, "endpoint", b.Endpoint())
	return b, nil
}

func (j *Junction) attach(el Element, input bool) (*Bond, error) {
	g := j.graph
	b := &Bond{owner: j}
	switch x := el.(type) {
	case *Port:
		if x == nil {
			return nil, fmt.Errorf("%w: nil port", ErrInvalidTopology)
		}
		if x.kind.IsTwoPort() {
			end := InputEnd
			if input {
				end = OutputEnd
			}
			return j.attach(Side{port: x, end: end}, input)
		}
		if _, taken := g.ports[x]; taken {
			return nil, fmt.Errorf("%w: port %s is already bonded", ErrInvalidTopology, x.describe())
		}
		if st, ok := x.State(); ok {
			if _, taken := g.states[st]; taken {
				return nil, fmt.Errorf("%w: state %s is already held by another port", ErrInvalidTopology, st)
			}
		}
		b.port, b.dir = x, 1
		if x.kind.IsSource() {
			b.dir = -1
			if x.kind == j.kind.fixedBy() && j.fixedCount() > 0 {
				return nil, fmt.Errorf("%w: %s common %s is already fixed by a source",
					ErrIncompatibleCausality, j.describe(), j.kind)
			}
		}

	case Side:
		if x.port == nil || !x.port.kind.IsTwoPort() {
			return nil, fmt.Errorf("%w: %s is not a two-port side", ErrInvalidTopology, x.describe())
		}
		if g.sides[x.port][x.end] != nil {
			return nil, fmt.Errorf("%w: %s is already bonded", ErrInvalidTopology, x.describe())
		}
		b.port, b.end, b.dir = x.port, x.end, 1
		if x.end == OutputEnd {
			b.dir = -1
		}

	case *Junction:
		switch {
		case x == nil || x.graph != g:
			return nil, fmt.Errorf("%w: junction belongs to another graph", ErrInvalidTopology)
		case x == j:
			return nil, fmt.Errorf("%w: %s linked to itself", ErrCyclicGraph, j.describe())
		}
		if x.kind == j.kind && !j.cluster(nil)[x] {
			if j.fixedCount()+x.fixedCount() > 1 {
				return nil, fmt.Errorf("%w: linking %s merges two sources on one common %s",
					ErrIncompatibleCausality, x.describe(), j.kind)
			}
		}
		b.peer, b.dir = x, 1
		if input {
			b.dir = -1
		}

	default:
		return nil, fmt.Errorf("%w: cannot bond %T", ErrInvalidTopology, el)
	}
	b.id = g.nextBond
	g.nextBond++
	j.bonds = append(j.bonds, b)
	g.register(b)
	return b, nil
}

// cluster is the set of same-kind junctions directly linked to j; they
// share one common variable.
func (j *Junction) cluster(seen map[*Junction]bool) map[*Junction]bool {
	if seen == nil {
		seen = make(map[*Junction]bool)
	}
	if seen[j] {
		return seen
	}
	seen[j] = true
	for _, b := range j.bonds {
		if b.peer != nil && b.peer.kind == j.kind {
			b.peer.cluster(seen)
		}
	}
	for _, l := range j.links {
		if l.owner.kind == j.kind {
			l.owner.cluster(seen)
		}
	}
	return seen
}

// fixedCount counts sources pinning the common variable of j's cluster.
func (j *Junction) fixedCount() int {
	n := 0
	for c := range j.cluster(nil) {
		for _, b := range c.bonds {
			if b.port != nil && b.port.kind == j.kind.fixedBy() {
				n++
			}
		}
	}
	return n
}

// Label is the short display form, "1:body" or "0#2" when unnamed.
func (j *Junction) Label() string { return j.describe() }

func (j *Junction) describe() string {
	if j == nil {
		return "<detached>"
	}
	if j.name != "" {
		return j.kind.Label() + ":" + j.name
	}
	return fmt.Sprintf("%s#%d", j.kind.Label(), j.id)
}

func (j *Junction) String() string {
	return fmt.Sprintf("%s junction %s (%d bonds)", j.kind, j.describe(), len(j.bonds))
}
