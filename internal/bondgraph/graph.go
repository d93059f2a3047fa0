package bondgraph

import (
	"github.com/hashicorp/go-hclog"

	"github.com/san-kum/bondsim/internal/symbolic"
)

// Graph is the arena owning every junction and bond built through it.
// It is not safe for concurrent mutation.
type Graph struct {
	log       hclog.Logger
	junctions []*Junction
	nextBond  int

	// attachment indexes: one bond per one-port, one per two-port side
	ports  map[*Port]*Bond
	sides  map[*Port][2]*Bond
	states map[symbolic.Symbol]*Bond
}

type GraphOption func(*Graph)

// WithLogger routes derivation tracing to l.
func WithLogger(l hclog.Logger) GraphOption {
	return func(g *Graph) {
		if l != nil {
			g.log = l
		}
	}
}

func New(opts ...GraphOption) *Graph {
	g := &Graph{
		log:    hclog.NewNullLogger(),
		ports:  make(map[*Port]*Bond),
		sides:  make(map[*Port][2]*Bond),
		states: make(map[symbolic.Symbol]*Bond),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Junctions lists every junction created in the graph, in creation order.
func (g *Graph) Junctions() []*Junction {
	out := make([]*Junction, len(g.junctions))
	copy(out, g.junctions)
	return out
}

// NewJunction builds a junction whose bonds are elems in order. Ports are
// bonded outward except sources, which supply power inward. A bare
// two-port attaches its input side. A junction argument becomes a link
// bond owned by the new junction. On error nothing is attached.
func (g *Graph) NewJunction(kind JunctionKind, elems ...Element) (*Junction, error) {
	if kind != CommonEffort && kind != CommonFlow {
		return nil, &AttachError{Junction: len(g.junctions), Position: -1, Element: kind.String(), Wrapped: ErrInvalidTopology}
	}
	j := &Junction{id: len(g.junctions), kind: kind, graph: g}
	for i, el := range elems {
		if _, err := j.attach(el, false); err != nil {
			for len(j.bonds) > 0 {
				g.detach(j.bonds[len(j.bonds)-1])
				j.bonds = j.bonds[:len(j.bonds)-1]
			}
			return nil, &AttachError{Junction: j.id, Position: i, Element: describe(el), Wrapped: err}
		}
	}
	g.junctions = append(g.junctions, j)
	g.log.Debug("junction created", "junction", j.describe(), "bonds", len(j.bonds))
	return j, nil
}

// EffortJunction builds a 0-junction: common effort, flows sum to zero.
func (g *Graph) EffortJunction(elems ...Element) (*Junction, error) {
	return g.NewJunction(CommonEffort, elems...)
}

// FlowJunction builds a 1-junction: common flow, efforts sum to zero.
func (g *Graph) FlowJunction(elems ...Element) (*Junction, error) {
	return g.NewJunction(CommonFlow, elems...)
}

// register records b in the attachment indexes.
func (g *Graph) register(b *Bond) {
	switch {
	case b.peer != nil:
		b.peer.links = append(b.peer.links, b)
	case b.port.kind.IsTwoPort():
		s := g.sides[b.port]
		s[b.end] = b
		g.sides[b.port] = s
	default:
		g.ports[b.port] = b
		if st, ok := b.port.State(); ok {
			g.states[st] = b
		}
	}
}

// detach undoes register; the port stays usable elsewhere.
func (g *Graph) detach(b *Bond) {
	switch {
	case b.peer != nil:
		links := b.peer.links
		for i, l := range links {
			if l == b {
				b.peer.links = append(links[:i:i], links[i+1:]...)
				break
			}
		}
	case b.port.kind.IsTwoPort():
		s := g.sides[b.port]
		s[b.end] = nil
		if s[0] == nil && s[1] == nil {
			delete(g.sides, b.port)
		} else {
			g.sides[b.port] = s
		}
	default:
		delete(g.ports, b.port)
		if st, ok := b.port.State(); ok {
			delete(g.states, st)
		}
	}
	b.owner = nil
}

// otherSide is the bond holding the opposite side of a two-port bond.
func (g *Graph) otherSide(b *Bond) *Bond {
	if b.port == nil || !b.port.kind.IsTwoPort() {
		return nil
	}
	return g.sides[b.port][1-b.end]
}

// reach returns the junctions reachable from root in traversal order and
// their owned bonds in the same order. Owned bonds are followed before
// incoming links; a two-port crosses to the junction holding its other
// side. The visited set keeps cycles finite.
func (g *Graph) reach(root *Junction) ([]*Junction, []*Bond) {
	seen := make(map[*Junction]bool)
	var (
		junctions []*Junction
		bonds     []*Bond
	)
	var visit func(*Junction)
	visit = func(n *Junction) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		junctions = append(junctions, n)
		for _, b := range n.bonds {
			bonds = append(bonds, b)
			if b.peer != nil {
				visit(b.peer)
			} else if o := g.otherSide(b); o != nil {
				visit(o.owner)
			}
		}
		for _, l := range n.links {
			visit(l.owner)
		}
	}
	visit(root)
	return junctions, bonds
}

// Element is anything a junction can bond to: *Port, Side or *Junction.
type Element interface {
	describe() string
}

func describe(el Element) string {
	if el == nil {
		return "<nil>"
	}
	return el.describe()
}
