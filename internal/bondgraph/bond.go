package bondgraph

import (
	"fmt"

	"github.com/san-kum/bondsim/internal/symbolic"
)

// Bond carries one effort/flow pair from its owning junction to a port, a
// two-port side or another junction. Bonds are created by junctions only.
type Bond struct {
	id    int
	owner *Junction
	port  *Port
	end   End
	peer  *Junction
	dir   int
}

// ID is stable for the life of the graph; removal never renumbers.
func (b *Bond) ID() int { return b.id }

// Owner is the junction whose sequence holds the bond, nil once removed.
func (b *Bond) Owner() *Junction { return b.owner }

// Port is the attached port (one-port or two-port), nil for junction links.
func (b *Bond) Port() *Port { return b.port }

// Side reports the two-port side this bond holds.
func (b *Bond) Side() (Side, bool) {
	if b.port == nil || !b.port.kind.IsTwoPort() {
		return Side{}, false
	}
	return Side{port: b.port, end: b.end}, true
}

// Junction is the peer of a junction-to-junction bond.
func (b *Bond) Junction() *Junction { return b.peer }

// PowerDirection is +1 when power flows from the owner to the endpoint.
func (b *Bond) PowerDirection() int { return b.dir }

// Position is the bond's index in its owner's sequence, -1 once removed.
func (b *Bond) Position() int {
	if b.owner == nil {
		return -1
	}
	for i, o := range b.owner.bonds {
		if o == b {
			return i
		}
	}
	return -1
}

// Effort is the effort symbol seen at the endpoint. Junction links and
// sources without a named conjugate get a synthesized symbol.
func (b *Bond) Effort() symbolic.Symbol {
	if s := b.pair().Effort; !s.IsZero() {
		return s
	}
	return b.effortVar()
}

// Flow is the flow symbol seen at the endpoint.
func (b *Bond) Flow() symbolic.Symbol {
	if s := b.pair().Flow; !s.IsZero() {
		return s
	}
	return b.flowVar()
}

func (b *Bond) pair() Pair {
	switch {
	case b.port == nil:
		return Pair{}
	case b.port.kind.IsTwoPort():
		return Side{port: b.port, end: b.end}.Pair()
	}
	return b.port.InputPair()
}

// Label is the diagram mnemonic of the endpoint.
func (b *Bond) Label() string {
	if b.peer != nil {
		return b.peer.kind.Label()
	}
	return b.port.kind.Label()
}

// Equation is the law shown for the bond in listings.
func (b *Bond) Equation() (symbolic.Equation, bool) {
	if b.port == nil {
		return symbolic.Equation{}, false
	}
	if b.port.kind.IsTwoPort() && b.end == OutputEnd {
		return b.port.laws[1], true
	}
	return b.port.laws[0], true
}

// Across is the bond holding the opposite side of a two-port, nil when
// that side is unattached or b is not a two-port bond.
func (b *Bond) Across() *Bond {
	if b.owner == nil {
		return nil
	}
	return b.owner.graph.otherSide(b)
}

func (b *Bond) effortVar() symbolic.Symbol { return symbolic.Dynamic(fmt.Sprintf("e#%d", b.id)) }
func (b *Bond) flowVar() symbolic.Symbol   { return symbolic.Dynamic(fmt.Sprintf("f#%d", b.id)) }

// Endpoint describes what the bond attaches its owner to.
func (b *Bond) Endpoint() string {
	if b.peer != nil {
		return b.peer.describe()
	}
	if s, ok := b.Side(); ok {
		return s.describe()
	}
	return b.port.describe()
}

func (b *Bond) String() string {
	arrow := "-->"
	if b.dir < 0 {
		arrow = "<--"
	}
	return fmt.Sprintf("bond %d %s %s %s", b.id, b.owner.describe(), arrow, b.Endpoint())
}
