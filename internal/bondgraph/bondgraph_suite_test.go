package bondgraph_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bondsim/internal/bondgraph"
	"github.com/san-kum/bondsim/internal/symbolic"
)

func TestBondgraph(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Bondgraph Suite")
}

var (
	x, v, F, T, omega = symbolic.Dynamic("x"), symbolic.Dynamic("v"), symbolic.Dynamic("F"),
		symbolic.Dynamic("T"), symbolic.Dynamic("omega")
	m, k, b, R = symbolic.NewSymbol("m"), symbolic.NewSymbol("k"), symbolic.NewSymbol("b"),
		symbolic.NewSymbol("R")
)

func sym(s symbolic.Symbol) symbolic.Expr { return symbolic.Sym(s) }

// canonical is the spring-mass-damper driven by a force on a 1-junction.
type canonical struct {
	g                            *bondgraph.Graph
	j                            *bondgraph.Junction
	damper, spring, mass, force *bondgraph.Port
}

func newCanonical() canonical {
	damper, err := bondgraph.NewResistor(F, v, bondgraph.WithLaw(sym(b).Mul(sym(v))))
	Expect(err).NotTo(HaveOccurred())
	spring, err := bondgraph.NewCompliance(F, x, bondgraph.WithLaw(sym(x).Div(sym(k))))
	Expect(err).NotTo(HaveOccurred())
	mass, err := bondgraph.NewInertia(F, v, bondgraph.WithLaw(sym(m).Mul(sym(v.Diff()))))
	Expect(err).NotTo(HaveOccurred())
	force, err := bondgraph.NewEffortSource(F)
	Expect(err).NotTo(HaveOccurred())

	g := bondgraph.New()
	j, err := g.FlowJunction(damper, spring, mass, force)
	Expect(err).NotTo(HaveOccurred())
	return canonical{g: g, j: j, damper: damper, spring: spring, mass: mass, force: force}
}

// equationsMatch compares state equations exactly, side by side.
func equationsMatch(got, want []symbolic.Equation) {
	GinkgoHelper()
	Expect(got).To(HaveLen(len(want)))
	for i := range want {
		Expect(got[i].Equal(want[i])).To(BeTrue(), "equation %d: got %s, want %s", i, got[i], want[i])
	}
}
