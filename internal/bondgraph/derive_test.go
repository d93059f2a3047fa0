package bondgraph_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bondsim/internal/bondgraph"
	"github.com/san-kum/bondsim/internal/symbolic"
)

var _ = Describe("StateEquations", func() {
	var c canonical

	BeforeEach(func() {
		c = newCanonical()
	})

	// (F - b*v - x/k)/m
	accel := func(force symbolic.Expr) symbolic.Expr {
		return force.Sub(sym(b).Mul(sym(v))).Sub(sym(x).Div(sym(k))).Div(sym(m))
	}

	It("derives the spring-mass-damper", func() {
		eqs, err := c.j.StateEquations()
		Expect(err).NotTo(HaveOccurred())
		equationsMatch(eqs, []symbolic.Equation{
			symbolic.Eq(sym(x.Diff()), sym(v)),
			symbolic.Eq(sym(v.Diff()), accel(sym(F))),
		})
	})

	It("matches the linear-coefficient construction", func() {
		damper, _ := bondgraph.NewResistor(F, v, bondgraph.WithCoefficient(sym(b)))
		spring, _ := bondgraph.NewCompliance(F, x, bondgraph.WithCoefficient(symbolic.Int(1).Div(sym(k))))
		mass, _ := bondgraph.NewInertia(F, v, bondgraph.WithCoefficient(sym(m)))
		force, _ := bondgraph.NewEffortSource(F)
		j, err := bondgraph.New().FlowJunction(damper, spring, mass, force)
		Expect(err).NotTo(HaveOccurred())

		got, err := j.StateEquations()
		Expect(err).NotTo(HaveOccurred())
		want, err := c.j.StateEquations()
		Expect(err).NotTo(HaveOccurred())
		equationsMatch(got, want)
	})

	It("is idempotent", func() {
		first, err := c.j.StateEquations()
		Expect(err).NotTo(HaveOccurred())
		second, err := c.j.StateEquations()
		Expect(err).NotTo(HaveOccurred())
		equationsMatch(second, first)
		for i := range first {
			Expect(second[i].String()).To(Equal(first[i].String()))
		}
	})

	It("reflects a removed bond", func() {
		_, err := c.j.RemoveBond(0)
		Expect(err).NotTo(HaveOccurred())
		eqs, err := c.j.StateEquations()
		Expect(err).NotTo(HaveOccurred())
		equationsMatch(eqs, []symbolic.Equation{
			symbolic.Eq(sym(x.Diff()), sym(v)),
			symbolic.Eq(sym(v.Diff()), sym(F).Sub(sym(x).Div(sym(k))).Div(sym(m))),
		})
	})

	Describe("transformer splice", func() {
		var wheel *bondgraph.Port

		BeforeEach(func() {
			var err error
			wheel, err = bondgraph.NewTransformer(
				bondgraph.Pair{Effort: T, Flow: omega}, bondgraph.Pair{Effort: F, Flow: v},
				bondgraph.WithCoefficient(sym(R)))
			Expect(err).NotTo(HaveOccurred())
			_, err = c.j.RemoveBond(3)
			Expect(err).NotTo(HaveOccurred())
			bd, err := c.j.AddInput(wheel)
			Expect(err).NotTo(HaveOccurred())
			Expect(bd.PowerDirection()).To(Equal(-1))
			side, ok := bd.Side()
			Expect(ok).To(BeTrue())
			Expect(side.End()).To(Equal(bondgraph.OutputEnd))
		})

		It("is underdetermined while the transformer input dangles", func() {
			_, err := c.j.StateEquations()
			Expect(err).To(MatchError(bondgraph.ErrUnderdetermined))
			var de *bondgraph.DerivationError
			Expect(errors.As(err, &de)).To(BeTrue())
			Expect(de.Free).NotTo(BeEmpty())
		})

		It("scales the driving term by the ratio", func() {
			torque, _ := bondgraph.NewEffortSource(T)
			root, err := c.g.EffortJunction(torque, wheel.InputSide())
			Expect(err).NotTo(HaveOccurred())

			Expect(root.States()).To(Equal([]symbolic.Symbol{x, v}))
			Expect(root.Inputs()).To(Equal([]symbolic.Symbol{T}))
			Expect(root.Parameters()).To(Equal([]symbolic.Symbol{R, b, k, m}))

			want := []symbolic.Equation{
				symbolic.Eq(sym(x.Diff()), sym(v)),
				symbolic.Eq(sym(v.Diff()), accel(sym(R).Mul(sym(T)))),
			}
			eqs, err := root.StateEquations()
			Expect(err).NotTo(HaveOccurred())
			equationsMatch(eqs, want)

			eqs, err = c.j.StateEquations()
			Expect(err).NotTo(HaveOccurred())
			equationsMatch(eqs, want)
		})
	})

	It("couples an electrical and a mechanical side through a gyrator", func() {
		u, i, tau, w, V := symbolic.Dynamic("u"), symbolic.Dynamic("i"), symbolic.Dynamic("tau"),
			symbolic.Dynamic("w"), symbolic.Dynamic("V")
		Ra, L, K, J := symbolic.NewSymbol("Ra"), symbolic.NewSymbol("L"), symbolic.NewSymbol("K"), symbolic.NewSymbol("J")

		supply, _ := bondgraph.NewEffortSource(V)
		armature, _ := bondgraph.NewResistor(u, i, bondgraph.WithCoefficient(sym(Ra)))
		winding, _ := bondgraph.NewInertia(u, i, bondgraph.WithCoefficient(sym(L)))
		motor, err := bondgraph.NewGyrator(bondgraph.Pair{Effort: u, Flow: i}, bondgraph.Pair{Effort: tau, Flow: w},
			bondgraph.WithCoefficient(sym(K)))
		Expect(err).NotTo(HaveOccurred())
		rotor, _ := bondgraph.NewInertia(tau, w, bondgraph.WithCoefficient(sym(J)))
		friction, _ := bondgraph.NewResistor(tau, w, bondgraph.WithCoefficient(sym(b)))

		g := bondgraph.New()
		elec, err := g.FlowJunction(supply, armature, winding, motor)
		Expect(err).NotTo(HaveOccurred())
		mech, err := g.FlowJunction(rotor, friction)
		Expect(err).NotTo(HaveOccurred())
		_, err = mech.AddInput(motor)
		Expect(err).NotTo(HaveOccurred())

		Expect(elec.States()).To(Equal([]symbolic.Symbol{i, w}))
		Expect(elec.Parameters()).To(Equal([]symbolic.Symbol{J, K, L, Ra, b}))

		eqs, err := elec.StateEquations()
		Expect(err).NotTo(HaveOccurred())
		equationsMatch(eqs, []symbolic.Equation{
			symbolic.Eq(sym(i.Diff()), sym(V).Sub(sym(Ra).Mul(sym(i))).Sub(sym(K).Mul(sym(w))).Div(sym(L))),
			symbolic.Eq(sym(w.Diff()), sym(K).Mul(sym(i)).Sub(sym(b).Mul(sym(w))).Div(sym(J))),
		})
	})

	It("derives a parallel RC circuit on an effort junction", func() {
		e, q, I := symbolic.Dynamic("e"), symbolic.Dynamic("q"), symbolic.Dynamic("I")
		Rr, C := symbolic.NewSymbol("Rr"), symbolic.NewSymbol("C")
		iR, iC := symbolic.Dynamic("iR"), symbolic.Dynamic("iC")

		source, _ := bondgraph.NewFlowSource(I)
		resistor, _ := bondgraph.NewResistor(e, iR, bondgraph.WithEquation(symbolic.Eq(sym(iR), sym(e).Div(sym(Rr)))))
		capacitor, _ := bondgraph.NewCompliance(e, q, bondgraph.WithCoefficient(symbolic.Int(1).Div(sym(C))),
			bondgraph.WithFlow(iC))
		j, err := bondgraph.New().EffortJunction(source, resistor, capacitor)
		Expect(err).NotTo(HaveOccurred())

		eqs, err := j.StateEquations()
		Expect(err).NotTo(HaveOccurred())
		equationsMatch(eqs, []symbolic.Equation{
			symbolic.Eq(sym(q.Diff()), sym(I).Sub(sym(q).Div(sym(Rr).Mul(sym(C))))),
		})
	})

	It("reports contradictory storage as overdetermined", func() {
		second, _ := bondgraph.NewInertia(F, symbolic.Dynamic("v2"), bondgraph.WithCoefficient(sym(m)))
		_, err := c.j.AddInput(second)
		Expect(err).NotTo(HaveOccurred())

		_, err = c.j.StateEquations()
		Expect(err).To(MatchError(bondgraph.ErrOverdetermined))
		var de *bondgraph.DerivationError
		Expect(errors.As(err, &de)).To(BeTrue())
		Expect(de.Residual).NotTo(BeEmpty())
	})

	It("accepts a flow source beside an inertia and reports the conflict on derivation", func() {
		Q := symbolic.Dynamic("Q")
		pump, _ := bondgraph.NewFlowSource(Q)
		_, err := c.j.AddInput(pump)
		Expect(err).NotTo(HaveOccurred())

		_, err = c.j.StateEquations()
		Expect(err).To(MatchError(bondgraph.ErrOverdetermined))
		var de *bondgraph.DerivationError
		Expect(errors.As(err, &de)).To(BeTrue())
		Expect(de.Residual).To(ContainElement(Satisfy(func(q symbolic.Equation) bool { return q.Contains(Q) })))
	})

	It("reports a law it cannot isolate", func() {
		e, f, I := symbolic.Dynamic("e"), symbolic.Dynamic("f"), symbolic.Dynamic("I")
		square, err := bondgraph.NewResistor(e, f,
			bondgraph.WithEquation(symbolic.Eq(sym(e).Pow(2), sym(b).Mul(sym(f)))))
		Expect(err).NotTo(HaveOccurred())
		source, _ := bondgraph.NewFlowSource(I)
		j, err := bondgraph.New().EffortJunction(source, square)
		Expect(err).NotTo(HaveOccurred())

		_, err = j.StateEquations()
		Expect(err).To(MatchError(bondgraph.ErrNoSolution))
		var de *bondgraph.DerivationError
		Expect(errors.As(err, &de)).To(BeTrue())
		Expect(de.Residual).To(HaveLen(1))
	})

	It("returns the full derivation", func() {
		d, err := c.j.Derive()
		Expect(err).NotTo(HaveOccurred())
		Expect(d.States).To(Equal([]symbolic.Symbol{x, v}))
		Expect(d.Inputs).To(Equal([]symbolic.Symbol{F}))
		Expect(d.Parameters).To(Equal([]symbolic.Symbol{b, k, m}))
		Expect(d.Equations).To(HaveLen(2))
	})
})
