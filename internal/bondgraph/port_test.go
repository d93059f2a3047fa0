package bondgraph_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bondsim/internal/bondgraph"
	"github.com/san-kum/bondsim/internal/symbolic"
)

var _ = Describe("Port", func() {
	Describe("law and linear coefficient", func() {
		DescribeTable("equivalent forms build equal laws",
			func(byLaw, byCoeff func() (*bondgraph.Port, error)) {
				a, err := byLaw()
				Expect(err).NotTo(HaveOccurred())
				c, err := byCoeff()
				Expect(err).NotTo(HaveOccurred())
				Expect(a.ConstitutiveEquation().Equal(c.ConstitutiveEquation())).To(BeTrue(),
					"%s vs %s", a.ConstitutiveEquation(), c.ConstitutiveEquation())
			},
			Entry("resistor",
				func() (*bondgraph.Port, error) {
					return bondgraph.NewResistor(F, v, bondgraph.WithLaw(sym(b).Mul(sym(v))))
				},
				func() (*bondgraph.Port, error) {
					return bondgraph.NewResistor(F, v, bondgraph.WithCoefficient(sym(b)))
				}),
			Entry("compliance",
				func() (*bondgraph.Port, error) {
					return bondgraph.NewCompliance(F, x, bondgraph.WithLaw(sym(x).Div(sym(k))))
				},
				func() (*bondgraph.Port, error) {
					return bondgraph.NewCompliance(F, x, bondgraph.WithCoefficient(symbolic.Int(1).Div(sym(k))))
				}),
			Entry("inertia",
				func() (*bondgraph.Port, error) {
					return bondgraph.NewInertia(F, v, bondgraph.WithLaw(sym(m).Mul(sym(v.Diff()))))
				},
				func() (*bondgraph.Port, error) {
					return bondgraph.NewInertia(F, v, bondgraph.WithCoefficient(sym(m)))
				}),
		)

		It("accepts a full equation mentioning the effort", func() {
			p, err := bondgraph.NewResistor(F, v,
				bondgraph.WithEquation(symbolic.Eq(sym(b).Mul(sym(v)), sym(F))))
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ConstitutiveEquation().Equivalent(symbolic.Eq(sym(F), sym(b).Mul(sym(v))))).To(BeTrue())
		})
	})

	DescribeTable("rejects malformed specifications",
		func(build func() (*bondgraph.Port, error)) {
			p, err := build()
			Expect(p).To(BeNil())
			Expect(err).To(MatchError(bondgraph.ErrInvalidPortSpec))
			var pe *bondgraph.PortError
			Expect(errors.As(err, &pe)).To(BeTrue())
		},
		Entry("law and coefficient together", func() (*bondgraph.Port, error) {
			return bondgraph.NewResistor(F, v, bondgraph.WithLaw(sym(v)), bondgraph.WithCoefficient(sym(b)))
		}),
		Entry("neither law nor coefficient", func() (*bondgraph.Port, error) {
			return bondgraph.NewResistor(F, v)
		}),
		Entry("compliance law without displacement", func() (*bondgraph.Port, error) {
			return bondgraph.NewCompliance(F, x, bondgraph.WithLaw(sym(k)))
		}),
		Entry("inertia law without flow rate", func() (*bondgraph.Port, error) {
			return bondgraph.NewInertia(F, v, bondgraph.WithLaw(sym(m).Mul(sym(v))))
		}),
		Entry("equation not mentioning effort", func() (*bondgraph.Port, error) {
			return bondgraph.NewResistor(F, v, bondgraph.WithEquation(symbolic.Eq(sym(v), sym(b))))
		}),
		Entry("constant effort symbol", func() (*bondgraph.Port, error) {
			return bondgraph.NewResistor(symbolic.NewSymbol("F"), v, bondgraph.WithCoefficient(sym(b)))
		}),
		Entry("missing flow symbol", func() (*bondgraph.Port, error) {
			return bondgraph.NewInertia(F, symbolic.Symbol{}, bondgraph.WithCoefficient(sym(m)))
		}),
		Entry("source with a coefficient", func() (*bondgraph.Port, error) {
			return bondgraph.NewEffortSource(F, bondgraph.WithCoefficient(sym(b)))
		}),
		Entry("two-port with a law", func() (*bondgraph.Port, error) {
			return bondgraph.NewTransformer(bondgraph.Pair{Effort: T, Flow: omega}, bondgraph.Pair{Effort: F, Flow: v},
				bondgraph.WithLaw(sym(R)))
		}),
		Entry("two-port without a ratio", func() (*bondgraph.Port, error) {
			return bondgraph.NewGyrator(bondgraph.Pair{Effort: T, Flow: omega}, bondgraph.Pair{Effort: F, Flow: v})
		}),
		Entry("resistor with a flow option", func() (*bondgraph.Port, error) {
			return bondgraph.NewResistor(F, v, bondgraph.WithCoefficient(sym(b)), bondgraph.WithFlow(omega))
		}),
		Entry("inertia with a flow option", func() (*bondgraph.Port, error) {
			return bondgraph.NewInertia(F, v, bondgraph.WithCoefficient(sym(m)), bondgraph.WithFlow(omega))
		}),
		Entry("flow source with a flow option", func() (*bondgraph.Port, error) {
			return bondgraph.NewFlowSource(v, bondgraph.WithFlow(omega))
		}),
		Entry("two-port with a flow option", func() (*bondgraph.Port, error) {
			return bondgraph.NewGyrator(bondgraph.Pair{Effort: T, Flow: omega}, bondgraph.Pair{Effort: F, Flow: v},
				bondgraph.WithCoefficient(sym(R)), bondgraph.WithFlow(x))
		}),
		Entry("two-port reusing a symbol", func() (*bondgraph.Port, error) {
			return bondgraph.NewTransformer(bondgraph.Pair{Effort: F, Flow: omega}, bondgraph.Pair{Effort: F, Flow: v},
				bondgraph.WithCoefficient(sym(R)))
		}),
	)

	Describe("storage ports", func() {
		It("gives a compliance its displacement state", func() {
			spring, err := bondgraph.NewCompliance(F, x, bondgraph.WithCoefficient(sym(k)))
			Expect(err).NotTo(HaveOccurred())
			st, ok := spring.State()
			Expect(ok).To(BeTrue())
			Expect(st).To(Equal(x))
			Expect(spring.Flow()).To(Equal(x.Diff()))

			deriv, ok := spring.StateDerivativeEquation()
			Expect(ok).To(BeTrue())
			Expect(deriv.Equal(symbolic.Eq(sym(x.Diff()), sym(x.Diff())))).To(BeTrue())
		})

		It("uses an explicit compliance flow", func() {
			spring, err := bondgraph.NewCompliance(F, x, bondgraph.WithCoefficient(sym(k)), bondgraph.WithFlow(v))
			Expect(err).NotTo(HaveOccurred())
			deriv, _ := spring.StateDerivativeEquation()
			Expect(deriv.Equal(symbolic.Eq(sym(x.Diff()), sym(v)))).To(BeTrue())
		})

		It("solves the inertia law for the flow rate", func() {
			mass, err := bondgraph.NewInertia(F, v, bondgraph.WithCoefficient(sym(m)))
			Expect(err).NotTo(HaveOccurred())
			st, _ := mass.State()
			Expect(st).To(Equal(v))
			deriv, ok := mass.StateDerivativeEquation()
			Expect(ok).To(BeTrue())
			Expect(deriv.Equal(symbolic.Eq(sym(v.Diff()), sym(F).Div(sym(m))))).To(BeTrue())
		})

		It("has no state on a resistor", func() {
			damper, err := bondgraph.NewResistor(F, v, bondgraph.WithCoefficient(sym(b)))
			Expect(err).NotTo(HaveOccurred())
			_, ok := damper.State()
			Expect(ok).To(BeFalse())
			_, ok = damper.StateDerivativeEquation()
			Expect(ok).To(BeFalse())
		})
	})

	It("reports source inputs", func() {
		force, err := bondgraph.NewEffortSource(F)
		Expect(err).NotTo(HaveOccurred())
		in, ok := force.Input()
		Expect(ok).To(BeTrue())
		Expect(in).To(Equal(F))
		Expect(force.ConstitutiveEquation().String()).To(Equal("F = F"))

		vel, err := bondgraph.NewFlowSource(v)
		Expect(err).NotTo(HaveOccurred())
		in, _ = vel.Input()
		Expect(in).To(Equal(v))
	})

	It("builds both two-port couplings", func() {
		in, out := bondgraph.Pair{Effort: T, Flow: omega}, bondgraph.Pair{Effort: F, Flow: v}
		wheel, err := bondgraph.NewTransformer(in, out, bondgraph.WithCoefficient(sym(R)))
		Expect(err).NotTo(HaveOccurred())
		eqs := wheel.Equations()
		Expect(eqs).To(HaveLen(2))
		Expect(eqs[0].Equal(symbolic.Eq(sym(F), sym(R).Mul(sym(T))))).To(BeTrue())
		Expect(eqs[1].Equal(symbolic.Eq(sym(omega), sym(R).Mul(sym(v))))).To(BeTrue())
		Expect(wheel.InputSide().Pair()).To(Equal(in))
		Expect(wheel.OutputSide().Pair()).To(Equal(out))

		gy, err := bondgraph.NewGyrator(in, out, bondgraph.WithCoefficient(sym(R)))
		Expect(err).NotTo(HaveOccurred())
		eqs = gy.Equations()
		Expect(eqs[0].Equal(symbolic.Eq(sym(F), sym(R).Mul(sym(omega))))).To(BeTrue())
		Expect(eqs[1].Equal(symbolic.Eq(sym(T), sym(R).Mul(sym(v))))).To(BeTrue())
	})

	It("labels kinds", func() {
		Expect(bondgraph.EffortSource.Label()).To(Equal("Se"))
		Expect(bondgraph.Gyrator.Label()).To(Equal("GY"))
		kind, ok := bondgraph.ParseKind("compliance")
		Expect(ok).To(BeTrue())
		Expect(kind).To(Equal(bondgraph.Compliance))
		_, ok = bondgraph.ParseKind("capacitor")
		Expect(ok).To(BeFalse())
	})
})
