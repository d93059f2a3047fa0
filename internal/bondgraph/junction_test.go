package bondgraph_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bondsim/internal/bondgraph"
	"github.com/san-kum/bondsim/internal/symbolic"
)

var _ = Describe("Junction", func() {
	var c canonical

	BeforeEach(func() {
		c = newCanonical()
	})

	It("keeps bonds in construction order", func() {
		Expect(c.j.Len()).To(Equal(4))
		labels := []string{}
		for i, bd := range c.j.Bonds() {
			Expect(bd.Position()).To(Equal(i))
			Expect(bd.Owner()).To(BeIdenticalTo(c.j))
			labels = append(labels, bd.Label())
		}
		Expect(labels).To(Equal([]string{"R", "C", "I", "Se"}))
		Expect(c.j.Kind().Label()).To(Equal("1"))
	})

	It("points sources inward and passive ports outward", func() {
		bonds := c.j.Bonds()
		Expect(bonds[0].PowerDirection()).To(Equal(1))
		Expect(bonds[3].PowerDirection()).To(Equal(-1))
		Expect(bonds[3].Port()).To(BeIdenticalTo(c.force))
	})

	Describe("classification", func() {
		It("finds states in bond order", func() {
			Expect(c.j.States()).To(Equal([]symbolic.Symbol{x, v}))
		})

		It("finds the source input", func() {
			Expect(c.j.Inputs()).To(Equal([]symbolic.Symbol{F}))
		})

		It("finds the law coefficients as parameters", func() {
			Expect(c.j.Parameters()).To(Equal([]symbolic.Symbol{b, k, m}))
		})
	})

	Describe("RemoveBond", func() {
		It("drops exactly the removed contribution", func() {
			ids := []int{}
			for _, bd := range c.j.Bonds() {
				ids = append(ids, bd.ID())
			}
			removed, err := c.j.RemoveBond(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed.Port()).To(BeIdenticalTo(c.spring))
			Expect(removed.Position()).To(Equal(-1))

			rest := c.j.Bonds()
			Expect(rest).To(HaveLen(3))
			Expect([]int{rest[0].ID(), rest[1].ID(), rest[2].ID()}).To(Equal([]int{ids[0], ids[2], ids[3]}))
			Expect(rest[1].Position()).To(Equal(1))

			Expect(c.j.States()).To(Equal([]symbolic.Symbol{v}))
			Expect(c.j.Parameters()).To(Equal([]symbolic.Symbol{b, m}))
		})

		It("leaves the port reusable", func() {
			_, err := c.j.RemoveBond(3)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.j.Inputs()).To(BeEmpty())

			bd, err := c.j.AddInput(c.force)
			Expect(err).NotTo(HaveOccurred())
			Expect(bd.Position()).To(Equal(3))
			Expect(c.j.Inputs()).To(Equal([]symbolic.Symbol{F}))
		})

		It("rejects positions outside the sequence", func() {
			_, err := c.j.RemoveBond(4)
			Expect(err).To(MatchError(bondgraph.ErrBondIndex))
			_, err = c.j.Bond(-1)
			Expect(err).To(MatchError(bondgraph.ErrBondIndex))
		})
	})

	Describe("attachment errors", func() {
		It("rejects a second effort source on an effort junction", func() {
			s1, _ := bondgraph.NewEffortSource(F)
			s2, _ := bondgraph.NewEffortSource(T)
			g := bondgraph.New()
			_, err := g.EffortJunction(s1, s2)
			Expect(err).To(MatchError(bondgraph.ErrIncompatibleCausality))

			var ae *bondgraph.AttachError
			Expect(errors.As(err, &ae)).To(BeTrue())
			Expect(ae.Position).To(Equal(1))

			j, err := g.EffortJunction(s1)
			Expect(err).NotTo(HaveOccurred())
			_, err = j.AddInput(s2)
			Expect(err).To(MatchError(bondgraph.ErrIncompatibleCausality))
			Expect(j.Len()).To(Equal(1))
		})

		It("rejects linking two effort junctions that are each fixed", func() {
			s1, _ := bondgraph.NewEffortSource(F)
			s2, _ := bondgraph.NewEffortSource(T)
			g := bondgraph.New()
			a, err := g.EffortJunction(s1)
			Expect(err).NotTo(HaveOccurred())
			bj, err := g.EffortJunction(s2)
			Expect(err).NotTo(HaveOccurred())
			_, err = a.AddInput(bj)
			Expect(err).To(MatchError(bondgraph.ErrIncompatibleCausality))
		})

		It("allows an effort source on a flow junction next to another", func() {
			s2, _ := bondgraph.NewEffortSource(T)
			_, err := c.j.AddInput(s2)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.j.Inputs()).To(Equal([]symbolic.Symbol{F, T}))
		})

		It("rejects a port bonded twice", func() {
			_, err := c.j.AddInput(c.damper)
			Expect(err).To(MatchError(bondgraph.ErrInvalidTopology))
		})

		It("rejects a junction linked to itself", func() {
			_, err := c.j.AddInput(c.j)
			Expect(err).To(MatchError(bondgraph.ErrCyclicGraph))
		})

		It("rejects a junction from another graph", func() {
			other, err := bondgraph.New().EffortJunction()
			Expect(err).NotTo(HaveOccurred())
			_, err = c.j.AddInput(other)
			Expect(err).To(MatchError(bondgraph.ErrInvalidTopology))
		})

		It("rolls back a failed construction", func() {
			s1, _ := bondgraph.NewEffortSource(F)
			s2, _ := bondgraph.NewEffortSource(T)
			g := bondgraph.New()
			_, err := g.EffortJunction(s1, s2)
			Expect(err).To(HaveOccurred())
			Expect(g.Junctions()).To(BeEmpty())

			j, err := g.EffortJunction(s1)
			Expect(err).NotTo(HaveOccurred())
			Expect(j.Len()).To(Equal(1))
		})
	})

	Describe("linked junctions", func() {
		It("traverses cycles without looping", func() {
			g := c.g
			spring2, _ := bondgraph.NewCompliance(T, symbolic.Dynamic("y"), bondgraph.WithCoefficient(sym(k)))
			zero, err := g.EffortJunction(spring2, c.j)
			Expect(err).NotTo(HaveOccurred())
			_, err = c.j.AddInput(zero)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.j.States()).To(Equal([]symbolic.Symbol{x, v, symbolic.Dynamic("y")}))
			Expect(zero.States()).To(Equal([]symbolic.Symbol{symbolic.Dynamic("y"), x, v}))
		})

		It("synthesizes link variables", func() {
			zero, err := c.g.EffortJunction()
			Expect(err).NotTo(HaveOccurred())
			bd, err := c.j.AddInput(zero)
			Expect(err).NotTo(HaveOccurred())
			Expect(bd.Junction()).To(BeIdenticalTo(zero))
			Expect(bd.Label()).To(Equal("0"))
			Expect(bd.Effort().Name()).To(HavePrefix("e#"))
			Expect(zero.Links()).To(ConsistOf(bd))
		})
	})
})
