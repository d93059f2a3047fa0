// Package bondgraph assembles bond graphs and derives their state-space
// equations.
//
// A [Graph] owns junctions; each [Junction] owns an ordered sequence of
// [Bond] values, one per attached [Port], two-port [Side] or linked
// junction. Junctions come in two kinds:
//
//   - [CommonEffort] (0-junction): one effort, flows sum to zero
//   - [CommonFlow] (1-junction): one flow, efforts sum to zero
//
// Every query recomputes from the current topology, so removing a bond or
// splicing a sub-network is immediately reflected.
//
// # Example
//
//	x, v, F := symbolic.Dynamic("x"), symbolic.Dynamic("v"), symbolic.Dynamic("F")
//	m, k, b := symbolic.NewSymbol("m"), symbolic.NewSymbol("k"), symbolic.NewSymbol("b")
//
//	damper, _ := bondgraph.NewResistor(F, v, bondgraph.WithCoefficient(symbolic.Sym(b)))
//	spring, _ := bondgraph.NewCompliance(F, x, bondgraph.WithLaw(symbolic.Sym(x).Div(symbolic.Sym(k))))
//	mass, _ := bondgraph.NewInertia(F, v, bondgraph.WithCoefficient(symbolic.Sym(m)))
//	force, _ := bondgraph.NewEffortSource(F)
//
//	g := bondgraph.New()
//	j, _ := g.FlowJunction(damper, spring, mass, force)
//	eqs, _ := j.StateEquations() // x' = v, v' = F/m - b*v/m - x/(k*m)
//
// Elimination is linear in one unknown at a time. Systems whose bond
// variables cannot be isolated that way fail with [ErrNoSolution] rather
// than returning a partial result.
package bondgraph
