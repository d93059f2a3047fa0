// Package symbolic is the small computer-algebra kernel behind bond-graph
// derivation.
//
// It provides exactly what equation elimination needs:
//
//   - [Symbol]: constant or time-varying (dynamic) quantities, with
//     derivative order for dynamic ones
//   - [Expr]: exact rational functions with math/big coefficients
//   - [Equation]: LHS = RHS with substitution and single-unknown solving
//   - [Parse]: arithmetic in HCL expression syntax, der(x) for dx/dt
//
// # Example
//
//	x, v := symbolic.Dynamic("x"), symbolic.Dynamic("v")
//	k := symbolic.NewSymbol("k")
//	force := symbolic.Sym(x).Div(symbolic.Sym(k))
//	eq := symbolic.Eq(symbolic.Sym(v.Diff()), force.Neg())
//
// Elementary functions (sin, exp, ...) are not modelled; laws must be
// rational in their symbols.
package symbolic
