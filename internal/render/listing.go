package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/san-kum/bondsim/internal/bondgraph"
	"github.com/san-kum/bondsim/internal/config"
	"github.com/san-kum/bondsim/internal/symbolic"
)

var derivative = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_#]*)('+)`)

// Notate rewrites the prime marks of a printed expression. In dot notation
// a first derivative gets a combining dot above and a second one a
// diaeresis; higher orders keep their primes.
func Notate(s, notation string) string {
	if notation != config.NotationDot {
		return s
	}
	return derivative.ReplaceAllStringFunc(s, func(m string) string {
		sub := derivative.FindStringSubmatch(m)
		switch len(sub[2]) {
		case 1:
			return sub[1] + "\u0307"
		case 2:
			return sub[1] + "\u0308"
		}
		return m
	})
}

func Equation(eq symbolic.Equation, notation string) string {
	return Notate(eq.String(), notation)
}

// Equations prints one equation per line.
func Equations(eqs []symbolic.Equation, notation string) string {
	var sb strings.Builder
	for _, eq := range eqs {
		sb.WriteString(Equation(eq, notation))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Bonds lists the junction's bonds by position with the law of each
// endpoint, in dot notation. Junction links show the linked junction.
//
//	Bonds attached to this flow junction (4):
//	0 : F = b*v
func Bonds(j *bondgraph.Junction) string {
	return BondsIn(j, config.NotationDot)
}

func BondsIn(j *bondgraph.Junction, notation string) string {
	bonds := j.Bonds()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Bonds attached to this %s junction (%d):\n", j.Kind(), len(bonds))
	for i, b := range bonds {
		fmt.Fprintf(&sb, "%d : %s\n", i, BondLine(b, notation))
	}
	return sb.String()
}

// BondLine is the text after the position in a bond listing.
func BondLine(b *bondgraph.Bond, notation string) string {
	if eq, ok := b.Equation(); ok {
		return Equation(eq, notation)
	}
	arrow := "->"
	if b.PowerDirection() < 0 {
		arrow = "<-"
	}
	return arrow + " " + b.Endpoint()
}
