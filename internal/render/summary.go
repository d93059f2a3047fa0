package render

import (
	"strings"

	"github.com/san-kum/bondsim/internal/bondgraph"
	"github.com/san-kum/bondsim/internal/symbolic"
)

const summaryWidth = 64

// Summary renders a derivation as a titled box: the classification on
// top, then the state equations.
func Summary(title string, d *bondgraph.Derivation, notation string) string {
	var sb strings.Builder
	row := func(name string, syms []symbolic.Symbol) {
		sb.WriteString(Label.Render(name + ": "))
		sb.WriteString(Value.Render(joinSymbols(syms)))
		sb.WriteByte('\n')
	}
	row("states    ", d.States)
	row("inputs    ", d.Inputs)
	row("parameters", d.Parameters)
	sb.WriteByte('\n')
	for _, eq := range d.Equations {
		sb.WriteString(Equation(eq, notation))
		sb.WriteByte('\n')
	}
	return BoxWithTitle(title, strings.TrimRight(sb.String(), "\n"), summaryWidth)
}

func joinSymbols(syms []symbolic.Symbol) string {
	if len(syms) == 0 {
		return "-"
	}
	names := make([]string, len(syms))
	for i, s := range syms {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}
