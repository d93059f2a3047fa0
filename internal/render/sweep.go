package render

import (
	"errors"
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/bondsim/internal/config"
	"github.com/san-kum/bondsim/internal/symbolic"
)

// SweepOptions sizes a sweep plot.
type SweepOptions struct {
	Points int
	Height int
	Width  int
}

// SweepSamples evaluates rhs at points evenly spaced values of s over
// [from, to], every other symbol taken from bind.
func SweepSamples(rhs symbolic.Expr, s symbolic.Symbol, from, to float64, points int,
	bind map[symbolic.Symbol]float64) ([]float64, error) {
	if points < 2 {
		return nil, errors.New("sweep needs at least two points")
	}
	if !(to > from) {
		return nil, fmt.Errorf("empty sweep range [%g, %g]", from, to)
	}
	env := make(map[symbolic.Symbol]float64, len(bind)+1)
	for k, v := range bind {
		env[k] = v
	}
	step := (to - from) / float64(points-1)
	data := make([]float64, points)
	for i := range data {
		env[s] = from + float64(i)*step
		y, err := rhs.Eval(env)
		if err != nil {
			return nil, err
		}
		data[i] = y
	}
	return data, nil
}

// Sweep plots the right-hand side of eq against s.
func Sweep(eq symbolic.Equation, s symbolic.Symbol, from, to float64,
	bind map[symbolic.Symbol]float64, opts SweepOptions) (string, error) {
	data, err := SweepSamples(eq.RHS, s, from, to, opts.Points, bind)
	if err != nil {
		return "", fmt.Errorf("sweep %s over %s: %w", eq.LHS, s, err)
	}
	if opts.Height <= 0 {
		opts.Height = 12
	}
	if opts.Width <= 0 {
		opts.Width = 60
	}
	caption := fmt.Sprintf("%s for %s in [%g, %g]", Notate(eq.LHS.String(), config.NotationDot), s, from, to)
	return asciigraph.Plot(data,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption),
	), nil
}
