package models

import (
	"context"
	"sync"

	"github.com/san-kum/bondsim/internal/bondgraph"
)

// Outcome is the result of deriving one registered model.
type Outcome struct {
	Name       string
	Model      *Model
	Derivation *bondgraph.Derivation
	Err        error
}

// DeriveAll builds and derives the named models concurrently, one
// goroutine per model. Every model gets its own graph. Outcomes keep the
// order of names; a cancelled context fails the models not yet started.
func (r *Registry) DeriveAll(ctx context.Context, names []string, opts ...bondgraph.GraphOption) []Outcome {
	out := make([]Outcome, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		out[i].Name = name
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				out[idx].Err = err
				return
			}
			m, err := r.Build(names[idx], opts...)
			if err != nil {
				out[idx].Err = err
				return
			}
			out[idx].Model = m
			out[idx].Derivation, out[idx].Err = m.Derive()
		}(i)
	}

	wg.Wait()
	return out
}
