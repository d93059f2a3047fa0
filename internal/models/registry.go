package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/bondsim/internal/bondgraph"
	"github.com/san-kum/bondsim/internal/config"
)

type Registry struct {
	models map[string]func() *config.ModelSpec
}

// NewRegistry returns a registry holding the built-in models.
func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]func() *config.ModelSpec)}

	r.Register("spring_mass_damper", SpringMassDamper)
	r.Register("wheel_driven", WheelDriven)
	r.Register("rlc_series", RLCSeries)
	r.Register("rc_parallel", RCParallel)
	r.Register("two_mass", TwoMass)
	r.Register("dc_motor", DCMotor)

	return r
}

func (r *Registry) Register(name string, fn func() *config.ModelSpec) {
	r.models[name] = fn
}

func (r *Registry) Get(name string) (*config.ModelSpec, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

// Build looks up and assembles a registered model.
func (r *Registry) Build(name string, opts ...bondgraph.GraphOption) (*Model, error) {
	spec, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return Build(spec, opts...)
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
