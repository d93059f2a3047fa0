package models

import (
	"github.com/san-kum/bondsim/internal/config"
)

// Built-in model documents. Each constructor returns a fresh copy so
// callers may edit it.

func SpringMassDamper() *config.ModelSpec {
	return &config.ModelSpec{
		Name:        "spring_mass_damper",
		Description: "mass on a spring and damper, driven by a force",
		Ports: []config.PortSpec{
			{Name: "damper", Kind: "resistor", Effort: "F", Flow: "v", Law: "b*v"},
			{Name: "spring", Kind: "compliance", Effort: "F", Displacement: "x", Law: "x/k"},
			{Name: "mass", Kind: "inertia", Effort: "F", Flow: "v", Law: "m*der(v)"},
			{Name: "force", Kind: "effort_source", Effort: "F"},
		},
		Junctions: []config.JunctionSpec{
			{Name: "body", Kind: "flow", Elements: []string{"damper", "spring", "mass", "force"}},
		},
		Root:   "body",
		Values: map[string]float64{"b": 0.4, "k": 2, "m": 1, "F": 1, "x": 0.5, "v": 0},
	}
}

// WheelDriven replaces the force of SpringMassDamper with a torque acting
// through a wheel of radius ratio R.
func WheelDriven() *config.ModelSpec {
	s := SpringMassDamper()
	s.Name = "wheel_driven"
	s.Description = "spring-mass-damper driven by a torque through a wheel"
	s.Ports = append(s.Ports,
		config.PortSpec{Name: "torque", Kind: "effort_source", Effort: "T"},
		config.PortSpec{
			Name:        "wheel",
			Kind:        "transformer",
			Input:       &config.PairSpec{Effort: "T", Flow: "omega"},
			Output:      &config.PairSpec{Effort: "F", Flow: "v"},
			Coefficient: "R",
		},
	)
	s.Junctions[0].Remove = []int{3}
	s.Junctions[0].Inputs = []string{"wheel"}
	s.Junctions = append(s.Junctions, config.JunctionSpec{
		Name: "drive", Kind: "effort", Elements: []string{"torque", "wheel.input"},
	})
	s.Root = "drive"
	s.Values["T"] = 2
	s.Values["R"] = 0.3
	return s
}

func RLCSeries() *config.ModelSpec {
	return &config.ModelSpec{
		Name:        "rlc_series",
		Description: "voltage source feeding a series resistor, inductor and capacitor",
		Ports: []config.PortSpec{
			{Name: "supply", Kind: "effort_source", Effort: "V"},
			{Name: "resistor", Kind: "resistor", Effort: "u", Flow: "i", Coefficient: "R"},
			{Name: "inductor", Kind: "inertia", Effort: "u", Flow: "i", Coefficient: "L"},
			{Name: "capacitor", Kind: "compliance", Effort: "u", Displacement: "q", Coefficient: "1/C"},
		},
		Junctions: []config.JunctionSpec{
			{Name: "loop", Kind: "flow", Elements: []string{"supply", "resistor", "inductor", "capacitor"}},
		},
		Root:   "loop",
		Values: map[string]float64{"R": 10, "L": 0.5, "C": 0.01, "V": 5, "q": 0, "i": 0},
	}
}

func RCParallel() *config.ModelSpec {
	return &config.ModelSpec{
		Name:        "rc_parallel",
		Description: "current source across a resistor and capacitor in parallel",
		Ports: []config.PortSpec{
			{Name: "supply", Kind: "flow_source", Flow: "I"},
			{Name: "resistor", Kind: "resistor", Effort: "e", Flow: "iR", Coefficient: "R"},
			{Name: "capacitor", Kind: "compliance", Effort: "e", Displacement: "q", Flow: "iC", Law: "q/C"},
		},
		Junctions: []config.JunctionSpec{
			{Name: "node", Kind: "effort", Elements: []string{"supply", "resistor", "capacitor"}},
		},
		Root:   "node",
		Values: map[string]float64{"R": 100, "C": 0.001, "I": 0.01, "q": 0},
	}
}

// TwoMass couples two damped masses through a spring on a 0-junction.
func TwoMass() *config.ModelSpec {
	return &config.ModelSpec{
		Name:        "two_mass",
		Description: "two damped masses joined by a spring, the first one pushed",
		Ports: []config.PortSpec{
			{Name: "coupling", Kind: "compliance", Effort: "Fk", Displacement: "x", Coefficient: "k"},
			{Name: "push", Kind: "effort_source", Effort: "F"},
			{Name: "mass1", Kind: "inertia", Effort: "F1", Flow: "v1", Coefficient: "m1"},
			{Name: "damper1", Kind: "resistor", Effort: "F1", Flow: "v1", Coefficient: "b1"},
			{Name: "mass2", Kind: "inertia", Effort: "F2", Flow: "v2", Coefficient: "m2"},
			{Name: "damper2", Kind: "resistor", Effort: "F2", Flow: "v2", Coefficient: "b2"},
		},
		Junctions: []config.JunctionSpec{
			{Name: "spring", Kind: "effort", Elements: []string{"coupling"}},
			{Name: "left", Kind: "flow", Elements: []string{"push", "mass1", "damper1", "spring"}},
			{Name: "right", Kind: "flow", Elements: []string{"mass2", "damper2"}, Inputs: []string{"spring"}},
		},
		Root: "left",
		Values: map[string]float64{
			"k": 4, "m1": 1, "m2": 2, "b1": 0.2, "b2": 0.3, "F": 1,
			"x": 0, "v1": 0, "v2": 0,
		},
	}
}

// DCMotor converts armature current to shaft torque through a gyrator of
// motor constant K.
func DCMotor() *config.ModelSpec {
	return &config.ModelSpec{
		Name:        "dc_motor",
		Description: "permanent magnet DC motor with viscous shaft friction",
		Ports: []config.PortSpec{
			{Name: "supply", Kind: "effort_source", Effort: "V"},
			{Name: "armature", Kind: "resistor", Effort: "u", Flow: "i", Coefficient: "Ra"},
			{Name: "winding", Kind: "inertia", Effort: "u", Flow: "i", Coefficient: "La"},
			{
				Name:        "motor",
				Kind:        "gyrator",
				Input:       &config.PairSpec{Effort: "u", Flow: "i"},
				Output:      &config.PairSpec{Effort: "tau", Flow: "w"},
				Coefficient: "K",
			},
			{Name: "rotor", Kind: "inertia", Effort: "tau", Flow: "w", Coefficient: "J"},
			{Name: "friction", Kind: "resistor", Effort: "tau", Flow: "w", Coefficient: "b"},
		},
		Junctions: []config.JunctionSpec{
			{Name: "electrical", Kind: "flow", Elements: []string{"supply", "armature", "winding", "motor"}},
			{Name: "mechanical", Kind: "flow", Elements: []string{"rotor", "friction"}, Inputs: []string{"motor"}},
		},
		Root: "electrical",
		Values: map[string]float64{
			"V": 12, "Ra": 1, "La": 0.5, "K": 0.05, "J": 0.01, "b": 0.1,
			"i": 0, "w": 0,
		},
	}
}
