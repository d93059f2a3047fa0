package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/bondsim/internal/symbolic"
)

var (
	validate *validator.Validate

	namePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

func init() {
	validate = validator.New()
}

// ModelSpec is a bond-graph model document. Junctions are built in order;
// elements may only name ports and earlier junctions. Removals apply next,
// then inputs, which may name any junction.
type ModelSpec struct {
	Name        string             `yaml:"name" validate:"required,max=64"`
	Description string             `yaml:"description,omitempty"`
	Ports       []PortSpec         `yaml:"ports" validate:"required,min=1,dive"`
	Junctions   []JunctionSpec     `yaml:"junctions" validate:"required,min=1,dive"`
	Root        string             `yaml:"root" validate:"required"`
	Values      map[string]float64 `yaml:"values,omitempty"`
}

type PortSpec struct {
	Name         string    `yaml:"name" validate:"required,max=64"`
	Kind         string    `yaml:"kind" validate:"required,oneof=resistor compliance inertia effort_source flow_source transformer gyrator"`
	Effort       string    `yaml:"effort,omitempty"`
	Flow         string    `yaml:"flow,omitempty"`
	Displacement string    `yaml:"displacement,omitempty"`
	Input        *PairSpec `yaml:"input,omitempty"`
	Output       *PairSpec `yaml:"output,omitempty"`
	Law          string    `yaml:"law,omitempty"`
	Coefficient  string    `yaml:"coefficient,omitempty"`
}

type PairSpec struct {
	Effort string `yaml:"effort" validate:"required"`
	Flow   string `yaml:"flow" validate:"required"`
}

type JunctionSpec struct {
	Name     string   `yaml:"name" validate:"required,max=64"`
	Kind     string   `yaml:"kind" validate:"required,oneof=effort flow 0 1"`
	Elements []string `yaml:"elements,omitempty"`
	Inputs   []string `yaml:"inputs,omitempty"`
	Remove   []int    `yaml:"remove,omitempty" validate:"dive,min=0"`
}

// Ref is a parsed element reference: "name", "name.input" or "name.output".
type Ref struct {
	Name string
	Side string
}

func ParseRef(s string) Ref {
	name, side, _ := strings.Cut(s, ".")
	return Ref{Name: name, Side: side}
}

// LoadModel reads and validates a model document.
func LoadModel(path string) (*ModelSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	spec, err := ParseModel(data)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return spec, nil
}

func ParseModel(data []byte) (*ModelSpec, error) {
	var spec ModelSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Marshal renders the document back to YAML.
func (s *ModelSpec) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Validate checks struct constraints and cross references, reporting every
// problem found.
func (s *ModelSpec) Validate() error {
	if s == nil {
		return errors.New("model spec cannot be nil")
	}
	var result *multierror.Error
	if err := validate.Struct(s); err != nil {
		result = multierror.Append(result, formatValidationError(err))
	}

	ports := make(map[string]PortSpec)
	for _, p := range s.Ports {
		if !namePattern.MatchString(p.Name) {
			result = multierror.Append(result, fmt.Errorf("port %q: invalid name", p.Name))
		}
		if _, dup := ports[p.Name]; dup {
			result = multierror.Append(result, fmt.Errorf("port %q: duplicate name", p.Name))
		}
		ports[p.Name] = p
		for _, err := range p.check() {
			result = multierror.Append(result, fmt.Errorf("port %q: %w", p.Name, err))
		}
	}

	built := make(map[string]int)
	for i, j := range s.Junctions {
		if !namePattern.MatchString(j.Name) {
			result = multierror.Append(result, fmt.Errorf("junction %q: invalid name", j.Name))
		}
		if _, dup := built[j.Name]; dup {
			result = multierror.Append(result, fmt.Errorf("junction %q: duplicate name", j.Name))
		}
		if _, clash := ports[j.Name]; clash {
			result = multierror.Append(result, fmt.Errorf("junction %q: name already used by a port", j.Name))
		}
		for _, el := range j.Elements {
			if err := checkRef(ParseRef(el), ports, built); err != nil {
				result = multierror.Append(result, fmt.Errorf("junction %q element %q: %w", j.Name, el, err))
			}
		}
		seen := make(map[int]bool)
		for _, pos := range j.Remove {
			if pos >= len(j.Elements) || seen[pos] {
				result = multierror.Append(result, fmt.Errorf("junction %q: cannot remove position %d", j.Name, pos))
			}
			seen[pos] = true
		}
		built[j.Name] = i
	}
	for _, j := range s.Junctions {
		for _, in := range j.Inputs {
			ref := ParseRef(in)
			if ref.Name == j.Name {
				result = multierror.Append(result, fmt.Errorf("junction %q input %q: junction cannot feed itself", j.Name, in))
				continue
			}
			if err := checkRef(ref, ports, built); err != nil {
				result = multierror.Append(result, fmt.Errorf("junction %q input %q: %w", j.Name, in, err))
			}
		}
	}
	if _, ok := built[s.Root]; s.Root != "" && !ok {
		result = multierror.Append(result, fmt.Errorf("root %q: no such junction", s.Root))
	}
	return result.ErrorOrNil()
}

func checkRef(ref Ref, ports map[string]PortSpec, junctions map[string]int) error {
	if _, ok := junctions[ref.Name]; ok {
		if ref.Side != "" {
			return errors.New("junctions have no sides")
		}
		return nil
	}
	p, ok := ports[ref.Name]
	if !ok {
		return errors.New("unknown port or junction")
	}
	switch ref.Side {
	case "":
		return nil
	case "input", "output":
		if !p.IsTwoPort() {
			return fmt.Errorf("%s has no %s side", p.Kind, ref.Side)
		}
		return nil
	}
	return fmt.Errorf("unknown side %q", ref.Side)
}

func (p PortSpec) IsTwoPort() bool {
	return p.Kind == "transformer" || p.Kind == "gyrator"
}

// check reports missing symbols and unparsable expressions per kind.
func (p PortSpec) check() []error {
	var errs []error
	need := func(field, val string) {
		if val == "" {
			errs = append(errs, fmt.Errorf("%s requires %s", p.Kind, field))
		} else if !namePattern.MatchString(val) {
			errs = append(errs, fmt.Errorf("%s %q is not a symbol name", field, val))
		}
	}
	expr := func(field, src string) {
		if src == "" {
			return
		}
		sides := []string{src}
		if field == "law" {
			// "lhs = rhs" gives a full equation
			sides = strings.SplitN(src, "=", 2)
		}
		for _, side := range sides {
			if _, err := symbolic.Parse(side, nil); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", field, err))
			}
		}
	}

	switch p.Kind {
	case "resistor", "inertia":
		need("effort", p.Effort)
		need("flow", p.Flow)
	case "compliance":
		need("effort", p.Effort)
		need("displacement", p.Displacement)
	case "effort_source":
		need("effort", p.Effort)
	case "flow_source":
		need("flow", p.Flow)
	case "transformer", "gyrator":
		if p.Input == nil || p.Output == nil {
			errs = append(errs, fmt.Errorf("%s requires input and output pairs", p.Kind))
		}
		if p.Law != "" {
			errs = append(errs, fmt.Errorf("%s takes a coefficient, not a law", p.Kind))
		}
		if p.Coefficient == "" {
			errs = append(errs, fmt.Errorf("%s requires a coefficient", p.Kind))
		}
	}
	switch p.Kind {
	case "resistor", "compliance", "inertia":
		if (p.Law == "") == (p.Coefficient == "") {
			errs = append(errs, errors.New("exactly one of law and coefficient is required"))
		}
	case "effort_source", "flow_source":
		if p.Law != "" || p.Coefficient != "" {
			errs = append(errs, errors.New("sources take neither law nor coefficient"))
		}
	}
	expr("law", p.Law)
	expr("coefficient", p.Coefficient)
	return errs
}

// formatValidationError converts validator errors to readable messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	var result *multierror.Error
	for _, e := range validationErrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			result = multierror.Append(result, fmt.Errorf("%s: field is required", field))
		case "min":
			result = multierror.Append(result, fmt.Errorf("%s: must be at least %s", field, e.Param()))
		case "max":
			result = multierror.Append(result, fmt.Errorf("%s: must not exceed %s", field, e.Param()))
		case "oneof":
			result = multierror.Append(result, fmt.Errorf("%s: must be one of [%s]", field, e.Param()))
		default:
			result = multierror.Append(result, fmt.Errorf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return result.ErrorOrNil()
}
