package bondgraph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/bondsim/internal/symbolic"
)

// Domain errors for graph construction and derivation.
var (
	// ErrInvalidPortSpec indicates malformed or contradictory port arguments.
	ErrInvalidPortSpec = errors.New("bondgraph: invalid port specification")

	// ErrIncompatibleCausality indicates two sources fixing one conservation variable.
	ErrIncompatibleCausality = errors.New("bondgraph: incompatible causality")

	// ErrUnderdetermined indicates unknowns left free after elimination.
	ErrUnderdetermined = errors.New("bondgraph: underdetermined system")

	// ErrOverdetermined indicates contradictory constraints on known quantities.
	ErrOverdetermined = errors.New("bondgraph: overdetermined system")

	// ErrNoSolution indicates equations the solver could not isolate.
	ErrNoSolution = errors.New("bondgraph: no symbolic solution")

	// ErrCyclicGraph indicates a junction bonded to itself.
	ErrCyclicGraph = errors.New("bondgraph: cyclic graph")

	// ErrInvalidTopology indicates an attachment that breaks graph structure.
	ErrInvalidTopology = errors.New("bondgraph: invalid topology")

	// ErrBondIndex indicates a bond position outside the junction's bonds.
	ErrBondIndex = errors.New("bondgraph: bond index out of range")
)

// PortError wraps a construction failure with the port kind.
type PortError struct {
	Kind    Kind
	Reason  string
	Wrapped error
}

func (e *PortError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Wrapped, e.Kind, e.Reason)
}

func (e *PortError) Unwrap() error { return e.Wrapped }

func portErr(k Kind, format string, args ...any) error {
	return &PortError{Kind: k, Reason: fmt.Sprintf(format, args...), Wrapped: ErrInvalidPortSpec}
}

// AttachError locates a failed attachment on a junction.
type AttachError struct {
	Junction int
	Position int
	Element  string
	Wrapped  error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("%s: junction %d position %d (%s)", e.Wrapped, e.Junction, e.Position, e.Element)
}

func (e *AttachError) Unwrap() error { return e.Wrapped }

// DerivationError carries the residual equations and free unknowns of a
// failed elimination. No partial result accompanies it.
type DerivationError struct {
	Residual []symbolic.Equation
	Free     []symbolic.Symbol
	Wrapped  error
}

func (e *DerivationError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Wrapped.Error())
	if len(e.Free) > 0 {
		names := make([]string, len(e.Free))
		for i, s := range e.Free {
			names[i] = s.String()
		}
		sb.WriteString("; free: ")
		sb.WriteString(strings.Join(names, ", "))
	}
	if len(e.Residual) > 0 {
		eqs := make([]string, len(e.Residual))
		for i, q := range e.Residual {
			eqs[i] = q.String()
		}
		sb.WriteString("; unresolved: ")
		sb.WriteString(strings.Join(eqs, "; "))
	}
	return sb.String()
}

func (e *DerivationError) Unwrap() error { return e.Wrapped }
