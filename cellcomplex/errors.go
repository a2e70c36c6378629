package cellcomplex

import (
	"errors"
	"fmt"
)

var (
	// ErrDanglingReference is a vertex or edge reference that does not exist in the complex.
	ErrDanglingReference = errors.New("dangling reference")
	// ErrNonManifold is an edge with more than two incident faces.
	ErrNonManifold = errors.New("non-manifold edge")
	// ErrDuplicateVertex is a cell listing the same vertex twice.
	ErrDuplicateVertex = errors.New("duplicate vertex id")
	// ErrDuplicateCell is an edge or face listed more than once.
	ErrDuplicateCell = errors.New("duplicate cell")
	// ErrInvalidValue is a NaN or infinite scalar value.
	ErrInvalidValue = errors.New("invalid scalar value")
	// ErrEmpty is a complex without vertices.
	ErrEmpty = errors.New("empty complex")
)

// InputValidationError reports a malformed complex. Kind is one of the
// sentinel errors above and is reachable through errors.Is.
type InputValidationError struct {
	Kind   error
	Dim    Dim
	Index  int
	Detail string
}

func (e *InputValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("cellcomplex: %s %d: %s", e.Dim, e.Index, e.Kind)
	}
	return fmt.Sprintf("cellcomplex: %s %d: %s: %s", e.Dim, e.Index, e.Kind, e.Detail)
}

func (e *InputValidationError) Unwrap() error { return e.Kind }

func invalid(kind error, dim Dim, index int, format string, args ...interface{}) error {
	return &InputValidationError{
		Kind:   kind,
		Dim:    dim,
		Index:  index,
		Detail: fmt.Sprintf(format, args...),
	}
}
