package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for solver construction and collaborator interfaces.
var (
	// ErrInvalidGrid indicates grid dimensions below 2x2 or a bad spacing.
	ErrInvalidGrid = errors.New("dynamo: grid requires rows and cols >= 2 and a positive spacing")

	// ErrBackendUnavailable indicates the parallel backend cannot run here.
	ErrBackendUnavailable = errors.New("dynamo: parallel backend unavailable")

	// ErrKernelInit indicates the parallel kernel failed to compile or link.
	ErrKernelInit = errors.New("dynamo: parallel kernel initialization failed")

	// ErrUnknownBackend indicates a backend name nothing is registered under.
	ErrUnknownBackend = errors.New("dynamo: unknown backend")

	// ErrUnknownSolver indicates a solver name nothing is registered under.
	ErrUnknownSolver = errors.New("dynamo: unknown solver")

	// ErrBufferSize indicates a destination buffer that does not match the grid.
	ErrBufferSize = errors.New("dynamo: buffer size does not match particle count")
)

// BackendError wraps a parallel backend failure with the backend name and
// the operation that failed.
type BackendError struct {
	Backend string
	Op      string
	Wrapped error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend %s: %v", e.Backend, e.Op, e.Wrapped)
}

func (e *BackendError) Unwrap() error {
	return e.Wrapped
}
