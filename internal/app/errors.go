package app

import (
	"errors"
	"fmt"
)

// ErrNotReady means a required route parameter is not available yet. It is not
// a user-visible failure; the view stays in loading.
var ErrNotReady = errors.New("route parameters not ready")

// NotFoundError names the path segment that failed to resolve.
type NotFoundError struct {
	Kind Kind
	Slug string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Slug)
}

// Message is the user-facing text for the failing segment.
func (e *NotFoundError) Message() string {
	switch e.Kind {
	case KindCity:
		return "Ciudad no encontrada"
	case KindCategory:
		return "Categoría no encontrada"
	case KindBusiness:
		return "Negocio no encontrado"
	}
	return "Página no encontrada"
}

// BackendError wraps a failed read against the backend.
type BackendError struct {
	Kind Kind
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend read for %s failed: %v", e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a resolution miss.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
