package device

import (
	"errors"
	"fmt"
)

// Kind is the acquisition failure taxonomy surfaced to callers.
type Kind string

// Acquisition failure kinds.
const (
	KindPermissionDenied        Kind = "permission_denied"
	KindDeviceNotFound          Kind = "device_not_found"
	KindDeviceBusy              Kind = "device_busy"
	KindUnsupported             Kind = "unsupported"
	KindInsecureContext         Kind = "insecure_context"
	KindConstraintUnsatisfiable Kind = "constraint_unsatisfiable"
)

// FallbackEligible reports whether a failure of this kind should route the
// operator to manual entry. Insecure context and missing API support are
// terminal for the camera path; everything else falls back silently.
func (k Kind) FallbackEligible() bool {
	switch k {
	case KindInsecureContext, KindUnsupported:
		return false
	default:
		return true
	}
}

// Message returns the operator-facing description for this failure kind.
func (k Kind) Message() string {
	switch k {
	case KindPermissionDenied:
		return "Permission caméra refusée"
	case KindDeviceNotFound:
		return "Aucune caméra trouvée"
	case KindDeviceBusy:
		return "Caméra occupée par une autre application"
	case KindUnsupported:
		return "Caméra non supportée"
	case KindInsecureContext:
		return "HTTPS requis pour la caméra"
	case KindConstraintUnsatisfiable:
		return "Impossible d'accéder à la caméra avec ces paramètres"
	default:
		return "Erreur d'accès à la caméra"
	}
}

// Error is a typed acquisition failure. It is returned, never panicked.
type Error struct {
	Err      error
	Kind     Kind
	Strategy string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Kind.Message(), e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Kind.Message(), e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates an acquisition error of the given kind.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the failure kind from an error chain, or "" when the
// error is not an acquisition failure.
func KindOf(err error) Kind {
	var devErr *Error
	if errors.As(err, &devErr) {
		return devErr.Kind
	}
	return ""
}

// FallbackEligible reports whether an error should route to manual entry.
// Non-acquisition errors are not fallback-eligible.
func FallbackEligible(err error) bool {
	var devErr *Error
	if errors.As(err, &devErr) {
		return devErr.Kind.FallbackEligible()
	}
	return false
}
