package proxy

import (
	"errors"
	"fmt"
)

// CodeUnknownTarget is reported by NoBackendFoundError.
const CodeUnknownTarget = "UNKNOWN_TARGET"

// ErrNoBackendFound matches every NoBackendFoundError via errors.Is.
var ErrNoBackendFound = errors.New("no backend found")

// NoBackendFoundError means the routing target was unset or unknown to the
// registry. It is returned before any backend is contacted.
type NoBackendFoundError struct {
	Target string
}

func (e *NoBackendFoundError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %s: routing target not set", CodeUnknownTarget, ErrNoBackendFound)
	}
	return fmt.Sprintf("%s: %s for routing target %q", CodeUnknownTarget, ErrNoBackendFound, e.Target)
}

func (e *NoBackendFoundError) Code() string {
	return CodeUnknownTarget
}

func (e *NoBackendFoundError) Is(target error) bool {
	return target == ErrNoBackendFound
}
