// Package domain holds the error taxonomy shared by every layer.
// Callers classify failures with errors.Is against the kind sentinels below;
// specific errors wrap exactly one kind.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInfrastructure = errors.New("infrastructure failure")
)

// Infra wraps a store/broker/driver failure so it classifies as ErrInfrastructure
// while keeping the original error reachable through errors.Is/As.
func Infra(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrInfrastructure, op, err)
}

// Kind returns the kind sentinel err wraps, or nil when it wraps none.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrUnauthorized, ErrForbidden, ErrConflict, ErrInfrastructure} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
