package middleware

import (
	"errors"
	"net/http"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
)

// StatusFor maps an error kind to its HTTP status and a client-safe message.
// Infrastructure and unclassified errors never leak their text.
func StatusFor(err error) (int, string) {
	switch domain.Kind(err) {
	case domain.ErrValidation:
		return http.StatusBadRequest, err.Error()
	case domain.ErrNotFound:
		return http.StatusNotFound, err.Error()
	case domain.ErrUnauthorized:
		return http.StatusUnauthorized, err.Error()
	case domain.ErrForbidden:
		return http.StatusForbidden, err.Error()
	case domain.ErrConflict:
		return http.StatusConflict, err.Error()
	}
	if errors.Is(err, domain.ErrInfrastructure) {
		return http.StatusServiceUnavailable, "storage unavailable, retry later"
	}
	return http.StatusInternalServerError, "internal error"
}
