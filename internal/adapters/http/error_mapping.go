package httpadapter

import (
	"errors"
	"net/http"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptyIndex):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrEmptyIndex):
		return "empty_index"
	case errors.Is(err, domain.ErrTemporary):
		return "temporary"
	default:
		return "internal"
	}
}
