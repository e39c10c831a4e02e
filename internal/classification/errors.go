package classification

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/gemini"
)

// Domain errors for classification operations.
var (
	ErrValidation = errors.New("invalid classification request")
	// ErrUpstreamFormat indicates a text-service response without candidates.
	ErrUpstreamFormat = errors.New("text service response has no usable candidate")
	// ErrUpstream wraps transport failures reaching the text service.
	ErrUpstream = errors.New("text service unavailable")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func upstream(err error) error {
	if errors.Is(err, gemini.ErrNoCandidates) {
		return fmt.Errorf("%w: %w", ErrUpstreamFormat, err)
	}
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}

// MapHTTPStatus maps classification errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrUpstreamFormat), errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
