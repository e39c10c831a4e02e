package products

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/classification"
)

var (
	// ErrInvalidID indicates a malformed product or ingredient id.
	ErrInvalidID = errors.New("invalid id")
	// ErrValidation indicates a malformed product command.
	ErrValidation = errors.New("invalid product")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// MapHTTPStatus maps catalog errors to HTTP status codes. Errors raised by
// classification while resolving ingredients keep their own mapping.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrDuplicate):
		return http.StatusConflict
	}
	return classification.MapHTTPStatus(err)
}
