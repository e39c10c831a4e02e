package requests

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/classification"
)

// Domain errors for change request operations.
var (
	ErrValidation    = errors.New("invalid change request")
	ErrAuthorization = errors.New("not permitted")
	ErrConflict      = errors.New("request already processed")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// MapHTTPStatus maps change request errors to HTTP status codes. Errors
// raised by classification during verification keep their own mapping.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict), errors.Is(err, catalog.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	}
	return classification.MapHTTPStatus(err)
}
