package comments

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/halalcheck/internal/catalog"
)

// ErrValidation indicates a malformed comment request.
var ErrValidation = errors.New("invalid comment request")

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// MapHTTPStatus maps comment errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
