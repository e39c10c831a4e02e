package polls

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/halalcheck/internal/catalog"
)

// Domain errors for poll operations.
var (
	ErrValidation = errors.New("invalid poll request")
	// ErrClosed indicates a poll that is inactive or past its expiry.
	ErrClosed = errors.New("poll is closed")
	// ErrAlreadyVoted indicates a second vote by the same user.
	ErrAlreadyVoted = errors.New("user has already voted in this poll")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// MapHTTPStatus maps poll errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrClosed), errors.Is(err, ErrAlreadyVoted):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
