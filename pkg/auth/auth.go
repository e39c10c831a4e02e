// Package auth attaches the caller's identity to request contexts.
// Token issuance is handled by an external identity provider.
package auth

import (
	"context"
	"errors"
	"net/http"
	"slices"
)

var (
	// ErrUnauthenticated indicates a request without an identity.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden indicates an identity without the required role.
	ErrForbidden = errors.New("admin role required")
)

// Principal is the authenticated caller.
type Principal struct {
	Subject string   `json:"subject"`
	Name    string   `json:"name,omitempty"`
	Roles   []string `json:"roles,omitempty"`

	admin bool
}

// NewPrincipal builds a Principal, marking it admin when roles contains adminRole.
func NewPrincipal(subject, name string, roles []string, adminRole string) Principal {
	return Principal{
		Subject: subject,
		Name:    name,
		Roles:   roles,
		admin:   adminRole != "" && slices.Contains(roles, adminRole),
	}
}

// IsAdmin reports whether the principal holds the configured admin role.
func (p Principal) IsAdmin() bool {
	return p.admin
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal carried by ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Require returns the request principal or ErrUnauthenticated.
func Require(r *http.Request) (Principal, error) {
	p, ok := FromContext(r.Context())
	if !ok || p.Subject == "" {
		return Principal{}, ErrUnauthenticated
	}
	return p, nil
}

// RequireAdmin returns the request principal when it is an admin.
func RequireAdmin(r *http.Request) (Principal, error) {
	p, err := Require(r)
	if err != nil {
		return p, err
	}
	if !p.IsAdmin() {
		return p, ErrForbidden
	}
	return p, nil
}

// MapHTTPStatus maps auth errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnauthenticated) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}
