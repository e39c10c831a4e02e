package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Authenticator resolves the principal of a request. A request without
// credentials yields ok false and no error.
type Authenticator interface {
	Authenticate(r *http.Request) (p Principal, ok bool, err error)
}

// New returns the Authenticator for cfg.Mode. OIDC mode contacts the issuer
// for discovery unless JWKSURL is set.
func New(ctx context.Context, cfg *Config) (Authenticator, error) {
	switch cfg.Mode {
	case ModeOIDC:
		return newOIDC(ctx, cfg)
	default:
		return &headers{cfg: cfg}, nil
	}
}

// Middleware attaches the resolved principal to each request context.
// Requests with invalid credentials are rejected with 401.
func Middleware(a Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("middleware", "auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok, err := a.Authenticate(r)
			if err != nil {
				logger.Warn("authentication failed", "error", err, "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprintf(w, `{"success":false,"message":%q}`, ErrUnauthenticated.Error())
				return
			}
			if ok {
				r = r.WithContext(WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

type headers struct {
	cfg *Config
}

func (h *headers) Authenticate(r *http.Request) (Principal, bool, error) {
	subject := strings.TrimSpace(r.Header.Get(h.cfg.UserHeader))
	if subject == "" {
		return Principal{}, false, nil
	}

	return NewPrincipal(
		subject,
		strings.TrimSpace(r.Header.Get(h.cfg.NameHeader)),
		splitRoles(r.Header.Get(h.cfg.RolesHeader)),
		h.cfg.AdminRole,
	), true, nil
}

type bearer struct {
	verifier   *oidc.IDTokenVerifier
	rolesClaim string
	adminRole  string
}

func newOIDC(ctx context.Context, cfg *Config) (*bearer, error) {
	oidcCfg := &oidc.Config{ClientID: cfg.ClientID}

	var verifier *oidc.IDTokenVerifier
	if cfg.JWKSURL != "" {
		keys := oidc.NewRemoteKeySet(ctx, cfg.JWKSURL)
		verifier = oidc.NewVerifier(cfg.Issuer, keys, oidcCfg)
	} else {
		provider, err := oidc.NewProvider(ctx, cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("oidc discovery: %w", err)
		}
		verifier = provider.Verifier(oidcCfg)
	}

	return &bearer{
		verifier:   verifier,
		rolesClaim: cfg.RolesClaim,
		adminRole:  cfg.AdminRole,
	}, nil
}

func (b *bearer) Authenticate(r *http.Request) (Principal, bool, error) {
	raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || strings.TrimSpace(raw) == "" {
		return Principal{}, false, nil
	}

	token, err := b.verifier.Verify(r.Context(), strings.TrimSpace(raw))
	if err != nil {
		return Principal{}, false, fmt.Errorf("verify token: %w", err)
	}

	var claims map[string]any
	if err := token.Claims(&claims); err != nil {
		return Principal{}, false, fmt.Errorf("decode claims: %w", err)
	}

	name, _ := claims["name"].(string)
	return NewPrincipal(token.Subject, name, claimRoles(claims[b.rolesClaim]), b.adminRole), true, nil
}

func claimRoles(v any) []string {
	switch roles := v.(type) {
	case []any:
		out := make([]string, 0, len(roles))
		for _, r := range roles {
			if s, ok := r.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return splitRoles(roles)
	}
	return nil
}

func splitRoles(s string) []string {
	var roles []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			roles = append(roles, part)
		}
	}
	return roles
}
