package auth

import (
	"fmt"
	"os"
)

// Modes supported by Config.Mode.
const (
	ModeHeader = "header"
	ModeOIDC   = "oidc"
)

// Config selects how request identity is established. Header mode trusts
// identity headers set by a fronting proxy; OIDC mode verifies bearer tokens.
type Config struct {
	Mode        string `toml:"mode"`
	Issuer      string `toml:"issuer"`
	ClientID    string `toml:"client_id"`
	JWKSURL     string `toml:"jwks_url"`
	AdminRole   string `toml:"admin_role"`
	RolesClaim  string `toml:"roles_claim"`
	UserHeader  string `toml:"user_header"`
	NameHeader  string `toml:"name_header"`
	RolesHeader string `toml:"roles_header"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Mode      string
	Issuer    string
	ClientID  string
	JWKSURL   string
	AdminRole string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.JWKSURL != "" {
		c.JWKSURL = overlay.JWKSURL
	}
	if overlay.AdminRole != "" {
		c.AdminRole = overlay.AdminRole
	}
	if overlay.RolesClaim != "" {
		c.RolesClaim = overlay.RolesClaim
	}
	if overlay.UserHeader != "" {
		c.UserHeader = overlay.UserHeader
	}
	if overlay.NameHeader != "" {
		c.NameHeader = overlay.NameHeader
	}
	if overlay.RolesHeader != "" {
		c.RolesHeader = overlay.RolesHeader
	}
}

func (c *Config) loadDefaults() {
	if c.Mode == "" {
		c.Mode = ModeHeader
	}
	if c.AdminRole == "" {
		c.AdminRole = "Admin"
	}
	if c.RolesClaim == "" {
		c.RolesClaim = "roles"
	}
	if c.UserHeader == "" {
		c.UserHeader = "X-User-ID"
	}
	if c.NameHeader == "" {
		c.NameHeader = "X-User-Name"
	}
	if c.RolesHeader == "" {
		c.RolesHeader = "X-User-Roles"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Mode != "" {
		if v := os.Getenv(env.Mode); v != "" {
			c.Mode = v
		}
	}
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
	if env.ClientID != "" {
		if v := os.Getenv(env.ClientID); v != "" {
			c.ClientID = v
		}
	}
	if env.JWKSURL != "" {
		if v := os.Getenv(env.JWKSURL); v != "" {
			c.JWKSURL = v
		}
	}
	if env.AdminRole != "" {
		if v := os.Getenv(env.AdminRole); v != "" {
			c.AdminRole = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeHeader:
		return nil
	case ModeOIDC:
		if c.Issuer == "" {
			return fmt.Errorf("issuer required in oidc mode")
		}
		if c.ClientID == "" {
			return fmt.Errorf("client_id required in oidc mode")
		}
		return nil
	default:
		return fmt.Errorf("invalid mode %q: must be %s or %s", c.Mode, ModeHeader, ModeOIDC)
	}
}
