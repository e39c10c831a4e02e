package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/halalcheck/internal/gemini"
	"github.com/JaimeStill/halalcheck/pkg/auth"
	"github.com/JaimeStill/halalcheck/pkg/cache"
	"github.com/JaimeStill/halalcheck/pkg/database"
	"github.com/JaimeStill/halalcheck/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvHalalcheckEnv             = "HALALCHECK_ENV"
	EnvHalalcheckShutdownTimeout = "HALALCHECK_SHUTDOWN_TIMEOUT"
	EnvHalalcheckVersion         = "HALALCHECK_VERSION"
	EnvHalalcheckStore           = "HALALCHECK_STORE"
)

// Catalog store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

var databaseEnv = &database.Env{
	URL:             "HALALCHECK_DB_DSN",
	Host:            "HALALCHECK_DB_HOST",
	Port:            "HALALCHECK_DB_PORT",
	Name:            "HALALCHECK_DB_NAME",
	User:            "HALALCHECK_DB_USER",
	Password:        "HALALCHECK_DB_PASSWORD",
	SSLMode:         "HALALCHECK_DB_SSL_MODE",
	MaxOpenConns:    "HALALCHECK_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "HALALCHECK_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "HALALCHECK_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "HALALCHECK_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "HALALCHECK_STORAGE_CONTAINER_NAME",
	ConnectionString: "HALALCHECK_STORAGE_CONNECTION_STRING",
	ServiceURL:       "HALALCHECK_STORAGE_SERVICE_URL",
	MaxListSize:      "HALALCHECK_STORAGE_MAX_LIST_SIZE",
}

var geminiEnv = &gemini.Env{
	APIKey:  "HALALCHECK_GEMINI_API_KEY",
	Model:   "HALALCHECK_GEMINI_MODEL",
	BaseURL: "HALALCHECK_GEMINI_BASE_URL",
	Timeout: "HALALCHECK_GEMINI_TIMEOUT",
}

var cacheEnv = &cache.Env{
	Addr:     "HALALCHECK_CACHE_ADDR",
	Password: "HALALCHECK_CACHE_PASSWORD",
	DB:       "HALALCHECK_CACHE_DB",
	TTL:      "HALALCHECK_CACHE_TTL",
}

var authEnv = &auth.Env{
	Mode:      "HALALCHECK_AUTH_MODE",
	Issuer:    "HALALCHECK_AUTH_ISSUER",
	ClientID:  "HALALCHECK_AUTH_CLIENT_ID",
	JWKSURL:   "HALALCHECK_AUTH_JWKS_URL",
	AdminRole: "HALALCHECK_AUTH_ADMIN_ROLE",
}

// Config is the root configuration for the halalcheck service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Gemini          gemini.Config   `toml:"gemini"`
	Cache           cache.Config    `toml:"cache"`
	Auth            auth.Config     `toml:"auth"`
	Store           string          `toml:"store"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the HALALCHECK_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvHalalcheckEnv); env != "" {
		return env
	}
	return "local"
}

// UsesDatabase reports whether the catalog is persisted in PostgreSQL.
func (c *Config) UsesDatabase() bool {
	return c.Store == StorePostgres
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.Store != "" {
		c.Store = overlay.Store
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Gemini.Merge(&overlay.Gemini)
	c.Cache.Merge(&overlay.Cache)
	c.Auth.Merge(&overlay.Auth)
}

// Finalize applies defaults, environment overrides, and validation to every
// section. The database section is only validated for the postgres store.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if c.UsesDatabase() {
		if err := c.Database.Finalize(databaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Gemini.Finalize(geminiEnv); err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.Store == "" {
		c.Store = StorePostgres
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvHalalcheckShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvHalalcheckVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvHalalcheckStore); v != "" {
		c.Store = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	if c.Store != StorePostgres && c.Store != StoreMemory {
		return fmt.Errorf("invalid store %q: must be %s or %s", c.Store, StorePostgres, StoreMemory)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvHalalcheckEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
