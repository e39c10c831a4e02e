// Package infrastructure provides core service initialization for application startup.
// It assembles the shared systems (logging, catalog store, cache, text generation,
// identity, archive storage) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/catalog/postgres"
	"github.com/JaimeStill/halalcheck/internal/config"
	"github.com/JaimeStill/halalcheck/internal/gemini"
	"github.com/JaimeStill/halalcheck/pkg/auth"
	"github.com/JaimeStill/halalcheck/pkg/cache"
	"github.com/JaimeStill/halalcheck/pkg/database"
	"github.com/JaimeStill/halalcheck/pkg/lifecycle"
	"github.com/JaimeStill/halalcheck/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil for the memory store; Storage is nil when archiving is
// not configured.
type Infrastructure struct {
	Lifecycle     *lifecycle.Coordinator
	Logger        *slog.Logger
	Database      database.System
	Store         catalog.Store
	Storage       storage.System
	Cache         cache.System
	Generator     gemini.Generator
	Authenticator auth.Authenticator
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Cache:     cache.New(&cfg.Cache, logger),
	}

	if cfg.UsesDatabase() {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
		infra.Store = postgres.New(db.Connection())
	} else {
		logger.Info("using in-memory catalog store")
		infra.Store = catalog.NewMemory()
	}

	if cfg.Storage.Enabled() {
		store, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		infra.Storage = store
	} else {
		logger.Info("response archive disabled")
	}

	gen, err := gemini.New(lc.Context(), &cfg.Gemini, logger)
	if err != nil {
		return nil, fmt.Errorf("gemini init failed: %w", err)
	}
	infra.Generator = gen

	authn, err := auth.New(context.Background(), &cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("auth init failed: %w", err)
	}
	infra.Authenticator = authn

	return infra, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	if err := i.Cache.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("cache start failed: %w", err)
	}
	return nil
}
