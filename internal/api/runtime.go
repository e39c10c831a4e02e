package api

import (
	"github.com/JaimeStill/halalcheck/internal/config"
	"github.com/JaimeStill/halalcheck/internal/infrastructure"
	"github.com/JaimeStill/halalcheck/pkg/cache"
	"github.com/JaimeStill/halalcheck/pkg/pagination"
)

// Runtime extends Infrastructure with API-scoped settings and the shared
// cache loader.
type Runtime struct {
	*infrastructure.Infrastructure
	Loader      *cache.Loader
	Pagination  pagination.Config
	MaxListSize int32
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Loader:         cache.NewLoader(infra.Cache, cfg.Cache.TTLDuration(), scoped.Logger),
		Pagination:     cfg.API.Pagination,
		MaxListSize:    cfg.Storage.MaxListSize,
	}
}
