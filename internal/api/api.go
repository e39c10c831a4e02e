// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/halalcheck/internal/config"
	"github.com/JaimeStill/halalcheck/internal/infrastructure"
	"github.com/JaimeStill/halalcheck/pkg/auth"
	"github.com/JaimeStill/halalcheck/pkg/middleware"
	"github.com/JaimeStill/halalcheck/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Every request passes through authentication before reaching a handler;
// handlers decide whether a principal is required.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.MaxBodySize(cfg.API.MaxBodySizeBytes()))
	m.Use(auth.Middleware(runtime.Authenticator, runtime.Logger))

	return m, nil
}
