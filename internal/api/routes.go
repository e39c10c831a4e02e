package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/halalcheck/internal/config"
	"github.com/JaimeStill/halalcheck/pkg/openapi"
	"github.com/JaimeStill/halalcheck/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		domain.Classification.Handler().Routes(),
		domain.Requests.Handler().Routes(),
		domain.Polls.Handler().Routes(),
		domain.Products.Handler().Routes(),
		domain.Comments.Handler().Routes(),
	}

	if runtime.Storage != nil {
		archive := newArchiveHandler(runtime.Storage, runtime.Logger, runtime.MaxListSize)
		groups = append(groups, archive.routes())
	}

	routes.Register(mux, groups...)

	spec, err := openapi.MarshalJSON(buildSpec(cfg, groups...))
	if err != nil {
		return fmt.Errorf("openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))

	return nil
}
