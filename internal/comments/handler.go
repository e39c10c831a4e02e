package comments

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/pkg/auth"
	"github.com/JaimeStill/halalcheck/pkg/handlers"
	"github.com/JaimeStill/halalcheck/pkg/routes"
)

// Handler provides HTTP endpoints for comments.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "comments"),
	}
}

// Routes returns the route group definition for comment endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/comments",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "", Handler: h.List},
		},
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Require(r)
	if err != nil {
		handlers.RespondError(w, h.logger, auth.MapHTTPStatus(err), err)
		return
	}

	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	c, err := h.sys.Create(r.Context(), p.Subject, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, c)
}

// List returns the comments on the target named by ?product_id or ?ingredient_id.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	items, err := h.sys.List(r.Context(), filter)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

func filterFromQuery(values url.Values) (catalog.CommentFilter, error) {
	var f catalog.CommentFilter

	parse := func(key string) (*uuid.UUID, error) {
		raw := values.Get(key)
		if raw == "" {
			return nil, nil
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, validationf("invalid %s", key)
		}
		return &id, nil
	}

	var err error
	if f.ProductID, err = parse("product_id"); err != nil {
		return f, err
	}
	if f.IngredientID, err = parse("ingredient_id"); err != nil {
		return f, err
	}
	return f, nil
}
