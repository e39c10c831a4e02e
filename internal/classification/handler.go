package classification

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/pkg/auth"
	"github.com/JaimeStill/halalcheck/pkg/handlers"
	"github.com/JaimeStill/halalcheck/pkg/routes"
)

// Handler provides HTTP endpoints for classification operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "classification"),
	}
}

// Routes returns the route group definition for classification endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/classify",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Classify},
			{Method: "POST", Pattern: "/list", Handler: h.ClassifyList},
			{Method: "POST", Pattern: "/products/{id}/evaluate", Handler: h.Evaluate},
			{Method: "PUT", Pattern: "/products/{id}/ingredients", Handler: h.Link},
		},
	}
}

// Classify resolves the ingredients of a product identified by name or barcode.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	var q ProductQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.ClassifyByNameOrBarcode(r.Context(), q)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// ClassifyList resolves the statuses of a list of ingredient names.
func (h *Handler) ClassifyList(w http.ResponseWriter, r *http.Request) {
	var q ListQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.ClassifyByNameList(r.Context(), q)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Evaluate recomputes a product's status. With ?discover=true a product
// without linked ingredients is classified and linked first.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireAdmin(r); err != nil {
		handlers.RespondError(w, h.logger, auth.MapHTTPStatus(err), err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	discover, _ := strconv.ParseBool(r.URL.Query().Get("discover"))

	var eval *Evaluation
	if discover {
		eval, err = h.sys.DiscoverAndEvaluate(r.Context(), id)
	} else {
		eval, err = h.sys.EvaluateProductStatus(r.Context(), id)
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, eval)
}

// Link associates ingredients with a product by decoding a LinkCommand JSON body.
func (h *Handler) Link(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireAdmin(r); err != nil {
		handlers.RespondError(w, h.logger, auth.MapHTTPStatus(err), err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	var cmd LinkCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	eval, err := h.sys.LinkIngredients(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, eval)
}
