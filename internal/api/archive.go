package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/JaimeStill/halalcheck/internal/classification"
	"github.com/JaimeStill/halalcheck/pkg/auth"
	"github.com/JaimeStill/halalcheck/pkg/handlers"
	"github.com/JaimeStill/halalcheck/pkg/routes"
	"github.com/JaimeStill/halalcheck/pkg/storage"
)

// archiveHandler exposes the archived raw text-service responses to admins.
type archiveHandler struct {
	store       storage.System
	logger      *slog.Logger
	maxListSize int32
}

func newArchiveHandler(store storage.System, logger *slog.Logger, maxListSize int32) *archiveHandler {
	return &archiveHandler{
		store:       store,
		logger:      logger.With("handler", "archive"),
		maxListSize: maxListSize,
	}
}

func (h *archiveHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/archive",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list},
			{Method: "GET", Pattern: "/download/{key...}", Handler: h.download},
			{Method: "GET", Pattern: "/{key...}", Handler: h.find},
		},
	}
}

func (h *archiveHandler) admin(w http.ResponseWriter, r *http.Request) bool {
	if _, err := auth.RequireAdmin(r); err != nil {
		handlers.RespondError(w, h.logger, auth.MapHTTPStatus(err), err)
		return false
	}
	return true
}

func (h *archiveHandler) list(w http.ResponseWriter, r *http.Request) {
	if !h.admin(w, r) {
		return
	}

	q := r.URL.Query()
	prefix := q.Get("prefix")
	if prefix == "" {
		prefix = classification.ArchivePrefix
	}

	maxResults, err := storage.ParseMaxResults(q.Get("max_results"), h.maxListSize)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.store.List(r.Context(), prefix, q.Get("marker"), maxResults)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *archiveHandler) find(w http.ResponseWriter, r *http.Request) {
	if !h.admin(w, r) {
		return
	}

	meta, err := h.store.Find(r.Context(), r.PathValue("key"))
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, meta)
}

func (h *archiveHandler) download(w http.ResponseWriter, r *http.Request) {
	if !h.admin(w, r) {
		return
	}

	key := r.PathValue("key")
	result, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer result.Body.Close()

	w.Header().Set("Content-Type", result.ContentType)
	if result.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, result.Body); err != nil {
		h.logger.Warn("archive download interrupted", "key", key, "error", err)
	}
}
