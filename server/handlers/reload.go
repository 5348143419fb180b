package handlers

import (
	"log/slog"
	"net/http"
)

// ReloadHandler reloads the whole collection from the backend.
type ReloadHandler struct {
	logger *slog.Logger
	loader Loader
}

// NewReloadHandler creates a new ReloadHandler.
func NewReloadHandler(logger *slog.Logger, loader Loader) *ReloadHandler {
	return &ReloadHandler{
		logger: logger,
		loader: loader,
	}
}

// ServeHTTP implements http.Handler.
func (h *ReloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("reloading activities")

	if err := h.loader.LoadAll(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "failed to reload activities: "+err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
