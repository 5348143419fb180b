package handlers

import (
	"log/slog"
	"net/http"
)

// DeleteActivityHandler deletes an activity. The optional control query
// parameter names the UI element that started the delete and is reported
// as the target in /api/status while the delete is in flight.
type DeleteActivityHandler struct {
	logger *slog.Logger
	writer ActivityWriter
}

// NewDeleteActivityHandler creates a new DeleteActivityHandler.
func NewDeleteActivityHandler(logger *slog.Logger, writer ActivityWriter) *DeleteActivityHandler {
	return &DeleteActivityHandler{
		logger: logger,
		writer: writer,
	}
}

// ServeHTTP implements http.Handler.
func (h *DeleteActivityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	control := r.URL.Query().Get("control")

	if err := h.writer.Delete(r.Context(), id, control); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.logger.Info("activity deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
