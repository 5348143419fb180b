package handlers

import (
	"log/slog"
	"net/http"
)

// UpdateActivityHandler replaces an activity.
type UpdateActivityHandler struct {
	logger *slog.Logger
	writer ActivityWriter
}

// NewUpdateActivityHandler creates a new UpdateActivityHandler.
func NewUpdateActivityHandler(logger *slog.Logger, writer ActivityWriter) *UpdateActivityHandler {
	return &UpdateActivityHandler{
		logger: logger,
		writer: writer,
	}
}

// ServeHTTP implements http.Handler.
func (h *UpdateActivityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	a, err := decodeActivity(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if a.ID == "" {
		a.ID = id
	}
	if a.ID != id {
		writeError(w, http.StatusBadRequest, "activity id does not match path")
		return
	}

	if err := h.writer.Update(r.Context(), a); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.logger.Info("activity updated", "id", a.ID)
	writeJSON(w, http.StatusOK, a)
}
