package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// CreateActivityHandler creates an activity. An id is assigned when the
// request does not carry one.
type CreateActivityHandler struct {
	logger *slog.Logger
	writer ActivityWriter
}

// NewCreateActivityHandler creates a new CreateActivityHandler.
func NewCreateActivityHandler(logger *slog.Logger, writer ActivityWriter) *CreateActivityHandler {
	return &CreateActivityHandler{
		logger: logger,
		writer: writer,
	}
}

// ServeHTTP implements http.Handler.
func (h *CreateActivityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a, err := decodeActivity(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	if err := h.writer.Create(r.Context(), a); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.logger.Info("activity created", "id", a.ID)
	w.Header().Set("Location", "/api/activities/"+a.ID)
	writeJSON(w, http.StatusCreated, a)
}
