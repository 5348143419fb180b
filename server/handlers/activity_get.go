package handlers

import (
	"errors"
	"net/http"

	"github.com/nomis52/activities/clients/activityclient"
)

// GetActivityHandler selects an activity and returns it. Cached activities
// are served without contacting the backend.
type GetActivityHandler struct {
	loader ActivityLoader
}

// NewGetActivityHandler creates a new GetActivityHandler.
func NewGetActivityHandler(loader ActivityLoader) *GetActivityHandler {
	return &GetActivityHandler{loader: loader}
}

// ServeHTTP implements http.Handler.
func (h *GetActivityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.loader.LoadOne(r.Context(), id); err != nil {
		if errors.Is(err, activityclient.ErrNotFound) {
			writeError(w, http.StatusNotFound, "activity not found")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	// Read from the cache rather than the selection, which a concurrent
	// request may already have changed.
	a, ok := h.loader.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "activity not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}
