package handlers

import "net/http"

// ListActivitiesHandler serves the cached activities grouped by day.
type ListActivitiesHandler struct {
	reader ActivityReader
}

// NewListActivitiesHandler creates a new ListActivitiesHandler.
func NewListActivitiesHandler(reader ActivityReader) *ListActivitiesHandler {
	return &ListActivitiesHandler{reader: reader}
}

// ServeHTTP implements http.Handler.
func (h *ListActivitiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reader.ActivitiesByDate())
}
