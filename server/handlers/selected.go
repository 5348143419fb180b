package handlers

import "net/http"

// SelectedHandler returns the selected activity.
type SelectedHandler struct {
	reader ActivityReader
}

// NewSelectedHandler creates a new SelectedHandler.
func NewSelectedHandler(reader ActivityReader) *SelectedHandler {
	return &SelectedHandler{reader: reader}
}

// ServeHTTP implements http.Handler.
func (h *SelectedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a, ok := h.reader.Selected()
	if !ok {
		writeError(w, http.StatusNotFound, "no activity selected")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ClearSelectedHandler drops the selected activity.
type ClearSelectedHandler struct {
	clearer SelectionClearer
}

// NewClearSelectedHandler creates a new ClearSelectedHandler.
func NewClearSelectedHandler(clearer SelectionClearer) *ClearSelectedHandler {
	return &ClearSelectedHandler{clearer: clearer}
}

// ServeHTTP implements http.Handler.
func (h *ClearSelectedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.clearer.ClearSelected()
	w.WriteHeader(http.StatusNoContent)
}
