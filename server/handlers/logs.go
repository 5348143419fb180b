package handlers

import "net/http"

// LogsHandler returns recently recorded warnings and errors. The component
// query parameter restricts the result to a single component.
type LogsHandler struct {
	logs LogProvider
}

// NewLogsHandler creates a new LogsHandler.
func NewLogsHandler(logs LogProvider) *LogsHandler {
	return &LogsHandler{logs: logs}
}

// ServeHTTP implements http.Handler.
func (h *LogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.logs.Entries(r.URL.Query().Get("component")))
}
