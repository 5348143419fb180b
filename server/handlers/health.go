package handlers

import (
	"io"
	"net/http"
)

// HandleHealth is a simple liveness check that returns "ok". It does not
// contact the activities backend.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}
