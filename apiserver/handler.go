package apiserver

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nomis52/activities/activity"
	"github.com/nomis52/activities/logging"
)

const maxBodyBytes = 1 << 20

// Handler serves the activities API from a Store.
type Handler struct {
	store  *Store
	logger *slog.Logger
	token  string
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithToken requires every API request to carry token as a bearer token.
// /health stays open.
func WithToken(token string) Option {
	return func(h *Handler) {
		h.token = token
	}
}

// NewHandler creates a Handler backed by store.
func NewHandler(store *Store, opts ...Option) *Handler {
	h := &Handler{
		store:  store,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes adds the API routes to mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", healthz)
	mux.Handle("GET /api/activities", h.authorize(h.listActivities))
	mux.Handle("POST /api/activities", h.authorize(h.createActivity))
	mux.Handle("GET /api/activities/{id}", h.authorize(h.getActivity))
	mux.Handle("PUT /api/activities/{id}", h.authorize(h.updateActivity))
	mux.Handle("DELETE /api/activities/{id}", h.authorize(h.deleteActivity))
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) authorize(next http.HandlerFunc) http.Handler {
	if h.token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
			return
		}
		next(w, r)
	})
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.store.List(r.Context())
	if err != nil {
		h.serverError(w, "failed to list activities", err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "activity not found")
		return
	}
	if err != nil {
		h.serverError(w, "failed to get activity", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	a, ok := decodeActivity(w, r)
	if !ok {
		return
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	err := h.store.Create(r.Context(), a)
	if errors.Is(err, ErrConflict) {
		writeError(w, http.StatusConflict, "conflict", "activity already exists")
		return
	}
	if err != nil {
		h.serverError(w, "failed to create activity", err)
		return
	}

	h.logger.Info("activity created", "id", a.ID)
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) updateActivity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	a, ok := decodeActivity(w, r)
	if !ok {
		return
	}
	if a.ID == "" {
		a.ID = id
	}
	if a.ID != id {
		writeError(w, http.StatusBadRequest, "invalid_request", "activity id does not match path")
		return
	}

	err := h.store.Update(r.Context(), a)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "activity not found")
		return
	}
	if err != nil {
		h.serverError(w, "failed to update activity", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) deleteActivity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "activity not found")
		return
	}
	if err != nil {
		h.serverError(w, "failed to delete activity", err)
		return
	}

	h.logger.Info("activity deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "server_error", msg)
}

func decodeActivity(w http.ResponseWriter, r *http.Request) (activity.Activity, bool) {
	var a activity.Activity
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return a, false
	}
	return a, true
}

type errorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorResponse{Code: code, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
