package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/nomis52/activities/activity"
	"github.com/nomis52/activities/buildinfo"
	"github.com/nomis52/activities/registry"
	"github.com/nomis52/activities/server/refresh"
)

// ServerInfo holds metadata about the running server instance.
type ServerInfo struct {
	Build     buildinfo.Properties `json:"build"`
	StartedAt time.Time            `json:"started_at"`
	Hostname  string               `json:"hostname"`
}

// NextRefreshResponse describes the scheduled refresh.
type NextRefreshResponse struct {
	Scheduled bool       `json:"scheduled"`
	NextRun   *time.Time `json:"next_run,omitempty"`
}

// StatusResponse is the consolidated response for /api/status.
type StatusResponse struct {
	LoadingInitial bool                `json:"loading_initial"`
	Submitting     bool                `json:"submitting"`
	Target         string              `json:"target"`
	Pending        []registry.Pending  `json:"pending"`
	Count          int                 `json:"count"`
	Selected       *activity.Activity  `json:"selected,omitempty"`
	NextRefresh    NextRefreshResponse `json:"next_refresh"`
	LastRefresh    *refresh.Result     `json:"last_refresh,omitempty"`
	Server         ServerInfo          `json:"server"`
}

// StatusHandler reports the registry state.
type StatusHandler struct {
	state    StateProvider
	schedule ScheduleProvider
	info     ServerInfo
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(state StateProvider, schedule ScheduleProvider, info ServerInfo) *StatusHandler {
	return &StatusHandler{
		state:    state,
		schedule: schedule,
		info:     info,
	}
}

// ServeHTTP implements http.Handler.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pending := make([]registry.Pending, 0)
	for _, p := range h.state.PendingAll() {
		pending = append(pending, p)
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].ID < pending[j].ID
	})

	resp := StatusResponse{
		LoadingInitial: h.state.LoadingInitial(),
		Submitting:     h.state.Submitting(),
		Target:         h.state.Target(),
		Pending:        pending,
		Count:          h.state.Len(),
		Server:         h.info,
	}
	if a, ok := h.state.Selected(); ok {
		resp.Selected = &a
	}
	if next := h.schedule.NextRun(); next != nil {
		resp.NextRefresh = NextRefreshResponse{Scheduled: true, NextRun: next}
	}
	resp.LastRefresh = h.schedule.LastRefresh()

	writeJSON(w, http.StatusOK, resp)
}
