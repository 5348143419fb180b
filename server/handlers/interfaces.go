// Package handlers provides HTTP handlers for the activity view server.
//
// Each handler is in its own file and implements http.Handler.
// Handlers use interfaces to access server dependencies, avoiding
// circular imports.
package handlers

import (
	"context"
	"time"

	"github.com/nomis52/activities/activity"
	"github.com/nomis52/activities/config"
	"github.com/nomis52/activities/logging"
	"github.com/nomis52/activities/registry"
	"github.com/nomis52/activities/server/refresh"
)

// ActivityReader provides the cached, grouped and selected activities.
type ActivityReader interface {
	ActivitiesByDate() []activity.DateGroup
	Get(id string) (activity.Activity, bool)
	Selected() (activity.Activity, bool)
}

// ActivityLoader selects a single activity, fetching it when not cached.
type ActivityLoader interface {
	LoadOne(ctx context.Context, id string) error
	Get(id string) (activity.Activity, bool)
}

// ActivityWriter performs remote writes.
type ActivityWriter interface {
	Create(ctx context.Context, a activity.Activity) error
	Update(ctx context.Context, a activity.Activity) error
	Delete(ctx context.Context, id, control string) error
}

// SelectionClearer drops the selected activity.
type SelectionClearer interface {
	ClearSelected()
}

// Loader reloads the whole collection.
type Loader interface {
	LoadAll(ctx context.Context) error
}

// StateProvider reports the progress flags of the registry.
type StateProvider interface {
	LoadingInitial() bool
	Submitting() bool
	Target() string
	PendingAll() map[string]registry.Pending
	Len() int
	Selected() (activity.Activity, bool)
}

// ScheduleProvider reports the scheduled refresh, if any.
type ScheduleProvider interface {
	NextRun() *time.Time
	LastRefresh() *refresh.Result
}

// ConfigProvider provides access to the current configuration.
type ConfigProvider interface {
	Config() *config.Config
}

// LogProvider provides recently recorded log entries.
type LogProvider interface {
	Entries(component string) []logging.Entry
}
