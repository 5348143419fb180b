package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nomis52/activities/activity"
	"github.com/nomis52/activities/logging"
)

// Registry is the in-memory activity store. Create it with New.
type Registry struct {
	api     API
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time

	mu            sync.RWMutex
	activities    map[string]activity.Activity // protected by mu
	selected      *activity.Activity           // protected by mu
	awaitingFirst bool                         // protected by mu
	loads         int                          // protected by mu
	pending       map[uint64]Pending           // protected by mu, keyed by seq
	seq           uint64                       // protected by mu
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger failures are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithMetrics records operation outcomes and cache size.
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// New creates an empty Registry backed by api. LoadingInitial reports true
// until the first load completes.
func New(api API, opts ...Option) *Registry {
	r := &Registry{
		api:           api,
		logger:        logging.Discard(),
		now:           time.Now,
		activities:    make(map[string]activity.Activity),
		awaitingFirst: true,
		pending:       make(map[uint64]Pending),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadAll fetches the whole collection and upserts every record, with its
// Date normalized. LoadingInitial is cleared whether or not the call succeeds.
func (r *Registry) LoadAll(ctx context.Context) error {
	r.startLoad()
	done := r.metrics.start(OpList)

	activities, err := r.api.List(ctx)

	r.mu.Lock()
	if err == nil {
		for _, a := range activities {
			r.activities[a.ID] = a.Normalized()
		}
	}
	r.finishLoadLocked()
	size := len(r.activities)
	r.mu.Unlock()

	done(err)
	if err != nil {
		r.logger.Error("failed to load activities", "error", err)
		return fmt.Errorf("load activities: %w", err)
	}
	r.metrics.setSize(size)
	r.logger.Debug("loaded activities", "count", len(activities))
	return nil
}

// LoadOne selects the activity with the given id. A cached record is selected
// directly without contacting the backend; otherwise it is fetched, cached
// and selected.
func (r *Registry) LoadOne(ctx context.Context, id string) error {
	r.mu.Lock()
	if a, ok := r.activities[id]; ok {
		r.selected = &a
		r.mu.Unlock()
		return nil
	}
	r.loads++
	r.mu.Unlock()

	done := r.metrics.start(OpDetails)
	a, err := r.api.Details(ctx, id)

	r.mu.Lock()
	if err == nil {
		a = a.Normalized()
		r.activities[a.ID] = a
		r.selected = &a
	}
	r.finishLoadLocked()
	size := len(r.activities)
	r.mu.Unlock()

	done(err)
	if err != nil {
		r.logger.Error("failed to load activity", "id", id, "error", err)
		return fmt.Errorf("load activity %s: %w", id, err)
	}
	r.metrics.setSize(size)
	return nil
}

// Get returns the cached activity with the given id.
func (r *Registry) Get(id string) (activity.Activity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.activities[id]
	return a, ok
}

// Create sends a to the backend and caches it once the backend accepts it.
// A record without an ID is given a fresh one first, so the cached key and
// the backend's record agree.
func (r *Registry) Create(ctx context.Context, a activity.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	seq := r.begin(a.ID, OpCreate, "")
	done := r.metrics.start(OpCreate)

	err := r.api.Create(ctx, a)

	r.mu.Lock()
	if err == nil {
		r.activities[a.ID] = a
	}
	r.endLocked(seq)
	size := len(r.activities)
	r.mu.Unlock()

	done(err)
	if err != nil {
		r.logger.Error("failed to create activity", "id", a.ID, "error", err)
		return fmt.Errorf("create activity %s: %w", a.ID, err)
	}
	r.metrics.setSize(size)
	return nil
}

// Update sends a to the backend and, once accepted, replaces both the cached
// record and the selected record.
func (r *Registry) Update(ctx context.Context, a activity.Activity) error {
	seq := r.begin(a.ID, OpUpdate, "")
	done := r.metrics.start(OpUpdate)

	err := r.api.Update(ctx, a)

	r.mu.Lock()
	if err == nil {
		r.activities[a.ID] = a
		selected := a
		r.selected = &selected
	}
	r.endLocked(seq)
	size := len(r.activities)
	r.mu.Unlock()

	done(err)
	if err != nil {
		r.logger.Error("failed to update activity", "id", a.ID, "error", err)
		return fmt.Errorf("update activity %s: %w", a.ID, err)
	}
	r.metrics.setSize(size)
	return nil
}

// Delete removes the activity with the given id from the backend and then from
// the cache. control names the UI element that started the delete and is
// reported by Target while the call is in flight.
func (r *Registry) Delete(ctx context.Context, id, control string) error {
	seq := r.begin(id, OpDelete, control)
	done := r.metrics.start(OpDelete)

	err := r.api.Delete(ctx, id)

	r.mu.Lock()
	if err == nil {
		delete(r.activities, id)
	}
	r.endLocked(seq)
	size := len(r.activities)
	r.mu.Unlock()

	done(err)
	if err != nil {
		r.logger.Error("failed to delete activity", "id", id, "control", control, "error", err)
		return fmt.Errorf("delete activity %s: %w", id, err)
	}
	r.metrics.setSize(size)
	return nil
}

// ActivitiesByDate returns the cached activities grouped by calendar day, in
// ascending date order. It is computed on every call.
func (r *Registry) ActivitiesByDate() []activity.DateGroup {
	return activity.GroupByDate(r.snapshot())
}

// Activities returns the cached activities sorted by date.
func (r *Registry) Activities() []activity.Activity {
	all := r.snapshot()
	activity.SortByDate(all)
	return all
}

func (r *Registry) snapshot() []activity.Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]activity.Activity, 0, len(r.activities))
	for _, a := range r.activities {
		all = append(all, a)
	}
	return all
}

// Len returns the number of cached activities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.activities)
}

// Selected returns the currently selected activity.
func (r *Registry) Selected() (activity.Activity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.selected == nil {
		return activity.Activity{}, false
	}
	return *r.selected, true
}

// ClearSelected drops the selected activity.
func (r *Registry) ClearSelected() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = nil
}

func (r *Registry) startLoad() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
}

// finishLoadLocked must be called with r.mu held.
func (r *Registry) finishLoadLocked() {
	r.loads--
	r.awaitingFirst = false
}
