// Package refresh reloads the activity collection on a cron schedule.
//
// Example usage:
//
//	trigger, err := refresh.New("*/15 * * * *", reg, logger)
//	if err != nil {
//	    return err
//	}
//	trigger.Start(ctx)  // Returns immediately, runs in background
//	<-ctx.Done()        // Wait for shutdown signal
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nomis52/activities/logging"
)

// ErrInvalidSchedule is returned when the cron specification cannot be parsed.
var ErrInvalidSchedule = errors.New("invalid refresh schedule")

// Loader is implemented by anything that can reload the whole collection.
type Loader interface {
	LoadAll(ctx context.Context) error
}

// Result describes the most recent scheduled refresh.
type Result struct {
	At    time.Time `json:"at"`
	Error string    `json:"error,omitempty"`
}

// Trigger calls Loader.LoadAll according to a cron schedule.
type Trigger struct {
	spec     string
	schedule cron.Schedule
	loader   Loader
	logger   *slog.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu   sync.RWMutex
	last *Result // protected by mu
}

// New creates a Trigger for spec, a standard 5-field cron expression
// (minute, hour, day, month, weekday). Returns ErrInvalidSchedule if spec
// cannot be parsed.
func New(spec string, loader Loader, logger *slog.Logger) (*Trigger, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, errors.Join(ErrInvalidSchedule, err)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Trigger{
		spec:     spec,
		schedule: schedule,
		loader:   loader,
		logger:   logger,
		now:      time.Now,
		after:    time.After,
	}, nil
}

// Spec returns the schedule the trigger was created with.
func (t *Trigger) Spec() string {
	return t.spec
}

// Start launches a goroutine that refreshes according to the schedule.
// Returns immediately. The goroutine exits when ctx is cancelled.
func (t *Trigger) Start(ctx context.Context) {
	go t.loop(ctx)
}

// NextRun returns the next scheduled refresh from now.
func (t *Trigger) NextRun() time.Time {
	return t.schedule.Next(t.now())
}

// Last returns the outcome of the most recent refresh, or nil before the
// first one has run.
func (t *Trigger) Last() *Result {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.last == nil {
		return nil
	}
	r := *t.last
	return &r
}

func (t *Trigger) loop(ctx context.Context) {
	for {
		nextRun := t.schedule.Next(t.now())
		wait := nextRun.Sub(t.now())

		t.logger.Debug("waiting for next refresh",
			"next_run", nextRun,
			"wait_duration", wait,
		)

		select {
		case <-ctx.Done():
			t.logger.Info("refresh trigger shutting down")
			return
		case <-t.after(wait):
			t.refresh(ctx)
		}
	}
}

// refresh runs one load. Failures are logged and not retried; the next tick
// tries again.
func (t *Trigger) refresh(ctx context.Context) {
	t.logger.Debug("starting scheduled refresh")

	err := t.loader.LoadAll(ctx)

	result := &Result{At: t.now()}
	if err != nil {
		result.Error = err.Error()
		t.logger.Warn("scheduled refresh failed", "error", err)
	} else {
		t.logger.Info("scheduled refresh completed")
	}

	t.mu.Lock()
	t.last = result
	t.mu.Unlock()
}
