package logging

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultRecorderLimit is the number of entries a Recorder keeps when no
// limit is given.
const DefaultRecorderLimit = 200

// Entry is a single recorded log record.
type Entry struct {
	Time       time.Time      `json:"time"`
	Level      string         `json:"level"`
	Component  string         `json:"component"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Recorder keeps the most recent log records at or above a minimum level.
// It is safe for concurrent use.
type Recorder struct {
	level slog.Level
	limit int

	mu      sync.RWMutex
	entries []Entry // oldest first, protected by mu
}

// NewRecorder creates a Recorder holding at most limit entries of level or
// above.
func NewRecorder(limit int, level slog.Level) *Recorder {
	if limit <= 0 {
		limit = DefaultRecorderLimit
	}
	return &Recorder{
		level:   level,
		limit:   limit,
		entries: make([]Entry, 0, limit),
	}
}

// Logger returns a logger that writes through base and records every entry
// under component.
func (r *Recorder) Logger(base *slog.Logger, component string) *slog.Logger {
	return slog.New(newRecordingHandler(base.Handler(), r, component))
}

// Add stores e, evicting the oldest entry when the recorder is full.
func (r *Recorder) Add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) == r.limit {
		copy(r.entries, r.entries[1:])
		r.entries = r.entries[:len(r.entries)-1]
	}
	r.entries = append(r.entries, e)
}

// Entries returns a copy of the recorded entries, oldest first. An empty
// component returns entries from every component.
func (r *Recorder) Entries(component string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if component == "" || e.Component == component {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
