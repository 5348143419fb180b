package registry

import (
	"context"
	"time"

	"github.com/nomis52/activities/activity"
)

// API is the backend the Registry delegates to.
type API interface {
	List(ctx context.Context) ([]activity.Activity, error)
	Details(ctx context.Context, id string) (activity.Activity, error)
	Create(ctx context.Context, a activity.Activity) error
	Update(ctx context.Context, a activity.Activity) error
	Delete(ctx context.Context, id string) error
}

// Op identifies a Registry operation.
type Op string

const (
	OpList    Op = "list"
	OpDetails Op = "details"
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
)

// Pending describes an in-flight write against a single record.
type Pending struct {
	ID      string    `json:"id"`
	Op      Op        `json:"op"`
	Control string    `json:"control,omitempty"` // UI element that started a delete
	Since   time.Time `json:"since"`

	seq uint64
}
