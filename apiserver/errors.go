package apiserver

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when no activity has the requested id.
	ErrNotFound = errors.New("activity not found")
	// ErrConflict is returned when creating an activity whose id exists.
	ErrConflict = errors.New("activity already exists")
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
