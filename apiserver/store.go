package apiserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nomis52/activities/activity"
)

const activityColumns = `id, title, description, category, date, city, venue`

// Store persists activities in SQLite.
type Store struct {
	db *DB
}

// NewStore creates a new Store
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// List returns every activity ordered by date, then id.
func (s *Store) List(ctx context.Context) ([]activity.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+activityColumns+` FROM activities ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := make([]activity.Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// Get retrieves an activity by ID
func (s *Store) Get(ctx context.Context, id string) (activity.Activity, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)

	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return activity.Activity{}, ErrNotFound
	}
	if err != nil {
		return activity.Activity{}, fmt.Errorf("failed to get activity: %w", err)
	}
	return a, nil
}

// Create inserts a. Returns ErrConflict if the id is taken.
func (s *Store) Create(ctx context.Context, a activity.Activity) error {
	query := `
		INSERT INTO activities (` + activityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID,
		a.Title,
		a.Description,
		a.Category,
		a.Date,
		a.City,
		a.Venue,
	)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// Update replaces the activity with a's id. Returns ErrNotFound if there
// is none.
func (s *Store) Update(ctx context.Context, a activity.Activity) error {
	query := `
		UPDATE activities
		SET title = ?, description = ?, category = ?, date = ?, city = ?, venue = ?,
		    modified_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		a.Title,
		a.Description,
		a.Category,
		a.Date,
		a.City,
		a.Venue,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	return requireOneRow(res)
}

// Delete removes the activity with the given id. Returns ErrNotFound if
// there is none.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(row scanner) (activity.Activity, error) {
	var a activity.Activity
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Description,
		&a.Category,
		&a.Date,
		&a.City,
		&a.Venue,
	)
	return a, err
}
