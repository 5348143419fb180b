package activity

import (
	"strings"

	"github.com/google/uuid"
)

// Activity is a single record of the activities collection.
type Activity struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	// Date is the timestamp text, e.g. "2020-01-02T10:00:00".
	Date  string `json:"date"`
	City  string `json:"city"`
	Venue string `json:"venue"`
}

// New returns an Activity with a freshly generated identifier.
func New(title, date string) Activity {
	return Activity{
		ID:    uuid.NewString(),
		Title: title,
		Date:  date,
	}
}

// NormalizeDate truncates a timestamp at the first '.', dropping fractional
// seconds and whatever follows them.
func NormalizeDate(date string) string {
	if i := strings.IndexByte(date, '.'); i >= 0 {
		return date[:i]
	}
	return date
}

// Normalized returns a copy of a with its Date normalized.
func (a Activity) Normalized() Activity {
	a.Date = NormalizeDate(a.Date)
	return a
}

// DateKey returns the calendar day portion of the Date, i.e. everything
// before the 'T' separator.
func (a Activity) DateKey() string {
	day, _, _ := strings.Cut(a.Date, "T")
	return day
}
