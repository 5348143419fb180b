package activity

import (
	"sort"
	"time"
)

// layouts are tried in order when parsing a record's Date.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses the timestamp forms the backend is known to produce.
// Timestamps without a zone are read as UTC.
func ParseDate(date string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateGroup is the set of activities falling on one calendar day.
type DateGroup struct {
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
}

// sortKey pairs a record with its parsed Date.
type sortKey struct {
	a  Activity
	t  time.Time
	ok bool
}

// less orders unparseable dates last and breaks ties by ID. With byDay set,
// records are ordered by DateKey before their parsed instant.
func (k sortKey) less(o sortKey, byDay bool) bool {
	switch {
	case k.ok != o.ok:
		return k.ok
	case byDay && k.a.DateKey() != o.a.DateKey():
		return k.a.DateKey() < o.a.DateKey()
	case k.ok && !k.t.Equal(o.t):
		return k.t.Before(o.t)
	}
	return k.a.ID < o.a.ID
}

func sortInPlace(activities []Activity, byDay bool) {
	keys := make([]sortKey, len(activities))
	for i, a := range activities {
		t, ok := ParseDate(a.Date)
		keys[i] = sortKey{a: a, t: t, ok: ok}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].less(keys[j], byDay)
	})
	for i, k := range keys {
		activities[i] = k.a
	}
}

// SortByDate sorts activities ascending by parsed Date in place.
// Records whose Date cannot be parsed go last; ties are broken by ID.
func SortByDate(activities []Activity) {
	sortInPlace(activities, false)
}

// GroupByDate sorts a copy of activities by day, then by parsed Date, and
// buckets it by DateKey. Groups come out in ascending day order and each
// group keeps the sorted order of its members. The input slice is not
// modified.
func GroupByDate(activities []Activity) []DateGroup {
	sorted := make([]Activity, len(activities))
	copy(sorted, activities)
	sortInPlace(sorted, true)

	groups := make([]DateGroup, 0)
	index := make(map[string]int)
	for _, a := range sorted {
		key := a.DateKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DateGroup{Date: key})
		}
		groups[i].Activities = append(groups[i].Activities, a)
	}
	return groups
}
