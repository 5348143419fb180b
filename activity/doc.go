// Package activity defines the activity record and the read-side projections
// built from a set of records.
//
// Records carry their timestamp as text, exactly as the backend serves it.
// NormalizeDate strips the fractional-second suffix on ingestion and
// GroupByDate buckets records by calendar day in ascending order:
//
//	groups := activity.GroupByDate(records)
//	for _, g := range groups {
//		fmt.Println(g.Date, len(g.Activities))
//	}
package activity
