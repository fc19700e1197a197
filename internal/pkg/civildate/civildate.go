// Package civildate computes calendar dates in a fixed named timezone.
// The daily usage window rolls over at local midnight in that timezone,
// not at the UTC day boundary.
package civildate

import "time"

// Layout is the stored wire format of a civil date.
const Layout = "2006-01-02"

// Today returns the current civil date label in loc.
func Today(loc *time.Location) string {
	return In(time.Now(), loc)
}

// In returns the civil date label of instant t as observed in loc.
func In(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(Layout)
}
