// Package datekey converts dates to and from their storage keys.
package datekey

import "time"

// Layout is the day-granularity key format used for history lookups.
const Layout = "2006-01-02"

// Encode formats a date as its storage key. Two times on the same
// local calendar day always produce the same key.
func Encode(t time.Time) string {
	return t.Format(Layout)
}

// Decode parses a key back to local midnight of that day. Malformed
// keys return ok=false; callers skip them instead of failing.
func Decode(key string) (time.Time, bool) {
	t, err := time.ParseInLocation(Layout, key, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SameDay reports whether two times fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	return Encode(a) == Encode(b)
}

// Midnight truncates a time to local midnight of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
