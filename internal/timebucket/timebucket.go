// Package timebucket derives categorical grouping labels from timestamps.
// Labels are plain strings chosen so that, where a bucket has a chronology,
// lexicographic order equals chronological order.
package timebucket

import (
	"fmt"
	"time"
)

// Grouping column names attached to evaluation rows in plain mode.
const (
	Global    = "Global"
	Daily     = "Daily"
	DayOfWeek = "Day of Week"
	Weekly    = "Weekly"
	Monthly   = "Monthly"
	Quarterly = "Quarterly"
	Yearly    = "Yearly"
)

// Names returns every grouping column name, coarsest last.
func Names() []string {
	return []string{Global, Daily, DayOfWeek, Weekly, Monthly, Quarterly, Yearly}
}

// Valid reports whether name is a known grouping column.
func Valid(name string) bool {
	for _, n := range Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Labels derives every grouping label for a timestamp.
func Labels(t time.Time) map[string]string {
	return map[string]string{
		Global:    "Global",
		Daily:     t.Format("2006-01-02"),
		DayOfWeek: t.Weekday().String(),
		Weekly:    weekLabel(t),
		Monthly:   t.Format("2006-01"),
		Quarterly: quarterLabel(t),
		Yearly:    t.Format("2006"),
	}
}

// weekLabel uses the ISO week-date year, which can differ from the calendar
// year around January 1st.
func weekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func quarterLabel(t time.Time) string {
	quarter := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("%d-Q%d", t.Year(), quarter)
}
