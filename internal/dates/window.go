// Package dates computes the weekly export window.
//
// The pipeline always exports one completed Sunday-to-Saturday week. The
// helpers are deterministic and side-effect-free so the window math can be
// unit tested against a fixed clock.
package dates

import (
	"fmt"
	"time"
)

// isoMillis renders timestamps exactly to the millisecond with a Z suffix,
// matching what the Alvys search filters expect.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Window is a closed weekly export range: Start is Sunday 00:00:00.000 UTC
// and End is the following Saturday 23:59:59.999 UTC. Immutable once built.
type Window struct {
	Start time.Time
	End   time.Time
}

// StartISO returns the window start as an ISO-8601 millisecond string.
func (w Window) StartISO() string {
	return w.Start.UTC().Format(isoMillis)
}

// EndISO returns the window end as an ISO-8601 millisecond string.
func (w Window) EndISO() string {
	return w.End.UTC().Format(isoMillis)
}

// Label returns the compact yyyymmdd-yyyymmdd form used in artifact names.
func (w Window) Label() string {
	return w.Start.UTC().Format("20060102") + "-" + w.End.UTC().Format("20060102")
}

// startOfWeek returns the most recent Sunday 00:00:00.000 UTC on or before t.
func startOfWeek(t time.Time) time.Time {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}

// LastWeekRange returns the window for the most recently completed week.
// weeksAgo=0 is the week that ended last Saturday, weeksAgo=1 the week
// before that, and so on.
func LastWeekRange(weeksAgo int) (Window, error) {
	return LastWeekRangeAt(time.Now().UTC(), weeksAgo)
}

// LastWeekRangeAt is LastWeekRange evaluated against an explicit reference
// time instead of the wall clock.
func LastWeekRangeAt(now time.Time, weeksAgo int) (Window, error) {
	if weeksAgo < 0 {
		return Window{}, fmt.Errorf("weeksAgo must be >= 0, got %d", weeksAgo)
	}

	start := startOfWeek(now).AddDate(0, 0, -7*(weeksAgo+1))
	end := start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return Window{Start: start, End: end}, nil
}

// FileID generates the run identifier stamped onto every exported record:
// a yyyymmddHHMMSSmmm timestamp string.
func FileID(now time.Time) string {
	now = now.UTC()
	return now.Format("20060102150405") + fmt.Sprintf("%03d", now.Nanosecond()/int(time.Millisecond))
}
