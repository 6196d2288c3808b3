package dates

import (
	"testing"
	"time"
)

// TestLastWeekRangeAt verifies the window math against a fixed clock
func TestLastWeekRangeAt(t *testing.T) {
	// Wednesday 2024-06-12 15:30 UTC; the last completed week is
	// Sunday 2024-06-02 through Saturday 2024-06-08.
	now := time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		weeksAgo  int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "last completed week",
			weeksAgo:  0,
			wantStart: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 6, 8, 23, 59, 59, 999000000, time.UTC),
		},
		{
			name:      "one week earlier",
			weeksAgo:  1,
			wantStart: time.Date(2024, 5, 26, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 6, 1, 23, 59, 59, 999000000, time.UTC),
		},
		{
			name:      "four weeks earlier",
			weeksAgo:  4,
			wantStart: time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 5, 11, 23, 59, 59, 999000000, time.UTC),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			window, err := LastWeekRangeAt(now, tc.weeksAgo)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !window.Start.Equal(tc.wantStart) {
				t.Errorf("Start = %v, want %v", window.Start, tc.wantStart)
			}
			if !window.End.Equal(tc.wantEnd) {
				t.Errorf("End = %v, want %v", window.End, tc.wantEnd)
			}
		})
	}
}

// TestLastWeekRangeAtDeterministic verifies that any reference time within
// the same week yields the same window
func TestLastWeekRangeAtDeterministic(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC),     // Sunday midnight
		time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC),  // Wednesday afternoon
		time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC), // Saturday night
	}

	first, err := LastWeekRangeAt(times[0], 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, now := range times[1:] {
		window, err := LastWeekRangeAt(now, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !window.Start.Equal(first.Start) || !window.End.Equal(first.End) {
			t.Errorf("window for %v = [%v, %v], want [%v, %v]",
				now, window.Start, window.End, first.Start, first.End)
		}
	}
}

func TestLastWeekRangeAtRejectsNegative(t *testing.T) {
	if _, err := LastWeekRangeAt(time.Now(), -1); err == nil {
		t.Error("expected error for negative weeksAgo")
	}
}

func TestWindowFormatting(t *testing.T) {
	window, err := LastWeekRangeAt(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := window.StartISO(), "2024-06-02T00:00:00.000Z"; got != want {
		t.Errorf("StartISO = %q, want %q", got, want)
	}
	if got, want := window.EndISO(), "2024-06-08T23:59:59.999Z"; got != want {
		t.Errorf("EndISO = %q, want %q", got, want)
	}
	if got, want := window.Label(), "20240602-20240608"; got != want {
		t.Errorf("Label = %q, want %q", got, want)
	}
}

func TestFileID(t *testing.T) {
	now := time.Date(2024, 6, 12, 9, 5, 3, 42*int(time.Millisecond), time.UTC)
	if got, want := FileID(now), "20240612090503042"; got != want {
		t.Errorf("FileID = %q, want %q", got, want)
	}
	if len(FileID(time.Now())) != 17 {
		t.Errorf("FileID should always be 17 characters")
	}
}
