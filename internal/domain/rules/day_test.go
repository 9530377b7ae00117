package rules

import (
	"testing"
	"time"
)

func TestDayKeyUsesTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	utc := time.Date(2026, 2, 8, 23, 30, 0, 0, time.UTC)
	if got := DayKey(utc, loc); got != "2026-02-09" {
		t.Fatalf("unexpected day key: got %s want 2026-02-09", got)
	}
	if got := DayKey(utc, nil); got != "2026-02-08" {
		t.Fatalf("unexpected default day key: got %s want 2026-02-08", got)
	}
}

func TestDayRange(t *testing.T) {
	from := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	got := DayRange(from, to)
	want := []string{"2026-02-27", "2026-02-28", "2026-03-01", "2026-03-02"}
	if len(got) != len(want) {
		t.Fatalf("unexpected range length: got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("day %d: got %s want %s", i, got[i], want[i])
		}
	}

	if got := DayRange(to, from); len(got) != 0 {
		t.Fatalf("inverted range must be empty, got %v", got)
	}
}
