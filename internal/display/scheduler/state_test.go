package scheduler

import (
	"testing"
	"time"
)

func images(ids ...string) []Image {
	out := make([]Image, 0, len(ids))
	for _, id := range ids {
		out = append(out, Image{ID: id})
	}
	return out
}

func currentID(t *testing.T, s *State) string {
	t.Helper()
	img, ok := s.Current()
	if !ok {
		return ""
	}
	return img.ID
}

func TestStateNextAndPreviousWrap(t *testing.T) {
	s := NewState(time.Second)
	s.ApplyImages(images("a", "b", "c"))

	if !s.Previous() || currentID(t, &s) != "c" {
		t.Fatalf("previous from first should wrap to last, got %q", currentID(t, &s))
	}
	if !s.Next() || currentID(t, &s) != "a" {
		t.Fatalf("next from last should wrap to first, got %q", currentID(t, &s))
	}

	for i := 0; i < 3; i++ {
		s.Next()
	}
	if s.Index() != 0 {
		t.Fatalf("three steps on three images should return to 0, got %d", s.Index())
	}
}

func TestStateTickAdvancesWithWraparound(t *testing.T) {
	s := NewState(time.Second)
	s.ApplyImages(images("a", "b"))

	want := []string{"b", "a", "b"}
	for i, id := range want {
		if !s.Tick() {
			t.Fatalf("tick %d should advance", i)
		}
		if got := currentID(t, &s); got != id {
			t.Fatalf("tick %d: expected %q, got %q", i, id, got)
		}
	}
}

func TestStatePausedTicksNeverMove(t *testing.T) {
	s := NewState(time.Second)
	s.ApplyImages(images("a", "b", "c"))
	s.Next()
	s.SetPaused(true)

	for i := 0; i < 10; i++ {
		if s.Tick() {
			t.Fatalf("paused tick advanced")
		}
	}
	if s.Index() != 1 {
		t.Fatalf("expected index 1, got %d", s.Index())
	}

	if !s.Next() || s.Index() != 2 {
		t.Fatalf("manual navigation should work while paused, got %d", s.Index())
	}

	s.SetPaused(false)
	if !s.Tick() || s.Index() != 0 {
		t.Fatalf("resumed tick should advance, got %d", s.Index())
	}
}

func TestStateEmptyList(t *testing.T) {
	s := NewState(0)
	if s.Interval() != DefaultInterval {
		t.Fatalf("expected default interval, got %v", s.Interval())
	}
	if !s.Empty() {
		t.Fatalf("new state should be empty")
	}
	if s.Tick() || s.Next() || s.Previous() {
		t.Fatalf("empty state must not move")
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("empty state has no current image")
	}

	s.ApplyImages(images("a"))
	if !s.Tick() || currentID(t, &s) != "a" {
		t.Fatalf("single image should stay current")
	}
}

func TestStateIndexIsPositionalAcrossRefresh(t *testing.T) {
	s := NewState(time.Second)
	s.ApplyImages(images("a", "b", "c", "d"))
	s.Next()
	s.Next()

	s.ApplyImages(images("x", "a", "b", "c", "d"))
	if s.Index() != 2 || currentID(t, &s) != "b" {
		t.Fatalf("index should stay at position 2, got %d (%q)", s.Index(), currentID(t, &s))
	}

	s.Next()
	s.Next()
	s.ApplyImages(images("a", "b"))
	if s.Index() != 1 {
		t.Fatalf("index should clamp to last entry, got %d", s.Index())
	}

	s.ApplyImages(nil)
	if s.Index() != 0 || !s.Empty() {
		t.Fatalf("emptied list should reset index")
	}
}

func TestStateApplyImagesCopies(t *testing.T) {
	s := NewState(time.Second)
	list := images("a", "b")
	s.ApplyImages(list)
	list[0].ID = "mutated"

	if currentID(t, &s) != "a" {
		t.Fatalf("state must not alias caller slice")
	}
}

func TestStateSetInterval(t *testing.T) {
	s := NewState(time.Second)
	if s.SetInterval(time.Second) {
		t.Fatalf("same interval should not report a change")
	}
	if s.SetInterval(-time.Second) {
		t.Fatalf("non-positive interval should be ignored")
	}
	if !s.SetInterval(3*time.Second) || s.Interval() != 3*time.Second {
		t.Fatalf("expected interval change")
	}
}
