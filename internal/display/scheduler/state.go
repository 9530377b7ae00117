package scheduler

import (
	"time"

	"github.com/eventwall/photowall/internal/transport/http/dto"
)

const DefaultInterval = 8 * time.Second

type Image = dto.DisplayImageResponse

// State is the slideshow cursor over the latest ranked list. It is not safe
// for concurrent use; Session serializes access.
type State struct {
	images   []Image
	current  int
	paused   bool
	interval time.Duration
}

func NewState(interval time.Duration) State {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return State{interval: interval}
}

// ApplyImages replaces the list. The index stays positional and is clamped
// to the last entry when the list shrinks below it.
func (s *State) ApplyImages(images []Image) {
	s.images = append(s.images[:0:0], images...)
	switch {
	case len(s.images) == 0:
		s.current = 0
	case s.current >= len(s.images):
		s.current = len(s.images) - 1
	}
}

// Tick advances by one when running and non-empty.
func (s *State) Tick() bool {
	if s.paused || len(s.images) == 0 {
		return false
	}
	s.current = (s.current + 1) % len(s.images)
	return true
}

func (s *State) Next() bool {
	if len(s.images) == 0 {
		return false
	}
	s.current = (s.current + 1) % len(s.images)
	return true
}

func (s *State) Previous() bool {
	if len(s.images) == 0 {
		return false
	}
	s.current = (s.current - 1 + len(s.images)) % len(s.images)
	return true
}

func (s *State) SetPaused(paused bool) {
	s.paused = paused
}

func (s *State) Paused() bool {
	return s.paused
}

func (s *State) SetInterval(interval time.Duration) bool {
	if interval <= 0 || interval == s.interval {
		return false
	}
	s.interval = interval
	return true
}

func (s *State) Interval() time.Duration {
	return s.interval
}

func (s *State) Index() int {
	return s.current
}

func (s *State) Len() int {
	return len(s.images)
}

func (s *State) Empty() bool {
	return len(s.images) == 0
}

func (s *State) Current() (Image, bool) {
	if len(s.images) == 0 {
		return Image{}, false
	}
	return s.images[s.current], true
}
