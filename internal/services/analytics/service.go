// Package analytics records and reads the per-event daily counters.
package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eventwall/photowall/internal/domain/enums"
	"github.com/eventwall/photowall/internal/domain/errs"
	"github.com/eventwall/photowall/internal/domain/model"
	"github.com/eventwall/photowall/internal/domain/rules"
)

const (
	defaultWindowDays = 7
	maxWindowDays     = 366
)

type Store interface {
	Increment(ctx context.Context, eventID, day string, field enums.CounterField) error
	ListDaily(ctx context.Context, eventID string, from, to time.Time) ([]model.DailyCounter, error)
}

type Config struct {
	// Location decides where a day starts. Nil means UTC.
	Location *time.Location
}

type Service struct {
	store Store
	loc   *time.Location
	now   func() time.Time
}

func NewService(store Store, cfg Config) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	return &Service{
		store: store,
		loc:   loc,
		now:   time.Now,
	}
}

// Record bumps field by one for eventID on today's date.
func (s *Service) Record(ctx context.Context, eventID string, field enums.CounterField) error {
	if s.store == nil {
		return fmt.Errorf("analytics store is nil")
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" || !field.Valid() {
		return errs.ErrInvalidRequest
	}

	day := rules.DayKey(s.now(), s.loc)
	if err := s.store.Increment(ctx, eventID, day, field); err != nil {
		return fmt.Errorf("increment %s counter: %w", field, err)
	}
	return nil
}

// Daily lists counters for the inclusive day range. Zero bounds default to
// the last seven days ending today.
func (s *Service) Daily(ctx context.Context, eventID string, from, to time.Time) ([]model.DailyCounter, error) {
	if s.store == nil {
		return nil, fmt.Errorf("analytics store is nil")
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, errs.ErrInvalidRequest
	}

	today := s.now().In(s.loc)
	if to.IsZero() {
		to = today
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -(defaultWindowDays - 1))
	}
	from = dayStart(from)
	to = dayStart(to)

	if to.Before(from) {
		return nil, fmt.Errorf("%w: from is after to", errs.ErrInvalidRequest)
	}
	if to.Sub(from) > maxWindowDays*24*time.Hour {
		return nil, fmt.Errorf("%w: range exceeds %d days", errs.ErrInvalidRequest, maxWindowDays)
	}

	rows, err := s.store.ListDaily(ctx, eventID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list daily counters: %w", err)
	}
	return rows, nil
}

// ParseDay reads a yyyy-mm-dd query value; empty input yields the zero time.
func ParseDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad day %q", errs.ErrInvalidRequest, raw)
	}
	return day, nil
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
