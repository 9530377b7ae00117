package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eventwall/photowall/internal/domain/enums"
	"github.com/eventwall/photowall/internal/domain/errs"
	"github.com/eventwall/photowall/internal/domain/model"
	"github.com/eventwall/photowall/internal/domain/rules"
)

type counterKey struct {
	eventID string
	day     string
}

type CounterRepo struct {
	mu       sync.Mutex
	counters map[counterKey]*model.DailyCounter
}

func NewCounterRepo() *CounterRepo {
	return &CounterRepo{counters: make(map[counterKey]*model.DailyCounter)}
}

func (r *CounterRepo) Increment(_ context.Context, eventID, day string, field enums.CounterField) error {
	if !field.Valid() {
		return fmt.Errorf("%w: unknown counter %q", errs.ErrInvalidRequest, field)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := counterKey{eventID: eventID, day: day}
	counter, ok := r.counters[key]
	if !ok {
		counter = &model.DailyCounter{EventID: eventID, Day: day}
		r.counters[key] = counter
	}
	counter.Add(field, 1)
	return nil
}

func (r *CounterRepo) ListDaily(_ context.Context, eventID string, from, to time.Time) ([]model.DailyCounter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.DailyCounter, 0)
	for _, day := range rules.DayRange(from, to) {
		if counter, ok := r.counters[counterKey{eventID: eventID, day: day}]; ok {
			out = append(out, *counter)
		}
	}
	return out, nil
}
