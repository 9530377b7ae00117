package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/eventwall/photowall/internal/domain/enums"
	"github.com/eventwall/photowall/internal/domain/errs"
	"github.com/eventwall/photowall/internal/domain/model"
	"github.com/eventwall/photowall/internal/domain/rules"
)

const countersPrefix = keyPrefix + "counters:"

// CounterRepo keeps one hash per event and day; HINCRBY makes each bump atomic.
type CounterRepo struct {
	client *goredis.Client
}

func NewCounterRepo(client *goredis.Client) *CounterRepo {
	return &CounterRepo{client: client}
}

func (r *CounterRepo) Increment(ctx context.Context, eventID, day string, field enums.CounterField) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if !field.Valid() {
		return fmt.Errorf("%w: unknown counter %q", errs.ErrInvalidRequest, field)
	}

	if err := r.client.HIncrBy(ctx, counterKey(eventID, day), string(field), 1).Err(); err != nil {
		return fmt.Errorf("increment counter %s: %w", field, err)
	}
	return nil
}

func (r *CounterRepo) ListDaily(ctx context.Context, eventID string, from, to time.Time) ([]model.DailyCounter, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}

	days := rules.DayRange(from, to)
	if len(days) == 0 {
		return []model.DailyCounter{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*goredis.MapStringStringCmd, 0, len(days))
	for _, day := range days {
		cmds = append(cmds, pipe.HGetAll(ctx, counterKey(eventID, day)))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != goredis.Nil {
		return nil, fmt.Errorf("read daily counters: %w", err)
	}

	out := make([]model.DailyCounter, 0, len(days))
	for i, cmd := range cmds {
		values, err := cmd.Result()
		if err != nil && err != goredis.Nil {
			return nil, fmt.Errorf("read counters for %s: %w", days[i], err)
		}
		if len(values) == 0 {
			continue
		}

		counter := model.DailyCounter{EventID: eventID, Day: days[i]}
		for _, field := range enums.CounterFields() {
			raw, ok := values[string(field)]
			if !ok {
				continue
			}
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse counter %s for %s: %w", field, days[i], err)
			}
			counter.Add(field, n)
		}
		out = append(out, counter)
	}

	return out, nil
}

func counterKey(eventID, day string) string {
	return countersPrefix + eventID + ":" + day
}
