package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/eventwall/photowall/internal/domain/enums"
	"github.com/eventwall/photowall/internal/domain/model"
)

const (
	displayPrefix    = keyPrefix + "display:"
	displayGenPrefix = keyPrefix + "display-gen:"
)

var errGenerationMoved = errors.New("display generation moved")

// DisplayCacheRepo caches the ranked approved list per event. Every mutation
// that can change the list bumps the event generation and deletes the key; a
// fill only lands when the generation it started from is still current.
type DisplayCacheRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

type cachedPhoto struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	DisplayOrder  *int      `json:"display_order"`
	SubmitterName string    `json:"submitter_name"`
	Caption       string    `json:"caption"`
	OriginalPath  string    `json:"original_path"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewDisplayCacheRepo(client *goredis.Client, ttl time.Duration) *DisplayCacheRepo {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &DisplayCacheRepo{client: client, ttl: ttl}
}

// Get returns the cached list and whether it was present.
func (r *DisplayCacheRepo) Get(ctx context.Context, eventID string) ([]model.Photo, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}

	raw, err := r.client.Get(ctx, displayKey(eventID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get display cache: %w", err)
	}

	var cached []cachedPhoto
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("decode display cache: %w", err)
	}

	out := make([]model.Photo, 0, len(cached))
	for _, c := range cached {
		out = append(out, model.Photo{
			ID:            c.ID,
			EventID:       c.EventID,
			Status:        enums.PhotoStatusApproved,
			DisplayOrder:  c.DisplayOrder,
			SubmitterName: c.SubmitterName,
			Caption:       c.Caption,
			OriginalPath:  c.OriginalPath,
			CreatedAt:     c.CreatedAt,
			UpdatedAt:     c.UpdatedAt,
		})
	}
	return out, true, nil
}

// Generation returns the event's invalidation counter, zero before the first
// invalidation.
func (r *DisplayCacheRepo) Generation(ctx context.Context, eventID string) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	gen, err := r.client.Get(ctx, displayGenKey(eventID)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get display generation: %w", err)
	}
	return gen, nil
}

// Fill stores photos only if the event generation still equals generation.
// It reports whether the list was written.
func (r *DisplayCacheRepo) Fill(ctx context.Context, eventID string, generation int64, photos []model.Photo) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	cached := make([]cachedPhoto, 0, len(photos))
	for _, p := range photos {
		cached = append(cached, cachedPhoto{
			ID:            p.ID,
			EventID:       p.EventID,
			DisplayOrder:  p.DisplayOrder,
			SubmitterName: p.SubmitterName,
			Caption:       p.Caption,
			OriginalPath:  p.OriginalPath,
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
		})
	}

	payload, err := json.Marshal(cached)
	if err != nil {
		return false, fmt.Errorf("encode display cache: %w", err)
	}

	genKey := displayGenKey(eventID)
	err = r.client.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if errors.Is(err, goredis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != generation {
			return errGenerationMoved
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, displayKey(eventID), payload, r.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errGenerationMoved), errors.Is(err, goredis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("fill display cache: %w", err)
	}
}

func (r *DisplayCacheRepo) Invalidate(ctx context.Context, eventID string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, displayGenKey(eventID))
		pipe.Del(ctx, displayKey(eventID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate display cache: %w", err)
	}
	return nil
}

func displayKey(eventID string) string {
	return displayPrefix + eventID
}

func displayGenKey(eventID string) string {
	return displayGenPrefix + eventID
}
