// Package moderation applies curator decisions to submitted photos.
package moderation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/eventwall/photowall/internal/domain/enums"
	"github.com/eventwall/photowall/internal/domain/errs"
	"github.com/eventwall/photowall/internal/domain/model"
	"github.com/eventwall/photowall/internal/domain/rules"
)

type Store interface {
	GetPhoto(ctx context.Context, photoID string) (model.Photo, error)
	SetStatus(ctx context.Context, photoID string, status enums.PhotoStatus) (model.Photo, error)
}

type CounterRecorder interface {
	Record(ctx context.Context, eventID string, field enums.CounterField) error
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, eventID string) error
}

type Observer interface {
	ObserveModeration(action enums.ModerationAction)
}

type Service struct {
	store    Store
	counters CounterRecorder
	cache    CacheInvalidator
	observer Observer
	log      *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

func (s *Service) AttachCounters(counters CounterRecorder) {
	s.counters = counters
}

func (s *Service) AttachCache(cache CacheInvalidator) {
	s.cache = cache
}

func (s *Service) AttachObserver(observer Observer) {
	s.observer = observer
}

// Moderate moves the photo to the status named by action. The status change
// is the only part that can fail the call; the counter bump and cache
// invalidation that follow are logged on failure.
func (s *Service) Moderate(ctx context.Context, photoID string, action enums.ModerationAction) (model.Photo, error) {
	if s.store == nil {
		return model.Photo{}, fmt.Errorf("moderation store is nil")
	}
	photoID = strings.TrimSpace(photoID)
	if photoID == "" {
		return model.Photo{}, fmt.Errorf("%w: photo id is required", errs.ErrInvalidRequest)
	}
	if _, err := rules.TargetStatus(action); err != nil {
		return model.Photo{}, err
	}

	current, err := s.store.GetPhoto(ctx, photoID)
	if err != nil {
		return model.Photo{}, fmt.Errorf("load photo: %w", err)
	}

	target, err := rules.NextStatus(current.Status, action)
	if err != nil {
		return model.Photo{}, err
	}

	photo, err := s.store.SetStatus(ctx, photoID, target)
	if err != nil {
		return model.Photo{}, fmt.Errorf("set photo status: %w", err)
	}

	if s.observer != nil {
		s.observer.ObserveModeration(action)
	}
	s.recordCounter(ctx, photo, target)
	s.invalidate(ctx, photo.EventID)

	s.log.Info("photo moderated",
		zap.String("photo_id", photo.ID),
		zap.String("event_id", photo.EventID),
		zap.String("from", current.Status.String()),
		zap.String("to", photo.Status.String()),
	)

	return photo, nil
}

func (s *Service) recordCounter(ctx context.Context, photo model.Photo, status enums.PhotoStatus) {
	if s.counters == nil {
		return
	}
	field, ok := rules.CounterForStatus(status)
	if !ok {
		return
	}
	if err := s.counters.Record(ctx, photo.EventID, field); err != nil {
		s.log.Warn("moderation counter increment failed",
			zap.String("photo_id", photo.ID),
			zap.String("counter", string(field)),
			zap.Error(err),
		)
	}
}

func (s *Service) invalidate(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		s.log.Warn("display cache invalidation failed", zap.String("event_id", eventID), zap.Error(err))
	}
}
