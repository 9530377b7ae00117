// Package ranking serves the approved photos in slideshow order and applies
// curator reorders.
package ranking

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/eventwall/photowall/internal/domain/errs"
	"github.com/eventwall/photowall/internal/domain/model"
	"github.com/eventwall/photowall/internal/domain/rules"
)

type Store interface {
	ListApproved(ctx context.Context, eventID string) ([]model.Photo, error)
	ApplyOrders(ctx context.Context, assignments []model.OrderAssignment) ([]model.Photo, error)
	PromoteToFront(ctx context.Context, photoID string) (model.Photo, error)
}

// Cache holds the ranked list per event. Invalidate bumps the event
// generation; Fill is a no-op when the generation moved since it was read.
type Cache interface {
	Get(ctx context.Context, eventID string) ([]model.Photo, bool, error)
	Generation(ctx context.Context, eventID string) (int64, error)
	Fill(ctx context.Context, eventID string, generation int64, photos []model.Photo) (bool, error)
	Invalidate(ctx context.Context, eventID string) error
}

type Observer interface {
	ObserveReorder(applied, skipped int)
	ObservePromotion()
}

type Service struct {
	store    Store
	cache    Cache
	observer Observer
	log      *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

func (s *Service) AttachCache(cache Cache) {
	s.cache = cache
}

func (s *Service) AttachObserver(observer Observer) {
	s.observer = observer
}

// OrderedList returns the event's approved photos in display order. A cache
// miss or cache failure falls through to the store.
func (s *Service) OrderedList(ctx context.Context, eventID string) ([]model.Photo, error) {
	if s.store == nil {
		return nil, fmt.Errorf("ranking store is nil")
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", errs.ErrInvalidRequest)
	}

	fillable := false
	var generation int64
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, eventID)
		if err != nil {
			s.log.Warn("display cache read failed", zap.String("event_id", eventID), zap.Error(err))
		}
		if ok {
			return cached, nil
		}
		generation, err = s.cache.Generation(ctx, eventID)
		if err != nil {
			s.log.Warn("display cache generation read failed", zap.String("event_id", eventID), zap.Error(err))
		} else {
			fillable = true
		}
	}

	approved, err := s.store.ListApproved(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list approved photos: %w", err)
	}
	ordered := rules.OrderApproved(approved)

	if fillable {
		stored, err := s.cache.Fill(ctx, eventID, generation, ordered)
		if err != nil {
			s.log.Warn("display cache write failed", zap.String("event_id", eventID), zap.Error(err))
		} else if !stored {
			s.log.Debug("display cache fill skipped, list changed during read", zap.String("event_id", eventID))
		}
	}

	return ordered, nil
}

// Reorder applies the batch atomically. Unknown photo ids are skipped and the
// result holds only the applied entries.
func (s *Service) Reorder(ctx context.Context, assignments []model.OrderAssignment) ([]model.Photo, error) {
	if s.store == nil {
		return nil, fmt.Errorf("ranking store is nil")
	}

	batch := make([]model.OrderAssignment, 0, len(assignments))
	unique := make(map[string]struct{}, len(assignments))
	for i, a := range assignments {
		id := strings.TrimSpace(a.PhotoID)
		if id == "" {
			return nil, fmt.Errorf("%w: entry %d has no photo id", errs.ErrInvalidRequest, i)
		}
		if a.DisplayOrder < 0 {
			return nil, fmt.Errorf("%w: entry %d has negative display order", errs.ErrInvalidRequest, i)
		}
		batch = append(batch, model.OrderAssignment{PhotoID: id, DisplayOrder: a.DisplayOrder})
		unique[id] = struct{}{}
	}

	applied, err := s.store.ApplyOrders(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("apply display orders: %w", err)
	}

	events := make(map[string]struct{})
	for _, photo := range applied {
		events[photo.EventID] = struct{}{}
	}
	for eventID := range events {
		s.invalidate(ctx, eventID)
	}

	// Repeated ids collapse to one applied entry, so unknown ids are counted
	// against the distinct ids in the batch.
	skipped := len(unique) - len(applied)
	if s.observer != nil {
		s.observer.ObserveReorder(len(applied), skipped)
	}
	if skipped > 0 {
		s.log.Debug("reorder skipped unknown photos", zap.Int("skipped", skipped))
	}

	return applied, nil
}

// PromoteToFront puts the photo first on the wall and keeps everyone else's
// relative order.
func (s *Service) PromoteToFront(ctx context.Context, photoID string) (model.Photo, error) {
	if s.store == nil {
		return model.Photo{}, fmt.Errorf("ranking store is nil")
	}
	photoID = strings.TrimSpace(photoID)
	if photoID == "" {
		return model.Photo{}, fmt.Errorf("%w: image id is required", errs.ErrInvalidRequest)
	}

	photo, err := s.store.PromoteToFront(ctx, photoID)
	if err != nil {
		return model.Photo{}, fmt.Errorf("promote photo: %w", err)
	}

	s.invalidate(ctx, photo.EventID)
	if s.observer != nil {
		s.observer.ObservePromotion()
	}
	s.log.Info("photo promoted", zap.String("photo_id", photo.ID), zap.String("event_id", photo.EventID))

	return photo, nil
}

func (s *Service) invalidate(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		s.log.Warn("display cache invalidation failed", zap.String("event_id", eventID), zap.Error(err))
	}
}
