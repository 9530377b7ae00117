// Package photos handles attendee submissions and the curator's read views of
// the photo pool.
package photos

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eventwall/photowall/internal/domain/enums"
	"github.com/eventwall/photowall/internal/domain/errs"
	"github.com/eventwall/photowall/internal/domain/model"
	"github.com/eventwall/photowall/internal/pkg/validate"
)

const (
	defaultMaxUploadBytes = 15 << 20
	maxSubmitterRunes     = 120
	maxCaptionRunes       = 500
)

var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
	"image/heic": {},
}

type Store interface {
	CreatePhoto(ctx context.Context, photo model.Photo) (model.Photo, error)
	ListPhotos(ctx context.Context, eventID string, status enums.PhotoStatus) ([]model.Photo, error)
	CountByStatus(ctx context.Context, eventID string) (model.StatusCounts, error)
}

type CounterRecorder interface {
	Record(ctx context.Context, eventID string, field enums.CounterField) error
}

type Config struct {
	MaxUploadBytes int64
}

type Service struct {
	store    Store
	storage  ObjectStorage
	counters CounterRecorder
	cfg      Config
	now      func() time.Time
	log      *zap.Logger
}

type SubmitInput struct {
	EventID       string
	SubmitterName string
	Caption       string
	FileName      string
	ContentType   string
	Body          io.Reader
	Size          int64
}

func NewService(store Store, storage ObjectStorage, cfg Config, log *zap.Logger) *Service {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		store:   store,
		storage: storage,
		cfg:     cfg,
		now:     time.Now,
		log:     log,
	}
}

func (s *Service) AttachCounters(counters CounterRecorder) {
	s.counters = counters
}

func (s *Service) MaxUploadBytes() int64 {
	return s.cfg.MaxUploadBytes
}

// Submit stores the original and records a pending photo for the event.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (model.Photo, error) {
	if s.store == nil || s.storage == nil {
		return model.Photo{}, fmt.Errorf("photo dependencies are not configured")
	}
	if err := s.validateSubmit(in); err != nil {
		return model.Photo{}, err
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return model.Photo{}, fmt.Errorf("ensure bucket: %w", err)
	}

	eventID := strings.TrimSpace(in.EventID)
	objectKey, err := buildPhotoObjectKey(eventID, in.FileName, s.now())
	if err != nil {
		return model.Photo{}, fmt.Errorf("build object key: %w", err)
	}

	if err := s.storage.PutPhoto(ctx, objectKey, in.Body, in.Size, normalizeContentType(in.ContentType)); err != nil {
		return model.Photo{}, fmt.Errorf("put object: %w", err)
	}

	photo, err := s.store.CreatePhoto(ctx, model.Photo{
		EventID:       eventID,
		SubmitterName: strings.TrimSpace(in.SubmitterName),
		Caption:       strings.TrimSpace(in.Caption),
		OriginalPath:  objectKey,
	})
	if err != nil {
		if delErr := s.storage.Delete(ctx, objectKey); delErr != nil {
			s.log.Warn("orphaned upload cleanup failed", zap.String("key", objectKey), zap.Error(delErr))
		}
		return model.Photo{}, fmt.Errorf("create photo record: %w", err)
	}

	s.record(ctx, eventID, enums.CounterUploads)
	s.log.Info("photo submitted", zap.String("photo_id", photo.ID), zap.String("event_id", eventID), zap.Int64("bytes", in.Size))

	return photo, nil
}

// List returns the event's photos newest first. An empty status lists all.
func (s *Service) List(ctx context.Context, eventID string, status enums.PhotoStatus) ([]model.Photo, error) {
	if s.store == nil {
		return nil, fmt.Errorf("photo store is nil")
	}
	if !validate.Required(eventID) {
		return nil, fmt.Errorf("%w: event id is required", errs.ErrInvalidRequest)
	}
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", errs.ErrInvalidRequest, status)
	}

	photos, err := s.store.ListPhotos(ctx, strings.TrimSpace(eventID), status)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	return photos, nil
}

func (s *Service) Stats(ctx context.Context, eventID string) (model.StatusCounts, error) {
	if s.store == nil {
		return model.StatusCounts{}, fmt.Errorf("photo store is nil")
	}
	if !validate.Required(eventID) {
		return model.StatusCounts{}, fmt.Errorf("%w: event id is required", errs.ErrInvalidRequest)
	}

	counts, err := s.store.CountByStatus(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return model.StatusCounts{}, fmt.Errorf("count photos: %w", err)
	}
	return counts, nil
}

// RecordView counts one display of the wall for the event.
func (s *Service) RecordView(ctx context.Context, eventID string) error {
	return s.recordStrict(ctx, eventID, enums.CounterViews)
}

func (s *Service) RecordQRScan(ctx context.Context, eventID string) error {
	return s.recordStrict(ctx, eventID, enums.CounterQRScans)
}

func (s *Service) recordStrict(ctx context.Context, eventID string, field enums.CounterField) error {
	if !validate.Required(eventID) {
		return fmt.Errorf("%w: event id is required", errs.ErrInvalidRequest)
	}
	if s.counters == nil {
		return fmt.Errorf("counters are not configured")
	}
	if err := s.counters.Record(ctx, strings.TrimSpace(eventID), field); err != nil {
		return fmt.Errorf("record %s: %w", field, err)
	}
	return nil
}

func (s *Service) record(ctx context.Context, eventID string, field enums.CounterField) {
	if s.counters == nil {
		return
	}
	if err := s.counters.Record(ctx, eventID, field); err != nil {
		s.log.Warn("counter increment failed", zap.String("event_id", eventID), zap.String("counter", string(field)), zap.Error(err))
	}
}

func (s *Service) validateSubmit(in SubmitInput) error {
	switch {
	case !validate.Required(in.EventID):
		return fmt.Errorf("%w: event id is required", errs.ErrInvalidRequest)
	case in.Body == nil || in.Size <= 0:
		return fmt.Errorf("%w: file is required", errs.ErrInvalidRequest)
	case in.Size > s.cfg.MaxUploadBytes:
		return fmt.Errorf("%w: file exceeds %d bytes", errs.ErrInvalidRequest, s.cfg.MaxUploadBytes)
	case !validate.MaxRunes(in.SubmitterName, maxSubmitterRunes):
		return fmt.Errorf("%w: submitter name is too long", errs.ErrInvalidRequest)
	case !validate.MaxRunes(in.Caption, maxCaptionRunes):
		return fmt.Errorf("%w: caption is too long", errs.ErrInvalidRequest)
	}

	if ct := normalizeContentType(in.ContentType); ct != "application/octet-stream" {
		if _, ok := allowedContentTypes[ct]; !ok {
			return fmt.Errorf("%w: unsupported content type %q", errs.ErrInvalidRequest, ct)
		}
	}
	return nil
}

func normalizeContentType(raw string) string {
	ct := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}
