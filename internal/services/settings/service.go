// Package settings owns the per-event display wall configuration.
package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/eventwall/photowall/internal/domain/errs"
	"github.com/eventwall/photowall/internal/domain/model"
	"github.com/eventwall/photowall/internal/pkg/validate"
)

const (
	minSlideInterval = 1
	maxSlideInterval = 3600
	maxTextRunes     = 64
)

type Store interface {
	GetOrCreate(ctx context.Context, eventID string, defaults model.DisplaySettings) (model.DisplaySettings, error)
	Update(ctx context.Context, eventID string, patch model.DisplaySettingsPatch, defaults model.DisplaySettings) (model.DisplaySettings, error)
}

type Service struct {
	store    Store
	defaults model.DisplaySettings
}

// DefaultSettings are used for an event whose settings were never written.
func DefaultSettings() model.DisplaySettings {
	return model.DisplaySettings{
		AutoRotate:      true,
		SlideInterval:   8,
		Transition:      "fade",
		ShowCaptions:    true,
		ShowSubmitter:   true,
		BackgroundColor: "#000000",
	}
}

func NewService(store Store, defaults model.DisplaySettings) *Service {
	if defaults.SlideInterval < minSlideInterval {
		defaults.SlideInterval = DefaultSettings().SlideInterval
	}
	return &Service{store: store, defaults: defaults}
}

func (s *Service) Get(ctx context.Context, eventID string) (model.DisplaySettings, error) {
	if s.store == nil {
		return model.DisplaySettings{}, fmt.Errorf("settings store is nil")
	}
	if !validate.Required(eventID) {
		return model.DisplaySettings{}, fmt.Errorf("%w: event id is required", errs.ErrInvalidRequest)
	}

	out, err := s.store.GetOrCreate(ctx, strings.TrimSpace(eventID), s.defaults)
	if err != nil {
		return model.DisplaySettings{}, fmt.Errorf("load display settings: %w", err)
	}
	return out, nil
}

// Patch applies the non-nil fields of patch. An empty patch returns the
// current settings.
func (s *Service) Patch(ctx context.Context, eventID string, patch model.DisplaySettingsPatch) (model.DisplaySettings, error) {
	if s.store == nil {
		return model.DisplaySettings{}, fmt.Errorf("settings store is nil")
	}
	if !validate.Required(eventID) {
		return model.DisplaySettings{}, fmt.Errorf("%w: event id is required", errs.ErrInvalidRequest)
	}
	if err := validatePatch(patch); err != nil {
		return model.DisplaySettings{}, err
	}
	if patch.IsEmpty() {
		return s.Get(ctx, eventID)
	}

	out, err := s.store.Update(ctx, strings.TrimSpace(eventID), patch, s.defaults)
	if err != nil {
		return model.DisplaySettings{}, fmt.Errorf("update display settings: %w", err)
	}
	return out, nil
}

func validatePatch(patch model.DisplaySettingsPatch) error {
	if patch.SlideInterval != nil {
		if v := *patch.SlideInterval; v < minSlideInterval || v > maxSlideInterval {
			return fmt.Errorf("%w: slideInterval must be between %d and %d", errs.ErrInvalidRequest, minSlideInterval, maxSlideInterval)
		}
	}
	if patch.Transition != nil && !validate.MaxRunes(*patch.Transition, maxTextRunes) {
		return fmt.Errorf("%w: transition is too long", errs.ErrInvalidRequest)
	}
	if patch.BackgroundColor != nil && !validate.MaxRunes(*patch.BackgroundColor, maxTextRunes) {
		return fmt.Errorf("%w: backgroundColor is too long", errs.ErrInvalidRequest)
	}
	return nil
}
