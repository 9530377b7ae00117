package memory

import (
	"context"
	"sync"
	"time"

	"github.com/eventwall/photowall/internal/domain/model"
)

type DisplaySettingsRepo struct {
	mu       sync.Mutex
	settings map[string]model.DisplaySettings
	now      func() time.Time
}

func NewDisplaySettingsRepo() *DisplaySettingsRepo {
	return &DisplaySettingsRepo{
		settings: make(map[string]model.DisplaySettings),
		now:      time.Now,
	}
}

func (r *DisplaySettingsRepo) GetOrCreate(_ context.Context, eventID string, defaults model.DisplaySettings) (model.DisplaySettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.getOrCreateLocked(eventID, defaults), nil
}

func (r *DisplaySettingsRepo) Update(_ context.Context, eventID string, patch model.DisplaySettingsPatch, defaults model.DisplaySettings) (model.DisplaySettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.getOrCreateLocked(eventID, defaults)
	updated := patch.Apply(current)
	updated.UpdatedAt = r.now().UTC()
	r.settings[eventID] = updated
	return updated, nil
}

func (r *DisplaySettingsRepo) getOrCreateLocked(eventID string, defaults model.DisplaySettings) model.DisplaySettings {
	if current, ok := r.settings[eventID]; ok {
		return current
	}
	created := defaults
	created.EventID = eventID
	created.UpdatedAt = r.now().UTC()
	r.settings[eventID] = created
	return created
}
