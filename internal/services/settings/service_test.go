package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/eventwall/photowall/internal/domain/errs"
	"github.com/eventwall/photowall/internal/domain/model"
	"github.com/eventwall/photowall/internal/repo/memory"
)

func TestGetCreatesDefaults(t *testing.T) {
	svc := NewService(memory.NewDisplaySettingsRepo(), DefaultSettings())

	got, err := svc.Get(context.Background(), "evt-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EventID != "evt-1" || !got.AutoRotate || got.SlideInterval != 8 || got.Transition != "fade" {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestPatchUpdatesOnlyGivenFields(t *testing.T) {
	svc := NewService(memory.NewDisplaySettingsRepo(), DefaultSettings())
	ctx := context.Background()

	interval := 3
	autoRotate := false
	got, err := svc.Patch(ctx, "evt-1", model.DisplaySettingsPatch{SlideInterval: &interval, AutoRotate: &autoRotate})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if got.SlideInterval != 3 || got.AutoRotate || got.Transition != "fade" || !got.ShowCaptions {
		t.Fatalf("unexpected patched settings: %+v", got)
	}

	reread, err := svc.Get(ctx, "evt-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reread.SlideInterval != 3 || reread.AutoRotate {
		t.Fatalf("patch not persisted: %+v", reread)
	}
}

func TestPatchRejectsBadInterval(t *testing.T) {
	svc := NewService(memory.NewDisplaySettingsRepo(), DefaultSettings())

	for _, v := range []int{0, -5, maxSlideInterval + 1} {
		interval := v
		_, err := svc.Patch(context.Background(), "evt-1", model.DisplaySettingsPatch{SlideInterval: &interval})
		if !errors.Is(err, errs.ErrInvalidRequest) {
			t.Fatalf("interval %d: expected ErrInvalidRequest, got %v", v, err)
		}
	}
}

func TestEmptyPatchReturnsCurrent(t *testing.T) {
	svc := NewService(memory.NewDisplaySettingsRepo(), DefaultSettings())

	got, err := svc.Patch(context.Background(), "evt-1", model.DisplaySettingsPatch{})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if got.SlideInterval != DefaultSettings().SlideInterval {
		t.Fatalf("unexpected settings: %+v", got)
	}
}

func TestNewServiceRepairsInterval(t *testing.T) {
	defaults := DefaultSettings()
	defaults.SlideInterval = 0
	svc := NewService(memory.NewDisplaySettingsRepo(), defaults)

	got, err := svc.Get(context.Background(), "evt-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SlideInterval < 1 {
		t.Fatalf("expected positive interval, got %d", got.SlideInterval)
	}
}
