package redis

import (
	"context"
	"testing"
	"time"

	"github.com/eventwall/photowall/internal/domain/enums"
	"github.com/eventwall/photowall/internal/domain/model"
)

func TestDisplayCacheRoundTripAndInvalidate(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewDisplayCacheRepo(client, time.Minute)
	ctx := context.Background()

	if _, ok, err := repo.Get(ctx, "evt-1"); err != nil || ok {
		t.Fatalf("expected cache miss, got ok=%v err=%v", ok, err)
	}

	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	stored, err := repo.Fill(ctx, "evt-1", 0, []model.Photo{
		{ID: "a", EventID: "evt-1", Status: enums.PhotoStatusApproved, DisplayOrder: model.IntPtr(0), CreatedAt: created},
		{ID: "b", EventID: "evt-1", Status: enums.PhotoStatusApproved, CreatedAt: created},
	})
	if err != nil || !stored {
		t.Fatalf("fill cache: stored=%v err=%v", stored, err)
	}

	got, ok, err := repo.Get(ctx, "evt-1")
	if err != nil || !ok {
		t.Fatalf("expected cache hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected cached list: %+v", got)
	}
	if got[0].DisplayOrder == nil || *got[0].DisplayOrder != 0 || got[1].DisplayOrder != nil {
		t.Fatalf("display order not preserved: %+v", got)
	}
	if !got[0].CreatedAt.Equal(created) {
		t.Fatalf("created_at not preserved: %v", got[0].CreatedAt)
	}

	if err := repo.Invalidate(ctx, "evt-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "evt-1"); ok {
		t.Fatalf("expected cache miss after invalidate")
	}
}

func TestDisplayCacheExpires(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewDisplayCacheRepo(client, 5*time.Second)
	ctx := context.Background()
	if stored, err := repo.Fill(ctx, "evt-1", 0, []model.Photo{{ID: "a"}}); err != nil || !stored {
		t.Fatalf("fill cache: stored=%v err=%v", stored, err)
	}

	mr.FastForward(6 * time.Second)

	if _, ok, _ := repo.Get(ctx, "evt-1"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestDisplayCacheFillSkipsAfterInvalidate(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewDisplayCacheRepo(client, time.Minute)
	ctx := context.Background()

	gen, err := repo.Generation(ctx, "evt-1")
	if err != nil || gen != 0 {
		t.Fatalf("expected generation 0, got %d err=%v", gen, err)
	}

	if err := repo.Invalidate(ctx, "evt-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	stored, err := repo.Fill(ctx, "evt-1", gen, []model.Photo{{ID: "archived"}})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if stored {
		t.Fatalf("fill started before an invalidation must not land")
	}
	if _, ok, _ := repo.Get(ctx, "evt-1"); ok {
		t.Fatalf("expected cache miss after skipped fill")
	}

	next, err := repo.Generation(ctx, "evt-1")
	if err != nil || next != gen+1 {
		t.Fatalf("expected generation %d, got %d err=%v", gen+1, next, err)
	}
	if stored, err := repo.Fill(ctx, "evt-1", next, []model.Photo{{ID: "fresh"}}); err != nil || !stored {
		t.Fatalf("fill at current generation: stored=%v err=%v", stored, err)
	}
	got, ok, _ := repo.Get(ctx, "evt-1")
	if !ok || len(got) != 1 || got[0].ID != "fresh" {
		t.Fatalf("unexpected cached list: %+v", got)
	}
}

func TestDisplayCacheGenerationIsPerEvent(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewDisplayCacheRepo(client, time.Minute)
	ctx := context.Background()

	if err := repo.Invalidate(ctx, "evt-other"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if stored, err := repo.Fill(ctx, "evt-1", 0, []model.Photo{{ID: "a"}}); err != nil || !stored {
		t.Fatalf("other event invalidation must not block fill: stored=%v err=%v", stored, err)
	}
}
