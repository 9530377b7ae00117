package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/eventwall/photowall/internal/infra/metrics"
	"github.com/eventwall/photowall/internal/transport/http/dto"
)

type fakeSource struct {
	mu     sync.Mutex
	images []Image
	err    error
	calls  int
}

func (f *fakeSource) Images(ctx context.Context, eventID string) ([]Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]Image(nil), f.images...), nil
}

func (f *fakeSource) set(images []Image, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = images
	f.err = err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingRenderer struct {
	mu    sync.Mutex
	shown []string
	empty int
}

func (r *recordingRenderer) Show(image Image, index int, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, image.ID)
}

func (r *recordingRenderer) ShowEmpty() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.empty++
}

func (r *recordingRenderer) snapshot() ([]string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.shown...), r.empty
}

type pollCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (p *pollCounter) ObserveDisplayPoll(result string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.counts == nil {
		p.counts = make(map[string]int)
	}
	p.counts[result]++
}

func (p *pollCounter) get(result string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[result]
}

type fakeSettings struct {
	settings dto.DisplaySettingsResponse
}

func (f fakeSettings) Settings(ctx context.Context, eventID string) (dto.DisplaySettingsResponse, error) {
	return f.settings, nil
}

type countingViews struct {
	mu    sync.Mutex
	count int
}

func (c *countingViews) RecordView(ctx context.Context, eventID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return nil
}

func (c *countingViews) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSessionPollsAdvancesAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := &fakeSource{images: images("a", "b", "c")}
	renderer := &recordingRenderer{}
	views := &countingViews{}
	session := NewSession(source, renderer, Config{EventID: "evt", Interval: 20 * time.Millisecond}, nil)
	session.AttachViews(views)

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := session.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}

	waitFor(t, "several slides", func() bool {
		shown, _ := renderer.snapshot()
		return len(shown) >= 4
	})
	session.Stop()

	shown, _ := renderer.snapshot()
	if shown[0] != "a" {
		t.Fatalf("first slide should be the head of the ranked list, got %q", shown[0])
	}
	order := map[string]string{"a": "b", "b": "c", "c": "a"}
	for i := 1; i < len(shown); i++ {
		if order[shown[i-1]] != shown[i] {
			t.Fatalf("unexpected slide sequence %v", shown)
		}
	}
	if views.get() == 0 {
		t.Fatalf("expected views to be recorded on advance")
	}

	calls := source.callCount()
	time.Sleep(60 * time.Millisecond)
	if source.callCount() != calls {
		t.Fatalf("poll continued after Stop")
	}
}

func TestSessionStopHonoursParentContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	session := NewSession(&fakeSource{}, nil, Config{Interval: 10 * time.Millisecond}, nil)
	if err := session.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()
	session.Stop()
}

func TestSessionDiscardsStaleResponse(t *testing.T) {
	source := &fakeSource{}
	observer := &pollCounter{}
	session := NewSession(source, nil, Config{Interval: time.Hour}, nil)
	session.AttachObserver(observer)

	source.set(images("new"), nil)
	session.fetch(context.Background(), 2)

	source.set(images("old-1", "old-2"), nil)
	session.fetch(context.Background(), 1)

	snap := session.Snapshot()
	if snap.Images != 1 || snap.Current == nil || snap.Current.ID != "new" {
		t.Fatalf("stale response overwrote newer list: %+v", snap)
	}
	if observer.get(metrics.PollResultStale) != 1 || observer.get(metrics.PollResultOK) != 1 {
		t.Fatalf("unexpected poll results: %+v", observer.counts)
	}
}

func TestSessionFailedPollSupersedesOlderResponse(t *testing.T) {
	source := &fakeSource{}
	observer := &pollCounter{}
	session := NewSession(source, nil, Config{Interval: time.Hour}, nil)
	session.AttachObserver(observer)

	source.set(images("current"), nil)
	session.fetch(context.Background(), 1)

	source.set(nil, errors.New("api down"))
	session.fetch(context.Background(), 3)

	source.set(images("old-1", "old-2"), nil)
	session.fetch(context.Background(), 2)

	snap := session.Snapshot()
	if snap.Images != 1 || snap.Current == nil || snap.Current.ID != "current" {
		t.Fatalf("older response applied after a newer failed poll: %+v", snap)
	}
	if snap.LastError == "" {
		t.Fatalf("expected the failed poll to remain the last error")
	}
	if observer.get(metrics.PollResultStale) != 1 || observer.get(metrics.PollResultError) != 1 {
		t.Fatalf("unexpected poll results: %+v", observer.counts)
	}
}

func TestSessionPollErrorKeepsImages(t *testing.T) {
	source := &fakeSource{images: images("a", "b")}
	observer := &pollCounter{}
	session := NewSession(source, nil, Config{Interval: time.Hour}, nil)
	session.AttachObserver(observer)

	session.Refresh(context.Background())
	source.set(nil, errors.New("api down"))
	session.Refresh(context.Background())

	snap := session.Snapshot()
	if snap.Images != 2 {
		t.Fatalf("expected previous images to be kept, got %d", snap.Images)
	}
	if snap.LastError == "" {
		t.Fatalf("expected last error in snapshot")
	}
	if observer.get(metrics.PollResultError) != 1 {
		t.Fatalf("expected one error observation")
	}

	source.set(images("a"), nil)
	session.Refresh(context.Background())
	if snap := session.Snapshot(); snap.LastError != "" || snap.Images != 1 {
		t.Fatalf("successful poll should clear the error: %+v", snap)
	}
}

func TestSessionPausedStillReflectsArchive(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := &fakeSource{images: images("a", "b", "c")}
	renderer := &recordingRenderer{}
	session := NewSession(source, renderer, Config{Interval: 15 * time.Millisecond}, nil)
	session.Pause()

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, "first poll", func() bool { return session.Snapshot().Images == 3 })

	source.set(images("b", "c"), nil)
	waitFor(t, "refreshed list", func() bool { return session.Snapshot().Images == 2 })
	session.Stop()

	snap := session.Snapshot()
	if !snap.Paused || snap.CurrentIndex != 0 {
		t.Fatalf("paused session must not advance: %+v", snap)
	}
	if snap.Current == nil || snap.Current.ID != "b" {
		t.Fatalf("expected positional index to show b, got %+v", snap.Current)
	}
	shown, _ := renderer.snapshot()
	if len(shown) != 2 || shown[0] != "a" || shown[1] != "b" {
		t.Fatalf("expected renders for a then b, got %v", shown)
	}
}

func TestSessionManualNavigation(t *testing.T) {
	source := &fakeSource{images: images("a", "b", "c")}
	renderer := &recordingRenderer{}
	session := NewSession(source, renderer, Config{Interval: time.Hour}, nil)
	session.Refresh(context.Background())

	session.Previous()
	session.Next()
	session.Next()

	shown, _ := renderer.snapshot()
	want := []string{"a", "c", "a", "b"}
	if len(shown) != len(want) {
		t.Fatalf("expected %v, got %v", want, shown)
	}
	for i := range want {
		if shown[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, shown)
		}
	}
}

func TestSessionEmptyListRendersPlaceholderOnce(t *testing.T) {
	source := &fakeSource{}
	renderer := &recordingRenderer{}
	session := NewSession(source, renderer, Config{Interval: time.Hour}, nil)

	session.Refresh(context.Background())
	session.Refresh(context.Background())
	session.advance(context.Background())

	shown, empty := renderer.snapshot()
	if empty != 1 || len(shown) != 0 {
		t.Fatalf("expected a single empty render, got shown=%v empty=%d", shown, empty)
	}

	source.set(images("a"), nil)
	session.Refresh(context.Background())
	shown, _ = renderer.snapshot()
	if len(shown) != 1 || shown[0] != "a" {
		t.Fatalf("expected a to render once the list fills, got %v", shown)
	}
}

func TestSessionAppliesRemoteSettings(t *testing.T) {
	defer goleak.VerifyNone(t)

	session := NewSession(&fakeSource{images: images("a", "b")}, nil, Config{
		Interval:        time.Hour,
		SettingsRefresh: time.Hour,
	}, nil)
	session.AttachSettings(fakeSettings{settings: dto.DisplaySettingsResponse{
		AutoRotate:    false,
		SlideInterval: 3,
	}})

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, "remote settings", func() bool {
		snap := session.Snapshot()
		return snap.RemoteHold && snap.Interval == 3*time.Second
	})

	session.Resume()
	if snap := session.Snapshot(); !snap.Paused {
		t.Fatalf("remote hold must keep the session paused after a local resume")
	}
	session.Stop()
}
