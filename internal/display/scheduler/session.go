package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eventwall/photowall/internal/infra/metrics"
	"github.com/eventwall/photowall/internal/transport/http/dto"
)

var ErrAlreadyStarted = errors.New("display session already started")

type ImageSource interface {
	Images(ctx context.Context, eventID string) ([]Image, error)
}

type SettingsSource interface {
	Settings(ctx context.Context, eventID string) (dto.DisplaySettingsResponse, error)
}

type ViewRecorder interface {
	RecordView(ctx context.Context, eventID string) error
}

// Renderer is called with the session lock held and must not call back into
// the Session.
type Renderer interface {
	Show(image Image, index int, total int)
	ShowEmpty()
}

type PollObserver interface {
	ObserveDisplayPoll(result string)
}

type Config struct {
	EventID         string
	Interval        time.Duration
	FetchTimeout    time.Duration
	SettingsRefresh time.Duration
}

type Snapshot struct {
	Images       int
	CurrentIndex int
	Current      *Image
	Paused       bool
	RemoteHold   bool
	Interval     time.Duration
	LastError    string
	LastPollAt   time.Time
}

type Session struct {
	images   ImageSource
	settings SettingsSource
	views    ViewRecorder
	renderer Renderer
	observer PollObserver
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time

	mu           sync.Mutex
	state        State
	manualPause  bool
	remoteHold   bool
	issuedSeq    uint64
	appliedSeq   uint64
	lastErr      error
	lastPollAt   time.Time
	shownID      string
	shownEmpty   bool
	shownOnce    bool
	pollRearm    chan time.Duration
	advanceRearm chan time.Duration

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func NewSession(images ImageSource, renderer Renderer, cfg Config, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	return &Session{
		images:       images,
		renderer:     renderer,
		cfg:          cfg,
		logger:       log,
		now:          time.Now,
		state:        NewState(cfg.Interval),
		pollRearm:    make(chan time.Duration, 1),
		advanceRearm: make(chan time.Duration, 1),
	}
}

func (s *Session) AttachSettings(settings SettingsSource) {
	s.settings = settings
}

func (s *Session) AttachViews(views ViewRecorder) {
	s.views = views
}

func (s *Session) AttachObserver(observer PollObserver) {
	s.observer = observer
}

// Start launches the poll and advance loops, plus the settings loop when a
// settings source is attached. Both loops stop on Stop or when ctx ends.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	interval := s.state.Interval()
	s.mu.Unlock()

	s.logger.Info("display session started",
		zap.String("event_id", s.cfg.EventID),
		zap.Duration("interval", interval),
	)

	s.wg.Add(2)
	go s.pollLoop(runCtx, interval)
	go s.advanceLoop(runCtx, interval)
	if s.settings != nil && s.cfg.SettingsRefresh > 0 {
		s.wg.Add(1)
		go s.settingsLoop(runCtx)
	}
	return nil
}

// Stop cancels every loop and in-flight fetch, then waits for them.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.logger.Info("display session stopped", zap.String("event_id", s.cfg.EventID))
}

func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Next() {
		s.renderLocked(true)
	}
}

func (s *Session) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Previous() {
		s.renderLocked(true)
	}
}

func (s *Session) Pause() {
	s.setManualPause(true)
}

func (s *Session) Resume() {
	s.setManualPause(false)
}

func (s *Session) setManualPause(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manualPause = paused
	s.state.SetPaused(s.manualPause || s.remoteHold)
}

// SetInterval changes the cadence of both loops without restarting them.
func (s *Session) SetInterval(interval time.Duration) {
	s.mu.Lock()
	changed := s.state.SetInterval(interval)
	s.mu.Unlock()
	if !changed {
		return
	}
	rearm(s.pollRearm, interval)
	rearm(s.advanceRearm, interval)
	s.logger.Info("display interval changed", zap.Duration("interval", interval))
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Images:       s.state.Len(),
		CurrentIndex: s.state.Index(),
		Paused:       s.state.Paused(),
		RemoteHold:   s.remoteHold,
		Interval:     s.state.Interval(),
		LastPollAt:   s.lastPollAt,
	}
	if img, ok := s.state.Current(); ok {
		snap.Current = &img
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}

// Refresh issues one fetch and blocks until it is applied or discarded.
func (s *Session) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.issuedSeq++
	seq := s.issuedSeq
	s.mu.Unlock()
	s.fetch(ctx, seq)
}

func (s *Session) pollLoop(ctx context.Context, interval time.Duration) {
	defer s.wg.Done()

	s.spawnFetch(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case next := <-s.pollRearm:
			ticker.Reset(next)
		case <-ticker.C:
			s.spawnFetch(ctx)
		}
	}
}

func (s *Session) advanceLoop(ctx context.Context, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case next := <-s.advanceRearm:
			ticker.Reset(next)
		case <-ticker.C:
			s.advance(ctx)
		}
	}
}

func (s *Session) settingsLoop(ctx context.Context) {
	defer s.wg.Done()

	s.refreshSettings(ctx)

	ticker := time.NewTicker(s.cfg.SettingsRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshSettings(ctx)
		}
	}
}

func (s *Session) spawnFetch(ctx context.Context) {
	s.mu.Lock()
	s.issuedSeq++
	seq := s.issuedSeq
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.fetch(ctx, seq)
	}()
}

func (s *Session) fetch(ctx context.Context, seq uint64) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	images, err := s.images.Images(fetchCtx, s.cfg.EventID)
	cancel()

	if err != nil && ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.appliedSeq {
		s.observe(metrics.PollResultStale)
		return
	}

	// A failed poll still supersedes older in-flight polls.
	s.appliedSeq = seq

	if err != nil {
		s.lastErr = err
		s.observe(metrics.PollResultError)
		s.logger.Warn("display poll failed, keeping previous images",
			zap.String("event_id", s.cfg.EventID),
			zap.Uint64("seq", seq),
			zap.Error(err),
		)
		return
	}

	s.lastErr = nil
	s.lastPollAt = s.now()
	s.state.ApplyImages(images)
	s.observe(metrics.PollResultOK)
	s.renderLocked(false)
}

func (s *Session) advance(ctx context.Context) {
	s.mu.Lock()
	advanced := s.state.Tick()
	if advanced {
		s.renderLocked(true)
	}
	s.mu.Unlock()

	if advanced {
		s.recordView(ctx)
	}
}

func (s *Session) refreshSettings(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	settings, err := s.settings.Settings(fetchCtx, s.cfg.EventID)
	cancel()
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("display settings refresh failed", zap.Error(err))
		}
		return
	}

	s.mu.Lock()
	s.remoteHold = !settings.AutoRotate
	s.state.SetPaused(s.manualPause || s.remoteHold)
	s.mu.Unlock()

	if settings.SlideInterval > 0 {
		s.SetInterval(time.Duration(settings.SlideInterval) * time.Second)
	}
}

func (s *Session) recordView(ctx context.Context) {
	if s.views == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		viewCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
		if err := s.views.RecordView(viewCtx, s.cfg.EventID); err != nil && ctx.Err() == nil {
			s.logger.Debug("record view failed", zap.Error(err))
		}
	}()
}

// renderLocked shows the current entry. Without force it only renders when
// the visible photo or the empty state changed.
func (s *Session) renderLocked(force bool) {
	if s.renderer == nil {
		return
	}

	img, ok := s.state.Current()
	if !ok {
		if s.shownOnce && s.shownEmpty {
			return
		}
		s.shownOnce, s.shownEmpty, s.shownID = true, true, ""
		s.renderer.ShowEmpty()
		return
	}

	if !force && s.shownOnce && !s.shownEmpty && s.shownID == img.ID {
		return
	}
	s.shownOnce, s.shownEmpty, s.shownID = true, false, img.ID
	s.renderer.Show(img, s.state.Index(), s.state.Len())
}

func (s *Session) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveDisplayPoll(result)
	}
}

func rearm(ch chan time.Duration, interval time.Duration) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- interval:
	default:
	}
}
