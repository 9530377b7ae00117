package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eventwall/photowall/internal/config"
	"github.com/eventwall/photowall/internal/domain/model"
	"github.com/eventwall/photowall/internal/infra/metrics"
	s3infra "github.com/eventwall/photowall/internal/infra/s3"
	memrepo "github.com/eventwall/photowall/internal/repo/memory"
	pgrepo "github.com/eventwall/photowall/internal/repo/postgres"
	redrepo "github.com/eventwall/photowall/internal/repo/redis"
	analyticsvc "github.com/eventwall/photowall/internal/services/analytics"
	authsvc "github.com/eventwall/photowall/internal/services/auth"
	modsvc "github.com/eventwall/photowall/internal/services/moderation"
	photosvc "github.com/eventwall/photowall/internal/services/photos"
	rankingsvc "github.com/eventwall/photowall/internal/services/ranking"
	settingssvc "github.com/eventwall/photowall/internal/services/settings"
)

type photoStore interface {
	photosvc.Store
	modsvc.Store
	rankingsvc.Store
}

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	registry   *prometheus.Registry
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:      cfg,
		logger:   log,
		registry: registry,
	}

	needsPostgres := cfg.Store.Backend == config.BackendPostgres || cfg.Store.CountersBackend == config.BackendPostgres
	if needsPostgres {
		pool, err := pgrepo.NewPool(ctx, pgrepo.PoolConfig{
			DSN:      cfg.Postgres.DSN,
			MaxConns: cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, err
		}
		app.postgres = pool
		if cfg.Postgres.EnsureSchema {
			if err := pgrepo.EnsureSchema(ctx, pool); err != nil {
				app.closeStores()
				return nil, err
			}
		}
	}

	needsRedis := cfg.Store.CountersBackend == config.BackendRedis || cfg.Store.DisplayCache
	if needsRedis {
		client := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redrepo.Ping(ctx, client, 0); err != nil {
			log.Warn("redis unavailable, falling back to in-process counters without display cache", zap.Error(err))
			_ = client.Close()
		} else {
			app.redis = client
		}
	}

	var photos photoStore
	var settingsStore settingssvc.Store
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		photos = pgrepo.NewPhotoRepo(app.postgres)
		settingsStore = pgrepo.NewDisplaySettingsRepo(app.postgres)
	default:
		photos = memrepo.NewPhotoRepo()
		settingsStore = memrepo.NewDisplaySettingsRepo()
	}

	var counterStore analyticsvc.Store
	countersBackend := cfg.Store.CountersBackend
	switch countersBackend {
	case config.BackendPostgres:
		counterStore = pgrepo.NewDailyCountersRepo(app.postgres)
	case config.BackendRedis:
		if app.redis != nil {
			counterStore = redrepo.NewCounterRepo(app.redis)
		} else {
			counterStore = memrepo.NewCounterRepo()
			countersBackend = config.BackendMemory
		}
	default:
		counterStore = memrepo.NewCounterRepo()
	}

	storage, err := newObjectStorage(cfg, log)
	if err != nil {
		app.closeStores()
		return nil, err
	}

	analyticsService := analyticsvc.NewService(counterStore, analyticsvc.Config{Location: loc})

	photoService := photosvc.NewService(photos, storage, photosvc.Config{MaxUploadBytes: cfg.S3.MaxUpload}, log)
	photoService.AttachCounters(analyticsService)

	moderationService := modsvc.NewService(photos, log)
	moderationService.AttachCounters(analyticsService)
	moderationService.AttachObserver(appMetrics)

	rankingService := rankingsvc.NewService(photos, log)
	rankingService.AttachObserver(appMetrics)

	if cfg.Store.DisplayCache && app.redis != nil {
		cache := redrepo.NewDisplayCacheRepo(app.redis, cfg.Redis.DisplayCacheTTL)
		rankingService.AttachCache(cache)
		moderationService.AttachCache(cache)
	}

	settingsService := settingssvc.NewService(settingsStore, displayDefaults(cfg))
	jwtManager := authsvc.NewJWTManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	if !jwtManager.Enabled() {
		log.Warn("auth token secret is empty, curator routes are open")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log, appMetrics, cfg.HTTP.RequestTimeout)
	RegisterRoutes(r, Dependencies{
		PhotoService:      photoService,
		ModerationService: moderationService,
		RankingService:    rankingService,
		SettingsService:   settingsService,
		AnalyticsService:  analyticsService,
		JWTManager:        jwtManager,
		Registry:          registry,
		DefaultEventID:    cfg.Event.DefaultID,
		Logger:            log,
	})

	app.httpRouter = r
	app.server = &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	log.Info("api app configured",
		zap.String("store", cfg.Store.Backend),
		zap.String("counters", countersBackend),
		zap.Bool("display_cache", cfg.Store.DisplayCache && app.redis != nil),
		zap.Bool("s3", cfg.S3.Endpoint != ""),
		zap.String("timezone", loc.String()),
	)

	return app, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if err := a.closeStores(); err != nil && shutdownErr == nil {
		shutdownErr = err
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

func (a *App) closeStores() error {
	var err error
	if a.postgres != nil {
		a.postgres.Close()
		a.postgres = nil
	}
	if a.redis != nil {
		err = a.redis.Close()
		a.redis = nil
	}
	return err
}

func newObjectStorage(cfg config.Config, log *zap.Logger) (photosvc.ObjectStorage, error) {
	s3cfg := s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	}
	if !s3cfg.Enabled() {
		log.Info("s3 endpoint not set, storing uploads on local disk", zap.String("dir", cfg.S3.UploadDir))
		return photosvc.NewLocalStorage(cfg.S3.UploadDir), nil
	}

	client, err := s3infra.NewClient(s3cfg)
	if err != nil {
		return nil, err
	}
	return photosvc.NewS3Storage(client, cfg.S3.Bucket), nil
}

func displayDefaults(cfg config.Config) model.DisplaySettings {
	return model.DisplaySettings{
		AutoRotate:      cfg.Display.AutoRotate,
		SlideInterval:   cfg.Display.SlideInterval,
		Transition:      cfg.Display.Transition,
		ShowCaptions:    cfg.Display.ShowCaptions,
		ShowSubmitter:   cfg.Display.ShowSubmitter,
		BackgroundColor: cfg.Display.BackgroundColor,
	}
}
