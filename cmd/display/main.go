package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eventwall/photowall/internal/config"
	"github.com/eventwall/photowall/internal/display/client"
	"github.com/eventwall/photowall/internal/display/scheduler"
	"github.com/eventwall/photowall/internal/infra/logger"
	"github.com/eventwall/photowall/internal/infra/metrics"
)

// logRenderer stands in for a screen: every slide change becomes a log line.
type logRenderer struct {
	log     *zap.Logger
	eventID string
}

func (r logRenderer) Show(image scheduler.Image, index int, total int) {
	fields := []zap.Field{
		zap.String("event_id", r.eventID),
		zap.String("photo_id", image.ID),
		zap.String("path", image.OriginalPath),
		zap.Int("position", index+1),
		zap.Int("total", total),
	}
	if image.SubmitterName != "" {
		fields = append(fields, zap.String("submitter", image.SubmitterName))
	}
	if image.Caption != "" {
		fields = append(fields, zap.String("caption", image.Caption))
	}
	r.log.Info("showing photo", fields...)
}

func (r logRenderer) ShowEmpty() {
	r.log.Info("no approved photos", zap.String("event_id", r.eventID))
}

func main() {
	eventFlag := flag.String("event", "", "event id to display (defaults to the configured event)")
	tokenFlag := flag.String("token", os.Getenv("DISPLAY_TOKEN"), "optional bearer token")
	countViews := flag.Bool("count-views", true, "record a view for every advanced slide")
	metricsAddr := flag.String("metrics-addr", "", "optional listen address for /metrics")
	flag.Parse()

	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	eventID := cfg.Event.DefaultID
	if *eventFlag != "" {
		eventID = *eventFlag
	}

	api, err := client.NewClient(cfg.Display.APIURL, *tokenFlag, cfg.Display.RequestTimeout)
	if err != nil {
		log.Fatal("create display client", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	pollMetrics, err := metrics.New(registry)
	if err != nil {
		log.Fatal("register display metrics", zap.Error(err))
	}

	session := scheduler.NewSession(api, logRenderer{log: log, eventID: eventID}, scheduler.Config{
		EventID:         eventID,
		Interval:        time.Duration(cfg.Display.SlideInterval) * time.Second,
		FetchTimeout:    cfg.Display.RequestTimeout,
		SettingsRefresh: cfg.Display.SettingsRefresh,
	}, log)
	session.AttachSettings(api)
	session.AttachObserver(pollMetrics)
	if *countViews {
		session.AttachViews(api)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("display metrics server failed", zap.Error(err))
			}
		}()
	}

	if err := session.Start(ctx); err != nil {
		log.Fatal("start display session", zap.Error(err))
	}
	<-ctx.Done()
	session.Stop()

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsServer.Shutdown(shutdownCtx)
		cancel()
	}

	snap := session.Snapshot()
	log.Info("display wall exited",
		zap.Int("images", snap.Images),
		zap.Int("current_index", snap.CurrentIndex),
		zap.String("last_error", snap.LastError),
	)
}
