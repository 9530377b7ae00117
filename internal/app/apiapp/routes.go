package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	analyticsvc "github.com/eventwall/photowall/internal/services/analytics"
	authsvc "github.com/eventwall/photowall/internal/services/auth"
	modsvc "github.com/eventwall/photowall/internal/services/moderation"
	photosvc "github.com/eventwall/photowall/internal/services/photos"
	rankingsvc "github.com/eventwall/photowall/internal/services/ranking"
	settingssvc "github.com/eventwall/photowall/internal/services/settings"
	httperrors "github.com/eventwall/photowall/internal/transport/http/errors"
	"github.com/eventwall/photowall/internal/transport/http/handlers"
)

type Dependencies struct {
	PhotoService      *photosvc.Service
	ModerationService *modsvc.Service
	RankingService    *rankingsvc.Service
	SettingsService   *settingssvc.Service
	AnalyticsService  *analyticsvc.Service
	JWTManager        *authsvc.JWTManager
	Registry          *prometheus.Registry
	DefaultEventID    string
	Logger            *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	photosHandler := handlers.NewPhotosHandler(deps.PhotoService, deps.ModerationService, deps.RankingService, deps.DefaultEventID, deps.Logger)
	displayHandler := handlers.NewDisplayHandler(deps.RankingService, deps.SettingsService, deps.DefaultEventID, deps.Logger)
	analyticsHandler := handlers.NewAnalyticsHandler(deps.AnalyticsService, deps.PhotoService, deps.DefaultEventID, deps.Logger)
	curatorMW := CuratorAuth(deps.JWTManager, deps.Logger)

	r.Get("/healthz", healthHandler.Get)
	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	// Public: the wall itself and attendee-facing endpoints.
	r.Post("/photos", photosHandler.Submit)
	r.Get("/display/images", displayHandler.Images)
	r.Get("/display-settings", displayHandler.GetSettings)
	r.Post("/events/{eventId}/views", analyticsHandler.RecordView)
	r.Post("/events/{eventId}/qr-scans", analyticsHandler.RecordQRScan)

	r.Group(func(r chi.Router) {
		r.Use(curatorMW)
		r.Get("/photos", photosHandler.List)
		r.Post("/photos/moderate", photosHandler.Moderate)
		r.Post("/photos/reorder", photosHandler.Reorder)
		r.Get("/stats", photosHandler.Stats)
		r.Post("/display/set-current-image", displayHandler.SetCurrentImage)
		r.Patch("/display/settings", displayHandler.PatchSettings)
		r.Get("/analytics/daily", analyticsHandler.Daily)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.Write(w, http.StatusNotFound, httperrors.APIError{
			Code:    httperrors.CodeNotFound,
			Message: "route not found",
		})
	})
}
