package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	analyticsvc "github.com/eventwall/photowall/internal/services/analytics"
	photosvc "github.com/eventwall/photowall/internal/services/photos"
	"github.com/eventwall/photowall/internal/transport/http/dto"
	httperrors "github.com/eventwall/photowall/internal/transport/http/errors"
)

type AnalyticsHandler struct {
	analytics    *analyticsvc.Service
	photos       *photosvc.Service
	defaultEvent string
	log          *zap.Logger
}

func NewAnalyticsHandler(analytics *analyticsvc.Service, photos *photosvc.Service, defaultEvent string, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics:    analytics,
		photos:       photos,
		defaultEvent: defaultEvent,
		log:          orNop(log),
	}
}

// RecordView handles POST /events/{eventId}/views.
func (h *AnalyticsHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	if h.photos == nil {
		writeInternal(w, "PHOTO_SERVICE_UNAVAILABLE", "photo service is unavailable")
		return
	}
	if err := h.photos.RecordView(r.Context(), strings.TrimSpace(chi.URLParam(r, "eventId"))); err != nil {
		writeServiceError(w, h.log, "record view", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordQRScan handles POST /events/{eventId}/qr-scans.
func (h *AnalyticsHandler) RecordQRScan(w http.ResponseWriter, r *http.Request) {
	if h.photos == nil {
		writeInternal(w, "PHOTO_SERVICE_UNAVAILABLE", "photo service is unavailable")
		return
	}
	if err := h.photos.RecordQRScan(r.Context(), strings.TrimSpace(chi.URLParam(r, "eventId"))); err != nil {
		writeServiceError(w, h.log, "record qr scan", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Daily handles GET /analytics/daily?eventId=&from=&to=.
func (h *AnalyticsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	if h.analytics == nil {
		writeInternal(w, "ANALYTICS_SERVICE_UNAVAILABLE", "analytics service is unavailable")
		return
	}

	from, err := analyticsvc.ParseDay(r.URL.Query().Get("from"))
	if err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "from must be yyyy-mm-dd")
		return
	}
	to, err := analyticsvc.ParseDay(r.URL.Query().Get("to"))
	if err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "to must be yyyy-mm-dd")
		return
	}

	rows, err := h.analytics.Daily(r.Context(), eventIDFromRequest(r, h.defaultEvent), from, to)
	if err != nil {
		writeServiceError(w, h.log, "daily analytics", err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewDailyCountersResponse(rows))
}
