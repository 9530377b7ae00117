package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	rankingsvc "github.com/eventwall/photowall/internal/services/ranking"
	settingssvc "github.com/eventwall/photowall/internal/services/settings"
	"github.com/eventwall/photowall/internal/transport/http/dto"
	httperrors "github.com/eventwall/photowall/internal/transport/http/errors"
)

type DisplayHandler struct {
	ranking      *rankingsvc.Service
	settings     *settingssvc.Service
	defaultEvent string
	log          *zap.Logger
}

func NewDisplayHandler(ranking *rankingsvc.Service, settings *settingssvc.Service, defaultEvent string, log *zap.Logger) *DisplayHandler {
	return &DisplayHandler{
		ranking:      ranking,
		settings:     settings,
		defaultEvent: defaultEvent,
		log:          orNop(log),
	}
}

// Images handles GET /display/images?eventId=.
func (h *DisplayHandler) Images(w http.ResponseWriter, r *http.Request) {
	if h.ranking == nil {
		writeInternal(w, "RANKING_SERVICE_UNAVAILABLE", "ranking service is unavailable")
		return
	}

	photos, err := h.ranking.OrderedList(r.Context(), eventIDFromRequest(r, h.defaultEvent))
	if err != nil {
		writeServiceError(w, h.log, "list display images", err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewDisplayImagesResponse(photos))
}

// SetCurrentImage handles POST /display/set-current-image.
func (h *DisplayHandler) SetCurrentImage(w http.ResponseWriter, r *http.Request) {
	if h.ranking == nil {
		writeInternal(w, "RANKING_SERVICE_UNAVAILABLE", "ranking service is unavailable")
		return
	}

	var req dto.SetCurrentImageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ImageID) == "" {
		writeBadRequest(w, httperrors.CodeValidation, "imageId is required")
		return
	}

	photo, err := h.ranking.PromoteToFront(r.Context(), req.ImageID)
	if err != nil {
		writeServiceError(w, h.log, "set current image", err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SetCurrentImageResponse{
		Success:        true,
		CurrentImageID: photo.ID,
	})
}

// GetSettings handles GET /display-settings?eventId=.
func (h *DisplayHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	if h.settings == nil {
		writeInternal(w, "SETTINGS_SERVICE_UNAVAILABLE", "settings service is unavailable")
		return
	}

	settings, err := h.settings.Get(r.Context(), eventIDFromRequest(r, h.defaultEvent))
	if err != nil {
		writeServiceError(w, h.log, "get display settings", err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewDisplaySettingsResponse(settings))
}

// PatchSettings handles PATCH /display/settings?eventId=.
func (h *DisplayHandler) PatchSettings(w http.ResponseWriter, r *http.Request) {
	if h.settings == nil {
		writeInternal(w, "SETTINGS_SERVICE_UNAVAILABLE", "settings service is unavailable")
		return
	}

	var req dto.DisplaySettingsPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
		return
	}

	settings, err := h.settings.Patch(r.Context(), eventIDFromRequest(r, h.defaultEvent), req.ToPatch())
	if err != nil {
		writeServiceError(w, h.log, "update display settings", err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewDisplaySettingsResponse(settings))
}
