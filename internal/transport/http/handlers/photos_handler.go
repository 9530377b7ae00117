package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eventwall/photowall/internal/domain/enums"
	"github.com/eventwall/photowall/internal/domain/model"
	modsvc "github.com/eventwall/photowall/internal/services/moderation"
	photosvc "github.com/eventwall/photowall/internal/services/photos"
	rankingsvc "github.com/eventwall/photowall/internal/services/ranking"
	"github.com/eventwall/photowall/internal/transport/http/dto"
	httperrors "github.com/eventwall/photowall/internal/transport/http/errors"
)

const (
	multipartMemory   = 8 << 20
	multipartOverhead = 1 << 20
)

type PhotosHandler struct {
	photos       *photosvc.Service
	moderation   *modsvc.Service
	ranking      *rankingsvc.Service
	defaultEvent string
	log          *zap.Logger
}

func NewPhotosHandler(photos *photosvc.Service, moderation *modsvc.Service, ranking *rankingsvc.Service, defaultEvent string, log *zap.Logger) *PhotosHandler {
	return &PhotosHandler{
		photos:       photos,
		moderation:   moderation,
		ranking:      ranking,
		defaultEvent: defaultEvent,
		log:          orNop(log),
	}
}

// List handles GET /photos?status=&eventId=.
func (h *PhotosHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.photos == nil {
		writeInternal(w, "PHOTO_SERVICE_UNAVAILABLE", "photo service is unavailable")
		return
	}

	var status enums.PhotoStatus
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		parsed, ok := enums.ParsePhotoStatus(raw)
		if !ok {
			writeBadRequest(w, httperrors.CodeValidation, "unknown status")
			return
		}
		status = parsed
	}

	photos, err := h.photos.List(r.Context(), eventIDFromRequest(r, h.defaultEvent), status)
	if err != nil {
		writeServiceError(w, h.log, "list photos", err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewPhotoListResponse(photos))
}

// Submit handles the multipart upload at POST /photos.
func (h *PhotosHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.photos == nil {
		writeInternal(w, "PHOTO_SERVICE_UNAVAILABLE", "photo service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.photos.MaxUploadBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperrors.Write(w, http.StatusRequestEntityTooLarge, httperrors.APIError{
				Code:    httperrors.CodeValidation,
				Message: "upload is too large",
			})
			return
		}
		writeBadRequest(w, httperrors.CodeValidation, "invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "file is required")
		return
	}
	defer file.Close()

	eventID := strings.TrimSpace(r.FormValue("eventId"))
	if eventID == "" {
		eventID = h.defaultEvent
	}

	photo, err := h.photos.Submit(r.Context(), photosvc.SubmitInput{
		EventID:       eventID,
		SubmitterName: r.FormValue("submitterName"),
		Caption:       r.FormValue("caption"),
		FileName:      header.Filename,
		ContentType:   header.Header.Get("Content-Type"),
		Body:          file,
		Size:          header.Size,
	})
	if err != nil {
		writeServiceError(w, h.log, "submit photo", err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.NewPhotoResponse(photo))
}

// Moderate handles POST /photos/moderate.
func (h *PhotosHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	if h.moderation == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	var req dto.ModerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
		return
	}
	if strings.TrimSpace(req.PhotoID) == "" {
		writeBadRequest(w, httperrors.CodeValidation, "photoId is required")
		return
	}
	action, ok := enums.ParseModerationAction(req.Action)
	if !ok {
		writeBadRequest(w, httperrors.CodeValidation, "action must be approve, reject or archive")
		return
	}

	photo, err := h.moderation.Moderate(r.Context(), req.PhotoID, action)
	if err != nil {
		writeServiceError(w, h.log, "moderate photo", err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewPhotoResponse(photo))
}

// Reorder handles POST /photos/reorder. Unknown ids are skipped, never 404.
func (h *PhotosHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	if h.ranking == nil {
		writeInternal(w, "RANKING_SERVICE_UNAVAILABLE", "ranking service is unavailable")
		return
	}

	var req dto.ReorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
		return
	}
	if req.PhotoOrders == nil {
		writeBadRequest(w, httperrors.CodeValidation, "photoOrders is required")
		return
	}

	batch := make([]model.OrderAssignment, 0, len(req.PhotoOrders))
	for _, entry := range req.PhotoOrders {
		if entry.DisplayOrder == nil {
			writeBadRequest(w, httperrors.CodeValidation, "displayOrder is required")
			return
		}
		batch = append(batch, model.OrderAssignment{PhotoID: entry.PhotoID, DisplayOrder: *entry.DisplayOrder})
	}

	applied, err := h.ranking.Reorder(r.Context(), batch)
	if err != nil {
		writeServiceError(w, h.log, "reorder photos", err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewPhotoListResponse(applied))
}

// Stats handles GET /stats?eventId=.
func (h *PhotosHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.photos == nil {
		writeInternal(w, "PHOTO_SERVICE_UNAVAILABLE", "photo service is unavailable")
		return
	}

	counts, err := h.photos.Stats(r.Context(), eventIDFromRequest(r, h.defaultEvent))
	if err != nil {
		writeServiceError(w, h.log, "photo stats", err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewStatsResponse(counts))
}
