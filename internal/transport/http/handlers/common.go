package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eventwall/photowall/internal/domain/errs"
	httperrors "github.com/eventwall/photowall/internal/transport/http/errors"
)

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// eventIDFromRequest reads ?eventId= and falls back to the configured event.
func eventIDFromRequest(r *http.Request, fallback string) string {
	if v := strings.TrimSpace(r.URL.Query().Get("eventId")); v != "" {
		return v
	}
	return fallback
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: httperrors.CodeNotFound, Message: err.Error()})
	case errors.Is(err, errs.ErrInvalidRequest):
		writeBadRequest(w, httperrors.CodeValidation, err.Error())
	case errors.Is(err, errs.ErrInvalidState):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: httperrors.CodeInvalidState, Message: err.Error()})
	default:
		if log != nil {
			log.Error(op+" failed", zap.Error(err))
		}
		writeInternal(w, httperrors.CodeInternal, op+" failed")
	}
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
