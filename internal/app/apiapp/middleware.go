package apiapp

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/eventwall/photowall/internal/infra/metrics"
	authsvc "github.com/eventwall/photowall/internal/services/auth"
	httperrors "github.com/eventwall/photowall/internal/transport/http/errors"
)

func ApplyMiddlewares(r chiRouter, log *zap.Logger, m *metrics.Metrics, timeout time.Duration) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(timeout))
	r.Use(requestLogger(log, m))
}

// CuratorAuth admits requests carrying a valid curator token. A manager
// without a secret lets everything through.
func CuratorAuth(jwt *authsvc.JWTManager, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !jwt.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := authsvc.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    httperrors.CodeUnauthorized,
					Message: "missing bearer token",
				})
				return
			}

			claims, err := jwt.ParseToken(token)
			if err != nil {
				if log != nil {
					log.Debug("curator token rejected", zap.Error(err))
				}
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    httperrors.CodeUnauthorized,
					Message: "invalid access token",
				})
				return
			}
			if !strings.EqualFold(claims.Role, authsvc.RoleCurator) {
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    httperrors.CodeUnauthorized,
					Message: "curator role required",
				})
				return
			}

			ctx := authsvc.WithIdentity(r.Context(), authsvc.Identity{
				Subject: claims.Subject,
				Role:    claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestLogger(log *zap.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			if m != nil {
				m.ObserveHTTPRequest(r.Method, routePattern(r), status, elapsed.Seconds())
			}
			if log != nil {
				log.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", status),
					zap.Duration("duration", elapsed),
					zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				)
			}
		})
	}
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}
