package apiapp

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/eventwall/photowall/internal/infra/metrics"
	authsvc "github.com/eventwall/photowall/internal/services/auth"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestCuratorAuthDisabledPassesThrough(t *testing.T) {
	h := CuratorAuth(authsvc.NewJWTManager("", 0), nil)(http.HandlerFunc(okHandler))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/photos", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestCuratorAuthRejections(t *testing.T) {
	jwt := authsvc.NewJWTManager("secret", time.Hour)
	viewer, _, err := jwt.GenerateToken("viewer-1", "viewer")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	foreign, _, err := authsvc.NewJWTManager("other", time.Hour).GenerateToken("c", authsvc.RoleCurator)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	cases := map[string]string{
		"missing":    "",
		"not bearer": "Basic abc",
		"wrong role": "Bearer " + viewer,
		"foreign":    "Bearer " + foreign,
	}
	h := CuratorAuth(jwt, zap.NewNop())(http.HandlerFunc(okHandler))
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/photos", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
		})
	}
}

func TestCuratorAuthSetsIdentity(t *testing.T) {
	jwt := authsvc.NewJWTManager("secret", time.Hour)
	token, _, err := jwt.GenerateToken("curator-7", authsvc.RoleCurator)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var got authsvc.Identity
	h := CuratorAuth(jwt, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = authsvc.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/photos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if got.Subject != "curator-7" || got.Role != authsvc.RoleCurator {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestRequestLoggerRecordsRoutePattern(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, zap.NewNop(), m, time.Second)
	r.Get("/events/{eventId}/thing", okHandler)

	for _, id := range []string{"a", "b"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/events/"+id+"/thing", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	}

	count, err := testutil.GatherAndCount(registry, "photowall_http_requests_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one series keyed by route pattern, got %d", count)
	}
}
