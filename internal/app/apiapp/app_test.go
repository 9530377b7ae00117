package apiapp

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eventwall/photowall/internal/config"
	authsvc "github.com/eventwall/photowall/internal/services/auth"
	"github.com/eventwall/photowall/internal/transport/http/dto"
)

const (
	testSecret = "test-secret"
	testEvent  = "evt-app"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()

	cfg := config.Default()
	cfg.S3.UploadDir = t.TempDir()
	cfg.Auth.TokenSecret = testSecret
	cfg.Event.DefaultID = testEvent
	if mutate != nil {
		mutate(&cfg)
	}

	app, err := New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = app.closeStores() })
	return app
}

func curatorToken(t *testing.T) string {
	t.Helper()
	token, _, err := authsvc.NewJWTManager(testSecret, 0).GenerateToken("curator-1", authsvc.RoleCurator)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func submitPhoto(t *testing.T, h http.Handler) dto.PhotoResponse {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("submitterName", "Dana")
	_ = mw.WriteField("caption", "first dance")
	part, err := mw.CreateFormFile("file", "dance.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("jpeg-bytes"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var photo dto.PhotoResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &photo); err != nil {
		t.Fatalf("decode photo: %v", err)
	}
	return photo
}

func moderate(t *testing.T, h http.Handler, token, photoID, action string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"photoId":"` + photoID + `","action":"` + action + `"}`
	req := httptest.NewRequest(http.MethodPost, "/photos/moderate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func displayImages(t *testing.T, h http.Handler) []dto.DisplayImageResponse {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/display/images", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("display images: expected 200, got %d", rr.Code)
	}
	var images []dto.DisplayImageResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &images); err != nil {
		t.Fatalf("decode images: %v", err)
	}
	return images
}

func TestAppModerationLifecycle(t *testing.T) {
	app := newTestApp(t, nil)
	h := app.Handler()
	token := curatorToken(t)

	photo := submitPhoto(t, h)
	if photo.Status != "pending" || photo.DisplayOrder != nil {
		t.Fatalf("unexpected submitted photo: %+v", photo)
	}
	if photo.EventID != testEvent {
		t.Fatalf("expected default event, got %q", photo.EventID)
	}
	if got := displayImages(t, h); len(got) != 0 {
		t.Fatalf("pending photo must not be displayed, got %d", len(got))
	}

	if rr := moderate(t, h, "", photo.ID, "approve"); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	rr := moderate(t, h, token, photo.ID, "approve")
	if rr.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	images := displayImages(t, h)
	if len(images) != 1 || images[0].ID != photo.ID {
		t.Fatalf("approved photo should be displayed, got %+v", images)
	}
	if images[0].DisplayOrder == nil {
		t.Fatalf("approved photo should carry a display order")
	}

	rr = moderate(t, h, token, photo.ID, "approve")
	if rr.Code != http.StatusOK {
		t.Fatalf("approving twice: expected 200, got %d", rr.Code)
	}
	var again dto.PhotoResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &again); err != nil {
		t.Fatalf("decode photo: %v", err)
	}
	if again.DisplayOrder == nil || *again.DisplayOrder != *images[0].DisplayOrder {
		t.Fatalf("re-approval must keep the display order, got %v", again.DisplayOrder)
	}

	if rr := moderate(t, h, token, "missing", "approve"); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown photo: expected 404, got %d", rr.Code)
	}
	if rr := moderate(t, h, token, photo.ID, "publish"); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad action: expected 400, got %d", rr.Code)
	}

	if rr := moderate(t, h, token, photo.ID, "archive"); rr.Code != http.StatusOK {
		t.Fatalf("archive: expected 200, got %d", rr.Code)
	}
	if got := displayImages(t, h); len(got) != 0 {
		t.Fatalf("archived photo must leave the wall, got %d", len(got))
	}
}

func TestAppMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, nil)
	h := app.Handler()

	photo := submitPhoto(t, h)
	if rr := moderate(t, h, curatorToken(t), photo.ID, "reject"); rr.Code != http.StatusOK {
		t.Fatalf("reject: expected 200, got %d", rr.Code)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`photowall_moderation_actions_total{action="reject"} 1`,
		"photowall_http_requests_total",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestAppUnknownRouteIsJSON404(t *testing.T) {
	app := newTestApp(t, nil)

	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND code, got %s", rr.Body.String())
	}
}

func TestAppWithRedisCountersAndCache(t *testing.T) {
	mr := miniredis.RunT(t)
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Store.CountersBackend = config.BackendRedis
		cfg.Store.DisplayCache = true
		cfg.Redis.Addr = mr.Addr()
	})
	if app.redis == nil {
		t.Fatalf("expected redis client to be connected")
	}
	h := app.Handler()
	token := curatorToken(t)

	photo := submitPhoto(t, h)
	if rr := moderate(t, h, token, photo.ID, "approve"); rr.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d", rr.Code)
	}
	if got := displayImages(t, h); len(got) != 1 {
		t.Fatalf("expected one displayed photo, got %d", len(got))
	}

	if rr := moderate(t, h, token, photo.ID, "archive"); rr.Code != http.StatusOK {
		t.Fatalf("archive: expected 200, got %d", rr.Code)
	}
	if got := displayImages(t, h); len(got) != 0 {
		t.Fatalf("cache must be invalidated on archive, got %d", len(got))
	}

	keys := mr.Keys()
	var sawCounters bool
	for _, key := range keys {
		if strings.HasPrefix(key, "photowall:counters:"+testEvent+":") {
			sawCounters = true
		}
	}
	if !sawCounters {
		t.Fatalf("expected daily counters in redis, keys=%v", keys)
	}
}

func TestAppRedisUnavailableFallsBack(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Store.CountersBackend = config.BackendRedis
		cfg.Store.DisplayCache = true
		cfg.Redis.Addr = "127.0.0.1:1"
	})
	if app.redis != nil {
		t.Fatalf("expected redis to be skipped")
	}
	submitPhoto(t, app.Handler())
}

func TestNewRejectsPostgresWithoutDSN(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendPostgres
	cfg.Postgres.DSN = ""

	if _, err := New(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatalf("expected error for postgres backend without dsn")
	}
}

func TestNewLogsEffectiveBackends(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	cfg := config.Default()
	cfg.S3.UploadDir = t.TempDir()
	cfg.Store.CountersBackend = config.BackendRedis
	cfg.Store.DisplayCache = true
	cfg.Redis.Addr = "127.0.0.1:1"
	cfg.Event.Timezone = "UTC"

	app, err := New(context.Background(), cfg, zap.New(core))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = app.closeStores() })

	entries := logs.FilterMessage("api app configured").All()
	if len(entries) != 1 {
		t.Fatalf("expected one configured log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["store"] != config.BackendMemory {
		t.Fatalf("unexpected store field: %v", fields["store"])
	}
	if fields["counters"] != config.BackendMemory {
		t.Fatalf("counters should report the memory fallback, got %v", fields["counters"])
	}
	if fields["display_cache"] != false {
		t.Fatalf("display cache should be off without redis, got %v", fields["display_cache"])
	}
	if fields["timezone"] != "UTC" {
		t.Fatalf("unexpected timezone field: %v", fields["timezone"])
	}
}
