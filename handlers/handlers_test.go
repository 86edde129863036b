package handlers

import (
	"bytes"
	"encoding/json"
	"errorwatch/config"
	"errorwatch/core"
	"errorwatch/database"
	"errorwatch/models"
	"errorwatch/service"
	"errorwatch/state"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prevSettings := *config.Settings
	prevDB := database.DB
	prevServices := service.GlobalServices
	t.Cleanup(func() {
		*config.Settings = prevSettings
		database.DB = prevDB
		service.GlobalServices = prevServices
	})
	config.Settings.IngestRatePerSec = 0
	config.Settings.MaxStoredErrors = 100
	config.Settings.MaxIngestBodyBytes = 64 * 1024
	config.Settings.DefaultPageSize = 20

	db, err := database.Open(filepath.Join(t.TempDir(), "errors.db"), logger.Silent)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	database.DB = db
	service.InitServices(db, state.NewHub(8), config.Settings.MaxStoredErrors)

	r := gin.New()
	RegisterRoutes(r)
	return r
}

func doJSON(r http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data any) ResponseV2 {
	t.Helper()
	var raw struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, w.Body.String())
	}
	if data != nil {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decode data: %v (%s)", err, raw.Data)
		}
	}
	return ResponseV2{Code: raw.Code, Message: raw.Message}
}

const samplePayload = `{"type":"error","message":"x is undefined","path":"https://app.example/main.js","line":12,"column":5,"stackTrace":["at f","at g"],"viewport":"1024x768","timeSpend":61000,"datetime":"Sat Mar 09 2024"}`

func TestIngestListGetClear(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/errors", core.ContentTypeJSON, samplePayload)
	if w.Code != http.StatusOK {
		t.Fatalf("ingest: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if env := decodeEnvelope(t, w, &created); env.Code != CodeOK || created.ID == "" {
		t.Fatalf("unexpected ingest response: %s", w.Body.String())
	}

	w = doJSON(r, http.MethodGet, "/api/errors?page=1&page_size=10", "", "")
	var page ErrorPage
	decodeEnvelope(t, w, &page)
	if w.Code != http.StatusOK || page.Total != 1 || len(page.Data) != 1 {
		t.Fatalf("unexpected list response: %d %s", w.Code, w.Body.String())
	}
	if got := page.Data[0]; got.Message != "x is undefined" || len(got.StackTrace) != 2 || got.TimeSpend != 61000 {
		t.Fatalf("unexpected stored record: %+v", got)
	}

	w = doJSON(r, http.MethodGet, "/api/errors/"+created.ID, "", "")
	var one models.StoredErrorRead
	decodeEnvelope(t, w, &one)
	if w.Code != http.StatusOK || one.ID != created.ID || one.Viewport != "1024x768" {
		t.Fatalf("unexpected get response: %d %s", w.Code, w.Body.String())
	}

	if w := doJSON(r, http.MethodGet, "/api/errors/nope", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing id, got %d", w.Code)
	}

	w = doJSON(r, http.MethodDelete, "/api/errors", "", "")
	var cleared struct {
		Deleted int64 `json:"deleted"`
	}
	decodeEnvelope(t, w, &cleared)
	if w.Code != http.StatusOK || cleared.Deleted != 1 {
		t.Fatalf("unexpected clear response: %d %s", w.Code, w.Body.String())
	}
}

func TestIngestRejectsBadInput(t *testing.T) {
	r := newTestRouter(t)

	if w := doJSON(r, http.MethodPost, "/api/errors", "text/plain", samplePayload); w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415 for text/plain, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/api/errors", "application/json", "{not json"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", w.Code)
	}

	config.Settings.MaxIngestBodyBytes = 16
	if w := doJSON(r, http.MethodPost, "/api/errors", "application/json", samplePayload); w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for oversized body, got %d", w.Code)
	}
}

func TestListRejectsBadPagination(t *testing.T) {
	r := newTestRouter(t)
	for _, q := range []string{"page=0", "page=abc", "page_size=0", "page_size=1000"} {
		if w := doJSON(r, http.MethodGet, "/api/errors?"+q, "", ""); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %q, got %d", q, w.Code)
		}
	}
}

func TestRateLimitRejectsBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/limited", RateLimit(0.001, 1), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	if w := doJSON(r, http.MethodGet, "/limited", "", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected first request allowed, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/limited", "", ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request limited, got %d", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/health", "", "")
	var health struct {
		Status    string `json:"status"`
		DBHealthy bool   `json:"db_healthy"`
	}
	if env := decodeEnvelope(t, w, &health); w.Code != http.StatusOK || env.Code != CodeOK || !health.DBHealthy {
		t.Fatalf("expected healthy collector, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodGet, "/api/metrics", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"stored":0`) {
		t.Fatalf("unexpected metrics: %d %s", w.Code, w.Body.String())
	}

	doJSON(r, http.MethodPost, "/api/errors", "application/json", samplePayload)
	w = doJSON(r, http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "errorwatch_ingested_total") {
		t.Fatalf("expected prometheus exposition, got %d", w.Code)
	}

	database.DB = nil
	w = doJSON(r, http.MethodGet, "/api/health", "", "")
	env := decodeEnvelope(t, w, &health)
	if w.Code != http.StatusServiceUnavailable || env.Code != CodeUnavailable || health.Status != "degraded" {
		t.Fatalf("expected degraded health without a database, got %d: %s", w.Code, w.Body.String())
	}
}

func TestStreamPushesIngestedErrors(t *testing.T) {
	r := newTestRouter(t)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/errors/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial stream: %v", err)
	}
	defer conn.Close()

	// Wait for the handler to subscribe before ingesting.
	deadline := time.Now().Add(2 * time.Second)
	for service.GlobalServices.Hub.SubscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Post(srv.URL+"/api/errors", core.ContentTypeJSON, bytes.NewBufferString(samplePayload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var rec models.StoredErrorRead
	if err := conn.ReadJSON(&rec); err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if rec.Message != "x is undefined" {
		t.Fatalf("unexpected streamed record: %+v", rec)
	}
}

// A reporter pointed at the collector stores what it captures.
func TestReporterDeliversToCollector(t *testing.T) {
	r := newTestRouter(t)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	var succeeded, failed int32
	w := core.NewWindow()
	w.SetViewport(core.Size{Width: 1280, Height: 720}, core.Size{Width: 1280, Height: 800})
	rep := core.New(w, core.WithHTTPClient(srv.Client()))
	rep.Init(config.Overrides{
		DetailedErrors: config.Bool(false),
		RemoteLogging: &config.RemoteLogging{
			Enable:          true,
			URL:             srv.URL + "/api/errors",
			SuccessCallback: func() { atomic.AddInt32(&succeeded, 1) },
			ErrorCallback:   func() { atomic.AddInt32(&failed, 1) },
		},
	})

	if err := w.Raise(models.ErrorEvent{
		Message:  "checkout failed",
		Filename: "cart.js",
		Lineno:   7,
		Colno:    3,
		Error:    &models.EventError{Stack: "at pay\nat submit"},
	}); err != nil {
		t.Fatalf("Raise: %v", err)
	}
	rep.Wait()

	if atomic.LoadInt32(&succeeded) != 1 || atomic.LoadInt32(&failed) != 0 {
		t.Fatalf("expected one success callback, got success=%d failure=%d", succeeded, failed)
	}

	rows, total, err := service.GlobalServices.Errors.List(service.ErrorQuery{})
	if err != nil || total != 1 {
		t.Fatalf("expected one stored error, got %d (%v)", total, err)
	}
	got := rows[0].Read()
	if got.Message != "checkout failed" || got.Viewport != "1280x800" || got.Path != "cart.js" {
		t.Fatalf("unexpected stored record: %+v", got)
	}
	if len(got.StackTrace) != 2 || got.StackTrace[1] != "at submit" {
		t.Fatalf("unexpected stored stack: %v", got.StackTrace)
	}
}
