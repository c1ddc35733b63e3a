package server

import (
	"ApiMonitor/internal/config"
	"ApiMonitor/internal/dependencies"
	"ApiMonitor/internal/metrics"
	"ApiMonitor/internal/monitor/domain"
	runner "ApiMonitor/internal/monitor/runners"
	"ApiMonitor/internal/monitor/services"
	"ApiMonitor/pkg/logger"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryJournal struct {
	mu     sync.Mutex
	events []*domain.HealthEvent
}

func (j *memoryJournal) RecordEvent(_ context.Context, event *domain.HealthEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
	return nil
}

func (j *memoryJournal) RecordDelivery(context.Context, domain.Delivery) error { return nil }

func (j *memoryJournal) ListEvents(_ context.Context, endpointID string, limit int) ([]*domain.HealthEvent, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var out []*domain.HealthEvent
	for i := len(j.events) - 1; i >= 0 && len(out) < limit; i-- {
		if endpointID == "" || j.events[i].EndpointID == endpointID {
			out = append(out, j.events[i])
		}
	}
	return out, nil
}

func (j *memoryJournal) PruneEvents(context.Context, time.Time) (int64, error) { return 0, nil }

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*Server, *services.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	t.Cleanup(upstream.Close)

	specs := []domain.EndpointSpec{
		{ID: "api", URL: upstream.URL + "/up", Method: "GET", Timeout: time.Second, Interval: time.Minute, VerifyTLS: true},
		{ID: "db", URL: upstream.URL + "/down", Method: "GET", Timeout: time.Second, Interval: time.Minute, VerifyTLS: true},
	}

	prober := runner.NewHTTPRunner(logger.Discard())
	t.Cleanup(prober.Close)

	collector := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	engine := services.NewEngine(specs, prober, nil, services.EngineConfig{
		Journal: &memoryJournal{},
		Metrics: collector,
	}, logger.Discard())

	container := &dependencies.Container{
		Logger:   logger.Discard(),
		Metrics:  collector,
		Registry: registry,
		Engine:   engine,
	}

	srv := New(&config.ServerConfig{Host: "127.0.0.1", Port: 0, Mode: "test"}, container)
	return srv, engine
}

func get(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.GetRouter().ServeHTTP(rec, req)

	var body envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, _ := get(t, srv, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_ReadyWithoutDatabase(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, _ := get(t, srv, "/ready")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"disabled"`)
}

func TestServer_SummaryBeforeAndAfterChecks(t *testing.T) {
	srv, engine := newTestServer(t)

	_, body := get(t, srv, "/api/v1/summary")
	var summary domain.HealthSummary
	require.NoError(t, json.Unmarshal(body.Data, &summary))
	assert.Equal(t, domain.SummaryUnhealthy, summary.Status)
	assert.Equal(t, 2, summary.EndpointCount)

	engine.CheckAll(context.Background())

	rec, body := get(t, srv, "/api/v1/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(body.Data, &summary))
	assert.Equal(t, domain.SummaryUnhealthy, summary.Status)
	assert.Equal(t, 1, summary.HealthyCount)
	assert.Equal(t, 1, summary.UnhealthyCount)
}

func TestServer_Stats(t *testing.T) {
	srv, engine := newTestServer(t)
	engine.CheckAll(context.Background())

	rec, body := get(t, srv, "/api/v1/stats/api")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)

	var data struct {
		Stats domain.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, 1, data.Stats.TotalChecks)
	assert.Equal(t, 100.0, data.Stats.UptimePercentage)

	rec, body = get(t, srv, "/api/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	var all struct {
		Stats map[string]domain.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &all))
	assert.Len(t, all.Stats, 2)
	assert.Equal(t, 1, all.Stats["db"].ConsecutiveFailures)
}

func TestServer_UnknownEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/api/v1/stats/nope", "/api/v1/endpoints/nope/history", "/api/v1/events?endpoint_id=nope"} {
		rec, body := get(t, srv, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.False(t, body.Success, path)
		assert.Equal(t, "not_found", body.Error, path)
	}
}

func TestServer_EndpointsAndHistory(t *testing.T) {
	srv, engine := newTestServer(t)
	engine.CheckAll(context.Background())
	engine.CheckAll(context.Background())

	_, body := get(t, srv, "/api/v1/endpoints")
	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &list))
	assert.Equal(t, 2, list.Total)

	rec, body := get(t, srv, "/api/v1/endpoints/db/history")
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &history))
	assert.Equal(t, 2, history.Total)
}

func TestServer_Events(t *testing.T) {
	srv, engine := newTestServer(t)
	engine.CheckAll(context.Background())

	rec, body := get(t, srv, "/api/v1/events?endpoint_id=db")
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Events []domain.HealthEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.Len(t, data.Events, 1)
	assert.Equal(t, domain.EventFailure, data.Events[0].Kind)

	rec, _ = get(t, srv, "/api/v1/events?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	srv, engine := newTestServer(t)
	engine.CheckAll(context.Background())

	rec, _ := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "apimonitor_checks_total")
}

func TestServer_NoRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, _ := get(t, srv, "/does/not/exist")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	srv, _ := newTestServer(t)
	require.NoError(t, srv.Shutdown(context.Background()))

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start kept serving after Shutdown")
	}
}
