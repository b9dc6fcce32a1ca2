package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/dgnsrekt/notifications-monitor/internal/connector"
)

type fakeMonitor struct {
	status connector.Status
	accept bool
	starts int
}

func (m *fakeMonitor) Status() connector.Status { return m.status }

func (m *fakeMonitor) StartCycle() bool {
	m.starts++
	return m.accept
}

func TestStatus(t *testing.T) {
	monitor := &fakeMonitor{status: connector.Status{Cursor: "since=T1", Cycles: 3, Heartbeats: 1}}
	router := NewRouter(monitor, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got connector.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Cursor != "since=T1" || got.Cycles != 3 || got.Heartbeats != 1 {
		t.Errorf("unexpected status: %+v", got)
	}
}

func TestTrigger(t *testing.T) {
	monitor := &fakeMonitor{accept: true}
	router := NewRouter(monitor, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/trigger", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rec.Code)
	}

	monitor.accept = false
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/trigger", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 while busy, got %d", rec.Code)
	}

	if monitor.starts != 2 {
		t.Errorf("expected 2 start attempts, got %d", monitor.starts)
	}
}

func TestHealthzAndMissingWebSocket(t *testing.T) {
	router := NewRouter(&fakeMonitor{}, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without websocket sink, got %d", rec.Code)
	}
}
