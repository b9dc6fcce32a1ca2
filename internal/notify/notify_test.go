package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/notifications-monitor/internal/feed"
)

func TestPublish(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/alerts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Title") != "Notification: UPDATE" {
			t.Errorf("unexpected title %q", r.Header.Get("Title"))
		}
		if r.Header.Get("Priority") != "low" {
			t.Errorf("expected configured priority, got %q", r.Header.Get("Priority"))
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("unexpected auth %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Click") != "http://api.example.com/content/1" {
			t.Errorf("unexpected click %q", r.Header.Get("Click"))
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	}))
	defer server.Close()

	cfg := &Config{Enabled: true, Server: server.URL + "/", Topic: "alerts", Priority: "low", Tags: "newspaper", Token: "secret"}
	client := NewClient(cfg, zap.NewNop())

	entry := feed.DatedEntry{
		Entry: feed.Entry{
			ID:     "http://www.ft.com/thing/1",
			Type:   "http://www.ft.com/thing/ThingChangeType/UPDATE",
			APIURL: "http://api.example.com/content/1",
		},
		ReceivedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := client.Publish(context.Background(), FormatEntryMessage(entry)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotBody, "ID: http://www.ft.com/thing/1") {
		t.Errorf("body missing id: %q", gotBody)
	}
	if !strings.Contains(gotBody, "Received: 2024-01-01T00:00:00Z") {
		t.Errorf("body missing receipt time: %q", gotBody)
	}
}

func TestPublish_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	cfg := &Config{Enabled: true, Server: server.URL, Topic: "alerts", Priority: "default"}
	if err := NewClient(cfg, zap.NewNop()).Publish(context.Background(), Message{Title: "x"}); err == nil {
		t.Error("expected error for 403")
	}
}

func TestValidate(t *testing.T) {
	if err := (&Config{Enabled: false}).Validate(); err != nil {
		t.Errorf("disabled config should be valid: %v", err)
	}
	if err := (&Config{Enabled: true, Priority: "default"}).Validate(); err == nil {
		t.Error("expected error for missing topic")
	}
	if err := (&Config{Enabled: true, Topic: "t", Priority: "loud"}).Validate(); err == nil {
		t.Error("expected error for invalid priority")
	}
}

func TestNew_Disabled(t *testing.T) {
	if _, ok := New(&Config{}, zap.NewNop()).(*NoopNotifier); !ok {
		t.Error("expected NoopNotifier when disabled")
	}
}
