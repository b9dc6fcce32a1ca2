package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected defaults to load, got error: %v", err)
	}

	if cfg.API.BaseURL != "https://api.ft.com" {
		t.Errorf("expected default base URL, got '%s'", cfg.API.BaseURL)
	}

	if cfg.API.Path != "/content/notifications" {
		t.Errorf("expected default path, got '%s'", cfg.API.Path)
	}

	if cfg.Poll.Interval != time.Minute {
		t.Errorf("expected 1m poll interval by default, got %s", cfg.Poll.Interval)
	}

	if !cfg.Poll.RunOnStartup {
		t.Error("expected run_on_startup by default")
	}
}

func TestLoadWithAPIKey(t *testing.T) {
	t.Setenv("NOTIFMON_API_KEY", "test-key-123")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.APIKey != "test-key-123" {
		t.Errorf("expected API key 'test-key-123', got '%s'", cfg.API.APIKey)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "monitor.yaml")
	content := `
api:
  base_url: http://localhost:9000
poll:
  interval: 15s
sinks:
  file:
    enabled: true
    path: /tmp/notifications.jsonl.zst
    compress: true
  ntfy:
    enabled: true
    topic: ft-notifications
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:9000" {
		t.Errorf("unexpected base URL: %s", cfg.API.BaseURL)
	}
	if cfg.Poll.Interval != 15*time.Second {
		t.Errorf("unexpected interval: %s", cfg.Poll.Interval)
	}
	if !cfg.Sinks.File.Enabled || !cfg.Sinks.File.Compress {
		t.Errorf("file sink not configured: %+v", cfg.Sinks.File)
	}
	if cfg.Sinks.Ntfy.Topic != "ft-notifications" || cfg.Sinks.Ntfy.Priority != "default" {
		t.Errorf("unexpected ntfy config: %+v", cfg.Sinks.Ntfy)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NOTIFMON_POLL_INTERVAL", "30s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Poll.Interval != 30*time.Second {
		t.Errorf("expected env override, got %s", cfg.Poll.Interval)
	}
}
