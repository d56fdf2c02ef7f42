package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BLOCKET_DEALER_ID", "FRONTEND_URL", "SYNC_INTERVAL_HOURS", "SYNC_CRON",
		"API_HOST", "API_PORT", "DATA_DIR", "LOG_FILE", "SNAPSHOT_S3_BUCKET", "SNAPSHOT_S3_KEY",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("PROVIDER_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DealerID != "7514308" {
		t.Fatalf("expected default dealer id, got %s", cfg.DealerID)
	}
	if cfg.Scheduler.IntervalHours != 24 {
		t.Fatalf("expected 24h interval, got %d", cfg.Scheduler.IntervalHours)
	}
	if cfg.Addr() != "0.0.0.0:8000" {
		t.Fatalf("unexpected addr %s", cfg.Addr())
	}
	if cfg.SnapshotPath() != filepath.Join("data", "cars.json") {
		t.Fatalf("unexpected snapshot path %s", cfg.SnapshotPath())
	}
	if cfg.S3.Enabled() {
		t.Fatalf("expected S3 publishing disabled by default")
	}
	if cfg.Provider.SearchURL != DefaultProvider().SearchURL {
		t.Fatalf("unexpected search url %s", cfg.Provider.SearchURL)
	}
	if cfg.ScheduleDescription() != "Scheduled every 24 hours" {
		t.Fatalf("unexpected schedule description %q", cfg.ScheduleDescription())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BLOCKET_DEALER_ID", "5716709")
	t.Setenv("SYNC_INTERVAL_HOURS", "6")
	t.Setenv("SYNC_CRON", "0 4 * * *")
	t.Setenv("API_PORT", "9090")
	t.Setenv("SNAPSHOT_S3_BUCKET", "inventory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DealerID != "5716709" {
		t.Fatalf("expected dealer 5716709, got %s", cfg.DealerID)
	}
	if cfg.Scheduler.IntervalHours != 6 {
		t.Fatalf("expected 6h interval, got %d", cfg.Scheduler.IntervalHours)
	}
	if cfg.API.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.API.Port)
	}
	if !cfg.S3.Enabled() || cfg.S3.Key != "cars.json" {
		t.Fatalf("expected S3 publishing to cars.json, got %+v", cfg.S3)
	}
	if cfg.ScheduleDescription() != "Scheduled by cron: 0 4 * * *" {
		t.Fatalf("unexpected schedule description %q", cfg.ScheduleDescription())
	}
}

func TestLoad_RejectsNonPositiveInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("SYNC_INTERVAL_HOURS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero interval")
	}
}

func TestLoad_ProviderYAMLOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "provider.yaml")
	yamlData := "search_url: http://127.0.0.1:9999/search\ntimeout: 5s\n"
	if err := os.WriteFile(path, []byte(yamlData), 0644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("PROVIDER_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Provider.SearchURL != "http://127.0.0.1:9999/search" {
		t.Fatalf("expected overridden search url, got %s", cfg.Provider.SearchURL)
	}
	if cfg.Provider.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.Provider.Timeout)
	}
	if cfg.Provider.ItemURLTemplate != DefaultProvider().ItemURLTemplate {
		t.Fatalf("expected default item template to survive, got %s", cfg.Provider.ItemURLTemplate)
	}
}

func TestLoad_MalformedProviderYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "provider.yaml")
	if err := os.WriteFile(path, []byte("search_url: [unterminated"), 0644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("PROVIDER_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}
