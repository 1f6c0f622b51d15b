package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, "url_list:\n  - rtsp://camera.example.com/live\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ConnectTimeoutMs != 3000 {
		t.Errorf("expected default connect_timeout_ms 3000, got %d", cfg.ConnectTimeoutMs)
	}
	if cfg.RequestTimeoutMs != 3000 {
		t.Errorf("expected default request_timeout_ms 3000, got %d", cfg.RequestTimeoutMs)
	}
	if cfg.RecvBufferSize != 65535 {
		t.Errorf("expected default recv_buffer_size 65535, got %d", cfg.RecvBufferSize)
	}
}

func TestLoadRejectsEmptyURLList(t *testing.T) {
	path := writeTempConfig(t, "connect_timeout_ms: 1000\n")

	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for an empty url_list")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, "url_list:\n  - rtsp://camera.example.com/live\nconnect_timeout_ms: 500\nrecv_buffer_size: 1024\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ConnectTimeoutMs != 500 {
		t.Errorf("expected overridden connect_timeout_ms 500, got %d", cfg.ConnectTimeoutMs)
	}
	if cfg.RecvBufferSize != 1024 {
		t.Errorf("expected overridden recv_buffer_size 1024, got %d", cfg.RecvBufferSize)
	}
	if cfg.ConnectTimeout().Milliseconds() != 500 {
		t.Errorf("expected ConnectTimeout() to reflect 500ms, got %v", cfg.ConnectTimeout())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
