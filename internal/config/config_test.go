package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load returned error for missing file: %v", err)
	}

	if cfg.Upstream.AuthBaseURL != "http://localhost:8000/api/v1/auth" {
		t.Errorf("unexpected default auth base URL: %s", cfg.Upstream.AuthBaseURL)
	}
	if cfg.Session.Backend != "memory" {
		t.Errorf("expected default session backend memory, got %s", cfg.Session.Backend)
	}
	if cfg.Scan.RefreshDelay != 5*time.Second {
		t.Errorf("expected default refresh delay 5s, got %s", cfg.Scan.RefreshDelay)
	}
	if cfg.Upstream.RequestTimeout == 0 {
		t.Error("expected a non-zero default request timeout")
	}
}

func TestLoad_FileAndEnvExpansion(t *testing.T) {
	os.Setenv("SECLENS_TEST_REDIS_PASS", "s3cret")
	defer os.Unsetenv("SECLENS_TEST_REDIS_PASS")

	raw := `
server:
  port: 9000
upstream:
  auth_base_url: https://auth.internal/api/v1/auth
  request_timeout: 3s
session:
  backend: redis
  ttl: 1h
redis:
  host: cache.internal
  password: ${SECLENS_TEST_REDIS_PASS}
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Upstream.AuthBaseURL != "https://auth.internal/api/v1/auth" {
		t.Errorf("unexpected auth base URL: %s", cfg.Upstream.AuthBaseURL)
	}
	if cfg.Upstream.RequestTimeout != 3*time.Second {
		t.Errorf("expected 3s request timeout, got %s", cfg.Upstream.RequestTimeout)
	}
	if cfg.Redis.Password != "s3cret" {
		t.Errorf("env expansion failed, got %q", cfg.Redis.Password)
	}
	if cfg.Redis.Addr() != "cache.internal:6379" {
		t.Errorf("unexpected redis addr: %s", cfg.Redis.Addr())
	}
	// unset sections still get defaults
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected default max open conns, got %d", cfg.Database.MaxOpenConns)
	}
}
