package config

import (
	"testing"
	"time"
)

func TestLoad_PortOverridesDefaultAddr(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9090")

	cfg := Load()
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected :9090, got %q", cfg.HTTPAddr)
	}
}

func TestLoad_RetryPolicyFromEnv(t *testing.T) {
	t.Setenv("RETRY_MAX_ATTEMPTS", "1")
	t.Setenv("RETRY_BASE_DELAY", "50ms")
	t.Setenv("RETRY_MAX_DELAY", "")

	cfg := Load()
	if cfg.Retry.MaxAttempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.BaseDelay != 50*time.Millisecond {
		t.Fatalf("expected 50ms, got %s", cfg.Retry.BaseDelay)
	}
	if cfg.Retry.MaxDelay != 2*time.Second {
		t.Fatalf("expected default max delay, got %s", cfg.Retry.MaxDelay)
	}
}

func TestEnvList_TrimsAndSkipsEmpty(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,http://b.example ")

	got := envList("ALLOWED_ORIGINS", "")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "http://b.example" {
		t.Fatalf("unexpected list: %#v", got)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "false")
	if envBool("CACHE_ENABLED", true) {
		t.Fatalf("expected false")
	}
	t.Setenv("CACHE_ENABLED", "1")
	if !envBool("CACHE_ENABLED", false) {
		t.Fatalf("expected true")
	}
}
