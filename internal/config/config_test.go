package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsWhenUnset(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("ML_PPTX_TIMEOUT_SECONDS", "")
	t.Setenv("MAX_UPLOAD_MB", "")

	cfg := Load()
	if cfg.NATSSubject != "workspace.cleared" {
		t.Fatalf("expected default subject workspace.cleared, got %q", cfg.NATSSubject)
	}
	if cfg.MLPPTXTimeoutSec != 300 {
		t.Fatalf("expected default pptx timeout 300, got %d", cfg.MLPPTXTimeoutSec)
	}
	if cfg.MaxUploadMB != 50 {
		t.Fatalf("expected default max upload 50, got %d", cfg.MaxUploadMB)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "API_PORT: \"9999\"\nML_EXTRACT_TIMEOUT_SECONDS: 60\nCOOKIE_SECURE: true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_PORT", "7777")
	t.Setenv("ML_EXTRACT_TIMEOUT_SECONDS", "")
	t.Setenv("COOKIE_SECURE", "")

	cfg := Load()
	if cfg.APIPort != "7777" {
		t.Fatalf("expected env to win over file, got %q", cfg.APIPort)
	}
	if cfg.MLExtractTimeoutSec != 60 {
		t.Fatalf("expected file value 60, got %d", cfg.MLExtractTimeoutSec)
	}
	if !cfg.CookieSecure {
		t.Fatalf("expected file value for COOKIE_SECURE")
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SESSION_TTL_HOURS", "not-a-number")

	cfg := Load()
	if cfg.SessionTTLHours != 24 {
		t.Fatalf("expected fallback ttl 24, got %d", cfg.SessionTTLHours)
	}
}
