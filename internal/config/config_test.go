package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port == "" {
		t.Error("expected a default port")
	}
	if cfg.Songbook.Concurrency < 1 || cfg.Songbook.WorkerConcurrency < 1 {
		t.Errorf("songbook concurrency = %+v", cfg.Songbook)
	}
	if cfg.Server.PublicURL != "http://localhost:"+cfg.Server.Port {
		t.Errorf("PublicURL = %q", cfg.Server.PublicURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RATELIMIT_DIAGRAM_PER_MIN", "7")
	t.Setenv("OIDC_ISSUER", "https://id.example.com")
	t.Setenv("SONGBOOK_CONCURRENCY", "0")
	t.Setenv("GATEWAY_ENABLED", "true")
	t.Setenv("PUBLIC_URL", "https://api.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RateLimit.DiagramPerMin != 7 {
		t.Errorf("DiagramPerMin = %d", cfg.RateLimit.DiagramPerMin)
	}
	if cfg.OIDC.Issuer != "https://id.example.com" {
		t.Errorf("Issuer = %q", cfg.OIDC.Issuer)
	}
	if cfg.Songbook.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want clamp to 1", cfg.Songbook.Concurrency)
	}
	if !cfg.Gateway.Enabled {
		t.Error("gateway should be enabled")
	}
	if cfg.Server.PublicURL != "https://api.example.com" {
		t.Errorf("PublicURL = %q, want trailing slash trimmed", cfg.Server.PublicURL)
	}
}

func TestReadSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte("  s3cret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_SECRET_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWT.Secret != "s3cret" {
		t.Errorf("Secret = %q", cfg.JWT.Secret)
	}
}

func TestReadSecret_DirectValueWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte("from-file"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JWT_SECRET", "direct")
	t.Setenv("JWT_SECRET_FILE", path)

	readSecret("JWT_SECRET")
	if got := os.Getenv("JWT_SECRET"); got != "direct" {
		t.Errorf("JWT_SECRET = %q", got)
	}
}
