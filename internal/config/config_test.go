package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen addr: %s", cfg.ListenAddr)
	}
	if cfg.Verifier.Backend != BackendDlib {
		t.Fatalf("unexpected default backend: %s", cfg.Verifier.Backend)
	}
	if cfg.Verifier.Threshold != 0.6 {
		t.Fatalf("unexpected default threshold: %f", cfg.Verifier.Threshold)
	}
	if cfg.MaxImageBytes != 15<<20 {
		t.Fatalf("unexpected image cap: %d", cfg.MaxImageBytes)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("VERIFIER_BACKEND", BackendHTTP)
	t.Setenv("FACE_API_ENDPOINT", "http://compare:8000/verify")
	t.Setenv("VERIFIER_THRESHOLD", "0.45")
	t.Setenv("DOWNLOAD_TIMEOUT", "5s")
	t.Setenv("MAX_IMAGE_BYTES", "1024")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if cfg.ListenAddr != ":9999" {
		t.Fatalf("unexpected listen addr: %s", cfg.ListenAddr)
	}
	if cfg.Verifier.Backend != BackendHTTP {
		t.Fatalf("unexpected backend: %s", cfg.Verifier.Backend)
	}
	if cfg.Verifier.Endpoint != "http://compare:8000/verify" {
		t.Fatalf("unexpected endpoint: %s", cfg.Verifier.Endpoint)
	}
	if cfg.Verifier.Threshold != 0.45 {
		t.Fatalf("unexpected threshold: %f", cfg.Verifier.Threshold)
	}
	if cfg.DownloadTimeout != 5*time.Second {
		t.Fatalf("unexpected download timeout: %v", cfg.DownloadTimeout)
	}
	if cfg.MaxImageBytes != 1024 {
		t.Fatalf("unexpected image cap: %d", cfg.MaxImageBytes)
	}
}

func TestLoadRejectsHTTPBackendWithoutEndpoint(t *testing.T) {
	t.Setenv("VERIFIER_BACKEND", BackendHTTP)
	t.Setenv("FACE_API_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("VERIFIER_BACKEND", "tensorflow")

	if _, err := Load(); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestGetEnvHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("MAX_IMAGE_BYTES", "not-a-number")
	t.Setenv("DOWNLOAD_TIMEOUT", "soon")
	t.Setenv("VERIFIER_THRESHOLD", "high")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if cfg.MaxImageBytes != 15<<20 {
		t.Fatalf("expected fallback image cap, got %d", cfg.MaxImageBytes)
	}
	if cfg.DownloadTimeout != 30*time.Second {
		t.Fatalf("expected fallback timeout, got %v", cfg.DownloadTimeout)
	}
	if cfg.Verifier.Threshold != 0.6 {
		t.Fatalf("expected fallback threshold, got %f", cfg.Verifier.Threshold)
	}
}
