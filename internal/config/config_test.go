package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"subfuse/internal/config"
)

func TestLoadDefaultConfigUsesEnvKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "subfuse", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Translator.APIKey != "test-key" {
		t.Fatalf("expected translator key from env, got %q", cfg.Translator.APIKey)
	}
	if cfg.Translator.BaseURL != config.Default().Translator.BaseURL {
		t.Fatalf("unexpected translator base url: %q", cfg.Translator.BaseURL)
	}
	if cfg.Translator.BatchSize != 10 {
		t.Fatalf("expected default batch size 10, got %d", cfg.Translator.BatchSize)
	}
	if cfg.Translator.MaxAttempts != 3 {
		t.Fatalf("expected default max attempts 3, got %d", cfg.Translator.MaxAttempts)
	}
	if cfg.Limits.MaxVideoDurationSeconds != 600 {
		t.Fatalf("expected default duration limit 600, got %d", cfg.Limits.MaxVideoDurationSeconds)
	}
	if cfg.MaxSendBytes() != 50*1024*1024 {
		t.Fatalf("expected standard ceiling 50 MiB, got %d", cfg.MaxSendBytes())
	}
}

func TestLoadExplicitConfigFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[transport]
mode = "bridge"

[translator]
api_key = "file-key"
batch_size = 25

[limits]
max_video_duration_seconds = 1200
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected config to resolve and exist, got %q %v", resolved, exists)
	}
	if cfg.Translator.APIKey != "file-key" {
		t.Fatalf("unexpected api key: %q", cfg.Translator.APIKey)
	}
	if cfg.Translator.BatchSize != 25 {
		t.Fatalf("unexpected batch size: %d", cfg.Translator.BatchSize)
	}
	if cfg.Limits.MaxVideoDurationSeconds != 1200 {
		t.Fatalf("unexpected duration limit: %d", cfg.Limits.MaxVideoDurationSeconds)
	}
	if cfg.MaxSendBytes() != 2*1024*1024*1024 {
		t.Fatalf("expected bridge ceiling 2 GiB, got %d", cfg.MaxSendBytes())
	}
	if cfg.MaxSendLabel() != "2 GB" {
		t.Fatalf("unexpected ceiling label %q", cfg.MaxSendLabel())
	}
}

func TestValidateRejectsBadTransportMode(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[transport]
mode = "carrier-pigeon"

[translator]
api_key = "k"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected transport mode validation error")
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	if _, _, _, err := config.Load(""); err == nil {
		t.Fatal("expected missing api key to fail validation")
	}
}
