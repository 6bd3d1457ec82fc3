package testsupport

import (
	"path/filepath"
	"testing"

	"subfuse/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.JournalPath = filepath.Join(base, "journal.db")
	cfg.Translator.APIKey = "test"
	cfg.Whisper.ModelPath = filepath.Join(base, "model.bin")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithTransportMode overrides the file-transport backend selection.
func WithTransportMode(mode string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Transport.Mode = mode
	}
}

// WithMaxDuration overrides the video duration gate in seconds.
func WithMaxDuration(seconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Limits.MaxVideoDurationSeconds = seconds
	}
}
