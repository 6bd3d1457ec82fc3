package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// WorkDir is the parent for request-scoped working directories. Each
	// request gets its own subdirectory which is removed when the request
	// reaches a terminal state.
	WorkDir string `toml:"work_dir"`
	LogDir  string `toml:"log_dir"`
	// JournalPath is the SQLite file recording terminal outcomes and
	// per-stage timings. Empty disables the journal.
	JournalPath string `toml:"journal_path"`
}

// Limits contains the validation gates applied to each request.
type Limits struct {
	// MaxVideoDurationSeconds rejects videos longer than this before any
	// transform work happens. A probed duration exactly equal to the limit
	// is accepted.
	MaxVideoDurationSeconds int `toml:"max_video_duration_seconds"`
}

// Transport selects which file-transport backend the result is handed to.
// The backend determines the output-size ceiling: the standard backend caps
// uploads at 50 MiB while a self-hosted bridge lifts that to 2 GiB.
type Transport struct {
	Mode string `toml:"mode"` // "standard" or "bridge"
}

// Translator contains the connection settings for the translation backend.
type Translator struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	BatchSize      int    `toml:"batch_size"`
	MaxAttempts    int    `toml:"max_attempts"`
}

// Whisper contains the transcription model settings.
type Whisper struct {
	// ModelPath points at a ggml model file for whisper.cpp.
	ModelPath string `toml:"model_path"`
	Threads   int    `toml:"threads"`
	// Language forces a transcription language instead of auto-detection.
	Language string `toml:"language"`
}

// FFmpeg contains explicit binary overrides and the per-invocation timeout.
// Empty binary values fall back to a PATH search at startup.
type FFmpeg struct {
	FFmpegBin  string `toml:"ffmpeg_bin"`
	FFprobeBin string `toml:"ffprobe_bin"`
	// TimeoutSeconds bounds every ffmpeg/ffprobe invocation; a wedged
	// process fails the stage instead of hanging the request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Completions    bool   `toml:"completions"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for subfuse.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Limits        Limits        `toml:"limits"`
	Transport     Transport     `toml:"transport"`
	Translator    Translator    `toml:"translator"`
	Whisper       Whisper       `toml:"whisper"`
	FFmpeg        FFmpeg        `toml:"ffmpeg"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subfuse/config.toml")
}

// Load locates, parses, normalizes, and validates a configuration file. The
// returned config has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subfuse.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline needs at runtime.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if journal := strings.TrimSpace(c.Paths.JournalPath); journal != "" {
		if err := os.MkdirAll(filepath.Dir(journal), 0o755); err != nil {
			return fmt.Errorf("create journal directory: %w", err)
		}
	}
	return nil
}

// MaxSendBytes returns the output-size ceiling for the active transport mode.
func (c *Config) MaxSendBytes() int64 {
	if strings.EqualFold(strings.TrimSpace(c.Transport.Mode), transportModeBridge) {
		return maxSendBytesBridge
	}
	return maxSendBytesStandard
}

// MaxSendLabel returns a human-readable ceiling label for user messages.
func (c *Config) MaxSendLabel() string {
	if strings.EqualFold(strings.TrimSpace(c.Transport.Mode), transportModeBridge) {
		return "2 GB"
	}
	return "50 MB"
}

// WriteSample writes the embedded sample configuration to the given path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
