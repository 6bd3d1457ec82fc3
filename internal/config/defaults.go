package config

const (
	defaultWorkDir     = "~/.local/share/subfuse/work"
	defaultLogDir      = "~/.local/share/subfuse/logs"
	defaultJournalPath = "~/.local/share/subfuse/journal.db"

	defaultMaxVideoDurationSeconds = 600

	transportModeStandard = "standard"
	transportModeBridge   = "bridge"

	maxSendBytesStandard = int64(50) * 1024 * 1024
	maxSendBytesBridge   = int64(2) * 1024 * 1024 * 1024

	defaultTranslatorBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultTranslatorModel          = "google/gemini-2.0-flash-001"
	defaultTranslatorTimeoutSeconds = 90
	defaultTranslatorBatchSize      = 10
	defaultTranslatorMaxAttempts    = 3

	defaultWhisperModelPath = "~/.local/share/subfuse/models/ggml-large-v3.bin"
	defaultWhisperThreads   = 4

	defaultFFmpegTimeoutSeconds = 600

	defaultNotifyRequestTimeout = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:     defaultWorkDir,
			LogDir:      defaultLogDir,
			JournalPath: defaultJournalPath,
		},
		Limits: Limits{
			MaxVideoDurationSeconds: defaultMaxVideoDurationSeconds,
		},
		Transport: Transport{
			Mode: transportModeStandard,
		},
		Translator: Translator{
			BaseURL:        defaultTranslatorBaseURL,
			Model:          defaultTranslatorModel,
			TimeoutSeconds: defaultTranslatorTimeoutSeconds,
			BatchSize:      defaultTranslatorBatchSize,
			MaxAttempts:    defaultTranslatorMaxAttempts,
		},
		Whisper: Whisper{
			ModelPath: defaultWhisperModelPath,
			Threads:   defaultWhisperThreads,
		},
		FFmpeg: FFmpeg{
			TimeoutSeconds: defaultFFmpegTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Completions:    true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
