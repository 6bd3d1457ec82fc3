package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTransport()
	c.normalizeTranslator()
	if err := c.normalizeWhisper(); err != nil {
		return err
	}
	c.normalizeFFmpeg()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if journal := strings.TrimSpace(c.Paths.JournalPath); journal != "" {
		if c.Paths.JournalPath, err = expandPath(journal); err != nil {
			return fmt.Errorf("paths.journal_path: %w", err)
		}
	} else {
		c.Paths.JournalPath = ""
	}
	return nil
}

func (c *Config) normalizeTransport() {
	c.Transport.Mode = strings.ToLower(strings.TrimSpace(c.Transport.Mode))
	if c.Transport.Mode == "" {
		c.Transport.Mode = transportModeStandard
	}
}

func (c *Config) normalizeTranslator() {
	if c.Translator.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.Translator.APIKey = value
		}
	}
	c.Translator.APIKey = strings.TrimSpace(c.Translator.APIKey)
	c.Translator.BaseURL = strings.TrimSpace(c.Translator.BaseURL)
	if c.Translator.BaseURL == "" {
		c.Translator.BaseURL = defaultTranslatorBaseURL
	}
	c.Translator.Model = strings.TrimSpace(c.Translator.Model)
	if c.Translator.Model == "" {
		c.Translator.Model = defaultTranslatorModel
	}
	if c.Translator.TimeoutSeconds <= 0 {
		c.Translator.TimeoutSeconds = defaultTranslatorTimeoutSeconds
	}
	if c.Translator.BatchSize <= 0 {
		c.Translator.BatchSize = defaultTranslatorBatchSize
	}
	if c.Translator.MaxAttempts <= 0 {
		c.Translator.MaxAttempts = defaultTranslatorMaxAttempts
	}
}

func (c *Config) normalizeWhisper() error {
	var err error
	if strings.TrimSpace(c.Whisper.ModelPath) == "" {
		c.Whisper.ModelPath = defaultWhisperModelPath
	}
	if c.Whisper.ModelPath, err = expandPath(c.Whisper.ModelPath); err != nil {
		return fmt.Errorf("whisper.model_path: %w", err)
	}
	if c.Whisper.Threads <= 0 {
		c.Whisper.Threads = defaultWhisperThreads
	}
	c.Whisper.Language = strings.ToLower(strings.TrimSpace(c.Whisper.Language))
	return nil
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.FFmpegBin = strings.TrimSpace(c.FFmpeg.FFmpegBin)
	c.FFmpeg.FFprobeBin = strings.TrimSpace(c.FFmpeg.FFprobeBin)
	if c.FFmpeg.TimeoutSeconds <= 0 {
		c.FFmpeg.TimeoutSeconds = defaultFFmpegTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}
