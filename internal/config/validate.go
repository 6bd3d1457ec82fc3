package config

import (
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLimits(); err != nil {
		return err
	}
	if err := c.validateTransport(); err != nil {
		return err
	}
	if err := c.validateTranslator(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLimits() error {
	if c.Limits.MaxVideoDurationSeconds <= 0 {
		return fmt.Errorf("limits.max_video_duration_seconds must be positive, got %d", c.Limits.MaxVideoDurationSeconds)
	}
	return nil
}

func (c *Config) validateTransport() error {
	switch c.Transport.Mode {
	case transportModeStandard, transportModeBridge:
		return nil
	default:
		return fmt.Errorf("transport.mode must be %q or %q, got %q", transportModeStandard, transportModeBridge, c.Transport.Mode)
	}
}

func (c *Config) validateTranslator() error {
	if c.Translator.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/subfuse/config.toml"
		}
		return fmt.Errorf("translator.api_key is required. Set OPENROUTER_API_KEY env var or edit %s (create with 'subfuse config init')", defaultPath)
	}
	if c.Translator.BatchSize > 100 {
		return fmt.Errorf("translator.batch_size must be at most 100, got %d", c.Translator.BatchSize)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
