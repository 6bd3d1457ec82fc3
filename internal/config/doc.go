// Package config loads, normalizes, and validates subfuse configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENROUTER_API_KEY. The Config type centralizes every knob the pipeline and
// CLI need: duration limits, transport ceilings, translation backend
// credentials, the whisper model location, and ffmpeg/ffprobe overrides.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
