// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The pipeline uses it for the authoritative duration check after a file is
// acquired, and to confirm an audio stream exists before extraction.
package ffprobe
