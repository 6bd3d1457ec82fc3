package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the failure kinds the pipeline distinguishes. Every
// stage error is wrapped with exactly one of these so the orchestrator
// boundary can classify it with errors.Is.
var (
	// ErrValidation covers rejected inputs: duration over the limit,
	// unreadable media. Never retried, always user-visible.
	ErrValidation = errors.New("validation error")

	// ErrExternalTool covers adapter failures (ffprobe, ffmpeg, the
	// transcription engine). The underlying tool's message is passed
	// through verbatim.
	ErrExternalTool = errors.New("external tool error")

	// ErrTranslation marks translation failures after the client's
	// internal retries are exhausted.
	ErrTranslation = errors.New("translation error")

	// ErrDelivery marks outputs that processed fine but exceed the
	// active transport's size ceiling.
	ErrDelivery = errors.New("delivery constraint")

	// ErrTransport covers upstream file fetch issues.
	ErrTransport = errors.New("transport error")

	// ErrConfiguration marks startup-time misconfiguration (missing
	// binaries, missing credentials).
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
