package pipeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"subfuse/internal/config"
	"subfuse/internal/services"
)

// Status phrases emitted after each stage transition.
const (
	statusProbing      = "Checking the video..."
	statusExtracting   = "Extracting audio..."
	statusTranscribing = "Transcribing speech..."
	statusTranslating  = "Translating subtitles..."
	statusBurning      = "Burning subtitles into the video..."
)

// Terminal messages.
const (
	msgDone              = "Done."
	msgNoSpeech          = "No speech detected in this video."
	msgTranslationFailed = "Translation failed after multiple attempts. Please try again later."
	msgUnexpectedError   = "An unexpected error occurred while processing the video."
)

// Usage describes what the pipeline accepts, with the active limits filled
// in. Shown as command help and as the response to malformed requests.
func Usage(cfg *config.Config) string {
	return fmt.Sprintf(
		"Processes a spoken-word video and burns bilingual subtitles into it. "+
			"Videos may be up to %d seconds long; the subtitled output must stay under %s.",
		cfg.Limits.MaxVideoDurationSeconds, cfg.MaxSendLabel(),
	)
}

// FetchGuidance converts an upstream file-fetch error into a user-facing
// line, distinguishing size-limit refusals from other fetch failures.
func FetchGuidance(err error, cfg *config.Config) string {
	if err == nil {
		return ""
	}
	lowered := strings.ToLower(err.Error())
	if errors.Is(err, services.ErrTransport) &&
		(strings.Contains(lowered, "too large") || strings.Contains(lowered, "too big")) {
		return fmt.Sprintf("The file is too large to fetch over the %s transport.", cfg.MaxSendLabel())
	}
	return "Could not fetch the input file. Check that it exists and is readable."
}

// TimingSummary renders the per-stage elapsed-time breakdown plus the total
// wall time, one line per stage.
func (r Result) TimingSummary() string {
	var b strings.Builder
	for _, t := range r.Timings {
		fmt.Fprintf(&b, "%s: %.1fs\n", t.Stage, t.Elapsed.Seconds())
	}
	fmt.Fprintf(&b, "total: %.1fs", r.Total.Seconds())
	return b.String()
}

// formatSeconds renders a measured duration without trailing zeros, so a
// rejection message reports exactly what the probe saw.
func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

func formatBytes(size int64) string {
	const mib = 1 << 20
	if size >= 1<<30 {
		return fmt.Sprintf("%.2f GB", float64(size)/float64(1<<30))
	}
	return fmt.Sprintf("%.1f MB", float64(size)/float64(mib))
}

// toolComplaint extracts the underlying tool's message for user display,
// trimming wrapper noise but keeping the complaint verbatim.
func toolComplaint(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimSpace(err.Error())
}
