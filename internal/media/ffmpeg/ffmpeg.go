package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// defaultCommandTimeout bounds an ffmpeg invocation when no explicit timeout
// is configured. A stuck encode fails the stage instead of hanging forever.
const defaultCommandTimeout = 10 * time.Minute

// Tools holds the resolved ffmpeg/ffprobe binary locations. Resolution
// happens once at process start; a missing binary is a startup failure, not a
// per-request one.
type Tools struct {
	FFmpeg  string
	FFprobe string
}

// ResolveTools locates the ffmpeg and ffprobe executables, preferring the
// explicit overrides when set and falling back to a PATH search.
func ResolveTools(ffmpegOverride, ffprobeOverride string) (Tools, error) {
	ffmpegBin, err := resolveBinary("ffmpeg", ffmpegOverride)
	if err != nil {
		return Tools{}, err
	}
	ffprobeBin, err := resolveBinary("ffprobe", ffprobeOverride)
	if err != nil {
		return Tools{}, err
	}
	return Tools{FFmpeg: ffmpegBin, FFprobe: ffprobeBin}, nil
}

func resolveBinary(name, override string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", fmt.Errorf("resolve %s: configured binary %q: %w", name, override, err)
		}
		return override, nil
	}
	found, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("resolve %s: not found on PATH (install FFmpeg or set ffmpeg.%s_bin)", name, name)
	}
	return found, nil
}

// Runner executes an external command and returns its combined output error.
// The default implementation shells out; tests substitute a fake.
type Runner func(ctx context.Context, name string, args ...string) error

func defaultRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Transformer wraps the ffmpeg invocations the pipeline needs: audio
// extraction and subtitle burn-in.
type Transformer struct {
	tools   Tools
	runner  Runner
	timeout time.Duration
}

// NewTransformer builds a Transformer around resolved tools.
func NewTransformer(tools Tools) *Transformer {
	return &Transformer{tools: tools, runner: defaultRunner, timeout: defaultCommandTimeout}
}

// WithRunner sets a custom command runner (for testing).
func (t *Transformer) WithRunner(runner Runner) *Transformer {
	if runner != nil {
		t.runner = runner
	}
	return t
}

// WithTimeout sets the per-invocation deadline. Non-positive values keep the
// default.
func (t *Transformer) WithTimeout(timeout time.Duration) *Transformer {
	if timeout > 0 {
		t.timeout = timeout
	}
	return t
}

func (t *Transformer) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, t.timeout)
}

// ExtractAudio converts the input's audio track into a mono 16 kHz WAV file,
// the sample format the transcription engine expects.
func (t *Transformer) ExtractAudio(ctx context.Context, source, dest string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
	ctx, cancel := t.deadline(ctx)
	defer cancel()
	if err := t.runner(ctx, t.tools.FFmpeg, args...); err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return nil
}

// BurnSubtitles renders the subtitle document into the video's pixels while
// copying the audio stream unchanged.
func (t *Transformer) BurnSubtitles(ctx context.Context, source, subtitlePath, dest string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vf", "ass=filename=" + EscapeFilterPath(subtitlePath),
		"-c:a", "copy",
		dest,
	}
	ctx, cancel := t.deadline(ctx)
	defer cancel()
	if err := t.runner(ctx, t.tools.FFmpeg, args...); err != nil {
		return fmt.Errorf("ffmpeg burn subtitles: %w", err)
	}
	return nil
}

// EscapeFilterPath escapes a path for interpolation into an ffmpeg filter
// expression. Backslashes must be escaped before colons or the colon escape
// itself would be corrupted.
func EscapeFilterPath(path string) string {
	escaped := strings.ReplaceAll(path, `\`, `\\`)
	return strings.ReplaceAll(escaped, ":", `\:`)
}
