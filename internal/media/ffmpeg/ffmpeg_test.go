package ffmpeg

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEscapeFilterPath(t *testing.T) {
	cases := map[string]string{
		`/tmp/subs.ass`:       `/tmp/subs.ass`,
		`C:\work\subs.ass`:    `C\:\\work\\subs.ass`,
		`/tmp/a:b/subs.ass`:   `/tmp/a\:b/subs.ass`,
		`\weird:path\still:x`: `\\weird\:path\\still\:x`,
	}
	for input, want := range cases {
		if got := EscapeFilterPath(input); got != want {
			t.Errorf("EscapeFilterPath(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestExtractAudioArgs(t *testing.T) {
	var gotName string
	var gotArgs []string
	transformer := NewTransformer(Tools{FFmpeg: "ffmpeg-test"}).WithRunner(func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	})

	if err := transformer.ExtractAudio(context.Background(), "in.mp4", "out.wav"); err != nil {
		t.Fatalf("ExtractAudio returned error: %v", err)
	}
	if gotName != "ffmpeg-test" {
		t.Fatalf("unexpected binary %q", gotName)
	}
	joined := strings.Join(gotArgs, " ")
	for _, fragment := range []string{"-ac 1", "-ar 16000", "-vn", "pcm_s16le", "out.wav"} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected %q in args %q", fragment, joined)
		}
	}
}

func TestBurnSubtitlesEscapesFilterPath(t *testing.T) {
	var gotArgs []string
	transformer := NewTransformer(Tools{FFmpeg: "ffmpeg"}).WithRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		return nil
	})

	if err := transformer.BurnSubtitles(context.Background(), "in.mp4", `/tmp/a:b/subs.ass`, "out.mp4"); err != nil {
		t.Fatalf("BurnSubtitles returned error: %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, `ass=filename=/tmp/a\:b/subs.ass`) {
		t.Fatalf("expected escaped filter path in args %q", joined)
	}
	if !strings.Contains(joined, "-c:a copy") {
		t.Fatalf("expected audio copy in args %q", joined)
	}
}

func TestBurnSubtitlesSurfacesRunnerError(t *testing.T) {
	toolErr := errors.New("no such filter")
	transformer := NewTransformer(Tools{FFmpeg: "ffmpeg"}).WithRunner(func(ctx context.Context, name string, args ...string) error {
		return toolErr
	})
	err := transformer.BurnSubtitles(context.Background(), "in.mp4", "subs.ass", "out.mp4")
	if err == nil || !errors.Is(err, toolErr) {
		t.Fatalf("expected runner error to propagate, got %v", err)
	}
}

func TestTransformerAttachesDeadline(t *testing.T) {
	var deadlines []bool
	transformer := NewTransformer(Tools{FFmpeg: "ffmpeg"}).WithRunner(func(ctx context.Context, name string, args ...string) error {
		_, ok := ctx.Deadline()
		deadlines = append(deadlines, ok)
		return nil
	})

	if err := transformer.ExtractAudio(context.Background(), "in.mp4", "out.wav"); err != nil {
		t.Fatalf("ExtractAudio returned error: %v", err)
	}
	if err := transformer.BurnSubtitles(context.Background(), "in.mp4", "subs.ass", "out.mp4"); err != nil {
		t.Fatalf("BurnSubtitles returned error: %v", err)
	}
	if len(deadlines) != 2 {
		t.Fatalf("expected 2 runner calls, got %d", len(deadlines))
	}
	for i, ok := range deadlines {
		if !ok {
			t.Fatalf("runner call %d ran without a deadline", i)
		}
	}
}

func TestTimeoutExpiryFailsInvocation(t *testing.T) {
	transformer := NewTransformer(Tools{FFmpeg: "ffmpeg"}).
		WithTimeout(time.Millisecond).
		WithRunner(func(ctx context.Context, name string, args ...string) error {
			<-ctx.Done()
			return ctx.Err()
		})

	err := transformer.ExtractAudio(context.Background(), "in.mp4", "out.wav")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestResolveToolsMissingOverride(t *testing.T) {
	if _, err := ResolveTools("/nonexistent/ffmpeg", ""); err == nil {
		t.Fatal("expected error for missing override binary")
	}
}
