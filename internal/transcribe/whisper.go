package transcribe

import (
	"context"
	"fmt"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// whisperEngine adapts the whisper.cpp bindings to the engine interface. The
// loaded model supports concurrent inference: each Transcribe call creates
// its own context over the shared model.
type whisperEngine struct {
	model   whisper.Model
	threads int
}

func newWhisperEngine(cfg Config) (engine, error) {
	model, err := whisper.New(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	return &whisperEngine{model: model, threads: cfg.Threads}, nil
}

func (e *whisperEngine) Transcribe(ctx context.Context, samples []float32, lang string) ([]Segment, string, error) {
	wctx, err := e.model.NewContext()
	if err != nil {
		return nil, "", fmt.Errorf("new whisper context: %w", err)
	}

	if e.threads > 0 {
		wctx.SetThreads(uint(e.threads))
	}
	if lang != "" {
		if err := wctx.SetLanguage(lang); err != nil {
			return nil, "", fmt.Errorf("set language %q: %w", lang, err)
		}
	} else if err := wctx.SetLanguage("auto"); err != nil {
		return nil, "", fmt.Errorf("enable language detection: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, "", err
	}

	var segments []Segment
	for {
		s, err := wctx.NextSegment()
		if err != nil {
			break
		}
		segments = append(segments, Segment{
			Start: s.Start.Seconds(),
			End:   s.End.Seconds(),
			Text:  s.Text,
		})
	}

	detected := lang
	if detected == "" {
		detected = wctx.DetectedLanguage()
	}
	return segments, detected, nil
}

func (e *whisperEngine) Close() error {
	if e.model != nil {
		return e.model.Close()
	}
	return nil
}
