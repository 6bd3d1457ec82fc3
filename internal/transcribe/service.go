package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/go-audio/wav"

	"subfuse/internal/language"
)

// Segment is one unit of transcribed speech. Start and End are seconds.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Result carries the ordered segments plus the detected source language.
type Result struct {
	Segments []Segment
	Language string
	// LanguageProbability is 0 when the engine does not surface a
	// confidence for the detected language.
	LanguageProbability float64
}

// Config contains the transcription model settings.
type Config struct {
	ModelPath string
	Threads   int
	// Language forces transcription in a specific language; empty enables
	// auto-detection.
	Language string
}

// engine abstracts the loaded speech model so tests can substitute a fake.
type engine interface {
	Transcribe(ctx context.Context, samples []float32, lang string) ([]Segment, string, error)
	Close() error
}

// Service wraps a local speech model. The model is expensive to load, so it
// is initialized on first use and reused by every in-flight request;
// initialization is race-free and performed by exactly one caller.
type Service struct {
	cfg    Config
	logger *slog.Logger

	initOnce sync.Once
	eng      engine
	initErr  error

	// newEngine is the model loader; overridden in tests.
	newEngine func(cfg Config) (engine, error)
}

// NewService creates a transcription service. The model is not loaded until
// the first Transcribe call.
func NewService(cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		logger:    logger,
		newEngine: newWhisperEngine,
	}
}

// Transcribe decodes the WAV file at audioPath and runs the speech model over
// its samples. Empty-text segments are dropped before they reach the caller.
func (s *Service) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	var result Result

	eng, err := s.engine()
	if err != nil {
		return result, err
	}

	samples, err := readSamples(audioPath)
	if err != nil {
		return result, err
	}

	segments, detected, err := eng.Transcribe(ctx, samples, s.cfg.Language)
	if err != nil {
		return result, fmt.Errorf("transcribe: %w", err)
	}

	kept := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		kept = append(kept, Segment{Start: seg.Start, End: seg.End, Text: text})
	}

	result.Segments = kept
	result.Language = language.Normalize(detected)
	s.logger.Info("transcription complete",
		"segments", len(kept),
		"language", result.Language,
	)
	return result, nil
}

// Close releases the loaded model, if any. It takes the same init guard as
// Transcribe: either initialization already happened and s.eng is safe to
// read, or Close wins the Once and later Transcribe calls fail cleanly
// instead of loading a model nobody will release.
func (s *Service) Close() error {
	s.initOnce.Do(func() {
		s.initErr = errors.New("transcription service closed")
	})
	if s.eng != nil {
		return s.eng.Close()
	}
	return nil
}

func (s *Service) engine() (engine, error) {
	s.initOnce.Do(func() {
		s.logger.Info("loading whisper model", "path", s.cfg.ModelPath, "threads", s.cfg.Threads)
		s.eng, s.initErr = s.newEngine(s.cfg)
		if s.initErr == nil {
			s.logger.Info("whisper model loaded")
		}
	})
	if s.initErr != nil {
		return nil, fmt.Errorf("load whisper model: %w", s.initErr)
	}
	return s.eng, nil
}

func readSamples(path string) ([]float32, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer fh.Close()

	decoder := wav.NewDecoder(fh)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	return buf.AsFloat32Buffer().Data, nil
}
