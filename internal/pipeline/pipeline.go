package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"subfuse/internal/config"
	"subfuse/internal/language"
	"subfuse/internal/logging"
	"subfuse/internal/media/ffprobe"
	"subfuse/internal/services"
	"subfuse/internal/subtitles"
	"subfuse/internal/transcribe"
	"subfuse/internal/translate"
)

// Stage labels used in failure outcomes, timing breakdowns, and logs.
const (
	StageProbe           = "probe"
	StageAudioExtraction = "audio-extraction"
	StageTranscription   = "transcription"
	StageTranslation     = "translation"
	StageSubtitles       = "subtitles"
	StageBurnIn          = "burn-in"
	StageSizeCheck       = "size-check"
)

// Outcome is the terminal state of one request. Every Process call ends in
// exactly one of these.
type Outcome string

const (
	OutcomeDone                   Outcome = "done"
	OutcomeRejectedTooLong        Outcome = "rejected-too-long"
	OutcomeRejectedOutputTooLarge Outcome = "rejected-output-too-large"
	OutcomeNoSpeech               Outcome = "no-speech"
	OutcomeFailed                 Outcome = "failed"
)

// Prober reports container metadata for a media file.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// BinaryProber probes via a resolved ffprobe binary. Every invocation runs
// under a deadline so a wedged ffprobe fails the probe stage instead of
// hanging the request.
type BinaryProber struct {
	Binary  string
	Timeout time.Duration
}

func (p BinaryProber) Inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return ffprobe.Inspect(ctx, p.Binary, path)
}

// MediaTransformer covers the two ffmpeg invocations the pipeline needs.
type MediaTransformer interface {
	ExtractAudio(ctx context.Context, source, dest string) error
	BurnSubtitles(ctx context.Context, source, subtitlePath, dest string) error
}

// Transcriber converts an audio file into ordered speech segments plus a
// detected language.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (transcribe.Result, error)
}

// Translator is the batched translation contract. Both methods return results
// index-aligned with and equal in length to their input.
type Translator interface {
	TranslateSingle(ctx context.Context, texts []string, targetLanguage string) ([]string, error)
	TranslateDual(ctx context.Context, texts []string) ([]translate.Pair, error)
}

// StatusReporter receives best-effort progress updates. A reporter error is
// logged and discarded; it never aborts the run.
type StatusReporter interface {
	Update(ctx context.Context, message string) error
}

// StatusFunc adapts a function to the StatusReporter interface.
type StatusFunc func(ctx context.Context, message string) error

func (f StatusFunc) Update(ctx context.Context, message string) error {
	return f(ctx, message)
}

// Request is one video to process. DurationHint is an optional upstream
// estimate in seconds (0 when absent); it gates cheaply before any transform
// work but the probed duration is authoritative. OutputDir defaults to the
// source file's directory.
type Request struct {
	SourcePath       string
	DurationHint     float64
	OriginalFilename string
	OutputDir        string
}

// StageTiming is the elapsed wall time of one completed stage.
type StageTiming struct {
	Stage   string
	Elapsed time.Duration
}

// Result is the terminal record of one request. Message is the single
// user-facing line; Err carries the classified failure for logging and exit
// codes and is never shown verbatim.
type Result struct {
	Outcome           Outcome
	FailedStage       string
	Message           string
	OutputPath        string
	SuggestedFilename string
	Language          string
	SegmentCount      int
	DurationSeconds   float64
	OutputSizeBytes   int64
	Timings           []StageTiming
	Total             time.Duration
	Err               error
}

// Dependencies are the collaborators the orchestrator sequences.
type Dependencies struct {
	Prober      Prober
	Media       MediaTransformer
	Transcriber Transcriber
	Translator  Translator
	Reporter    StatusReporter
}

// Orchestrator runs the stage sequence for one request at a time per call.
// It is safe for concurrent Process calls; all per-request state is local.
type Orchestrator struct {
	cfg    *config.Config
	logger *slog.Logger
	deps   Dependencies
}

// New builds an orchestrator around resolved dependencies.
func New(cfg *config.Config, logger *slog.Logger, deps Dependencies) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{cfg: cfg, logger: logger, deps: deps}
}

// Process runs the full stage sequence for one video and always returns a
// terminal result with a user-facing message; it never panics outward.
func (o *Orchestrator) Process(ctx context.Context, req Request) (res Result) {
	start := time.Now()
	var timings []StageTiming
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("pipeline panic", "panic", fmt.Sprint(r))
			res = Result{
				Outcome:     OutcomeFailed,
				FailedStage: "pipeline",
				Message:     msgUnexpectedError,
				Err:         services.Wrap(services.ErrExternalTool, "pipeline", "panic", fmt.Sprint(r), nil),
			}
		}
		res.Timings = timings
		res.Total = time.Since(start)
	}()

	maxDuration := float64(o.cfg.Limits.MaxVideoDurationSeconds)

	// Cost avoidance only; the probe below re-validates.
	if req.DurationHint > maxDuration {
		return o.rejectTooLong(req.DurationHint)
	}

	workDir := filepath.Join(o.cfg.Paths.WorkDir, uuid.NewString())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return o.failed(StageProbe, services.ErrExternalTool, msgUnexpectedError,
			fmt.Errorf("create working directory: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			o.logger.Warn("failed to remove working directory", "dir", workDir, "error", err)
		}
	}()

	logger := o.logger.With("request_dir", filepath.Base(workDir))
	logger.Info("processing started", "source", req.SourcePath)

	stageStart := time.Now()
	mark := func(stage string) {
		now := time.Now()
		timings = append(timings, StageTiming{Stage: stage, Elapsed: now.Sub(stageStart)})
		logger.Info("stage completed", "stage", stage, "elapsed", now.Sub(stageStart))
		stageStart = now
	}

	o.report(ctx, statusProbing)
	probe, err := o.deps.Prober.Inspect(ctx, req.SourcePath)
	if err != nil {
		return o.failed(StageProbe, services.ErrExternalTool,
			"Could not read the video file: "+toolComplaint(err), err)
	}
	duration := probe.DurationSeconds()
	if math.IsNaN(duration) || duration <= 0 {
		return o.failed(StageProbe, services.ErrValidation,
			"Could not determine the video duration.", nil)
	}
	if probe.VideoStreamCount() == 0 {
		return o.failed(StageProbe, services.ErrValidation,
			"The file does not contain a video stream.", nil)
	}
	if duration > maxDuration {
		return o.rejectTooLong(duration)
	}
	if probe.AudioStreamCount() == 0 {
		return o.failed(StageAudioExtraction, services.ErrValidation,
			"The video has no audio track.", nil)
	}
	mark(StageProbe)

	o.report(ctx, statusExtracting)
	audioPath := filepath.Join(workDir, "audio.wav")
	if err := o.deps.Media.ExtractAudio(ctx, req.SourcePath, audioPath); err != nil {
		return o.failed(StageAudioExtraction, services.ErrExternalTool,
			"Audio extraction failed: "+toolComplaint(err), err)
	}
	mark(StageAudioExtraction)

	o.report(ctx, statusTranscribing)
	transcription, err := o.deps.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return o.failed(StageTranscription, services.ErrExternalTool,
			"Transcription failed: "+toolComplaint(err), err)
	}
	mark(StageTranscription)
	logger.Info("language detected",
		"language", transcription.Language,
		"confidence", transcription.LanguageProbability,
		"segments", len(transcription.Segments),
	)
	if len(transcription.Segments) == 0 {
		return Result{
			Outcome:         OutcomeNoSpeech,
			Message:         msgNoSpeech,
			Language:        transcription.Language,
			DurationSeconds: duration,
		}
	}

	o.report(ctx, statusTranslating)
	translations, err := o.translateSegments(ctx, transcription)
	if err != nil {
		return o.failed(StageTranslation, services.ErrTranslation, msgTranslationFailed, err)
	}
	mark(StageTranslation)

	doc := subtitles.Synthesize(transcription.Segments, transcription.Language, translations)
	subtitlePath := filepath.Join(workDir, "subtitles.ass")
	if err := doc.WriteFile(subtitlePath); err != nil {
		return o.failed(StageSubtitles, services.ErrExternalTool, msgUnexpectedError, err)
	}
	mark(StageSubtitles)

	o.report(ctx, statusBurning)
	outputName := OutputFilename(firstNonEmpty(req.OriginalFilename, filepath.Base(req.SourcePath)))
	outputDir := firstNonEmpty(req.OutputDir, filepath.Dir(req.SourcePath))
	outputPath := filepath.Join(outputDir, outputName)
	if err := o.deps.Media.BurnSubtitles(ctx, req.SourcePath, subtitlePath, outputPath); err != nil {
		os.Remove(outputPath)
		return o.failed(StageBurnIn, services.ErrExternalTool,
			"Subtitle burn-in failed: "+toolComplaint(err), err)
	}
	mark(StageBurnIn)

	info, err := os.Stat(outputPath)
	if err != nil {
		return o.failed(StageSizeCheck, services.ErrExternalTool, msgUnexpectedError, err)
	}
	if info.Size() > o.cfg.MaxSendBytes() {
		os.Remove(outputPath)
		msg := fmt.Sprintf("The subtitled video is %s, which exceeds the %s delivery limit.",
			formatBytes(info.Size()), o.cfg.MaxSendLabel())
		return Result{
			Outcome:         OutcomeRejectedOutputTooLarge,
			Message:         msg,
			Language:        transcription.Language,
			SegmentCount:    len(transcription.Segments),
			DurationSeconds: duration,
			OutputSizeBytes: info.Size(),
			Err:             services.Wrap(services.ErrDelivery, StageSizeCheck, "", msg, nil),
		}
	}
	mark(StageSizeCheck)

	logger.Info("processing complete",
		"output", outputPath,
		"size_bytes", info.Size(),
		"total", time.Since(start),
	)
	return Result{
		Outcome:           OutcomeDone,
		Message:           msgDone,
		OutputPath:        outputPath,
		SuggestedFilename: outputName,
		Language:          transcription.Language,
		SegmentCount:      len(transcription.Segments),
		DurationSeconds:   duration,
		OutputSizeBytes:   info.Size(),
	}
}

// translateSegments branches on the detected source language: Chinese sources
// get an English rendering, English sources a Simplified Chinese one, and
// everything else both at once.
func (o *Orchestrator) translateSegments(ctx context.Context, transcription transcribe.Result) (subtitles.Translations, error) {
	texts := make([]string, len(transcription.Segments))
	for i, seg := range transcription.Segments {
		texts[i] = seg.Text
	}

	var translations subtitles.Translations
	var err error
	switch {
	case language.IsChinese(transcription.Language):
		translations.Single, err = o.deps.Translator.TranslateSingle(ctx, texts, "English")
	case language.IsEnglish(transcription.Language):
		translations.Single, err = o.deps.Translator.TranslateSingle(ctx, texts, "Simplified Chinese")
	default:
		translations.Dual, err = o.deps.Translator.TranslateDual(ctx, texts)
	}
	return translations, err
}

func (o *Orchestrator) rejectTooLong(duration float64) Result {
	msg := fmt.Sprintf("Video is %s seconds long; the limit is %d seconds.",
		formatSeconds(duration), o.cfg.Limits.MaxVideoDurationSeconds)
	return Result{
		Outcome:         OutcomeRejectedTooLong,
		Message:         msg,
		DurationSeconds: duration,
		Err:             services.Wrap(services.ErrValidation, "duration-check", "", msg, nil),
	}
}

func (o *Orchestrator) failed(stage string, marker error, userMessage string, err error) Result {
	wrapped := services.Wrap(marker, stage, "", "", err)
	o.logger.Error("stage failed", "stage", stage, "error", wrapped)
	return Result{
		Outcome:     OutcomeFailed,
		FailedStage: stage,
		Message:     userMessage,
		Err:         wrapped,
	}
}

func (o *Orchestrator) report(ctx context.Context, message string) {
	if o.deps.Reporter == nil {
		return
	}
	if err := o.deps.Reporter.Update(ctx, message); err != nil {
		o.logger.Warn("status update failed", "message", message, "error", err)
	}
}

// OutputFilename derives the delivered filename from the input's: the input
// stem plus a "_subtitled" suffix, always as an mp4 container.
func OutputFilename(inputName string) string {
	base := filepath.Base(strings.TrimSpace(inputName))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return "subtitled.mp4"
	}
	return stem + "_subtitled.mp4"
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
