package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"subfuse/internal/config"
	"subfuse/internal/journal"
	"subfuse/internal/logging"
	"subfuse/internal/media/ffmpeg"
	"subfuse/internal/notifications"
	"subfuse/internal/pipeline"
	"subfuse/internal/services"
	"subfuse/internal/transcribe"
	"subfuse/internal/translate"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var durationHint float64
	var outputDir string

	cmd := &cobra.Command{
		Use:   "process <video>",
		Short: "Burn bilingual subtitles into a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			// Binary resolution is a startup failure, never a per-request one.
			tools, err := ffmpeg.ResolveTools(cfg.FFmpeg.FFmpegBin, cfg.FFmpeg.FFprobeBin)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "startup", "resolve tools", "", err)
			}

			source, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if _, err := os.Stat(source); err != nil {
				fetchErr := services.Wrap(services.ErrTransport, "fetch", "", "", err)
				fmt.Fprintln(cmd.OutOrStdout(), pipeline.FetchGuidance(fetchErr, cfg))
				return fetchErr
			}

			// One pipeline run per host at a time; the whisper model alone
			// is multiple gigabytes of RAM.
			lock := flock.New(filepath.Join(cfg.Paths.WorkDir, "subfuse.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return errors.New("another subfuse process is already running")
			}
			defer lock.Unlock()

			transcriber := transcribe.NewService(transcribe.Config{
				ModelPath: cfg.Whisper.ModelPath,
				Threads:   cfg.Whisper.Threads,
				Language:  cfg.Whisper.Language,
			}, logger)
			defer transcriber.Close()

			translator := translate.NewClient(translate.Config{
				APIKey:         cfg.Translator.APIKey,
				BaseURL:        cfg.Translator.BaseURL,
				Model:          cfg.Translator.Model,
				TimeoutSeconds: cfg.Translator.TimeoutSeconds,
				BatchSize:      cfg.Translator.BatchSize,
				MaxAttempts:    cfg.Translator.MaxAttempts,
			})

			out := cmd.OutOrStdout()
			mediaTimeout := time.Duration(cfg.FFmpeg.TimeoutSeconds) * time.Second
			orchestrator := pipeline.New(cfg, logger, pipeline.Dependencies{
				Prober:      pipeline.BinaryProber{Binary: tools.FFprobe, Timeout: mediaTimeout},
				Media:       ffmpeg.NewTransformer(tools).WithTimeout(mediaTimeout),
				Transcriber: transcriber,
				Translator:  translator,
				Reporter: pipeline.StatusFunc(func(_ context.Context, message string) error {
					_, err := fmt.Fprintln(out, message)
					return err
				}),
			})

			requestID := uuid.NewString()
			result := orchestrator.Process(cmd.Context(), pipeline.Request{
				SourcePath:   source,
				DurationHint: durationHint,
				OutputDir:    outputDir,
			})

			fmt.Fprintln(out, result.Message)
			if result.Outcome == pipeline.OutcomeDone {
				fmt.Fprintf(out, "Output: %s\n", result.OutputPath)
				fmt.Fprintln(out, result.TimingSummary())
			}

			recordOutcome(cmd.Context(), cfg, logger, requestID, filepath.Base(source), result)
			notifyOutcome(cmd.Context(), cfg, logger, filepath.Base(source), result)

			if result.Outcome == pipeline.OutcomeFailed {
				return result.Err
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&durationHint, "duration-hint", 0, "Optional duration estimate in seconds, checked before probing")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the subtitled video (defaults to the input's directory)")
	return cmd
}

func recordOutcome(ctx context.Context, cfg *config.Config, logger *slog.Logger, requestID, input string, result pipeline.Result) {
	if cfg.Paths.JournalPath == "" {
		return
	}
	store, err := journal.Open(cfg.Paths.JournalPath)
	if err != nil {
		logger.Warn("journal unavailable", "error", err)
		return
	}
	defer store.Close()
	if err := store.Record(ctx, journal.NewEntry(requestID, input, result)); err != nil {
		logger.Warn("journal record failed", "error", err)
	}
}

func notifyOutcome(ctx context.Context, cfg *config.Config, logger *slog.Logger, input string, result pipeline.Result) {
	svc := notifications.NewService(cfg)
	var err error
	switch result.Outcome {
	case pipeline.OutcomeDone:
		err = svc.NotifyCompleted(ctx, input, result.OutputPath, result.Total)
	case pipeline.OutcomeFailed:
		err = svc.NotifyError(ctx, result.Err, result.FailedStage)
	default:
		err = svc.NotifyRejected(ctx, input, result.Message)
	}
	if err != nil {
		logger.Warn("notification failed", "error", err)
	}
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification to the configured ntfy topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
