package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"subfuse/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			requirements := []deps.Requirement{
				{Name: "ffmpeg", Command: "ffmpeg", Path: cfg.FFmpeg.FFmpegBin, Description: "audio extraction and subtitle burn-in"},
				{Name: "ffprobe", Command: "ffprobe", Path: cfg.FFmpeg.FFprobeBin, Description: "media inspection"},
				{Name: "whisper model", Path: cfg.Whisper.ModelPath, Description: "ggml speech model for transcription"},
			}
			statuses := deps.CheckBinaries(requirements)

			headers := []string{"Dependency", "Status", "Location", "Purpose"}
			rows := make([][]string, 0, len(statuses))
			missing := false
			for _, status := range statuses {
				state := "ok"
				location := status.Command
				if !status.Available {
					state = "missing"
					location = status.Detail
					if !status.Optional {
						missing = true
					}
				}
				rows = append(rows, []string{status.Name, state, location, status.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, nil))

			if missing {
				return errors.New("required dependencies are missing")
			}
			return nil
		},
	}
}
