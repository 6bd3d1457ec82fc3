package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subfuse/internal/config"
	"subfuse/internal/pipeline"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			if err := config.WriteSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set translator.api_key (or export OPENROUTER_API_KEY) before processing videos.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file: %s\n\n", ctx.configPath)
			fmt.Fprintln(out, pipeline.Usage(cfg))
			fmt.Fprintln(out)

			rows := [][]string{
				{"paths.work_dir", cfg.Paths.WorkDir},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"paths.journal_path", valueOrDisabled(cfg.Paths.JournalPath)},
				{"limits.max_video_duration_seconds", fmt.Sprintf("%d", cfg.Limits.MaxVideoDurationSeconds)},
				{"transport.mode", fmt.Sprintf("%s (%s ceiling)", cfg.Transport.Mode, cfg.MaxSendLabel())},
				{"translator.model", cfg.Translator.Model},
				{"translator.api_key", redactSecret(cfg.Translator.APIKey)},
				{"translator.batch_size", fmt.Sprintf("%d", cfg.Translator.BatchSize)},
				{"whisper.model_path", cfg.Whisper.ModelPath},
				{"whisper.threads", fmt.Sprintf("%d", cfg.Whisper.Threads)},
				{"notifications.ntfy_topic", valueOrDisabled(cfg.Notifications.NtfyTopic)},
				{"logging", cfg.Logging.Level + " / " + cfg.Logging.Format},
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, nil))
			return nil
		},
	}
}

func valueOrDisabled(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(disabled)"
	}
	return value
}

func redactSecret(value string) string {
	if value == "" {
		return "(unset)"
	}
	if len(value) <= 8 {
		return "********"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
