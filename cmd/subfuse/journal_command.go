package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"subfuse/internal/journal"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent pipeline outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Paths.JournalPath == "" {
				return errors.New("journal disabled: set paths.journal_path in the configuration")
			}

			store, err := journal.Open(cfg.Paths.JournalPath)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No journal entries yet")
				return nil
			}

			headers := []string{"When", "Input", "Outcome", "Lang", "Segs", "Duration", "Size", "Total"}
			aligns := []columnAlignment{
				alignLeft, alignLeft, alignLeft, alignLeft,
				alignRight, alignRight, alignRight, alignRight,
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.CreatedAt.Local().Format("2006-01-02 15:04"),
					entry.Input,
					journalOutcomeLabel(entry),
					entry.Language,
					strconv.Itoa(entry.SegmentCount),
					formatJournalSeconds(entry.DurationSeconds),
					formatJournalBytes(entry.OutputSizeBytes),
					formatJournalSeconds(entry.TotalSeconds),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	return cmd
}

func journalOutcomeLabel(entry journal.Entry) string {
	if entry.FailedStage != "" {
		return entry.Outcome + " (" + entry.FailedStage + ")"
	}
	return entry.Outcome
}

func formatJournalSeconds(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return (time.Duration(seconds*1000) * time.Millisecond).Round(100 * time.Millisecond).String()
}

func formatJournalBytes(size int64) string {
	if size <= 0 {
		return "-"
	}
	const mib = 1 << 20
	if size >= 1<<30 {
		return fmt.Sprintf("%.2f GB", float64(size)/float64(1<<30))
	}
	return fmt.Sprintf("%.1f MB", float64(size)/float64(mib))
}
