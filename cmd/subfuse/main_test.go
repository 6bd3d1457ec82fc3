package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subfuse/internal/journal"
	"subfuse/internal/pipeline"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
work_dir = %q
log_dir = %q
journal_path = %q

[translator]
api_key = "test-key"
`,
		filepath.Join(base, "work"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "journal.db"),
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	output, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(output, target) {
		t.Fatalf("expected target path in output, got %q", output)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[translator]") {
		t.Fatal("expected translator section in the sample config")
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, err := runCommand(t, "config", "init", "--path", target); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when the config file already exists")
	}
}

func TestConfigShowRedactsAPIKey(t *testing.T) {
	cfgPath := writeTestConfig(t)
	output, err := runCommand(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(output, "test-key") {
		t.Fatal("api key must not appear in output")
	}
	if !strings.Contains(output, "transport.mode") {
		t.Fatalf("expected settings table, got %q", output)
	}
}

func TestJournalCommandListsEntries(t *testing.T) {
	cfgPath := writeTestConfig(t)

	journalPath := filepath.Join(filepath.Dir(cfgPath), "journal.db")
	store, err := journal.Open(journalPath)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	entry := journal.NewEntry("req-1", "movie.mp4", pipeline.Result{
		Outcome:  pipeline.OutcomeDone,
		Language: "zh",
	})
	if err := store.Record(context.Background(), entry); err != nil {
		t.Fatalf("record: %v", err)
	}
	store.Close()

	output, err := runCommand(t, "--config", cfgPath, "journal")
	if err != nil {
		t.Fatalf("journal command: %v", err)
	}
	if !strings.Contains(output, "movie.mp4") || !strings.Contains(output, "done") {
		t.Fatalf("expected recorded entry in output, got %q", output)
	}
}

func TestJournalCommandEmpty(t *testing.T) {
	cfgPath := writeTestConfig(t)
	output, err := runCommand(t, "--config", cfgPath, "journal")
	if err != nil {
		t.Fatalf("journal command: %v", err)
	}
	if !strings.Contains(output, "No journal entries yet") {
		t.Fatalf("expected empty message, got %q", output)
	}
}
