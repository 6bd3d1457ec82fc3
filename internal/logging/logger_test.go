package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subfuse/internal/logging"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Path: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello", "component", "test")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("expected log output in file, got %q", string(data))
	}
}

func TestNewDefaultsToConsole(t *testing.T) {
	if _, err := logging.New(logging.Options{}); err != nil {
		t.Fatalf("expected default construction to succeed, got %v", err)
	}
}
