package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinariesReportsMissingCommand(t *testing.T) {
	results := CheckBinaries([]Requirement{
		{Name: "Missing", Command: "definitely-not-a-real-binary-xyz"},
		{Name: "Unset"},
	})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if results[1].Available || results[1].Detail != "command not configured" {
		t.Fatalf("expected unset command detail, got %+v", results[1])
	}
}

func TestCheckBinariesChecksFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.bin")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	results := CheckBinaries([]Requirement{
		{Name: "Model", Path: path},
		{Name: "Gone", Path: filepath.Join(t.TempDir(), "nope.bin")},
	})
	if !results[0].Available {
		t.Fatalf("expected model file to be available: %+v", results[0])
	}
	if results[1].Available {
		t.Fatal("expected missing file to be unavailable")
	}
}
