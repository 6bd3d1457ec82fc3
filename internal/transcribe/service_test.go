package transcribe

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"subfuse/internal/logging"
)

type fakeEngine struct {
	segments []Segment
	language string
	err      error
	calls    atomic.Int64
}

func (f *fakeEngine) Transcribe(ctx context.Context, samples []float32, lang string) ([]Segment, string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, "", f.err
	}
	return f.segments, f.language, nil
}

func (f *fakeEngine) Close() error { return nil }

// writeTestWAV writes a minimal mono 16-bit 16 kHz PCM file.
func writeTestWAV(t *testing.T, sampleCount int) string {
	t.Helper()
	var buf bytes.Buffer
	dataSize := uint32(sampleCount * 2)
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))     // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1))     // mono
	binary.Write(&buf, binary.LittleEndian, uint32(16000)) // sample rate
	binary.Write(&buf, binary.LittleEndian, uint32(32000)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))     // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))    // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	for i := 0; i < sampleCount; i++ {
		binary.Write(&buf, binary.LittleEndian, int16(i%32))
	}

	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	return path
}

func newTestService(fake *fakeEngine, loadErr error, loads *atomic.Int64) *Service {
	svc := NewService(Config{ModelPath: "model.bin", Threads: 2}, logging.NewNop())
	svc.newEngine = func(cfg Config) (engine, error) {
		if loads != nil {
			loads.Add(1)
		}
		if loadErr != nil {
			return nil, loadErr
		}
		return fake, nil
	}
	return svc
}

func TestTranscribeDropsEmptySegments(t *testing.T) {
	fake := &fakeEngine{
		segments: []Segment{
			{Start: 0, End: 1, Text: "  "},
			{Start: 1, End: 2, Text: " hello "},
			{Start: 2, End: 3, Text: ""},
		},
		language: "EN",
	}
	svc := newTestService(fake, nil, nil)

	result, err := svc.Transcribe(context.Background(), writeTestWAV(t, 160))
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if len(result.Segments) != 1 {
		t.Fatalf("expected 1 kept segment, got %d", len(result.Segments))
	}
	if result.Segments[0].Text != "hello" {
		t.Fatalf("expected trimmed text, got %q", result.Segments[0].Text)
	}
	if result.Language != "en" {
		t.Fatalf("expected normalized language en, got %q", result.Language)
	}
}

func TestTranscribeLoadsModelOnce(t *testing.T) {
	fake := &fakeEngine{language: "ja"}
	var loads atomic.Int64
	svc := newTestService(fake, nil, &loads)
	path := writeTestWAV(t, 160)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Transcribe(context.Background(), path); err != nil {
				t.Errorf("Transcribe returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if loads.Load() != 1 {
		t.Fatalf("expected exactly one model load, got %d", loads.Load())
	}
	if fake.calls.Load() != 8 {
		t.Fatalf("expected 8 inference calls, got %d", fake.calls.Load())
	}
}

func TestTranscribeInitErrorPropagates(t *testing.T) {
	loadErr := errors.New("model file corrupt")
	svc := newTestService(nil, loadErr, nil)
	path := writeTestWAV(t, 16)

	for i := 0; i < 2; i++ {
		_, err := svc.Transcribe(context.Background(), path)
		if err == nil || !errors.Is(err, loadErr) {
			t.Fatalf("expected load error on call %d, got %v", i+1, err)
		}
	}
}

func TestCloseBeforeFirstUseSkipsModelLoad(t *testing.T) {
	fake := &fakeEngine{language: "en"}
	var loads atomic.Int64
	svc := newTestService(fake, nil, &loads)

	if err := svc.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if _, err := svc.Transcribe(context.Background(), writeTestWAV(t, 16)); err == nil {
		t.Fatal("expected Transcribe after Close to fail")
	}
	if loads.Load() != 0 {
		t.Fatalf("expected no model load after Close, got %d", loads.Load())
	}
}

func TestCloseRacesFirstTranscribe(t *testing.T) {
	fake := &fakeEngine{language: "en"}
	var loads atomic.Int64
	svc := newTestService(fake, nil, &loads)
	path := writeTestWAV(t, 160)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Either outcome is fine; the call must not race the close.
			_, _ = svc.Transcribe(context.Background(), path)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := svc.Close(); err != nil {
			t.Errorf("Close returned error: %v", err)
		}
	}()
	wg.Wait()

	if loads.Load() > 1 {
		t.Fatalf("expected at most one model load, got %d", loads.Load())
	}
}

func TestTranscribeEngineErrorPropagates(t *testing.T) {
	engineErr := errors.New("inference blew up")
	fake := &fakeEngine{err: engineErr}
	svc := newTestService(fake, nil, nil)

	_, err := svc.Transcribe(context.Background(), writeTestWAV(t, 16))
	if err == nil || !errors.Is(err, engineErr) {
		t.Fatalf("expected engine error, got %v", err)
	}
}
