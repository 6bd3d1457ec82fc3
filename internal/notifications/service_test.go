package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"subfuse/internal/config"
	"subfuse/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyCompleted(context.Background(), "movie.mp4", "/tmp/out.mp4", time.Second); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, sink *[]captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
}

func newNtfyService(topic string) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	cfg.Notifications.Completions = true
	cfg.Notifications.Errors = true
	return notifications.NewService(&cfg)
}

func TestNotifyCompletedFormatsPayload(t *testing.T) {
	var requests []captured
	server := newCaptureServer(t, &requests)
	defer server.Close()

	svc := newNtfyService(server.URL)
	if err := svc.NotifyCompleted(context.Background(), "movie.mp4", "/out/movie_subtitled.mp4", 90*time.Second); err != nil {
		t.Fatalf("notify completed: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	got := requests[0]
	if got.title != "Subfuse - Complete" {
		t.Fatalf("unexpected title %q", got.title)
	}
	if got.tags != "subfuse,pipeline,completed" {
		t.Fatalf("unexpected tags %q", got.tags)
	}
	if got.body != "Subtitled movie.mp4 in 1m30s\nFile: /out/movie_subtitled.mp4" {
		t.Fatalf("unexpected body %q", got.body)
	}
}

func TestNotifyErrorUsesHighPriority(t *testing.T) {
	var requests []captured
	server := newCaptureServer(t, &requests)
	defer server.Close()

	svc := newNtfyService(server.URL)
	if err := svc.NotifyError(context.Background(), errors.New("boom"), "translation"); err != nil {
		t.Fatalf("notify error: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	got := requests[0]
	if got.priority != "high" {
		t.Fatalf("expected high priority, got %q", got.priority)
	}
	if got.body != "Error with translation: boom" {
		t.Fatalf("unexpected body %q", got.body)
	}
}

func TestCompletionsToggleSuppressesSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected when completions are disabled")
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Completions = false
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyCompleted(context.Background(), "a", "b", time.Second); err != nil {
		t.Fatalf("suppressed notification should return nil, got %v", err)
	}
}

func TestRejectionFollowsErrorsToggle(t *testing.T) {
	var requests []captured
	server := newCaptureServer(t, &requests)
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Completions = false
	cfg.Notifications.Errors = true
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyRejected(context.Background(), "movie.mp4", "video too long"); err != nil {
		t.Fatalf("notify rejected: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("expected rejection to send with completions muted, got %d requests", len(requests))
	}
	if requests[0].title != "Subfuse - Rejected" {
		t.Fatalf("unexpected title %q", requests[0].title)
	}

	cfg.Notifications.Errors = false
	svc = notifications.NewService(&cfg)
	if err := svc.NotifyRejected(context.Background(), "movie.mp4", "video too long"); err != nil {
		t.Fatalf("suppressed rejection should return nil, got %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("expected no send with errors muted, got %d requests", len(requests))
	}
}

func TestSendSurfacesHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := newNtfyService(server.URL)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
