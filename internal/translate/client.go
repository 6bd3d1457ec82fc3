package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	jsonResponseType      = "json_object"
	defaultHTTPTimeout    = 90 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultMaxAttempts    = 3
	defaultBatchSize      = 10
)

// Config captures the runtime settings required to talk to the translation
// backend.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	BatchSize      int
	MaxAttempts    int
}

// Pair is one dual-target translation: Primary is the Chinese rendering,
// Secondary the English one.
type Pair struct {
	Primary   string
	Secondary string
}

// Client translates subtitle texts in fixed-size batches against an
// OpenAI-compatible chat completion endpoint. Stateless across calls.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryBaseDelay time.Duration
	sleeper        func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryBaseDelay overrides the first backoff delay (doubles per attempt).
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = delay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a translation client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
			BatchSize:      cfg.BatchSize,
			MaxAttempts:    cfg.MaxAttempts,
		},
		httpClient:     &http.Client{Timeout: timeout},
		retryBaseDelay: defaultRetryBaseDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://openrouter.ai/api/v1/chat/completions"
	}
	return client
}

// TranslateSingle translates every text into the named target language. The
// result is index-aligned with the input and always has the same length.
func (c *Client) TranslateSingle(ctx context.Context, texts []string, targetLanguage string) ([]string, error) {
	results := make([]string, 0, len(texts))
	for start := 0; start < len(texts); start += c.cfg.BatchSize {
		chunk := texts[start:min(start+c.cfg.BatchSize, len(texts))]
		translated, err := c.translateChunkSingle(ctx, chunk, targetLanguage)
		if err != nil {
			return nil, err
		}
		results = append(results, translated...)
	}
	return results, nil
}

// TranslateDual translates every text into both Simplified Chinese and
// English. The result is index-aligned with the input and always has the
// same length.
func (c *Client) TranslateDual(ctx context.Context, texts []string) ([]Pair, error) {
	results := make([]Pair, 0, len(texts))
	for start := 0; start < len(texts); start += c.cfg.BatchSize {
		chunk := texts[start:min(start+c.cfg.BatchSize, len(texts))]
		translated, err := c.translateChunkDual(ctx, chunk)
		if err != nil {
			return nil, err
		}
		results = append(results, translated...)
	}
	return results, nil
}

func (c *Client) translateChunkSingle(ctx context.Context, chunk []string, targetLanguage string) ([]string, error) {
	prompt := singlePrompt(targetLanguage)
	var result []string
	err := c.withRetry(ctx, func() error {
		content, err := c.complete(ctx, prompt, chunk)
		if err != nil {
			return err
		}
		items, err := extractList(content)
		if err != nil {
			return err
		}
		result = normalizeSingle(items, len(chunk))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) translateChunkDual(ctx context.Context, chunk []string) ([]Pair, error) {
	var result []Pair
	err := c.withRetry(ctx, func() error {
		content, err := c.complete(ctx, dualPrompt, chunk)
		if err != nil {
			return err
		}
		items, err := extractList(content)
		if err != nil {
			return err
		}
		result = normalizeDual(items, len(chunk))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// withRetry runs fn up to MaxAttempts times, sleeping with exponential
// backoff between attempts. Any failure kind retries; the final attempt's
// error propagates unchanged.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == c.cfg.MaxAttempts {
			break
		}
		// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
		delay := c.retryBaseDelay << (attempt - 1)
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		// Some providers return the streaming schema even when
		// stream=false; tolerate it as a fallback.
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		Text string `json:"text"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("translate request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// complete sends one chat completion request carrying the chunk's texts as a
// JSON array and returns the model's message content.
func (c *Client) complete(ctx context.Context, systemPrompt string, chunk []string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", errors.New("translate: api key required")
	}
	userContent, err := json.Marshal(chunk)
	if err != nil {
		return "", fmt.Errorf("translate: encode chunk: %w", err)
	}
	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(userContent)},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": jsonResponseType},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("translate: encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("translate: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("translate: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("translate: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	for _, choice := range completion.Choices {
		if content := firstNonEmpty(choice.Message.Content, choice.Delta.Content, choice.Text); content != "" {
			return content, nil
		}
	}
	return "", errors.New("translate: empty completion content")
}

func singlePrompt(targetLanguage string) string {
	return fmt.Sprintf(
		"You are a subtitle translator. Translate the following subtitle texts to %s. "+
			"Return ONLY a valid JSON object in this exact format: "+
			`{"translations": ["translated text 1", "translated text 2", ...]}. `+
			"The array must have the same number of elements as the input. "+
			"Keep translations brief and natural for subtitles. Preserve meaning and tone.",
		targetLanguage,
	)
}

const dualPrompt = "You are a subtitle translator. Translate the following subtitle texts to both " +
	"Simplified Chinese and English. " +
	"Return ONLY a valid JSON object in this exact format: " +
	`{"translations": [{"zh": "Chinese text", "en": "English text"}, ...]}. ` +
	"The array must have the same number of elements as the input. " +
	"Keep translations brief and natural for subtitles. Preserve meaning and tone."

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
