package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/tadeyemo32/strategai-backend/config"
	"github.com/tadeyemo32/strategai-backend/logger"
	"golang.org/x/time/rate"
)

// ─── Model client ─────────────────────────────────────────────────────────────

// ErrMissingAPIKey is returned before any network call when no key is configured.
var ErrMissingAPIKey = errors.New("AI_API_KEY not configured")

// UpstreamError is a non-2xx answer from the model API.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	body := truncate(strings.TrimSpace(e.Body), 500)
	if body == "" {
		return fmt.Sprintf("AI API error: %d", e.StatusCode)
	}
	return fmt.Sprintf("AI API error: %d: %s", e.StatusCode, body)
}

// ModelClient sends one system + user prompt pair to a fixed endpoint and
// model. It holds no per-request state and is safe for concurrent use.
type ModelClient struct {
	endpoint string
	apiKey   string
	model    string
	dialect  string
	client   *http.Client
	limiter  *rate.Limiter
}

func NewModelClient(cfg config.LLMConfig) *ModelClient {
	m := &ModelClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		dialect:  cfg.Dialect,
		client:   &http.Client{Timeout: cfg.Timeout()},
	}
	if cfg.RPM > 0 {
		// a zero burst would reject every Wait
		m.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RPM)/60.0), max(cfg.Burst, 1))
	}
	return m
}

// Model is the identifier sent with every request.
func (m *ModelClient) Model() string {
	return m.model
}

// Complete returns the text the model generated. A readable 2xx envelope
// with no text in any known place yields "" and a nil error.
func (m *ModelClient) Complete(ctx context.Context, sysPrompt, userPrompt string) (string, error) {
	if m.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("model rate limit: %w", err)
		}
	}

	body, err := buildModelRequest(m.dialect, m.model, sysPrompt, userPrompt)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build model request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	logger.Log.Debugf("[LLM] Calling %s (%s dialect)", m.model, m.dialect)
	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("model request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read model response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Log.Errorf("[LLM] API error: %d %s", resp.StatusCode, truncate(string(raw), 300))
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	logger.Log.Debugf("[LLM] Raw response: %s", truncate(string(raw), 2000))

	return ExtractModelText(raw), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return cutRunes(s, n) + "..."
}

// cutRunes returns the longest prefix of s that fits in n bytes without
// splitting a UTF-8 sequence.
func cutRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
