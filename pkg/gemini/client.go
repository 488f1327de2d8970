// Package gemini is a minimal client for the generative-AI API.
//
// Generation calls take a prompt string and return plain text; there is no
// streaming. An optional client-side rate limiter paces requests toward the
// upstream API so bulk jobs do not burst.
package gemini

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

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
)

// ErrEmptyResponse is returned when the API answers without any candidate text.
var ErrEmptyResponse = errors.New("gemini: empty response")

// Config configures the client.
type Config struct {
	// APIKey authenticates every request. Required.
	APIKey string

	// Model is the model identifier. Default: gemini-1.5-flash.
	Model string

	// BaseURL overrides the API endpoint. Default: the public v1beta API.
	BaseURL string

	// Timeout applies per HTTP request. Default: 120s. Generation is slow.
	Timeout time.Duration

	// RequestsPerSecond is the maximum upstream request rate.
	// Zero means unlimited.
	RequestsPerSecond float64
}

// Result is one completed generation.
type Result struct {
	Text      string
	TokensIn  *int64
	TokensOut *int64
}

// Client calls the generative-AI API. Safe for concurrent use.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger

	// limiter is nil when unlimited.
	limiter *rate.Limiter
}

// New creates a client.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: base,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int64 `json:"promptTokenCount"`
		CandidatesTokenCount int64 `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// Generate runs one generation call and returns the candidate text with
// token accounting when the API reports it.
func (c *Client) Generate(ctx context.Context, prompt string) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limiter: %w", err)
		}
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("generation call",
		zap.String("model", c.model),
		zap.Int("status", resp.StatusCode),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("generation status %d: %s", resp.StatusCode, string(msg))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var sb strings.Builder
	for _, cand := range decoded.Candidates {
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		break
	}
	text := sb.String()
	if text == "" {
		return nil, ErrEmptyResponse
	}

	result := &Result{Text: text}
	if decoded.UsageMetadata != nil {
		in := decoded.UsageMetadata.PromptTokenCount
		out := decoded.UsageMetadata.CandidatesTokenCount
		result.TokensIn = &in
		result.TokensOut = &out
	}
	return result, nil
}

// GenerateText runs one generation call and returns only the text.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	res, err := c.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
