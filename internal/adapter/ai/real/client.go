// Package real implements the text generation gateway backed by an
// OpenAI-compatible chat completions API (OpenRouter).
package real

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-coach/internal/config"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

// Client implements domain.TextGenerator over chat completions.
// One prompt, one call: the controller treats every failure as a signal
// to run its deterministic fallback, so the client never retries.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs a gateway client with the configured timeout.
func New(cfg config.Config) *Client {
	return &Client{cfg: cfg, hc: &http.Client{Timeout: cfg.GenerateTimeout}}
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends a single chat completion request and returns the raw
// message content.
func (c *Client) Generate(ctx domain.Context, prompt string) (string, error) {
	if c.cfg.OpenRouterAPIKey == "" {
		return "", fmt.Errorf("%w: OPENROUTER_API_KEY missing", domain.ErrInvalidArgument)
	}
	start := time.Now()
	out, err := c.generate(ctx, prompt)
	observability.ObserveGenerate("chat", time.Since(start), err)
	return out, err
}

func (c *Client) generate(ctx domain.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:     c.cfg.ChatModel,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: c.cfg.ChatMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("op=gen.marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OpenRouterBaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("op=gen.request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.OpenRouterAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("op=gen.do: %w", domain.ErrUpstreamTimeout)
		}
		return "", fmt.Errorf("op=gen.do: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("op=gen.read: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("op=gen.status: %w", domain.ErrRateLimited)
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("op=gen.status: upstream %d: %w", resp.StatusCode, domain.ErrInternal)
	case resp.StatusCode != http.StatusOK:
		slog.Warn("generation gateway rejected request",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw[:min(len(raw), 256)])))
		return "", fmt.Errorf("op=gen.status: unexpected status %d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("op=gen.decode: %w", err)
	}
	if cr.Error != nil {
		return "", fmt.Errorf("op=gen.upstream: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("op=gen.decode: %w: empty choices", domain.ErrSchemaInvalid)
	}
	return cr.Choices[0].Message.Content, nil
}
