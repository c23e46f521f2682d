// Package proxy forwards analysis requests to an OpenAI-compatible
// chat-completions endpoint.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/newsinsight/newsserve/internal/logger"
)

const (
	DefaultEndpoint = "https://ark.cn-beijing.volces.com/api/v3/chat/completions"
	DefaultTimeout  = 60 * time.Second
	// maxResponseBytes caps how much of an upstream reply is read.
	maxResponseBytes = 8 << 20
)

var (
	ErrMissingAPIKey = errors.New("API key is missing in the configuration")
	ErrEmptyBody     = errors.New("request body is empty")
)

// UpstreamError is a non-2xx reply from the completion endpoint.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("error calling external API: status %d: %s", e.Status, e.Body)
}

type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
	Retry    RetryConfig
}

// Client posts request bodies upstream with bearer authentication.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *log.Logger
}

func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.New("proxy"),
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Forward posts body unchanged and returns the upstream reply body.
func (c *Client) Forward(ctx context.Context, body []byte) ([]byte, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyBody
	}

	start := time.Now()
	out, err := retryWithBackoff(ctx, c.cfg.Retry, func() ([]byte, error) {
		return c.post(ctx, body)
	})
	if err != nil {
		c.log.Errorf("Upstream call failed after %v: %v", time.Since(start), err)
		return nil, err
	}
	c.log.Debugf("Upstream call took %v (%d bytes)", time.Since(start), len(out))
	return out, nil
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model,omitempty"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const analysisPrompt = "You are a news analyst. Summarise the article, name its main entities and describe its sentiment."

// Analyze asks the model to analyse one article. It returns the first
// choice's message, or the raw reply when it is not a chat completion.
func (c *Client) Analyze(ctx context.Context, content string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: analysisPrompt},
			{Role: "user", Content: content},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	raw, err := c.Forward(ctx, body)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil || len(resp.Choices) == 0 {
		return string(raw), nil
	}
	return resp.Choices[0].Message.Content, nil
}
