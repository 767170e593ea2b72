package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client talks to the OpenAI chat completion and edit endpoints.
type Client struct {
	config *Config
	http   *http.Client
	log    *zap.SugaredLogger
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger routes client diagnostics to log.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient creates a new LLM client.
func NewClient(config *Config, opts ...Option) (*Client, error) {
	config.SetDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = config.Timeout

	c := &Client{
		config: config,
		http:   &http.Client{Transport: transport},
		log: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest describes a streamed chat completion.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   *int
}

// EditRequest describes a call to the edits endpoint.
type EditRequest struct {
	Model       string
	Instruction string
	Input       string
	Temperature float32
}

type chatBody struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	N           int       `json:"n"`
	Stream      bool      `json:"stream"`
}

type editBody struct {
	Model       string  `json:"model"`
	Instruction string  `json:"instruction"`
	Input       string  `json:"input"`
	N           int     `json:"n"`
	Temperature float32 `json:"temperature"`
}

type editResponse struct {
	Choices []struct {
		Index int    `json:"index"`
		Text  string `json:"text"`
	} `json:"choices"`
	Error *apiErrorBody `json:"error,omitempty"`
}

type apiErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ChatStream starts a streamed chat completion. The returned stream must be
// closed by the caller.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest) (*ChatStream, error) {
	resp, err := c.post(ctx, "/chat/completions", chatBody{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		N:           1,
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}
	return newChatStream(resp.Body, c.log), nil
}

// Edit runs an edit request and returns the text of each choice in index
// order.
func (c *Client) Edit(ctx context.Context, req EditRequest) ([]string, error) {
	resp, err := c.post(ctx, "/edits", editBody{
		Model:       req.Model,
		Instruction: req.Instruction,
		Input:       req.Input,
		N:           1,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Warnw("Failed to close response body", "error", err)
		}
	}()

	var out editResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, NewParseError("edit response", err)
	}
	if out.Error != nil {
		return nil, NewAPIError(0, out.Error.Message)
	}

	texts := make([]string, len(out.Choices))
	for i, choice := range out.Choices {
		if choice.Index >= 0 && choice.Index < len(texts) {
			texts[choice.Index] = choice.Text
		} else {
			texts[i] = choice.Text
		}
	}
	return texts, nil
}

// post sends body as JSON and returns the response when the status is 200.
func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.log.Errorw("OpenAI HTTP request failed", "path", path, "error", err, "duration", duration)
		return nil, transportError(err)
	}

	c.log.Debugw("OpenAI HTTP request completed",
		"path", path,
		"status_code", resp.StatusCode,
		"duration", duration,
	)

	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		return nil, NewAPIError(resp.StatusCode, readErrorMessage(resp))
	}
	return resp, nil
}

// readErrorMessage extracts the API's error message, falling back to the raw
// body.
func readErrorMessage(resp *http.Response) string {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return fmt.Sprintf("status %d (failed to read error body)", resp.StatusCode)
	}
	var wrapped struct {
		Error *apiErrorBody `json:"error"`
	}
	if json.Unmarshal(buf.Bytes(), &wrapped) == nil && wrapped.Error != nil && wrapped.Error.Message != "" {
		return wrapped.Error.Message
	}
	if buf.Len() == 0 {
		return http.StatusText(resp.StatusCode)
	}
	return strings.TrimSpace(buf.String())
}

// transportError maps a failed round trip or body read to an LLMError.
func transportError(err error) *LLMError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return NewTimeoutError(err)
	}
	return NewNetworkError(err)
}
