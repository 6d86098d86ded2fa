// Package llm provides the client for the text-completion inference service.
// The service is treated as a black box: prompt formatting is the only
// contract the engine controls, and every call carries an explicit timeout.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Completer sends a prompt to a text-completion service and returns the raw
// completion text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest describes one completion call. Zero-valued fields fall
// back to the client defaults.
type CompletionRequest struct {
	Prompt    string
	Model     string
	MaxTokens int
}

// Config holds completion client configuration.
type Config struct {
	URL       string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Client is the HTTP completion client.
type Client struct {
	url        string
	model      string
	maxTokens  int
	timeout    time.Duration
	httpClient *http.Client
}

// generatePayload is the wire request: {model, prompt, max_tokens, stream:false}.
type generatePayload struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
	Stream    bool   `json:"stream"`
}

// generateResponse is the wire response of the generate endpoint.
type generateResponse struct {
	Response string `json:"response"`
}

// NewClient creates a new completion client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 200
	}

	return &Client{
		url:        cfg.URL,
		model:      cfg.Model,
		maxTokens:  maxTokens,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// Complete sends one prompt to the completion service and returns the
// trimmed completion text. No retries: the calling stage absorbs failures
// into its own empty result.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	payload := generatePayload{
		Model:     model,
		Prompt:    req.Prompt,
		MaxTokens: maxTokens,
		Stream:    false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &InferenceError{Kind: KindMalformed, Op: "completion", Err: fmt.Errorf("marshal request: %w", err)}
	}

	// Ensure the call carries a deadline even when the caller passed a
	// bare context.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", &InferenceError{Kind: KindTransport, Op: "completion", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &InferenceError{Kind: KindTransport, Op: "completion", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", &InferenceError{Kind: KindStatus, Op: "completion", Status: resp.StatusCode}
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &InferenceError{Kind: KindMalformed, Op: "completion", Err: fmt.Errorf("decode response: %w", err)}
	}

	return strings.TrimSpace(decoded.Response), nil
}
