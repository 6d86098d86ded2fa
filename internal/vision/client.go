// Package vision is the HTTP client for the image attribute prediction
// service. One call predicts the requested attributes for a single image.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/botit-ai/enrichment-engine/internal/llm"
)

// Prediction is one attribute value with the model's confidence in [0,1].
type Prediction struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Predictor obtains attribute predictions for a single image.
type Predictor interface {
	Predict(ctx context.Context, imageURL, description, category string, attributes []string) (map[string]Prediction, error)
}

// Config holds vision service connection settings.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client talks to the vision service over HTTP.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a vision service client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type predictRequest struct {
	ImageURLs   []string `json:"image_urls"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Attributes  []string `json:"attributes"`
}

type predictResponse struct {
	Features map[string]Prediction `json:"features"`
}

// Predict requests attribute predictions for one image. Errors carry a typed
// kind so callers can distinguish transport failures from bad responses.
func (c *Client) Predict(ctx context.Context, imageURL, description, category string, attributes []string) (map[string]Prediction, error) {
	const op = "vision.Predict"

	body, err := json.Marshal(predictRequest{
		ImageURLs:   []string{imageURL},
		Description: description,
		Category:    category,
		Attributes:  attributes,
	})
	if err != nil {
		return nil, &llm.InferenceError{Kind: llm.KindMalformed, Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, &llm.InferenceError{Kind: llm.KindTransport, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &llm.InferenceError{Kind: llm.KindTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &llm.InferenceError{
			Kind:   llm.KindStatus,
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet),
		}
	}

	var parsed predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &llm.InferenceError{Kind: llm.KindMalformed, Op: op, Err: err}
	}
	return parsed.Features, nil
}
