// Package classify defines the boundary to external text classifiers and a
// generic HTTP adapter for fasttext-style model servers. Model weights are
// immutable for a run, so a Classifier is safe to share across workers.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Prediction is a classifier's top label with its confidence in [0,1].
type Prediction struct {
	Label      string
	Confidence float64
}

// Classifier is the uniform adapter contract: synchronous, pure with
// respect to the record, deterministic for a fixed model and input.
type Classifier interface {
	Classify(ctx context.Context, text string) (Prediction, error)
}

// CleanLabel strips the fasttext "__label__" prefix.
func CleanLabel(label string) string {
	return strings.TrimPrefix(label, "__label__")
}

// Flatten collapses text to a single line, which fasttext-style models
// require.
func Flatten(text string) string {
	return strings.ReplaceAll(text, "\n", " ")
}

// HTTPClient calls a model server exposing a single predict endpoint.
type HTTPClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPClient builds a client for endpoint with a per-call timeout.
func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classify posts the text and decodes the top prediction.
func (c *HTTPClient) Classify(ctx context.Context, text string) (Prediction, error) {
	body, err := json.Marshal(predictRequest{Text: Flatten(text)})
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Prediction{}, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Prediction{}, fmt.Errorf("failed to decode response: %w", err)
	}

	pred := Prediction{Label: CleanLabel(out.Label), Confidence: out.Confidence}
	if pred.Confidence < 0 {
		pred.Confidence = 0
	}
	if pred.Confidence > 1 {
		pred.Confidence = 1
	}
	return pred, nil
}

var _ Classifier = (*HTTPClient)(nil)
