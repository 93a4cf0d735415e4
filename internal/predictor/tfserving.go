package predictor

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

const (
	defaultHTTPTimeout = 30 * time.Second
	maxErrorBody       = 512
)

// TFServingClient calls a TensorFlow Serving REST endpoint hosting the sequence model
type TFServingClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewTFServingClient creates a client for {baseURL}/v1/models/{model}
func NewTFServingClient(baseURL, model string) *TFServingClient {
	return &TFServingClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}
}

// predictRequest carries one window shaped (1, steps, 1)
type predictRequest struct {
	Instances [][][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error,omitempty"`
}

// Predict sends the window and returns the first prediction row
func (c *TFServingClient) Predict(ctx context.Context, window []float64) ([]float64, error) {
	steps := make([][]float64, len(window))
	for i, v := range window {
		steps[i] = []float64{v}
	}

	body, err := json.Marshal(predictRequest{Instances: [][][]float64{steps}})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	url := fmt.Sprintf("%s/v1/models/%s:predict", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model server request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("model server status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("model server: %s", result.Error)
	}
	if len(result.Predictions) == 0 || len(result.Predictions[0]) == 0 {
		return nil, fmt.Errorf("model server returned no predictions")
	}
	return result.Predictions[0], nil
}

// Ready reports whether the model server answers for the configured model
func (c *TFServingClient) Ready(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/models/%s", c.baseURL, c.model), nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Model returns the configured model name
func (c *TFServingClient) Model() string {
	return c.model
}
