package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// TrainingExample is one labeled text with one-hot categories
type TrainingExample struct {
	Text string          `json:"text"`
	Cats map[string]bool `json:"cats"`
}

// TrainRequest asks the NLP backend to train a text categorizer
type TrainRequest struct {
	Labels    []string          `json:"labels"`
	Train     []TrainingExample `json:"train"`
	Eval      []TrainingExample `json:"eval"`
	OutputDir string            `json:"output_dir"`
	TestText  string            `json:"test_text,omitempty"`
}

// TrainResponse is the result of a training run
type TrainResponse struct {
	OutputDir string             `json:"output_dir"`
	Scores    map[string]float64 `json:"scores,omitempty"`
}

// PredictRequest asks a trained model for the label of a text
type PredictRequest struct {
	ModelDir string `json:"model_dir"`
	Text     string `json:"text"`
}

// Prediction is the backend's answer for one text
type Prediction struct {
	Label string             `json:"label"`
	Cats  map[string]float64 `json:"cats,omitempty"`
}

// Trainer trains a classifier from labeled examples
type Trainer interface {
	Train(ctx context.Context, req TrainRequest) (*TrainResponse, error)
}

// Predictor labels text with a trained classifier
type Predictor interface {
	Predict(ctx context.Context, modelDir, text string) (*Prediction, error)
}

// NLPClient talks to the text categorization service over HTTP
type NLPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewNLPClient creates a client with the given request timeout
func NewNLPClient(baseURL string, timeout time.Duration) *NLPClient {
	return NewNLPClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

// NewNLPClientWithHTTP creates a client using httpClient for requests
func NewNLPClientWithHTTP(baseURL string, httpClient *http.Client) *NLPClient {
	return &NLPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Train implements Trainer
func (c *NLPClient) Train(ctx context.Context, req TrainRequest) (*TrainResponse, error) {
	var result TrainResponse
	if err := c.post(ctx, "/v1/train", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Predict implements Predictor. When the service does not name a label the
// highest scoring category is used.
func (c *NLPClient) Predict(ctx context.Context, modelDir, text string) (*Prediction, error) {
	if text == "" {
		return nil, fmt.Errorf("text to predict must not be empty")
	}

	var result Prediction
	if err := c.post(ctx, "/v1/predict", PredictRequest{ModelDir: modelDir, Text: text}, &result); err != nil {
		return nil, err
	}
	if result.Label == "" {
		result.Label = bestCategory(result.Cats)
	}
	if result.Label == "" {
		return nil, fmt.Errorf("NLP service returned no label for %q", text)
	}
	return &result, nil
}

// Health checks that the service is reachable and ready
func (c *NLPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("NLP service returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *NLPClient) post(ctx context.Context, path string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("NLP service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// bestCategory returns the highest scoring category, ties broken by name
func bestCategory(cats map[string]float64) string {
	names := make([]string, 0, len(cats))
	for name := range cats {
		names = append(names, name)
	}
	sort.Strings(names)

	best := ""
	for _, name := range names {
		if best == "" || cats[name] > cats[best] {
			best = name
		}
	}
	return best
}
