// Package sidecar talks to the transformers runtime process that owns the
// tokenizer and network weights. The Go service never runs the model itself.
package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"misogyny-detector/internal/inference"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Client is a client for the inference sidecar API
type Client struct {
	baseURL    string
	modelName  string
	maxLength  int
	httpClient *http.Client
	logger     *zap.Logger

	mu     sync.RWMutex
	config *inference.ModelConfig
	device string
}

// Config for the sidecar client
type Config struct {
	BaseURL   string
	ModelName string
	MaxLength int
	Timeout   time.Duration
}

// LoadRequest asks the sidecar to load a model by identifier
type LoadRequest struct {
	ModelName string `json:"model_name"`
}

// LoadResponse describes the loaded model
type LoadResponse struct {
	ModelName   string            `json:"model_name"`
	ID2Label    map[string]string `json:"id2label"`
	ProblemType string            `json:"problem_type,omitempty"`
	MaxLength   int               `json:"max_length,omitempty"`
	Device      string            `json:"device,omitempty"`
}

// LogitsRequest represents a single-text forward pass request
type LogitsRequest struct {
	ModelName  string `json:"model_name"`
	Text       string `json:"text"`
	Truncation bool   `json:"truncation"`
	Padding    bool   `json:"padding"`
	MaxLength  int    `json:"max_length"`
}

// LogitsResponse carries raw logits with a leading batch dimension
type LogitsResponse struct {
	Logits [][]float64 `json:"logits"`
}

// StatusError is returned when the sidecar answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inference sidecar returned status %d: %s", e.StatusCode, e.Body)
}

// NewClient creates a new sidecar client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("sidecar URL is required")
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = inference.DefaultMaxLength
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		modelName: cfg.ModelName,
		maxLength: cfg.MaxLength,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}, nil
}

// Load asks the sidecar to load the configured model and returns its label map.
// Transport errors and 5xx answers are marked retryable.
func (c *Client) Load(ctx context.Context) (*inference.ModelConfig, error) {
	var resp LoadResponse
	if err := c.post(ctx, "/api/v1/model/load", LoadRequest{ModelName: c.modelName}, &resp); err != nil {
		if isTransient(err) {
			return nil, retry.RetryableError(err)
		}
		return nil, err
	}

	id2label := make(map[int]string, len(resp.ID2Label))
	for k, v := range resp.ID2Label {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("invalid label index %q in id2label: %w", k, err)
		}
		id2label[idx] = v
	}

	maxLength := c.maxLength
	if resp.MaxLength > 0 && resp.MaxLength < maxLength {
		maxLength = resp.MaxLength
	}

	modelID := resp.ModelName
	if modelID == "" {
		modelID = c.modelName
	}

	cfg := &inference.ModelConfig{
		ModelID:     modelID,
		ID2Label:    id2label,
		ProblemType: inference.ProblemType(resp.ProblemType),
		MaxLength:   maxLength,
	}

	c.mu.Lock()
	c.config = cfg
	c.device = resp.Device
	c.mu.Unlock()

	c.logger.Info("Sidecar model loaded",
		zap.String("model", modelID),
		zap.String("device", resp.Device),
		zap.Int("num_labels", len(id2label)))

	return cfg, nil
}

// Infer runs one forward pass; the sidecar tokenizes with truncation and padding.
func (c *Client) Infer(ctx context.Context, text string) inference.Result {
	c.mu.RLock()
	cfg := c.config
	c.mu.RUnlock()
	if cfg == nil {
		return inference.Fail(inference.ErrNotLoaded)
	}

	req := LogitsRequest{
		ModelName:  cfg.ModelID,
		Text:       text,
		Truncation: true,
		Padding:    true,
		MaxLength:  cfg.MaxLength,
	}

	var resp LogitsResponse
	if err := c.post(ctx, "/api/v1/model/logits", req, &resp); err != nil {
		return inference.Fail(err)
	}
	if len(resp.Logits) == 0 {
		return inference.Fail(inference.ErrNoLogits)
	}

	return inference.Ok(resp.Logits[0])
}

// Close releases idle connections
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// GetModelInfo returns model information
func (c *Client) GetModelInfo() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info := map[string]interface{}{
		"provider":   "sidecar",
		"model":      c.modelName,
		"url":        c.baseURL,
		"max_length": c.maxLength,
	}
	if c.device != "" {
		info["device"] = c.device
	}
	return info
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
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
		return fmt.Errorf("%w: %v", errUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

var errUnreachable = errors.New("inference sidecar unreachable")

func isTransient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= http.StatusInternalServerError
	}
	return errors.Is(err, errUnreachable)
}
