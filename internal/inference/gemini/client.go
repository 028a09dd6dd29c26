// Package gemini runs zero-shot single-label classification through the
// Gemini API and reports the answer as softmax logits.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"misogyny-detector/internal/inference"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.0-flash-exp"

// Client wraps the Gemini API client
type Client struct {
	apiKey    string
	modelName string
	labels    []string
	opts      []option.ClientOption
	logger    *zap.Logger

	mu     sync.RWMutex
	client *genai.Client
	model  *genai.GenerativeModel
}

// Config for Gemini client
type Config struct {
	APIKey    string
	ModelName string   // Default: "gemini-2.0-flash-exp"
	Labels    []string // Default: "0", "1"
}

type classification struct {
	Probabilities map[string]float64 `json:"probabilities"`
}

// NewClient creates a new Gemini client. The API connection is opened by Load.
func NewClient(cfg Config, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	if cfg.ModelName == "" {
		cfg.ModelName = DefaultModel
	}

	if len(cfg.Labels) == 0 {
		cfg.Labels = []string{"0", "1"}
	}

	return &Client{
		apiKey:    cfg.APIKey,
		modelName: cfg.ModelName,
		labels:    cfg.Labels,
		opts:      opts,
		logger:    logger,
	}, nil
}

// Load opens the API client and reports the configured labels as a
// single-label head.
func (c *Client) Load(ctx context.Context) (*inference.ModelConfig, error) {
	opts := append([]option.ClientOption{option.WithAPIKey(c.apiKey)}, c.opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(c.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemInstruction)},
	}
	model.ResponseMIMEType = "application/json"
	model.GenerationConfig.SetTemperature(0)
	model.GenerationConfig.SetMaxOutputTokens(200)

	c.mu.Lock()
	c.client = client
	c.model = model
	c.mu.Unlock()

	id2label := make(map[int]string, len(c.labels))
	for i, l := range c.labels {
		id2label[i] = l
	}

	c.logger.Info("Gemini client initialized",
		zap.String("model", c.modelName),
		zap.Strings("labels", c.labels))

	return &inference.ModelConfig{
		ModelID:     c.modelName,
		ID2Label:    id2label,
		ProblemType: inference.SingleLabel,
	}, nil
}

// Infer classifies a single message. There is one attempt per call.
func (c *Client) Infer(ctx context.Context, text string) inference.Result {
	c.mu.RLock()
	model := c.model
	c.mu.RUnlock()
	if model == nil {
		return inference.Fail(inference.ErrNotLoaded)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(BuildPrompt(text, c.labels)))
	if err != nil {
		return inference.Fail(fmt.Errorf("gemini API error: %w", err))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return inference.Fail(fmt.Errorf("empty response from gemini"))
	}

	textPart, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return inference.Fail(fmt.Errorf("unexpected response type from gemini"))
	}

	logits, err := ParseLogits(string(textPart), c.labels)
	if err != nil {
		c.logger.Debug("Failed to parse gemini response",
			zap.Error(err),
			zap.String("response", string(textPart)))
		return inference.Fail(err)
	}

	return inference.Ok(logits)
}

// ParseLogits reads the model's JSON answer and returns log-probabilities
// in label order.
func ParseLogits(raw string, labels []string) ([]float64, error) {
	// Strip markdown code blocks if present
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var out classification
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("failed to parse gemini response: %w", err)
	}

	logits := make([]float64, len(labels))
	for i, l := range labels {
		p, ok := out.Probabilities[l]
		if !ok {
			return nil, fmt.Errorf("gemini response missing label %q", l)
		}
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("gemini probability for %q out of range: %v", l, p)
		}
		logits[i] = inference.LogProb(p)
	}
	return logits, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// GetModelInfo returns model information
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider": "gemini",
		"model":    c.modelName,
		"labels":   c.labels,
	}
}
