// Package perspective scores text with the Perspective (Comment Analyzer)
// API. Its attributes are independent probabilities, so this engine only
// serves the multi-label policy.
package perspective

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"misogyny-detector/internal/inference"

	"go.uber.org/zap"
	commentanalyzer "google.golang.org/api/commentanalyzer/v1alpha1"
	"google.golang.org/api/option"
)

// DefaultAttributes are requested when none are configured.
var DefaultAttributes = []string{"TOXICITY", "INSULT"}

// labelAliases maps Perspective attribute names onto the label names used by
// multi-label toxicity heads, so both engines share one policy.
var labelAliases = map[string]string{
	"TOXICITY":        "toxic",
	"SEVERE_TOXICITY": "severe_toxic",
	"IDENTITY_ATTACK": "identity_hate",
}

// Client wraps the Comment Analyzer service
type Client struct {
	apiKey     string
	attributes []string
	languages  []string
	timeout    time.Duration
	opts       []option.ClientOption
	logger     *zap.Logger

	mu      sync.RWMutex
	service *commentanalyzer.Service
}

// Config for Perspective client
type Config struct {
	APIKey     string
	Attributes []string
	Languages  []string
	Timeout    time.Duration
}

// NewClient creates a new Perspective client. The service itself is created by Load.
func NewClient(cfg Config, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("perspective API key is required")
	}

	if len(cfg.Attributes) == 0 {
		cfg.Attributes = DefaultAttributes
	}

	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"en"}
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	attrs := make([]string, len(cfg.Attributes))
	for i, a := range cfg.Attributes {
		attrs[i] = strings.ToUpper(strings.TrimSpace(a))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		attributes: attrs,
		languages:  cfg.Languages,
		timeout:    cfg.Timeout,
		opts:       opts,
		logger:     logger,
	}, nil
}

// LabelFor returns the label name an attribute is reported under.
func LabelFor(attribute string) string {
	if l, ok := labelAliases[attribute]; ok {
		return l
	}
	return strings.ToLower(attribute)
}

// Load creates the API service and reports the requested attributes as a
// multi-label head.
func (c *Client) Load(ctx context.Context) (*inference.ModelConfig, error) {
	opts := append([]option.ClientOption{option.WithAPIKey(c.apiKey)}, c.opts...)
	svc, err := commentanalyzer.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create perspective service: %w", err)
	}

	id2label := make(map[int]string, len(c.attributes))
	for i, a := range c.attributes {
		id2label[i] = LabelFor(a)
	}

	c.mu.Lock()
	c.service = svc
	c.mu.Unlock()

	c.logger.Info("Perspective client initialized",
		zap.Strings("attributes", c.attributes),
		zap.Strings("languages", c.languages))

	return &inference.ModelConfig{
		ModelID:     "perspective/" + strings.Join(c.attributes, "+"),
		ID2Label:    id2label,
		ProblemType: inference.MultiLabel,
	}, nil
}

// Infer analyzes a single comment. Summary probabilities are returned as
// log-odds in attribute order.
func (c *Client) Infer(ctx context.Context, text string) inference.Result {
	c.mu.RLock()
	svc := c.service
	c.mu.RUnlock()
	if svc == nil {
		return inference.Fail(inference.ErrNotLoaded)
	}

	requested := make(map[string]commentanalyzer.AttributeParameters, len(c.attributes))
	for _, a := range c.attributes {
		requested[a] = commentanalyzer.AttributeParameters{}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := svc.Comments.Analyze(&commentanalyzer.AnalyzeCommentRequest{
		Comment:             &commentanalyzer.TextEntry{Text: text},
		Languages:           c.languages,
		RequestedAttributes: requested,
		DoNotStore:          true,
	}).Context(ctx).Do()
	if err != nil {
		return inference.Fail(fmt.Errorf("perspective API error: %w", err))
	}

	logits := make([]float64, len(c.attributes))
	for i, a := range c.attributes {
		score, ok := resp.AttributeScores[a]
		if !ok || score.SummaryScore == nil {
			return inference.Fail(fmt.Errorf("perspective response missing %s score", a))
		}
		logits[i] = inference.LogOdds(score.SummaryScore.Value)
	}

	return inference.Ok(logits)
}

// Close is a no-op; the service holds no resources beyond its HTTP client.
func (c *Client) Close() error {
	return nil
}

// GetModelInfo returns model information
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":   "perspective",
		"model":      strings.Join(c.attributes, "+"),
		"languages":  c.languages,
		"attributes": c.attributes,
	}
}
