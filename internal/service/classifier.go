package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"misogyny-detector/internal/inference"
	"misogyny-detector/internal/models"
	"misogyny-detector/internal/rules"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Verdict error messages
const (
	MsgUnavailable        = "Model/Labels not loaded or unexpected labels"
	MsgTargetLabelMissing = "Internal: target label not found."
	detectionFailedPrefix = "Detection failed: "
)

// LoadOptions controls how the model is fetched at startup.
type LoadOptions struct {
	Retries    uint64
	RetryDelay time.Duration
}

// Classifier owns the model handle and turns text into verdicts.
// It is immutable after NewClassifier and safe for concurrent use.
type Classifier struct {
	engine inference.Engine
	policy Policy
	rules  *rules.Table
	handle *Handle
	logger *zap.Logger
}

// NewClassifier loads the model through engine and validates its labels
// against policy. It never fails: on any load or validation problem the
// classifier is returned in the unavailable state and the reason is logged.
func NewClassifier(
	ctx context.Context,
	engine inference.Engine,
	policy Policy,
	table *rules.Table,
	opts LoadOptions,
	logger *zap.Logger,
) *Classifier {
	c := &Classifier{
		engine: engine,
		policy: policy,
		rules:  table,
		logger: logger,
	}

	if engine == nil {
		logger.Warn("No inference engine configured. The detection endpoint will not be available.")
		return c
	}

	cfg, err := loadModel(ctx, engine, opts, logger)
	if err != nil {
		logger.Error("Error loading model. The detection endpoint will not be available.", zap.Error(err))
		return c
	}

	h, err := newHandle(cfg, policy)
	if err != nil {
		logger.Warn("Model labels rejected, detection logic disabled",
			zap.String("model", cfg.ModelID),
			zap.Error(err))
		return c
	}

	for i, t := range policy.Targets {
		if h.targets[i] < 0 {
			logger.Warn("Target label not present in model labels",
				zap.String("label", t.Label),
				zap.Strings("labels", labelValues(h.labels)))
		}
	}

	c.handle = h
	logger.Info("Model loaded successfully",
		zap.String("model", h.modelID),
		zap.String("variant", string(policy.Variant)),
		zap.Strings("labels", labelValues(h.labels)))

	return c
}

func loadModel(ctx context.Context, engine inference.Engine, opts LoadOptions, logger *zap.Logger) (*inference.ModelConfig, error) {
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}

	var cfg *inference.ModelConfig
	attempt := 0
	b := retry.WithMaxRetries(opts.Retries, retry.NewConstant(delay))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		loaded, err := engine.Load(ctx)
		if err != nil {
			logger.Warn("Model load attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		cfg = loaded
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load model after %d attempt(s): %w", attempt, err)
	}
	return cfg, nil
}

// Available reports whether a valid model handle is loaded.
func (c *Classifier) Available() bool {
	return c.handle != nil
}

// Policy returns the decision policy in use.
func (c *Classifier) Policy() Policy {
	return c.policy
}

// Classify returns the verdict for text. Failures are reported in
// Verdict.Error and never returned or propagated as panics.
func (c *Classifier) Classify(ctx context.Context, text string) (verdict models.Verdict) {
	// Availability is checked before the rule pass.
	if !c.Available() {
		return c.failed(text, MsgUnavailable)
	}

	if e, ok := c.rules.Match(text); ok {
		label := e.Label
		c.logger.Debug("Rule override applied", zap.String("rule", label))
		return models.Verdict{
			Text:        text,
			IsFlagged:   true,
			Score:       1.0,
			Scores:      c.scores(1.0),
			RuleApplied: &label,
		}
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Inference panicked", zap.Any("panic", r))
			verdict = c.failed(text, fmt.Sprintf("%s%v", detectionFailedPrefix, r))
		}
	}()

	logits, err := c.engine.Infer(ctx, text).Unwrap()
	if err == nil {
		err = checkFinite(logits)
	}
	if err != nil {
		c.logger.Error("Error during detection",
			zap.Int("text_length", len(text)),
			zap.Error(err))
		return c.failed(text, detectionFailedPrefix+err.Error())
	}

	probs := c.policy.Activation.Apply(logits)

	verdict = models.Verdict{
		Text:   text,
		Scores: make([]models.Score, len(c.policy.Targets)),
	}
	for i, t := range c.policy.Targets {
		idx := c.handle.targets[i]
		if idx < 0 || idx >= len(probs) {
			c.logger.Warn("Target label not found during inference",
				zap.String("label", t.Label),
				zap.Int("index", idx),
				zap.Int("num_probs", len(probs)))
			return c.failed(text, MsgTargetLabelMissing)
		}

		p := probs[idx]
		verdict.Scores[i] = models.Score{Field: t.Field, Value: p}
		if p > t.Threshold {
			verdict.IsFlagged = true
		}
		if p > verdict.Score {
			verdict.Score = p
		}
	}

	return verdict
}

func (c *Classifier) failed(text, msg string) models.Verdict {
	return models.Verdict{
		Text:   text,
		Scores: c.scores(0),
		Error:  &msg,
	}
}

func (c *Classifier) scores(v float64) []models.Score {
	out := make([]models.Score, len(c.policy.Targets))
	for i, t := range c.policy.Targets {
		out[i] = models.Score{Field: t.Field, Value: v}
	}
	return out
}

func checkFinite(logits []float64) error {
	for i, v := range logits {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite logit at index %d", i)
		}
	}
	return nil
}

// GetModelInfo describes the engine and the loaded handle.
func (c *Classifier) GetModelInfo() map[string]interface{} {
	info := map[string]interface{}{}
	if c.engine != nil {
		for k, v := range c.engine.GetModelInfo() {
			info[k] = v
		}
	}
	info["loaded"] = c.Available()
	info["variant"] = string(c.policy.Variant)
	info["activation"] = c.policy.Activation.String()
	if c.handle != nil {
		info["model_id"] = c.handle.modelID
		info["labels"] = labelValues(c.handle.labels)
	}
	return info
}

// Close releases the engine.
func (c *Classifier) Close() error {
	if c.engine == nil {
		return nil
	}
	return c.engine.Close()
}
