// Package inference defines the contract between the classifier and the
// runtime that owns the tokenizer and network of a pretrained model.
package inference

import (
	"context"
	"errors"
)

// ProblemType mirrors the problem_type field of a transformers model config.
type ProblemType string

const (
	SingleLabel ProblemType = "single_label_classification"
	MultiLabel  ProblemType = "multi_label_classification"
)

// DefaultMaxLength is the tokenizer truncation limit used when the engine
// does not report one.
const DefaultMaxLength = 512

var (
	// ErrNoLogits is returned when an engine answers without a logit row.
	ErrNoLogits = errors.New("engine returned no logits")
	// ErrNotLoaded is returned by Infer when Load has not succeeded.
	ErrNotLoaded = errors.New("model not loaded")
)

// ModelConfig is the part of the loaded model's configuration the
// classifier needs.
type ModelConfig struct {
	ModelID     string
	ID2Label    map[int]string
	ProblemType ProblemType // empty when the engine does not report one
	MaxLength   int
}

// Engine loads a model once and runs single-text inference against it.
// Implementations must be safe for concurrent use after Load returns.
type Engine interface {
	Load(ctx context.Context) (*ModelConfig, error)
	Infer(ctx context.Context, text string) Result
	Close() error
	GetModelInfo() map[string]interface{}
}

// Result is the outcome of one forward pass: either raw logits or the
// reason inference failed.
type Result struct {
	logits []float64
	err    error
}

// Ok wraps the logits of a successful forward pass.
func Ok(logits []float64) Result {
	if len(logits) == 0 {
		return Result{err: ErrNoLogits}
	}
	return Result{logits: logits}
}

// Fail wraps an inference error.
func Fail(err error) Result {
	if err == nil {
		err = errors.New("unknown inference error")
	}
	return Result{err: err}
}

// Unwrap returns the logits or the failure reason.
func (r Result) Unwrap() ([]float64, error) {
	if r.err != nil {
		return nil, r.err
	}
	if len(r.logits) == 0 {
		return nil, ErrNoLogits
	}
	return r.logits, nil
}

// Err returns the failure reason, nil on success.
func (r Result) Err() error {
	_, err := r.Unwrap()
	return err
}
