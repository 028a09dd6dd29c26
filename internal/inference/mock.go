package inference

import (
	"context"
	"sync"
)

// MockEngine is a deterministic Engine for tests. It returns the same
// logits for every call and records the texts it was asked to score.
type MockEngine struct {
	mu sync.Mutex

	Config *ModelConfig
	// LoadErr is returned by the first LoadFailures calls to Load
	// (every call when LoadFailures is zero).
	LoadErr      error
	LoadFailures int

	Logits   []float64
	InferErr error
	// PanicWith makes Infer panic with the given value.
	PanicWith interface{}

	Calls     []string
	loadCalls int
}

// NewBinaryMock returns a MockEngine with a {"0","1"} single-label head.
func NewBinaryMock(logits ...float64) *MockEngine {
	return &MockEngine{
		Config: &ModelConfig{
			ModelID:     "mock/binary",
			ID2Label:    map[int]string{0: "0", 1: "1"},
			ProblemType: SingleLabel,
			MaxLength:   DefaultMaxLength,
		},
		Logits: logits,
	}
}

// NewMultiLabelMock returns a MockEngine with a toxic/insult multi-label head.
// The label order is deliberately not alphabetical.
func NewMultiLabelMock(logits ...float64) *MockEngine {
	return &MockEngine{
		Config: &ModelConfig{
			ModelID: "mock/multi-label",
			ID2Label: map[int]string{
				0: "obscene",
				1: "insult",
				2: "toxic",
			},
			ProblemType: MultiLabel,
			MaxLength:   DefaultMaxLength,
		},
		Logits: logits,
	}
}

// Load returns the configured model config, or LoadErr.
func (m *MockEngine) Load(_ context.Context) (*ModelConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loadCalls++
	if m.LoadErr != nil && (m.LoadFailures == 0 || m.loadCalls <= m.LoadFailures) {
		return nil, m.LoadErr
	}
	return m.Config, nil
}

// Infer records the call and returns the canned logits or error.
func (m *MockEngine) Infer(_ context.Context, text string) Result {
	m.mu.Lock()
	m.Calls = append(m.Calls, text)
	logits, err, p := m.Logits, m.InferErr, m.PanicWith
	m.mu.Unlock()

	if p != nil {
		panic(p)
	}
	if err != nil {
		return Fail(err)
	}
	out := make([]float64, len(logits))
	copy(out, logits)
	return Ok(out)
}

// Close is a no-op.
func (m *MockEngine) Close() error {
	return nil
}

// GetModelInfo returns "mock" provider info.
func (m *MockEngine) GetModelInfo() map[string]interface{} {
	info := map[string]interface{}{"provider": "mock"}
	if m.Config != nil {
		info["model"] = m.Config.ModelID
	}
	return info
}

// CallCount returns the number of Infer calls made.
func (m *MockEngine) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LoadCount returns the number of Load calls made.
func (m *MockEngine) LoadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}
