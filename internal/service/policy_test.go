package service

import (
	"testing"

	"misogyny-detector/internal/config"
	"misogyny-detector/internal/inference"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyFor(t *testing.T) {
	p, err := PolicyFor(config.PolicyConfig{Variant: "binary", TargetLabel: "1", Threshold: 0.6})
	require.NoError(t, err)
	assert.Equal(t, inference.Softmax, p.Activation)
	assert.Equal(t, []string{"0", "1"}, p.ExpectedLabels)
	require.Len(t, p.Targets, 1)
	assert.Equal(t, Target{Label: "1", Field: "score_misogyny", Threshold: 0.6}, p.Targets[0])

	p, err = PolicyFor(config.PolicyConfig{Variant: "multi_label", ToxicThreshold: 0.7, InsultThreshold: 0.4})
	require.NoError(t, err)
	assert.Equal(t, inference.Sigmoid, p.Activation)
	assert.Empty(t, p.ExpectedLabels)
	assert.Equal(t, []Target{
		{Label: "toxic", Field: "score_toxic", Threshold: 0.7},
		{Label: "insult", Field: "score_insult", Threshold: 0.4},
	}, p.Targets)

	_, err = PolicyFor(config.PolicyConfig{Variant: "other"})
	assert.Error(t, err)
}

func TestNewHandleResolvesByName(t *testing.T) {
	h, err := newHandle(&inference.ModelConfig{
		ModelID:     "unitary/toxic-bert",
		ID2Label:    map[int]string{0: "toxic", 1: "severe_toxic", 2: "obscene", 3: "threat", 4: "Insult", 5: "identity_hate"},
		ProblemType: inference.MultiLabel,
	}, MultiLabelPolicy(0.5, 0.5))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 4}, h.targets)
}

func TestSameLabelSet(t *testing.T) {
	assert.True(t, sameLabelSet(map[int]string{0: "1", 1: "0"}, []string{"0", "1"}))
	assert.False(t, sameLabelSet(map[int]string{0: "0"}, []string{"0", "1"}))
	assert.False(t, sameLabelSet(map[int]string{0: "0", 1: "2"}, []string{"0", "1"}))
}
