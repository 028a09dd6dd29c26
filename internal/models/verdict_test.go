package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, v Verdict) map[string]interface{} {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestVerdictJSONBinary(t *testing.T) {
	rule := "misogynistic_stereotype"
	got := decode(t, Verdict{
		Text:        "typical women driver",
		IsFlagged:   true,
		Score:       1,
		Scores:      []Score{{Field: "score_misogyny", Value: 1}},
		RuleApplied: &rule,
	})

	assert.Equal(t, map[string]interface{}{
		"text":            "typical women driver",
		"is_misogynistic": true,
		"score_misogyny":  1.0,
		"rule_applied":    "misogynistic_stereotype",
		"error":           nil,
	}, got)
}

func TestVerdictJSONMultiLabel(t *testing.T) {
	msg := "Detection failed: boom"
	got := decode(t, Verdict{
		Text:   "x",
		Scores: []Score{{Field: "score_toxic", Value: 0}, {Field: "score_insult", Value: 0}},
		Error:  &msg,
	})

	assert.Equal(t, 0.0, got["score_toxic"])
	assert.Equal(t, 0.0, got["score_insult"])
	assert.Equal(t, false, got["is_misogynistic"])
	assert.Equal(t, msg, got["error"])
	assert.Nil(t, got["rule_applied"])
	assert.NotContains(t, got, "score")
}

func TestVerdictJSONUnnamedScore(t *testing.T) {
	got := decode(t, Verdict{Text: "x", Score: 0.25})
	assert.Equal(t, 0.25, got["score"])
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, Positive, Verdict{IsFlagged: true}.Outcome())
	assert.Equal(t, Negative, Verdict{}.Outcome())
	assert.Equal(t, "positive", Positive.String())
}
