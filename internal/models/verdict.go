package models

import "encoding/json"

// Outcome is the binary decision carried by a Verdict
type Outcome int

const (
	Negative Outcome = iota
	Positive
)

func (o Outcome) String() string {
	if o == Positive {
		return "positive"
	}
	return "negative"
}

// Score is one named class score reported in a verdict
type Score struct {
	Field string  // JSON field, e.g. "score_misogyny"
	Value float64 // probability in [0,1]
}

// Verdict is the result of classifying one text
type Verdict struct {
	Text        string
	IsFlagged   bool
	Score       float64 // highest target score
	Scores      []Score
	RuleApplied *string
	Error       *string
}

// Outcome maps the verdict onto Negative/Positive.
func (v Verdict) Outcome() Outcome {
	if v.IsFlagged {
		return Positive
	}
	return Negative
}

// MarshalJSON writes the detect response body. Named scores are flattened
// into top-level fields; rule_applied and error are always present (null
// when unset).
func (v Verdict) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 4+len(v.Scores))
	out["text"] = v.Text
	out["is_misogynistic"] = v.IsFlagged
	if len(v.Scores) == 0 {
		out["score"] = v.Score
	}
	for _, s := range v.Scores {
		out[s.Field] = s.Value
	}
	out["rule_applied"] = v.RuleApplied
	out["error"] = v.Error
	return json.Marshal(out)
}

// DetectRequest is the body of POST /detect. Text is a pointer so a missing
// field can be told apart from an empty string.
type DetectRequest struct {
	Text *string `json:"text"`
}
