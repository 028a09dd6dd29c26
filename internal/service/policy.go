package service

import (
	"fmt"
	"sort"
	"strings"

	"misogyny-detector/internal/config"
	"misogyny-detector/internal/inference"
)

// Variant names a decision policy. One policy is chosen per deployed model family.
type Variant string

const (
	VariantBinary     Variant = "binary"
	VariantMultiLabel Variant = "multi_label"
)

// Target is a label the policy scores and the JSON field it is reported under.
type Target struct {
	Label     string
	Field     string
	Threshold float64
}

// Policy describes how logits turn into a verdict.
type Policy struct {
	Variant     Variant
	Activation  inference.Activation
	ProblemType inference.ProblemType
	// ExpectedLabels, when set, must equal the model's label set exactly.
	ExpectedLabels []string
	Targets        []Target
}

// BinaryPolicy scores one label of a {"0","1"} softmax head. Which index is
// the misogyny class depends on the model card, so the label is configurable.
func BinaryPolicy(targetLabel string, threshold float64) Policy {
	return Policy{
		Variant:        VariantBinary,
		Activation:     inference.Softmax,
		ProblemType:    inference.SingleLabel,
		ExpectedLabels: []string{"0", "1"},
		Targets: []Target{
			{Label: targetLabel, Field: "score_misogyny", Threshold: threshold},
		},
	}
}

// MultiLabelPolicy scores toxic and insult independently with sigmoid and
// flags when either exceeds its own threshold.
func MultiLabelPolicy(toxicThreshold, insultThreshold float64) Policy {
	return Policy{
		Variant:     VariantMultiLabel,
		Activation:  inference.Sigmoid,
		ProblemType: inference.MultiLabel,
		Targets: []Target{
			{Label: "toxic", Field: "score_toxic", Threshold: toxicThreshold},
			{Label: "insult", Field: "score_insult", Threshold: insultThreshold},
		},
	}
}

// PolicyFor builds the policy selected in configuration.
func PolicyFor(cfg config.PolicyConfig) (Policy, error) {
	switch Variant(cfg.Variant) {
	case VariantBinary:
		return BinaryPolicy(cfg.TargetLabel, cfg.Threshold), nil
	case VariantMultiLabel:
		return MultiLabelPolicy(cfg.ToxicThreshold, cfg.InsultThreshold), nil
	default:
		return Policy{}, fmt.Errorf("unknown policy variant %q", cfg.Variant)
	}
}

// Handle is the loaded model state. It is built once and never mutated.
type Handle struct {
	modelID string
	labels  map[int]string
	// targets holds the label index of each policy target, -1 if absent.
	targets []int
}

// newHandle validates a loaded model config against the policy and resolves
// target labels to indices.
func newHandle(cfg *inference.ModelConfig, p Policy) (*Handle, error) {
	if cfg == nil || len(cfg.ID2Label) == 0 {
		return nil, fmt.Errorf("model configuration does not contain a label mapping (id2label)")
	}

	if cfg.ProblemType != "" && p.ProblemType != "" && cfg.ProblemType != p.ProblemType {
		return nil, fmt.Errorf("model problem type %q does not match %s policy (%q)",
			cfg.ProblemType, p.Variant, p.ProblemType)
	}

	if len(p.ExpectedLabels) > 0 && !sameLabelSet(cfg.ID2Label, p.ExpectedLabels) {
		return nil, fmt.Errorf("model labels %v are not the expected %v", labelValues(cfg.ID2Label), p.ExpectedLabels)
	}

	labels := make(map[int]string, len(cfg.ID2Label))
	for k, v := range cfg.ID2Label {
		labels[k] = v
	}

	h := &Handle{
		modelID: cfg.ModelID,
		labels:  labels,
		targets: make([]int, len(p.Targets)),
	}
	for i, t := range p.Targets {
		h.targets[i] = indexOf(labels, t.Label)
	}
	return h, nil
}

// indexOf returns the lowest index whose label equals name, ignoring case.
func indexOf(labels map[int]string, name string) int {
	found := -1
	for idx, l := range labels {
		if strings.EqualFold(l, name) && (found == -1 || idx < found) {
			found = idx
		}
	}
	return found
}

func sameLabelSet(id2label map[int]string, expected []string) bool {
	got := make(map[string]struct{}, len(id2label))
	for _, v := range id2label {
		got[v] = struct{}{}
	}
	want := make(map[string]struct{}, len(expected))
	for _, v := range expected {
		want[v] = struct{}{}
	}
	if len(got) != len(want) {
		return false
	}
	for v := range want {
		if _, ok := got[v]; !ok {
			return false
		}
	}
	return true
}

// labelValues lists labels in index order for logging.
func labelValues(id2label map[int]string) []string {
	idx := make([]int, 0, len(id2label))
	for k := range id2label {
		idx = append(idx, k)
	}
	sort.Ints(idx)
	out := make([]string, len(idx))
	for i, k := range idx {
		out[i] = id2label[k]
	}
	return out
}
