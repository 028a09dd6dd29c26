package inference

import "math"

// Activation converts a logit vector into per-class probabilities.
type Activation int

const (
	// Softmax is used for mutually exclusive classes; outputs sum to 1.
	Softmax Activation = iota
	// Sigmoid scores each class independently (multi-label heads).
	Sigmoid
)

func (a Activation) String() string {
	switch a {
	case Softmax:
		return "softmax"
	case Sigmoid:
		return "sigmoid"
	default:
		return "unknown"
	}
}

// Apply converts logits to probabilities with the receiver's activation.
func (a Activation) Apply(logits []float64) []float64 {
	if a == Sigmoid {
		return SigmoidAll(logits)
	}
	return SoftmaxOf(logits)
}

// SoftmaxOf normalizes logits into a distribution. The max logit is
// subtracted first so large inputs do not overflow.
func SoftmaxOf(logits []float64) []float64 {
	if len(logits) == 0 {
		return nil
	}
	maxVal := logits[0]
	for _, v := range logits[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	out := make([]float64, len(logits))
	sum := 0.0
	for i, v := range logits {
		e := math.Exp(v - maxVal)
		out[i] = e
		sum += e
	}
	if sum == 0 || math.IsNaN(sum) {
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// SigmoidOf is the logistic function.
func SigmoidOf(v float64) float64 {
	return 1.0 / (1.0 + math.Exp(-v))
}

// SigmoidAll applies SigmoidOf to every logit.
func SigmoidAll(logits []float64) []float64 {
	out := make([]float64, len(logits))
	for i, v := range logits {
		out[i] = SigmoidOf(v)
	}
	return out
}

// LogOdds is the inverse of SigmoidOf, clamped so 0 and 1 stay finite.
// Engines that only expose calibrated probabilities use it to report logits.
func LogOdds(p float64) float64 {
	p = clampProb(p)
	return math.Log(p / (1 - p))
}

// LogProb returns log(p), clamped. Log-probabilities are valid softmax
// logits because softmax is shift invariant.
func LogProb(p float64) float64 {
	return math.Log(clampProb(p))
}

const probEpsilon = 1e-9

func clampProb(p float64) float64 {
	if math.IsNaN(p) || p < probEpsilon {
		return probEpsilon
	}
	if p > 1-probEpsilon {
		return 1 - probEpsilon
	}
	return p
}
