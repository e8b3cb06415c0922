// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Metric names recognized by the default rubric. The scoring engine itself
// is generic over names; these are the keys the evaluator produces and the
// default weights reference.
const (
	MetricConversationTrigger = "conversation_trigger"
	MetricTrendRelevance      = "trend_relevance"
	MetricEmotionalImpact     = "emotional_impact"
	MetricValueProvided       = "value_provided"
	MetricStage1Potential     = "stage1_potential"

	// MetricHumanLikeness is carried in evaluation output but weighted
	// zero by default; operators opt in via config.
	MetricHumanLikeness = "human_likeness"
)

// ScoringWeights maps metric names to non-negative weights. The
// conventional total is 1.0; when the total exceeds 1 the composite is
// normalized by the sum instead of failing.
type ScoringWeights map[string]float64

// MetricScores maps metric names to raw sub-scores in [0,100].
type MetricScores map[string]float64

// DefaultWeights returns the standard Threads engagement rubric.
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		MetricConversationTrigger: 0.30,
		MetricTrendRelevance:      0.25,
		MetricEmotionalImpact:     0.20,
		MetricValueProvided:       0.15,
		MetricStage1Potential:     0.10,
	}
}

// Validate rejects negative weights. A zero-weight entry is allowed and
// simply does not contribute.
func (w ScoringWeights) Validate() error {
	for name, weight := range w {
		if weight < 0 {
			return fmt.Errorf("weight for %q is negative (%v)", name, weight)
		}
	}
	return nil
}

// Sum returns the total of all weights.
func (w ScoringWeights) Sum() float64 {
	var total float64
	for _, weight := range w {
		total += weight
	}
	return total
}
