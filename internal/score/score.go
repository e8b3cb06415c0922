// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score computes weighted composite quality scores for candidate
// posts and ranks them deterministically.
package score

import (
	"fmt"
	"sort"

	"github.com/pdiddy/thread-genius/pkg/types"
)

// MissingMetricError reports a weighted metric with no corresponding raw score.
type MissingMetricError struct {
	Metric string
}

func (e *MissingMetricError) Error() string {
	return fmt.Sprintf("no raw score for weighted metric %q", e.Metric)
}

// ScoreRangeError reports a raw sub-score outside [0,100].
type ScoreRangeError struct {
	Metric string
	Value  float64
}

func (e *ScoreRangeError) Error() string {
	return fmt.Sprintf("raw score for %q is %v, outside [0,100]", e.Metric, e.Value)
}

// Composite returns the weighted sum of raw sub-scores. Every metric named
// in weights must have a raw score in [0,100]. When the weights total more
// than 1 the sum is normalized by the total, so a valid input always maps
// into [0,100]. Metrics present in the score map but absent from the
// weights are ignored.
//
// The computation is pure: no state, no randomness, identical inputs yield
// identical output.
func Composite(metrics types.MetricScores, weights types.ScoringWeights) (float64, error) {
	if err := weights.Validate(); err != nil {
		return 0, err
	}

	// Deterministic iteration so the first error reported is stable.
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	var composite float64
	for _, name := range names {
		raw, ok := metrics[name]
		if !ok {
			return 0, &MissingMetricError{Metric: name}
		}
		if raw < 0 || raw > 100 {
			return 0, &ScoreRangeError{Metric: name, Value: raw}
		}
		composite += weights[name] * raw
	}

	if total := weights.Sum(); total > 1 {
		composite /= total
	}
	return composite, nil
}

// Rank orders posts best-first: higher composite score wins, ties go to
// the higher raw conversation_trigger score, and remaining ties keep the
// input order. The input slice is not modified.
func Rank(posts []types.Post) []types.Post {
	ranked := make([]types.Post, len(posts))
	copy(ranked, posts)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Metrics[types.MetricConversationTrigger] >
			ranked[j].Metrics[types.MetricConversationTrigger]
	})
	return ranked
}

// ScorePosts evaluates and scores each post in place, then returns the
// ranked result. Posts that fail scoring are returned in err; the rest are
// still ranked.
func ScorePosts(posts []types.Post, weights types.ScoringWeights, trending []string) ([]types.Post, error) {
	if len(weights) == 0 {
		weights = types.DefaultWeights()
	}

	scored := make([]types.Post, 0, len(posts))
	for i, p := range posts {
		if p.Metrics == nil {
			p.Metrics = Evaluate(p, trending)
		}
		composite, err := Composite(p.Metrics, weights)
		if err != nil {
			return nil, fmt.Errorf("scoring post %d: %w", i+1, err)
		}
		p.Score = composite
		scored = append(scored, p)
	}
	return Rank(scored), nil
}
