// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"errors"
	"math"
	"testing"

	"github.com/pdiddy/thread-genius/pkg/types"
)

func fullMetrics() types.MetricScores {
	return types.MetricScores{
		types.MetricConversationTrigger: 90,
		types.MetricTrendRelevance:      80,
		types.MetricEmotionalImpact:     70,
		types.MetricValueProvided:       60,
		types.MetricStage1Potential:     50,
	}
}

func TestCompositeWorkedExample(t *testing.T) {
	// 0.30*90 + 0.25*80 + 0.20*70 + 0.15*60 + 0.10*50 = 75.0
	got, err := Composite(fullMetrics(), types.DefaultWeights())
	if err != nil {
		t.Fatalf("Composite() error: %v", err)
	}
	if math.Abs(got-75.0) > 1e-9 {
		t.Errorf("Composite() = %v, want 75.0", got)
	}
}

func TestCompositeDeterministic(t *testing.T) {
	metrics := fullMetrics()
	weights := types.DefaultWeights()

	first, err := Composite(metrics, weights)
	if err != nil {
		t.Fatalf("Composite() error: %v", err)
	}
	second, err := Composite(metrics, weights)
	if err != nil {
		t.Fatalf("Composite() error: %v", err)
	}
	if first != second {
		t.Errorf("Composite() not deterministic: %v != %v", first, second)
	}
}

func TestCompositeRange(t *testing.T) {
	// Extremes of the valid input space stay inside [0,100].
	for _, raw := range []float64{0, 100} {
		metrics := types.MetricScores{}
		for name := range types.DefaultWeights() {
			metrics[name] = raw
		}
		got, err := Composite(metrics, types.DefaultWeights())
		if err != nil {
			t.Fatalf("Composite() error: %v", err)
		}
		if got < 0 || got > 100 {
			t.Errorf("Composite() = %v with all scores %v, outside [0,100]", got, raw)
		}
	}
}

func TestCompositeMonotonic(t *testing.T) {
	base, err := Composite(fullMetrics(), types.DefaultWeights())
	if err != nil {
		t.Fatalf("Composite() error: %v", err)
	}

	for name := range types.DefaultWeights() {
		bumped := fullMetrics()
		bumped[name] = math.Min(100, bumped[name]+5)
		got, err := Composite(bumped, types.DefaultWeights())
		if err != nil {
			t.Fatalf("Composite() error after bumping %s: %v", name, err)
		}
		if got < base {
			t.Errorf("raising %s lowered composite: %v < %v", name, got, base)
		}
	}
}

func TestCompositeMissingMetric(t *testing.T) {
	metrics := fullMetrics()
	delete(metrics, types.MetricValueProvided)

	_, err := Composite(metrics, types.DefaultWeights())
	var missing *MissingMetricError
	if !errors.As(err, &missing) {
		t.Fatalf("Composite() error = %v, want MissingMetricError", err)
	}
	if missing.Metric != types.MetricValueProvided {
		t.Errorf("MissingMetricError.Metric = %q, want %q", missing.Metric, types.MetricValueProvided)
	}
}

func TestCompositeScoreOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		value float64
	}{
		{"above range", 150},
		{"below range", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := fullMetrics()
			metrics[types.MetricEmotionalImpact] = tt.value

			_, err := Composite(metrics, types.DefaultWeights())
			var rangeErr *ScoreRangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("Composite() error = %v, want ScoreRangeError", err)
			}
			if rangeErr.Metric != types.MetricEmotionalImpact {
				t.Errorf("ScoreRangeError.Metric = %q, want %q", rangeErr.Metric, types.MetricEmotionalImpact)
			}
			if rangeErr.Value != tt.value {
				t.Errorf("ScoreRangeError.Value = %v, want %v", rangeErr.Value, tt.value)
			}
		})
	}
}

func TestCompositeNegativeWeight(t *testing.T) {
	weights := types.ScoringWeights{types.MetricConversationTrigger: -0.5}
	metrics := types.MetricScores{types.MetricConversationTrigger: 50}
	if _, err := Composite(metrics, weights); err == nil {
		t.Error("Composite() accepted a negative weight")
	}
}

func TestCompositeNormalizesOverweightedRubric(t *testing.T) {
	// Weights summing past 1.0 are treated as a normalization factor
	// rather than rejected.
	weights := types.ScoringWeights{
		types.MetricConversationTrigger: 2.0,
		types.MetricTrendRelevance:      2.0,
	}
	metrics := types.MetricScores{
		types.MetricConversationTrigger: 100,
		types.MetricTrendRelevance:      50,
	}
	got, err := Composite(metrics, weights)
	if err != nil {
		t.Fatalf("Composite() error: %v", err)
	}
	if math.Abs(got-75.0) > 1e-9 {
		t.Errorf("Composite() = %v, want 75.0 after normalization", got)
	}
}

func TestCompositeIgnoresUnweightedMetrics(t *testing.T) {
	metrics := fullMetrics()
	metrics[types.MetricHumanLikeness] = 100

	withExtra, err := Composite(metrics, types.DefaultWeights())
	if err != nil {
		t.Fatalf("Composite() error: %v", err)
	}
	plain, err := Composite(fullMetrics(), types.DefaultWeights())
	if err != nil {
		t.Fatalf("Composite() error: %v", err)
	}
	if withExtra != plain {
		t.Errorf("unweighted metric changed composite: %v != %v", withExtra, plain)
	}
}

func TestRankOrdersByScoreThenTrigger(t *testing.T) {
	posts := []types.Post{
		{Text: "low", Score: 60, Metrics: types.MetricScores{types.MetricConversationTrigger: 90}},
		{Text: "tied-weak", Score: 75, Metrics: types.MetricScores{types.MetricConversationTrigger: 40}},
		{Text: "tied-strong", Score: 75, Metrics: types.MetricScores{types.MetricConversationTrigger: 70}},
		{Text: "high", Score: 80, Metrics: types.MetricScores{types.MetricConversationTrigger: 10}},
	}

	ranked := Rank(posts)

	wantOrder := []string{"high", "tied-strong", "tied-weak", "low"}
	for i, want := range wantOrder {
		if ranked[i].Text != want {
			t.Errorf("ranked[%d] = %q, want %q", i, ranked[i].Text, want)
		}
	}
}

func TestRankStableOnFullTie(t *testing.T) {
	posts := []types.Post{
		{Text: "first", Score: 75, Metrics: types.MetricScores{types.MetricConversationTrigger: 50}},
		{Text: "second", Score: 75, Metrics: types.MetricScores{types.MetricConversationTrigger: 50}},
	}

	ranked := Rank(posts)
	if ranked[0].Text != "first" || ranked[1].Text != "second" {
		t.Errorf("full tie reordered posts: got %q, %q", ranked[0].Text, ranked[1].Text)
	}
}

func TestRankDoesNotModifyInput(t *testing.T) {
	posts := []types.Post{
		{Text: "a", Score: 10},
		{Text: "b", Score: 90},
	}
	Rank(posts)
	if posts[0].Text != "a" {
		t.Error("Rank() modified its input slice")
	}
}

func TestScorePostsEvaluatesAndRanks(t *testing.T) {
	posts := []types.Post{
		{Text: "Plain statement with no hook.", PredictedStage: types.Stage1},
		{
			Text:           "Three tips that changed my results. Which one do you struggle with?",
			TopicTag:       "#business",
			CTA:            "Which one do you struggle with?",
			PredictedStage: types.Stage3,
		},
	}

	ranked, err := ScorePosts(posts, nil, nil)
	if err != nil {
		t.Fatalf("ScorePosts() error: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("len(ranked) = %d, want 2", len(ranked))
	}
	if ranked[0].Score <= ranked[1].Score {
		t.Errorf("ranking order wrong: %v <= %v", ranked[0].Score, ranked[1].Score)
	}
	if ranked[0].TopicTag != "#business" {
		t.Errorf("expected the tagged question post to rank first, got %q", ranked[0].Text)
	}
	for _, p := range ranked {
		if p.Metrics == nil {
			t.Error("ScorePosts() left metrics unset")
		}
	}
}

func TestScorePostsKeepsPrecomputedMetrics(t *testing.T) {
	posts := []types.Post{{Text: "anything", Metrics: fullMetrics()}}
	ranked, err := ScorePosts(posts, types.DefaultWeights(), nil)
	if err != nil {
		t.Fatalf("ScorePosts() error: %v", err)
	}
	if math.Abs(ranked[0].Score-75.0) > 1e-9 {
		t.Errorf("Score = %v, want 75.0 from precomputed metrics", ranked[0].Score)
	}
}
