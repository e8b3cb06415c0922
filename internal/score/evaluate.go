// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"math"
	"strings"

	"github.com/pdiddy/thread-genius/pkg/types"
)

// Keyword tables for the rule-based evaluators. These approximate how
// Threads users react rather than measure it; the weights in the rubric
// carry the calibration.
var (
	opinionPhrases = []string{
		"what do you think", "your take", "your opinion", "let me know",
		"which one", "agree or disagree", "am i wrong", "tell me",
	}

	emotionalWords = []string{
		"amazing", "shocking", "incredible", "unbelievable", "wild",
		"heartbreaking", "love", "hate", "finally", "wow",
	}

	valueWords = []string{
		"how to", "tip", "tips", "method", "trick", "strategy",
		"result", "results", "data", "step", "steps", "lesson",
	}

	// aiLikePhrases are boilerplate constructions that read as
	// machine-written and cost human-likeness points.
	aiLikePhrases = []string{
		"in conclusion", "fundamentally", "the key is", "in essence",
		"it's important to note", "let's dive in", "comprehensive",
		"pros and cons", "in this post", "game-changer",
	}

	politeMarkers = []string{"please", "thanks", "thank you", "appreciate"}

	addressMarkers = []string{"you", "your", "everyone", "folks"}

	choiceMarkers = []string{"which", "what number", "where", "a or b", "1 or 2"}

	personalMarkers = []string{
		"honestly", "i've seen", "i keep seeing", "in my experience",
		"this comes up a lot", "clients ask me",
	}
)

// Evaluate derives raw sub-scores in [0,100] for a post using rule-based
// heuristics. trending optionally supplies current topic labels that boost
// trend relevance when the post's tag matches one.
func Evaluate(post types.Post, trending []string) types.MetricScores {
	return types.MetricScores{
		types.MetricConversationTrigger: evalConversationTrigger(post),
		types.MetricTrendRelevance:      evalTrendRelevance(post, trending),
		types.MetricEmotionalImpact:     evalEmotionalImpact(post),
		types.MetricValueProvided:       evalValueProvided(post),
		types.MetricStage1Potential:     evalStage1Potential(post),
		types.MetricHumanLikeness:       evalHumanLikeness(post),
	}
}

// evalConversationTrigger rewards posts built to draw replies: a question,
// an explicit request for opinions, and a substantial closing CTA.
func evalConversationTrigger(post types.Post) float64 {
	text := strings.ToLower(post.Text)
	cta := strings.ToLower(post.CTA)

	var s float64
	if strings.Contains(text, "?") {
		s += 40
	}
	if containsAny(text, opinionPhrases) {
		s += 30
	}
	if len(cta) > 10 {
		s += 30
	}
	return clamp100(s)
}

// evalTrendRelevance scores 80 with a topic tag and 40 without, plus a
// bonus when the tag matches a trending topic.
func evalTrendRelevance(post types.Post, trending []string) float64 {
	if post.TopicTag == "" {
		return 40
	}
	s := 80.0
	tag := strings.ToLower(strings.TrimPrefix(post.TopicTag, "#"))
	for _, topic := range trending {
		if tag == strings.ToLower(topic) {
			s += 20
			break
		}
	}
	return clamp100(s)
}

func evalEmotionalImpact(post types.Post) float64 {
	text := strings.ToLower(post.Text)
	var count int
	for _, w := range emotionalWords {
		if strings.Contains(text, w) {
			count++
		}
	}
	return clamp100(float64(count) * 25)
}

func evalValueProvided(post types.Post) float64 {
	text := strings.ToLower(post.Text)
	var count int
	for _, w := range valueWords {
		if strings.Contains(text, w) {
			count++
		}
	}
	return clamp100(float64(count) * 30)
}

// evalStage1Potential maps the generator's stage prediction to a score.
// Posts expected to escape the follower pool score highest.
func evalStage1Potential(post types.Post) float64 {
	switch post.PredictedStage {
	case types.Stage3, types.Stage4:
		return 90
	case types.Stage2:
		return 70
	default:
		return 50
	}
}

// evalHumanLikeness estimates how human the text reads. Polite phrasing,
// direct address, concrete questions, and first-person texture add points;
// boilerplate constructions subtract them. Weighted zero by default.
func evalHumanLikeness(post types.Post) float64 {
	text := strings.ToLower(post.Text)
	cta := strings.TrimSpace(post.CTA)

	var s float64

	polite := 0
	for _, w := range politeMarkers {
		if strings.Contains(text, w) {
			polite++
		}
	}
	s += math.Min(float64(polite)*12, 25)

	if containsAny(text, addressMarkers) {
		s += 18
	}

	if strings.Contains(text, "?") {
		s += 22
		if containsAny(text, choiceMarkers) {
			s += 10
		}
	}

	if containsAny(text, personalMarkers) {
		s += 18
	}

	var penalty float64
	for _, p := range aiLikePhrases {
		if strings.Contains(text, p) {
			penalty += 8
		}
	}
	if penalty > 35 {
		penalty = 35
	}
	s -= penalty

	// A terse CTA reads as an afterthought and kills the conversation.
	if len(cta) < 6 {
		s -= 5
	}

	if s < 0 {
		return 0
	}
	return clamp100(s)
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func clamp100(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}

