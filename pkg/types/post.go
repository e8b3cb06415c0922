// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// MaxPostLength is the Threads per-post character limit. Longer text is
// truncated before publishing.
const MaxPostLength = 500

// Stage is a Threads distribution tier a post progresses through after
// publication. Referenced as a generation hint and scoring input.
type Stage string

const (
	// Stage1 is initial delivery to a slice of followers; early reactions decide progression.
	Stage1 Stage = "Stage1"
	// Stage2 is expanded delivery to all followers; sustained engagement matters.
	Stage2 Stage = "Stage2"
	// Stage3 is discovery/recommendation beyond followers; trend fit matters.
	Stage3 Stage = "Stage3"
	// Stage4 is wide external spread (Instagram and beyond); share value matters.
	Stage4 Stage = "Stage4"
)

// StageDescriptions maps each tier to a short operator-facing explanation.
var StageDescriptions = map[Stage]string{
	Stage1: "initial delivery (subset of followers) - early reaction speed",
	Stage2: "expanded delivery (all followers) - engagement persistence",
	Stage3: "discovery and recommendations (beyond followers) - trend relevance",
	Stage4: "wide external spread (Instagram etc.) - share value",
}

// StyleMode identifies which humanize rewrite produced a post.
type StyleMode string

const (
	// StyleCalm is the polite, measured register suited to how-to and numbers content.
	StyleCalm StyleMode = "polite_calm"
	// StyleWarm is the polite but slightly casual register with closer distance.
	StyleWarm StyleMode = "polite_warm"
	// StyleNone marks a draft that was never rewritten.
	StyleNone StyleMode = "none"
)

// Post is a candidate Threads post produced by the generation stage.
type Post struct {
	// Text is the full post body, at most MaxPostLength characters.
	Text string `json:"post_text" yaml:"post_text"`

	// TopicTag is the single topic tag (e.g. "#business"). Threads ranks
	// posts with exactly one tag; the generator never emits more.
	TopicTag string `json:"topic_tag" yaml:"topic_tag"`

	// Hook is the opening line meant to stop the scroll.
	Hook string `json:"hook,omitempty" yaml:"hook,omitempty"`

	// Body is the core of the post: empathy or useful information.
	Body string `json:"body,omitempty" yaml:"body,omitempty"`

	// CTA is the closing question that invites replies.
	CTA string `json:"cta,omitempty" yaml:"cta,omitempty"`

	// PredictedStage is the distribution tier the generator expects the
	// post to reach.
	PredictedStage Stage `json:"predicted_stage" yaml:"predicted_stage"`

	// ConversationTrigger notes why the post should draw replies.
	ConversationTrigger string `json:"conversation_trigger,omitempty" yaml:"conversation_trigger,omitempty"`

	// Reasoning is the generator's short explanation of the structure.
	Reasoning string `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`

	// StyleMode records which humanize pass produced the text.
	StyleMode StyleMode `json:"style_mode,omitempty" yaml:"style_mode,omitempty"`

	// Metrics holds the per-metric raw scores assigned by evaluation.
	Metrics MetricScores `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Score is the weighted composite in [0,100].
	Score float64 `json:"score" yaml:"score"`
}

// PostBatch is the on-disk representation of one generation run. The
// operator can reload it later to re-score, publish, or archive posts
// without calling the AI API again.
type PostBatch struct {
	Persona   string    `json:"persona" yaml:"persona"`
	NewsTitle string    `json:"news_title,omitempty" yaml:"news_title,omitempty"`
	Created   time.Time `json:"created" yaml:"created"`
	Posts     []Post    `json:"posts" yaml:"posts"`
}
