// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "thread-genius/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CollectorConfig holds settings for the news collection stage.
type CollectorConfig struct {
	HTTPConfig `yaml:",inline"`

	// Feeds lists the RSS/Atom feed URLs to poll.
	Feeds []string `json:"feeds" yaml:"feeds"`

	// MaxItems is the maximum number of news items to return (default 10).
	MaxItems int `json:"max_items" yaml:"max_items"`

	// Keywords restricts collection to items whose title or summary
	// contains at least one keyword. Empty means no filter.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// NewsDir is the directory where collected batches are saved.
	NewsDir string `json:"news_dir" yaml:"news_dir"`
}

// AIConfig holds shared settings for stages that call the Claude API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-3-haiku-20240307").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// GenerationConfig holds settings for the post generation stage.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`

	// Variations is the number of candidate posts to produce (default 5).
	Variations int `json:"variations" yaml:"variations"`

	// TwoPassHumanize enables the second rewrite pass that trades polish
	// for a human register. Drafts lean divergent, rewrites lean stable.
	TwoPassHumanize bool `json:"two_pass_humanize" yaml:"two_pass_humanize"`

	// CalmPriority biases the humanize mix toward the calm register,
	// suited to how-to and numbers-heavy content.
	CalmPriority bool `json:"calm_priority" yaml:"calm_priority"`

	// DraftTemperature is the sampling temperature for the draft pass (default 0.7).
	DraftTemperature float64 `json:"draft_temperature" yaml:"draft_temperature"`

	// HumanizeTemperature is the sampling temperature for the rewrite pass (default 0.4).
	HumanizeTemperature float64 `json:"humanize_temperature" yaml:"humanize_temperature"`

	// OutputDir is the directory for generated post batches.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// ScoringConfig holds the rubric used to rank candidate posts.
type ScoringConfig struct {
	// Weights maps metric names to weights. Empty uses DefaultWeights.
	Weights ScoringWeights `json:"weights,omitempty" yaml:"weights,omitempty"`
}

// PublishConfig holds settings for the Threads publishing stage.
type PublishConfig struct {
	HTTPConfig `yaml:",inline"`

	// AppID is the Threads app identifier.
	AppID string `json:"app_id,omitempty" yaml:"app_id,omitempty"`

	// AppSecret is the Threads app secret.
	AppSecret string `json:"app_secret,omitempty" yaml:"app_secret,omitempty"`

	// RedirectURI is the OAuth redirect registered with the app.
	RedirectURI string `json:"redirect_uri" yaml:"redirect_uri"`

	// AccessToken is a previously obtained user access token.
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty"`

	// UserID is the Threads user the token belongs to.
	UserID string `json:"user_id,omitempty" yaml:"user_id,omitempty"`
}

// HistoryConfig holds settings for the post archive.
type HistoryConfig struct {
	// HistoryDir is the base directory for the archive (contains index/).
	HistoryDir string `json:"history_dir" yaml:"history_dir"`

	// MaxResults is the default maximum number of list results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Collector  CollectorConfig  `json:"collector" yaml:"collector"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Scoring    ScoringConfig    `json:"scoring" yaml:"scoring"`
	Publish    PublishConfig    `json:"publish" yaml:"publish"`
	History    HistoryConfig    `json:"history" yaml:"history"`
	Personas   []PersonaConfig  `json:"personas,omitempty" yaml:"personas,omitempty"`
}
