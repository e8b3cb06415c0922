// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// NewsItem is one entry collected from an RSS or Atom feed.
type NewsItem struct {
	// Title is the headline.
	Title string `json:"title" yaml:"title"`

	// Summary is the feed-provided description or excerpt.
	Summary string `json:"summary" yaml:"summary"`

	// Link is the canonical article URL.
	Link string `json:"link" yaml:"link"`

	// Published is the publication timestamp; zero when the feed omits it.
	Published time.Time `json:"published" yaml:"published"`

	// Source is the feed URL the item came from.
	Source string `json:"source" yaml:"source"`
}
