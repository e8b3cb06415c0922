// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/thread-genius/pkg/types"
)

// NewsFile is the on-disk representation of one collection run. The
// operator can feed a saved batch into generation later without hitting
// the feeds again.
type NewsFile struct {
	Config  NewsFileConfig   `yaml:"config"`
	Items   []types.NewsItem `yaml:"items"`
	Summary NewsSummary      `yaml:"summary"`
}

// NewsFileConfig stores the collector settings that produced the batch.
type NewsFileConfig struct {
	Feeds    []string `yaml:"feeds"`
	Keywords []string `yaml:"keywords,omitempty"`
	MaxItems int      `yaml:"max_items"`
}

// NewsSummary stores batch statistics and a timestamp.
type NewsSummary struct {
	Total             int       `yaml:"total"`
	DuplicatesRemoved int       `yaml:"duplicates_removed"`
	FeedErrors        []string  `yaml:"feed_errors,omitempty"`
	Timestamp         time.Time `yaml:"timestamp"`
}

// WriteNewsFile saves a collection run to a YAML file.
func WriteNewsFile(path string, cfg types.CollectorConfig, out CollectOutput) error {
	nf := NewsFile{
		Config: NewsFileConfig{
			Feeds:    cfg.Feeds,
			Keywords: cfg.Keywords,
			MaxItems: cfg.MaxItems,
		},
		Items: out.Items,
		Summary: NewsSummary{
			Total:             len(out.Items),
			DuplicatesRemoved: out.DupsRemoved,
			FeedErrors:        out.FeedErrors,
			Timestamp:         time.Now(),
		},
	}

	data, err := yaml.Marshal(&nf)
	if err != nil {
		return fmt.Errorf("marshaling news file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadNewsFile loads a previously saved collection run from disk.
func ReadNewsFile(path string) (*NewsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading news file: %w", err)
	}
	var nf NewsFile
	if err := yaml.Unmarshal(data, &nf); err != nil {
		return nil, fmt.Errorf("parsing news file: %w", err)
	}
	return &nf, nil
}
