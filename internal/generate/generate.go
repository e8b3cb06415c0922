// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate drafts candidate Threads posts via the Claude API,
// humanizes them in a second pass, and scores the results.
package generate

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/thread-genius/internal/score"
	"github.com/pdiddy/thread-genius/pkg/types"
)

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Generate runs the full generation flow for one persona: draft N
// candidates, optionally humanize each in two registers, evaluate and
// score everything against the rubric, and return the top N ranked posts.
// trending feeds the trend-relevance metric; progress goes to w.
func Generate(ctx context.Context, backend AIBackend, persona types.PersonaConfig, news string, weights types.ScoringWeights, trending []string, cfg types.GenerationConfig, w io.Writer) ([]types.Post, error) {
	if err := persona.Validate(); err != nil {
		return nil, err
	}

	count := cfg.Variations
	if count <= 0 {
		count = 5
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	fmt.Fprintf(w, "drafting %d candidates as %s\n", count, persona.Name)

	raw, err := callWithRetry(ctx, maxRetries, func() (string, error) {
		return backend.Draft(ctx, persona, news, count)
	})
	if err != nil {
		return nil, fmt.Errorf("draft pass: %w", err)
	}

	posts := ParsePosts(raw, count)

	if cfg.TwoPassHumanize {
		posts = humanizeAll(ctx, backend, persona, posts, cfg, w)
	}

	ranked, err := score.ScorePosts(posts, weights, trending)
	if err != nil {
		return nil, err
	}

	if len(ranked) > count {
		ranked = ranked[:count]
	}
	fmt.Fprintf(w, "scored %d posts, best %.1f\n", len(ranked), ranked[0].Score)
	return ranked, nil
}

// humanizeAll rewrites every draft in both registers and keeps a mix
// according to the calm/warm priority. A failed rewrite falls back to the
// original draft so the pipeline never loses a candidate.
func humanizeAll(ctx context.Context, backend AIBackend, persona types.PersonaConfig, posts []types.Post, cfg types.GenerationConfig, w io.Writer) []types.Post {
	calmQuota, warmQuota := 2, 3
	if cfg.CalmPriority {
		calmQuota, warmQuota = 4, 1
	}

	var calm, warm []types.Post
	for i, p := range posts {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		fmt.Fprintf(w, "humanizing candidate %d\n", i+1)
		calm = append(calm, humanizeOne(ctx, backend, persona, p, types.StyleCalm))
		warm = append(warm, humanizeOne(ctx, backend, persona, p, types.StyleWarm))
	}

	if len(calm) > calmQuota {
		calm = calm[:calmQuota]
	}
	if len(warm) > warmQuota {
		warm = warm[:warmQuota]
	}
	mixed := append(calm, warm...)
	if len(mixed) == 0 {
		return posts
	}
	return mixed
}

// humanizeOne applies a single rewrite. The topic tag is pinned to the
// draft's tag, the text is capped, and a missing closing question is
// repaired; all of these guard against the model drifting from the prompt.
func humanizeOne(ctx context.Context, backend AIBackend, persona types.PersonaConfig, draft types.Post, mode types.StyleMode) types.Post {
	raw, err := backend.Humanize(ctx, persona, draft, mode)
	if err != nil {
		draft.StyleMode = mode
		return draft
	}

	rewritten, ok := ParsePost(raw)
	if !ok || strings.TrimSpace(rewritten.Text) == "" {
		draft.StyleMode = mode
		return draft
	}

	if draft.TopicTag != "" {
		rewritten.TopicTag = draft.TopicTag
	}
	rewritten.Text = EnsureQuestion(truncateRunes(rewritten.Text, types.MaxPostLength))
	rewritten.StyleMode = mode
	return rewritten
}

// callWithRetry calls fn with exponential backoff between attempts.
func callWithRetry(ctx context.Context, maxRetries int, fn func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// WriteBatch saves a generation run to cfg.OutputDir as a timestamped YAML
// file and returns the path.
func WriteBatch(cfg types.GenerationConfig, batch types.PostBatch) (string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.yaml", slugify(batch.Persona), batch.Created.Format("20060102-150405"))
	path := filepath.Join(cfg.OutputDir, name)

	data, err := yaml.Marshal(&batch)
	if err != nil {
		return "", fmt.Errorf("marshaling post batch: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing post batch: %w", err)
	}
	return path, nil
}

// ReadBatch loads a saved post batch, validating every post against the
// platform constraints.
func ReadBatch(path string) (*types.PostBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading post batch: %w", err)
	}
	var batch types.PostBatch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parsing post batch: %w", err)
	}
	for i, p := range batch.Posts {
		if err := ValidatePost(p); err != nil {
			return nil, fmt.Errorf("post %d: %w", i+1, err)
		}
	}
	return &batch, nil
}

// slugify lowercases a name and replaces runs of non-alphanumerics with
// hyphens, for use in file names.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
