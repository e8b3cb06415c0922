// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/thread-genius/pkg/types"
)

// QueryOptions holds parameters for history queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over post text.
	Query string

	// Persona filters by persona name.
	Persona string

	// Status filters by lifecycle state (draft or published).
	Status string

	// MinScore drops posts below a composite threshold.
	MinScore float64

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Persona == "" && q.Status == "" && q.MinScore == 0
}

// Entry is one stored post with its lifecycle metadata.
type Entry struct {
	ID             int64              `json:"id" yaml:"id"`
	Persona        string             `json:"persona" yaml:"persona"`
	Text           string             `json:"text" yaml:"text"`
	TopicTag       string             `json:"topic_tag" yaml:"topic_tag"`
	PredictedStage types.Stage        `json:"predicted_stage" yaml:"predicted_stage"`
	StyleMode      types.StyleMode    `json:"style_mode" yaml:"style_mode"`
	Score          float64            `json:"score" yaml:"score"`
	Metrics        types.MetricScores `json:"metric_scores,omitempty" yaml:"metric_scores,omitempty"`
	Status         string             `json:"status" yaml:"status"`
	ThreadsPostID  string             `json:"threads_post_id,omitempty" yaml:"threads_post_id,omitempty"`
	CreatedAt      time.Time          `json:"created_at" yaml:"created_at"`
	PublishedAt    *time.Time         `json:"published_at,omitempty" yaml:"published_at,omitempty"`
}

// List queries the history with optional full-text search and structured
// filters. Full-text queries are ranked by relevance; otherwise results
// come back newest first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT p.rowid, p.persona, p.text, p.topic_tag, p.predicted_stage,
				p.style_mode, p.composite, p.metrics, p.status,
				p.threads_post_id, p.created_at, p.published_at
			FROM posts_fts
			JOIN posts p ON p.rowid = posts_fts.rowid
			WHERE posts_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT p.rowid, p.persona, p.text, p.topic_tag, p.predicted_stage,
				p.style_mode, p.composite, p.metrics, p.status,
				p.threads_post_id, p.created_at, p.published_at
			FROM posts p
			WHERE 1=1`)
	}

	if opts.Persona != "" {
		qb.WriteString(` AND p.persona = ?`)
		args = append(args, opts.Persona)
	}

	if opts.Status != "" {
		qb.WriteString(` AND p.status = ?`)
		args = append(args, opts.Status)
	}

	if opts.MinScore > 0 {
		qb.WriteString(` AND p.composite >= ?`)
		args = append(args, opts.MinScore)
	}

	if useFTS {
		qb.WriteString(` ORDER BY posts_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY p.created_at DESC, p.rowid DESC`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e           Entry
			stage       sql.NullString
			style       sql.NullString
			metricsJSON sql.NullString
			threadsID   sql.NullString
			createdAt   string
			publishedAt sql.NullString
		)

		if err := rows.Scan(
			&e.ID, &e.Persona, &e.Text, &e.TopicTag, &stage,
			&style, &e.Score, &metricsJSON, &e.Status,
			&threadsID, &createdAt, &publishedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if stage.Valid {
			e.PredictedStage = types.Stage(stage.String)
		}
		if style.Valid {
			e.StyleMode = types.StyleMode(style.String)
		}
		if metricsJSON.Valid {
			json.Unmarshal([]byte(metricsJSON.String), &e.Metrics)
		}
		if threadsID.Valid {
			e.ThreadsPostID = threadsID.String
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			e.CreatedAt = t
		}
		if publishedAt.Valid {
			if t, err := time.Parse(time.RFC3339, publishedAt.String); err == nil {
				e.PublishedAt = &t
			}
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// LatestEngagement returns the most recent insights snapshot for a post,
// or false when none has been recorded.
func (s *Store) LatestEngagement(ctx context.Context, id int64) (Engagement, bool, error) {
	var e Engagement
	err := s.db.QueryRowContext(ctx,
		`SELECT views, likes, replies, reposts, quotes
		 FROM engagement WHERE post_rowid = ?
		 ORDER BY fetched_at DESC, rowid DESC LIMIT 1`, id,
	).Scan(&e.Views, &e.Likes, &e.Replies, &e.Reposts, &e.Quotes)
	if err == sql.ErrNoRows {
		return Engagement{}, false, nil
	}
	if err != nil {
		return Engagement{}, false, fmt.Errorf("querying engagement for post %d: %w", id, err)
	}
	return e, true, nil
}
