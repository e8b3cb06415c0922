// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists generated and published posts in a local
// SQLite database so past output can be searched before reposting a
// near-duplicate and engagement can be tracked over time.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/thread-genius/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "threads.db"
)

// Post lifecycle states.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Store manages the post history SQLite database.
type Store struct {
	db         *sql.DB
	historyDir string
	maxResults int
}

// NewStore opens or creates the history database at
// historyDir/index/threads.db, creating the schema when missing.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.HistoryDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		historyDir: cfg.HistoryDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS posts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			persona TEXT NOT NULL,
			text TEXT NOT NULL,
			topic_tag TEXT,
			predicted_stage TEXT,
			style_mode TEXT,
			composite REAL,
			metrics TEXT,
			status TEXT NOT NULL DEFAULT 'draft',
			threads_post_id TEXT,
			created_at TEXT NOT NULL,
			published_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_persona ON posts(persona)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_status ON posts(status)`,
		`CREATE TABLE IF NOT EXISTS engagement (
			post_rowid INTEGER NOT NULL REFERENCES posts(rowid),
			views INTEGER,
			likes INTEGER,
			replies INTEGER,
			reposts INTEGER,
			quotes INTEGER,
			fetched_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_engagement_post ON engagement(post_rowid)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='posts_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE posts_fts USING fts5(text, content=posts, content_rowid=rowid)`,
			`CREATE TRIGGER posts_ai AFTER INSERT ON posts BEGIN
				INSERT INTO posts_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
			`CREATE TRIGGER posts_ad AFTER DELETE ON posts BEGIN
				INSERT INTO posts_fts(posts_fts, rowid, text) VALUES('delete', old.rowid, old.text);
			END`,
			`CREATE TRIGGER posts_au AFTER UPDATE ON posts BEGIN
				INSERT INTO posts_fts(posts_fts, rowid, text) VALUES('delete', old.rowid, old.text);
				INSERT INTO posts_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Record stores one post as a draft and returns its row ID.
func (s *Store) Record(ctx context.Context, persona string, post types.Post) (int64, error) {
	metricsJSON, _ := json.Marshal(post.Metrics)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (persona, text, topic_tag, predicted_stage, style_mode,
			composite, metrics, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		persona, post.Text, post.TopicTag, string(post.PredictedStage), string(post.StyleMode),
		post.Score, string(metricsJSON), StatusDraft,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting post: %w", err)
	}
	return res.LastInsertId()
}

// RecordBatch stores every post in a generation batch, printing one
// status line per post. Individual failures are reported and skipped.
func (s *Store) RecordBatch(ctx context.Context, batch types.PostBatch, w io.Writer) (int, error) {
	var recorded int
	for i, post := range batch.Posts {
		select {
		case <-ctx.Done():
			return recorded, ctx.Err()
		default:
		}

		id, err := s.Record(ctx, batch.Persona, post)
		if err != nil {
			fmt.Fprintf(w, "failed  post %d: %v\n", i+1, err)
			continue
		}
		fmt.Fprintf(w, "recorded post %d as #%d (score %.1f)\n", i+1, id, post.Score)
		recorded++
	}
	return recorded, nil
}

// MarkPublished transitions a draft to published and stores its Threads
// post ID.
func (s *Store) MarkPublished(ctx context.Context, id int64, threadsPostID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE posts SET status = ?, threads_post_id = ?, published_at = ? WHERE rowid = ?`,
		StatusPublished, threadsPostID, time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating post %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update of post %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("post %d not found", id)
	}
	return nil
}

// Engagement is one insights snapshot for a published post.
type Engagement struct {
	Views   int64 `json:"views" yaml:"views"`
	Likes   int64 `json:"likes" yaml:"likes"`
	Replies int64 `json:"replies" yaml:"replies"`
	Reposts int64 `json:"reposts" yaml:"reposts"`
	Quotes  int64 `json:"quotes" yaml:"quotes"`
}

// RecordEngagement appends an insights snapshot for a post. Snapshots
// are kept, not overwritten, so engagement growth stays visible.
func (s *Store) RecordEngagement(ctx context.Context, id int64, e Engagement) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM posts WHERE rowid = ?`, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("looking up post %d: %w", id, err)
	}
	if exists == 0 {
		return fmt.Errorf("post %d not found", id)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO engagement (post_rowid, views, likes, replies, reposts, quotes, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, e.Views, e.Likes, e.Replies, e.Reposts, e.Quotes,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting engagement for post %d: %w", id, err)
	}
	return nil
}

// FindByThreadsID returns the row ID of the post published under the
// given Threads post ID.
func (s *Store) FindByThreadsID(ctx context.Context, threadsPostID string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT rowid FROM posts WHERE threads_post_id = ?`, threadsPostID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("no post published as %s", threadsPostID)
	}
	if err != nil {
		return 0, fmt.Errorf("looking up Threads post %s: %w", threadsPostID, err)
	}
	return id, nil
}
