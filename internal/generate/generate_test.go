// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/thread-genius/pkg/types"
)

// --- mock backend ---

type mockBackend struct {
	draftResponse string
	draftErr      error
	draftCalls    int

	humanizeErr   error
	humanizeCalls int
}

func (m *mockBackend) Draft(_ context.Context, _ types.PersonaConfig, _ string, _ int) (string, error) {
	m.draftCalls++
	return m.draftResponse, m.draftErr
}

func (m *mockBackend) Humanize(_ context.Context, _ types.PersonaConfig, draft types.Post, mode types.StyleMode) (string, error) {
	m.humanizeCalls++
	if m.humanizeErr != nil {
		return "", m.humanizeErr
	}
	rewritten := draft
	rewritten.Text = "Rewritten: " + draft.Text
	rewritten.StyleMode = mode
	data, _ := json.Marshal(rewritten)
	return string(data), nil
}

func testPersona() types.PersonaConfig {
	return types.PersonaConfig{
		Name:      "Professor Business",
		Specialty: "business and marketing",
		Tone:      "professional but easy to talk to",
	}
}

func genCfg() types.GenerationConfig {
	return types.GenerationConfig{
		AIConfig:   types.AIConfig{Model: "claude-3-haiku-20240307", MaxRetries: 1},
		Variations: 2,
	}
}

func draftJSON(texts ...string) string {
	var posts []types.Post
	for _, text := range texts {
		posts = append(posts, types.Post{
			Text:           text,
			TopicTag:       "#business",
			CTA:            "What would you try first?",
			PredictedStage: types.Stage2,
		})
	}
	data, _ := json.Marshal(posts)
	return string(data)
}

func TestGenerateRanksAndTruncates(t *testing.T) {
	backend := &mockBackend{
		draftResponse: draftJSON(
			"A strong tip with data. What do you think?",
			"A flat statement with nothing else.",
		),
	}

	posts, err := Generate(context.Background(), backend, testPersona(), "news context", nil, nil, genCfg(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("len(posts) = %d, want 2", len(posts))
	}
	if posts[0].Score < posts[1].Score {
		t.Errorf("posts not ranked: %v < %v", posts[0].Score, posts[1].Score)
	}
	if posts[0].Metrics == nil {
		t.Error("ranked post missing metric scores")
	}
	if backend.humanizeCalls != 0 {
		t.Errorf("humanize called %d times with two-pass disabled", backend.humanizeCalls)
	}
}

func TestGenerateTwoPassHumanize(t *testing.T) {
	backend := &mockBackend{
		draftResponse: draftJSON(
			"First idea. Which is worse?",
			"Second idea. Which is better?",
		),
	}
	cfg := genCfg()
	cfg.TwoPassHumanize = true

	posts, err := Generate(context.Background(), backend, testPersona(), "news", nil, nil, cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	// Each non-empty draft is rewritten in both registers.
	if backend.humanizeCalls != 4 {
		t.Errorf("humanize calls = %d, want 4", backend.humanizeCalls)
	}
	for _, p := range posts {
		if p.StyleMode != types.StyleCalm && p.StyleMode != types.StyleWarm {
			t.Errorf("post style mode = %q, want a humanize register", p.StyleMode)
		}
		if !strings.HasPrefix(p.Text, "Rewritten:") {
			t.Errorf("post text not rewritten: %q", p.Text)
		}
	}
}

func TestGenerateHumanizeFailureFallsBack(t *testing.T) {
	backend := &mockBackend{
		draftResponse: draftJSON("Original draft. Any thoughts?"),
		humanizeErr:   fmt.Errorf("model unavailable"),
	}
	cfg := genCfg()
	cfg.Variations = 1
	cfg.TwoPassHumanize = true

	posts, err := Generate(context.Background(), backend, testPersona(), "news", nil, nil, cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("len(posts) = %d, want 1", len(posts))
	}
	if !strings.Contains(posts[0].Text, "Original draft") {
		t.Errorf("fallback lost the draft: %q", posts[0].Text)
	}
	if posts[0].StyleMode == "" {
		t.Error("fallback should still record the attempted style mode")
	}
}

func TestGenerateRetriesDraftPass(t *testing.T) {
	restore := backoffBase
	backoffBase = time.Millisecond
	defer func() { backoffBase = restore }()

	backend := &mockBackend{draftErr: fmt.Errorf("HTTP 529")}
	cfg := genCfg()
	cfg.MaxRetries = 2

	_, err := Generate(context.Background(), backend, testPersona(), "news", nil, nil, cfg, &bytes.Buffer{})
	if err == nil {
		t.Fatal("Generate() should fail when every attempt errors")
	}
	if backend.draftCalls != 3 {
		t.Errorf("draft attempts = %d, want 3 (1 + 2 retries)", backend.draftCalls)
	}
	if !strings.Contains(err.Error(), "HTTP 529") {
		t.Errorf("error should wrap the last failure: %v", err)
	}
}

func TestGenerateRejectsInvalidPersona(t *testing.T) {
	backend := &mockBackend{draftResponse: draftJSON("x?")}
	_, err := Generate(context.Background(), backend, types.PersonaConfig{}, "news", nil, nil, genCfg(), &bytes.Buffer{})
	if err == nil {
		t.Fatal("Generate() accepted an empty persona")
	}
	if backend.draftCalls != 0 {
		t.Error("backend called despite invalid persona")
	}
}

func TestWriteAndReadBatch(t *testing.T) {
	cfg := genCfg()
	cfg.OutputDir = t.TempDir()

	batch := types.PostBatch{
		Persona: "Professor Business",
		Created: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Posts: []types.Post{
			{Text: "Saved post?", TopicTag: "#business", Score: 75},
		},
	}

	path, err := WriteBatch(cfg, batch)
	if err != nil {
		t.Fatalf("WriteBatch() error: %v", err)
	}
	if !strings.Contains(path, "professor-business-20260302-100000.yaml") {
		t.Errorf("batch path = %q", path)
	}

	loaded, err := ReadBatch(path)
	if err != nil {
		t.Fatalf("ReadBatch() error: %v", err)
	}
	if loaded.Persona != batch.Persona || len(loaded.Posts) != 1 {
		t.Errorf("ReadBatch() = %+v", loaded)
	}
	if loaded.Posts[0].Score != 75 {
		t.Errorf("Score = %v, want 75", loaded.Posts[0].Score)
	}
}

func TestReadBatchRejectsInvalidPost(t *testing.T) {
	cfg := genCfg()
	cfg.OutputDir = t.TempDir()

	batch := types.PostBatch{
		Persona: "x",
		Created: time.Now(),
		Posts:   []types.Post{{Text: strings.Repeat("a", 600)}},
	}
	path, err := WriteBatch(cfg, batch)
	if err != nil {
		t.Fatalf("WriteBatch() error: %v", err)
	}
	if _, err := ReadBatch(path); err == nil {
		t.Error("ReadBatch() accepted an overlong post")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Professor Business", "professor-business"},
		{"Coach Fit!", "coach-fit"},
		{"  spaced  out  ", "spaced-out"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
