// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/thread-genius/pkg/types"
)

// --- mock source ---

type mockSource struct {
	name  string
	items []types.NewsItem
	err   error
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Fetch(_ context.Context, _ types.CollectorConfig) ([]types.NewsItem, error) {
	return m.items, m.err
}

func testCfg() types.CollectorConfig {
	return types.CollectorConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		MaxItems: 10,
	}
}

func newsAt(title string, age time.Duration) types.NewsItem {
	return types.NewsItem{
		Title:     title,
		Link:      "https://example.com/" + strings.ReplaceAll(title, " ", "-"),
		Published: time.Now().Add(-age),
		Source:    "feed-a",
	}
}

// --- Collect ---

func TestCollectSortsNewestFirst(t *testing.T) {
	src := &mockSource{name: "feed-a", items: []types.NewsItem{
		newsAt("old story", 48 * time.Hour),
		newsAt("fresh story", time.Hour),
		newsAt("middle story", 12 * time.Hour),
	}}

	out, err := Collect(context.Background(), []Source{src}, testCfg(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	got := []string{out.Items[0].Title, out.Items[1].Title, out.Items[2].Title}
	want := []string{"fresh story", "middle story", "old story"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("items[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCollectContinuesPastFailedFeed(t *testing.T) {
	good := &mockSource{name: "good", items: []types.NewsItem{newsAt("works", time.Hour)}}
	bad := &mockSource{name: "bad", err: fmt.Errorf("connection refused")}

	var buf bytes.Buffer
	out, err := Collect(context.Background(), []Source{good, bad}, testCfg(), &buf)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if len(out.Items) != 1 {
		t.Errorf("len(items) = %d, want 1", len(out.Items))
	}
	if len(out.FeedErrors) != 1 {
		t.Errorf("len(FeedErrors) = %d, want 1", len(out.FeedErrors))
	}
	if !strings.Contains(buf.String(), "warning: feed bad failed") {
		t.Errorf("missing warning in output: %q", buf.String())
	}
}

func TestCollectNoFeeds(t *testing.T) {
	_, err := Collect(context.Background(), nil, testCfg(), &bytes.Buffer{})
	if err == nil {
		t.Fatal("Collect() with no sources should fail")
	}
}

func TestCollectKeywordFilter(t *testing.T) {
	src := &mockSource{name: "feed-a", items: []types.NewsItem{
		newsAt("AI model released", time.Hour),
		newsAt("local sports roundup", 2 * time.Hour),
	}}

	cfg := testCfg()
	cfg.Keywords = []string{"ai"}

	out, err := Collect(context.Background(), []Source{src}, cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if len(out.Items) != 1 || !strings.Contains(out.Items[0].Title, "AI") {
		t.Errorf("keyword filter kept %v", out.Items)
	}
}

func TestCollectRespectsMaxItems(t *testing.T) {
	var items []types.NewsItem
	for i := 0; i < 20; i++ {
		items = append(items, newsAt(fmt.Sprintf("story %d", i), time.Duration(i)*time.Hour))
	}
	src := &mockSource{name: "feed-a", items: items}

	cfg := testCfg()
	cfg.MaxItems = 5

	out, err := Collect(context.Background(), []Source{src}, cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if len(out.Items) != 5 {
		t.Errorf("len(items) = %d, want 5", len(out.Items))
	}
}

// --- Deduplication ---

func TestDeduplicateByLink(t *testing.T) {
	items := []types.NewsItem{
		{Title: "Story A", Link: "https://example.com/a", Source: "feed-a"},
		{Title: "Story A syndicated", Link: "https://example.com/a", Source: "feed-b", Summary: "details"},
		{Title: "Story B", Link: "https://example.com/b", Source: "feed-a"},
	}

	deduped, removed := deduplicate(items)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(deduped) != 2 {
		t.Fatalf("len(deduped) = %d, want 2", len(deduped))
	}
	// Merged item should pick up the summary and combine sources.
	if deduped[0].Summary != "details" {
		t.Errorf("merged summary = %q, want %q", deduped[0].Summary, "details")
	}
	if !strings.Contains(deduped[0].Source, "feed-b") {
		t.Errorf("merged source = %q, should contain both feeds", deduped[0].Source)
	}
}

func TestDeduplicateByTitle(t *testing.T) {
	items := []types.NewsItem{
		{Title: "Markets Rally On Earnings", Link: "https://a.example/1"},
		{Title: "markets rally, on earnings!", Link: "https://b.example/2"},
	}

	deduped, removed := deduplicate(items)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(deduped) != 1 {
		t.Errorf("len(deduped) = %d, want 1", len(deduped))
	}
}

// --- Trending topics ---

func TestTrendingTopics(t *testing.T) {
	items := []types.NewsItem{
		{Title: "Quantum breakthrough announced"},
		{Title: "Quantum computing firm raises funding"},
		{Title: "Sports roundup for the weekend"},
	}

	topics := TrendingTopics(items, 5)
	if len(topics) == 0 || topics[0] != "quantum" {
		t.Errorf("TrendingTopics() = %v, want [quantum ...]", topics)
	}
	for _, topic := range topics {
		if stopwords[topic] {
			t.Errorf("stopword %q leaked into topics", topic)
		}
	}
}

func TestTrendingTopicsCountsTitleOnce(t *testing.T) {
	// A word repeated inside one title is not a trend.
	items := []types.NewsItem{
		{Title: "crypto crypto crypto"},
		{Title: "weather report"},
	}
	topics := TrendingTopics(items, 5)
	if len(topics) != 0 {
		t.Errorf("TrendingTopics() = %v, want none", topics)
	}
}

// --- Prompt formatting ---

func TestFormatPrompt(t *testing.T) {
	item := types.NewsItem{
		Title:     "Big News",
		Summary:   strings.Repeat("x", 300),
		Link:      "https://example.com/big",
		Published: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}

	got := FormatPrompt(item)
	if !strings.Contains(got, "Title: Big News") {
		t.Errorf("FormatPrompt() missing title: %q", got)
	}
	if strings.Contains(got, strings.Repeat("x", 201)) {
		t.Error("FormatPrompt() did not cap the summary at 200 characters")
	}
	if !strings.Contains(got, "2026-03-01 09:30") {
		t.Errorf("FormatPrompt() missing timestamp: %q", got)
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(CollectOutput{}, &buf)
	if !strings.Contains(buf.String(), "No news items found.") {
		t.Errorf("FormatTable() = %q", buf.String())
	}
}
