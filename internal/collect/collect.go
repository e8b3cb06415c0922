// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect gathers news items from RSS/Atom feeds and prepares them
// as trend context for post generation.
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/pdiddy/thread-genius/pkg/types"
)

// CollectOutput holds the collected items and per-feed failure notes.
type CollectOutput struct {
	Items       []types.NewsItem
	DupsRemoved int
	FeedErrors  []string
}

// Collect fans the fetch out to all sources concurrently, filters by
// keywords, deduplicates, sorts newest-first, and truncates to MaxItems.
// A failing feed produces a warning on w and is skipped; collection only
// fails when no feeds are configured.
func Collect(ctx context.Context, sources []Source, cfg types.CollectorConfig, w io.Writer) (CollectOutput, error) {
	if len(sources) == 0 {
		return CollectOutput{}, fmt.Errorf("no feeds configured: add collector.feeds to the config")
	}

	type feedResult struct {
		items []types.NewsItem
		err   error
		name  string
	}

	ch := make(chan feedResult, len(sources))
	var wg sync.WaitGroup

	for _, s := range sources {
		wg.Add(1)
		go func(s Source) {
			defer wg.Done()
			items, err := s.Fetch(ctx, cfg)
			ch <- feedResult{items: items, err: err, name: s.Name()}
		}(s)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.NewsItem
	var feedErrors []string
	for fr := range ch {
		if fr.err != nil {
			msg := fmt.Sprintf("%s: %v", fr.name, fr.err)
			feedErrors = append(feedErrors, msg)
			fmt.Fprintf(w, "warning: feed %s failed: %v\n", fr.name, fr.err)
			continue
		}
		all = append(all, fr.items...)
	}

	if len(cfg.Keywords) > 0 {
		all = filterByKeywords(all, cfg.Keywords)
	}

	deduped, removed := deduplicate(all)

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Published.After(deduped[j].Published)
	})

	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = 10
	}
	if len(deduped) > maxItems {
		deduped = deduped[:maxItems]
	}

	return CollectOutput{
		Items:       deduped,
		DupsRemoved: removed,
		FeedErrors:  feedErrors,
	}, nil
}

// Sources builds a FeedSource per configured feed URL.
func Sources(cfg types.CollectorConfig, client *http.Client) []Source {
	sources := make([]Source, 0, len(cfg.Feeds))
	for _, url := range cfg.Feeds {
		sources = append(sources, &FeedSource{URL: url, Client: client})
	}
	return sources
}

// filterByKeywords keeps items whose title or summary contains at least one
// keyword, case-insensitively.
func filterByKeywords(items []types.NewsItem, keywords []string) []types.NewsItem {
	var kept []types.NewsItem
	for _, item := range items {
		haystack := strings.ToLower(item.Title + " " + item.Summary)
		for _, kw := range keywords {
			if strings.Contains(haystack, strings.ToLower(kw)) {
				kept = append(kept, item)
				break
			}
		}
	}
	return kept
}

// deduplicate merges items that share a link or a normalized title. The
// first occurrence wins; later duplicates only fill empty fields.
func deduplicate(items []types.NewsItem) ([]types.NewsItem, int) {
	seen := make(map[string]int) // dedup key → index in deduped
	var deduped []types.NewsItem
	removed := 0

	for _, item := range items {
		linkKey := ""
		if item.Link != "" {
			linkKey = "link:" + item.Link
		}
		titleKey := "title:" + normalizeTitle(item.Title)

		if idx, ok := lookup(seen, linkKey, titleKey); ok {
			mergeInto(&deduped[idx], item)
			removed++
			continue
		}

		idx := len(deduped)
		deduped = append(deduped, item)
		if linkKey != "" {
			seen[linkKey] = idx
		}
		if titleKey != "title:" {
			seen[titleKey] = idx
		}
	}
	return deduped, removed
}

func lookup(seen map[string]int, keys ...string) (int, bool) {
	for _, key := range keys {
		if key == "" || key == "title:" {
			continue
		}
		if idx, ok := seen[key]; ok {
			return idx, true
		}
	}
	return 0, false
}

// mergeInto fills empty fields of dst from src and keeps the earlier
// non-zero publication time.
func mergeInto(dst *types.NewsItem, src types.NewsItem) {
	if dst.Summary == "" && src.Summary != "" {
		dst.Summary = src.Summary
	}
	if dst.Link == "" && src.Link != "" {
		dst.Link = src.Link
	}
	if dst.Published.IsZero() && !src.Published.IsZero() {
		dst.Published = src.Published
	}
	if dst.Source != src.Source && !strings.Contains(dst.Source, src.Source) {
		dst.Source = dst.Source + "," + src.Source
	}
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// stopwords are excluded from trending-topic extraction.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "on": true, "for": true, "with": true, "is": true,
	"are": true, "at": true, "by": true, "from": true, "as": true, "its": true,
	"it": true, "this": true, "that": true, "new": true, "how": true,
	"what": true, "why": true, "after": true, "over": true, "will": true,
	"says": true, "be": true, "has": true, "have": true, "not": true,
}

// TrendingTopics extracts up to limit topic labels from item titles by word
// frequency. Words must appear in at least two titles to count as a trend.
func TrendingTopics(items []types.NewsItem, limit int) []string {
	if limit <= 0 {
		limit = 8
	}

	counts := make(map[string]int)
	for _, item := range items {
		seenInTitle := make(map[string]bool)
		for _, word := range strings.Fields(normalizeTitle(item.Title)) {
			if len(word) < 3 || stopwords[word] || seenInTitle[word] {
				continue
			}
			seenInTitle[word] = true
			counts[word]++
		}
	}

	var topics []string
	for word, n := range counts {
		if n >= 2 {
			topics = append(topics, word)
		}
	}

	sort.Slice(topics, func(i, j int) bool {
		if counts[topics[i]] != counts[topics[j]] {
			return counts[topics[i]] > counts[topics[j]]
		}
		return topics[i] < topics[j]
	})

	if len(topics) > limit {
		topics = topics[:limit]
	}
	return topics
}

// FormatPrompt renders a news item into the context block handed to the
// generation prompt. Summaries are capped to keep the prompt compact.
func FormatPrompt(item types.NewsItem) string {
	summary := item.Summary
	if len(summary) > 200 {
		summary = summary[:200]
	}
	published := "unknown"
	if !item.Published.IsZero() {
		published = item.Published.Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("[News]\nTitle: %s\nSummary: %s\nSource: %s\nPublished: %s\n",
		item.Title, summary, item.Link, published)
}

// FormatTable writes items as a human-readable table to w.
func FormatTable(out CollectOutput, w io.Writer) {
	if len(out.Items) == 0 {
		fmt.Fprintln(w, "No news items found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-16s  %s\n", "Rank", "Title", "Published", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, item := range out.Items {
		title := item.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		published := ""
		if !item.Published.IsZero() {
			published = item.Published.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-16s  %s\n", i+1, title, published, item.Source)
	}

	fmt.Fprintf(w, "\n%d items", len(out.Items))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes items as indented JSON to w.
func FormatJSON(out CollectOutput, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Items)
}
