// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/thread-genius/pkg/types"
)

// Source fetches news items from a single feed. Each feed URL gets its own
// instance so failures stay isolated per feed.
type Source interface {
	Name() string
	Fetch(ctx context.Context, cfg types.CollectorConfig) ([]types.NewsItem, error)
}

// FeedSource reads an RSS 2.0 or Atom feed over HTTP.
type FeedSource struct {
	URL    string
	Client *http.Client
}

// Name returns the feed URL.
func (s *FeedSource) Name() string { return s.URL }

// Fetch downloads and parses the feed. Both RSS 2.0 (<rss><channel><item>)
// and Atom (<feed><entry>) documents are handled; the distinction is made
// by the root element.
func (s *FeedSource) Fetch(ctx context.Context, cfg types.CollectorConfig) ([]types.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
	}

	var doc feedDocument
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	switch doc.XMLName.Local {
	case "rss":
		return s.fromRSS(doc.Channel.Items), nil
	case "feed":
		return s.fromAtom(doc.Entries), nil
	default:
		return nil, fmt.Errorf("unrecognized feed root element <%s>", doc.XMLName.Local)
	}
}

func (s *FeedSource) fromRSS(items []rssItem) []types.NewsItem {
	var news []types.NewsItem
	for _, item := range items {
		n := types.NewsItem{
			Title:   strings.TrimSpace(item.Title),
			Summary: strings.TrimSpace(item.Description),
			Link:    strings.TrimSpace(item.Link),
			Source:  s.URL,
		}
		if t, ok := parseFeedTime(item.PubDate); ok {
			n.Published = t
		}
		news = append(news, n)
	}
	return news
}

func (s *FeedSource) fromAtom(entries []atomEntry) []types.NewsItem {
	var news []types.NewsItem
	for _, entry := range entries {
		n := types.NewsItem{
			Title:   strings.TrimSpace(entry.Title),
			Summary: strings.TrimSpace(firstNonEmpty(entry.Summary, entry.Content)),
			Link:    entry.link(),
			Source:  s.URL,
		}
		if t, ok := parseFeedTime(firstNonEmpty(entry.Published, entry.Updated)); ok {
			n.Published = t
		}
		news = append(news, n)
	}
	return news
}

// feedDocument covers both RSS and Atom roots; only one branch is
// populated depending on the document.
type feedDocument struct {
	XMLName xml.Name
	Channel rssChannel  `xml:"channel"`
	Entries []atomEntry `xml:"entry"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
	Links     []atomLink `xml:"link"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// link prefers the alternate link, falling back to the first one present.
func (e atomEntry) link() string {
	for _, l := range e.Links {
		if l.Rel == "alternate" || l.Rel == "" {
			return l.Href
		}
	}
	if len(e.Links) > 0 {
		return e.Links[0].Href
	}
	return ""
}

// feedTimeFormats lists timestamp layouts seen in the wild, most common first.
var feedTimeFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
}

func parseFeedTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range feedTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
