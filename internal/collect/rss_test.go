// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const rssSample = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <item>
      <title>First headline</title>
      <description>Summary of the first story.</description>
      <link>https://example.com/first</link>
      <pubDate>Mon, 02 Mar 2026 09:30:00 +0000</pubDate>
    </item>
    <item>
      <title>Second headline</title>
      <description>Summary of the second story.</description>
      <link>https://example.com/second</link>
      <pubDate>Sun, 01 Mar 2026 18:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

const atomSample = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Atom Feed</title>
  <entry>
    <title>Atom headline</title>
    <summary>Atom summary.</summary>
    <link rel="alternate" href="https://example.com/atom-entry"/>
    <published>2026-03-02T09:30:00Z</published>
  </entry>
</feed>`

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(body))
	}))
}

func TestFeedSourceRSS(t *testing.T) {
	srv := serveFeed(t, rssSample)
	defer srv.Close()

	src := &FeedSource{URL: srv.URL, Client: srv.Client()}
	items, err := src.Fetch(context.Background(), testCfg())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}

	first := items[0]
	if first.Title != "First headline" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Link != "https://example.com/first" {
		t.Errorf("Link = %q", first.Link)
	}
	want := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	if !first.Published.Equal(want) {
		t.Errorf("Published = %v, want %v", first.Published, want)
	}
	if first.Source != srv.URL {
		t.Errorf("Source = %q, want feed URL", first.Source)
	}
}

func TestFeedSourceAtom(t *testing.T) {
	srv := serveFeed(t, atomSample)
	defer srv.Close()

	src := &FeedSource{URL: srv.URL, Client: srv.Client()}
	items, err := src.Fetch(context.Background(), testCfg())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Title != "Atom headline" {
		t.Errorf("Title = %q", items[0].Title)
	}
	if items[0].Link != "https://example.com/atom-entry" {
		t.Errorf("Link = %q", items[0].Link)
	}
	if items[0].Summary != "Atom summary." {
		t.Errorf("Summary = %q", items[0].Summary)
	}
}

func TestFeedSourceHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := &FeedSource{URL: srv.URL, Client: srv.Client()}
	if _, err := src.Fetch(context.Background(), testCfg()); err == nil {
		t.Error("Fetch() should fail on HTTP 500")
	}
}

func TestFeedSourceBadRoot(t *testing.T) {
	srv := serveFeed(t, `<?xml version="1.0"?><html><body>not a feed</body></html>`)
	defer srv.Close()

	src := &FeedSource{URL: srv.URL, Client: srv.Client()}
	if _, err := src.Fetch(context.Background(), testCfg()); err == nil {
		t.Error("Fetch() should reject a non-feed document")
	}
}

func TestFeedSourceSetsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(rssSample))
	}))
	defer srv.Close()

	src := &FeedSource{URL: srv.URL, Client: srv.Client()}
	if _, err := src.Fetch(context.Background(), testCfg()); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if gotUA != "test/0.1" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "test/0.1")
	}
}

func TestParseFeedTimeFormats(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"Mon, 02 Mar 2026 09:30:00 +0000", true},
		{"2026-03-02T09:30:00Z", true},
		{"Mon, 2 Mar 2026 09:30:00 -0500", true},
		{"", false},
		{"not a date", false},
	}
	for _, tt := range tests {
		if _, ok := parseFeedTime(tt.in); ok != tt.ok {
			t.Errorf("parseFeedTime(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}
