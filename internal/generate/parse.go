// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/thread-genius/pkg/types"
)

const fallbackTopicTag = "#business"

var (
	jsonArrayPattern  = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)
	jsonObjectPattern = regexp.MustCompile(`(?s)\{\s*".*\}`)
	fencedPattern     = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	postMarkerPattern = regexp.MustCompile(`(?mi)^\s*post\s*\d+\s*[:.]?`)
)

// ParsePosts extracts a list of candidate posts from a model response.
// It tries, in order: a bare JSON array, a fenced json block, and finally
// plain-text recovery. The result always has exactly expectedCount posts;
// recovery pads or trims as needed so a sloppy response never aborts a run.
func ParsePosts(text string, expectedCount int) []types.Post {
	if expectedCount <= 0 {
		expectedCount = 5
	}
	trimmed := strings.TrimSpace(text)

	if m := jsonArrayPattern.FindString(trimmed); m != "" {
		var posts []types.Post
		if err := json.Unmarshal([]byte(m), &posts); err == nil && len(posts) > 0 {
			return capPosts(posts, expectedCount)
		}
	}

	if m := fencedPattern.FindStringSubmatch(trimmed); m != nil {
		var posts []types.Post
		if err := json.Unmarshal([]byte(m[1]), &posts); err == nil && len(posts) > 0 {
			return capPosts(posts, expectedCount)
		}
		var single types.Post
		if err := json.Unmarshal([]byte(m[1]), &single); err == nil && single.Text != "" {
			return capPosts([]types.Post{single}, expectedCount)
		}
	}

	return fallbackParse(trimmed, expectedCount)
}

// ParsePost extracts a single post object from a humanize response.
// Returns false when no usable JSON object is present.
func ParsePost(text string) (types.Post, bool) {
	m := jsonObjectPattern.FindString(strings.TrimSpace(text))
	if m == "" {
		return types.Post{}, false
	}
	var post types.Post
	if err := json.Unmarshal([]byte(m), &post); err != nil {
		return types.Post{}, false
	}
	return post, true
}

// capPosts truncates text to the platform limit and the list to n.
func capPosts(posts []types.Post, n int) []types.Post {
	for i := range posts {
		posts[i].Text = truncateRunes(posts[i].Text, types.MaxPostLength)
	}
	if len(posts) > n {
		posts = posts[:n]
	}
	return posts
}

// fallbackParse recovers posts from a plain-text response. It splits on
// "Post N" markers, then blank-line blocks, then fixed-width chunks, and
// pads with empty posts to hit the expected count.
func fallbackParse(text string, expectedCount int) []types.Post {
	if text == "" {
		return paddedPosts(nil, expectedCount)
	}

	chunks := splitChunks(text, expectedCount)

	var posts []types.Post
	for _, c := range chunks {
		posts = append(posts, recoveredPost(c))
	}
	return paddedPosts(posts, expectedCount)
}

// nonEmpty trims each part and drops the blank ones.
func nonEmpty(parts []string) []string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitChunks(text string, expectedCount int) []string {
	parts := nonEmpty(postMarkerPattern.Split(text, -1))
	if len(parts) >= expectedCount {
		return parts[:expectedCount]
	}

	blocks := nonEmpty(strings.Split(text, "\n\n"))
	if len(blocks) >= expectedCount {
		return blocks[:expectedCount]
	}

	// Last resort: slice the raw text into even chunks.
	step := len(text) / expectedCount
	if step < 180 {
		step = 180
	}
	if step > types.MaxPostLength {
		step = types.MaxPostLength
	}
	var chunks []string
	for i := 0; i < len(text); i += step {
		end := i + step
		if end > len(text) {
			end = len(text)
		}
		if c := strings.TrimSpace(text[i:end]); c != "" {
			chunks = append(chunks, c)
		}
	}
	if len(chunks) > expectedCount {
		chunks = chunks[:expectedCount]
	}
	return chunks
}

// recoveredPost builds a Post from a raw text chunk, ensuring it ends with
// a question so the conversation hook survives recovery.
func recoveredPost(text string) types.Post {
	text = EnsureQuestion(truncateRunes(text, types.MaxPostLength))
	return types.Post{
		Text:                text,
		TopicTag:            fallbackTopicTag,
		PredictedStage:      types.Stage2,
		ConversationTrigger: "includes a question",
		Reasoning:           "recovered from a non-JSON response",
		StyleMode:           types.StyleNone,
	}
}

func paddedPosts(posts []types.Post, n int) []types.Post {
	for len(posts) < n {
		posts = append(posts, types.Post{
			TopicTag:       fallbackTopicTag,
			PredictedStage: types.Stage2,
			Reasoning:      "empty response placeholder",
			StyleMode:      types.StyleNone,
		})
	}
	if len(posts) > n {
		posts = posts[:n]
	}
	return posts
}

// EnsureQuestion appends a closing question when the text has none.
// Empty text is returned as-is.
func EnsureQuestion(text string) string {
	if text == "" || strings.Contains(text, "?") {
		return text
	}
	const closer = "\n\nWhere do you get stuck with this?"
	return truncateRunes(truncateRunes(text, types.MaxPostLength-len(closer))+closer, types.MaxPostLength)
}

// truncateRunes cuts s to at most n runes without splitting a character.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// ValidatePost rejects posts that violate the platform constraints the
// prompts promise. Callers loading operator-edited batches use it before
// scoring or publishing.
func ValidatePost(p types.Post) error {
	if len([]rune(p.Text)) > types.MaxPostLength {
		return fmt.Errorf("post text exceeds %d characters", types.MaxPostLength)
	}
	if strings.Count(p.TopicTag, "#") > 1 {
		return fmt.Errorf("post carries more than one topic tag: %q", p.TopicTag)
	}
	return nil
}
