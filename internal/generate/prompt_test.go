// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/thread-genius/pkg/types"
)

// claudeHandler fakes the Messages API, capturing the request for assertions.
func claudeHandler(t *testing.T, captured *claudeRequest, reply string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") == "" {
			http.Error(w, "missing api key", http.StatusUnauthorized)
			return
		}
		if r.Header.Get("anthropic-version") == "" {
			http.Error(w, "missing version header", http.StatusBadRequest)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := claudeResponse{Content: []claudeContent{{Type: "text", Text: reply}}}
		json.NewEncoder(w).Encode(resp)
	}
}

func withFakeClaude(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	restore := claudeAPIURL
	claudeAPIURL = srv.URL
	t.Cleanup(func() {
		claudeAPIURL = restore
		srv.Close()
	})
	return srv
}

func TestClaudeBackendDraft(t *testing.T) {
	var captured claudeRequest
	srv := withFakeClaude(t, claudeHandler(t, &captured, `[{"post_text":"hi?"}]`))

	backend := &ClaudeBackend{
		APIKey:           "test-key",
		Model:            "claude-3-haiku-20240307",
		Client:           srv.Client(),
		DraftTemperature: 0.7,
	}

	out, err := backend.Draft(context.Background(), testPersona(), "[News] Title: something", 5)
	if err != nil {
		t.Fatalf("Draft() error: %v", err)
	}
	if out != `[{"post_text":"hi?"}]` {
		t.Errorf("Draft() = %q", out)
	}

	if captured.Model != "claude-3-haiku-20240307" {
		t.Errorf("model = %q", captured.Model)
	}
	if captured.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", captured.Temperature)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", captured.Messages)
	}

	prompt := captured.Messages[0].Content
	for _, want := range []string{
		"Professor Business",
		"[News] Title: something",
		"produce 5 post candidates",
		"Exactly one topic tag",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("draft prompt missing %q", want)
		}
	}
}

func TestClaudeBackendHumanize(t *testing.T) {
	var captured claudeRequest
	srv := withFakeClaude(t, claudeHandler(t, &captured, `{"post_text":"warmer?"}`))

	backend := &ClaudeBackend{
		APIKey:              "test-key",
		Model:               "claude-3-haiku-20240307",
		Client:              srv.Client(),
		HumanizeTemperature: 0.4,
	}

	draft := types.Post{Text: "Draft body", TopicTag: "#food", PredictedStage: types.Stage3}
	out, err := backend.Humanize(context.Background(), testPersona(), draft, types.StyleWarm)
	if err != nil {
		t.Fatalf("Humanize() error: %v", err)
	}
	if out != `{"post_text":"warmer?"}` {
		t.Errorf("Humanize() = %q", out)
	}
	if captured.Temperature != 0.4 {
		t.Errorf("temperature = %v, want 0.4", captured.Temperature)
	}

	prompt := captured.Messages[0].Content
	for _, want := range []string{"Draft body", "#food", "Stage3", "polite_warm"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("humanize prompt missing %q", want)
		}
	}
}

func TestClaudeBackendHumanizeDefaultsTagAndStage(t *testing.T) {
	var captured claudeRequest
	srv := withFakeClaude(t, claudeHandler(t, &captured, `{"post_text":"x?"}`))

	backend := &ClaudeBackend{APIKey: "k", Model: "m", Client: srv.Client()}
	if _, err := backend.Humanize(context.Background(), testPersona(), types.Post{Text: "bare"}, types.StyleCalm); err != nil {
		t.Fatalf("Humanize() error: %v", err)
	}

	prompt := captured.Messages[0].Content
	if !strings.Contains(prompt, fallbackTopicTag) {
		t.Error("humanize prompt missing fallback topic tag")
	}
	if !strings.Contains(prompt, string(types.Stage2)) {
		t.Error("humanize prompt missing default stage")
	}
}

func TestClaudeBackendAPIError(t *testing.T) {
	srv := withFakeClaude(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	})

	backend := &ClaudeBackend{APIKey: "k", Model: "m", Client: srv.Client()}
	_, err := backend.Draft(context.Background(), testPersona(), "news", 1)
	if err == nil {
		t.Fatal("Draft() should surface an API error")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error should name the status: %v", err)
	}
}

func TestClaudeBackendNoTextContent(t *testing.T) {
	srv := withFakeClaude(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(claudeResponse{Content: []claudeContent{{Type: "tool_use"}}})
	})

	backend := &ClaudeBackend{APIKey: "k", Model: "m", Client: srv.Client()}
	if _, err := backend.Draft(context.Background(), testPersona(), "news", 1); err == nil {
		t.Error("Draft() should fail when the response has no text block")
	}
}
