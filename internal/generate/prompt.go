// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/template"

	"github.com/pdiddy/thread-genius/pkg/types"
)

// draftPromptTmpl asks for N structured post candidates as a JSON array.
// The draft pass optimizes structure and argument; the humanize pass fixes
// the register afterwards, so polish is not requested here.
var draftPromptTmpl = template.Must(template.New("draft").Parse(`<role>
You are a professional social content creator who understands how the current Threads ranking algorithm works.
</role>

<persona>
Name: {{.Persona.Name}}
Specialty: {{.Persona.Specialty}}
Tone: {{.Persona.Tone}}
Values: {{.Persona.Values}}
Audience: {{.Persona.TargetAudience}}
Goals: {{.Persona.Goals}}
</persona>

<rules>
Threads ranking ground rules:
1. Replies (conversation) outrank likes.
2. Text-first posts: the ranking system must be able to read the content.
3. Exactly one topic tag.
4. Stay under 500 characters and leave room for pushback - do not over-polish.
5. Always end with a question, ideally one answerable with a number or a choice.
</rules>

<structure>
Post template:
1. Opening (1-2 lines): a hook that stops the scroll.
2. Body (3-8 lines): empathy or useful information.
3. Closing (1-2 lines): a question that invites replies.
</structure>

<context>
{{.News}}
</context>

<task>
Writing as {{.Persona.Name}}, produce {{.Count}} post candidates based on the context above.
</task>

<constraints>
- Each post is at most 500 characters.
- Keep the persona's tone throughout.
- End every post with a question (numbered-answer style preferred).
- Exactly one topic tag per post.
- Predict the distribution stage (Stage1-Stage4) each post will reach.
</constraints>

<output_rules>
Output JSON only. No prose, headings, code fences, bullet lists, or preamble.
The first character must be '[' and the last must be ']'.
</output_rules>

<output_format>
[
  {
    "post_text": "the full post (max 500 characters)",
    "topic_tag": "#topic",
    "hook": "the opening hook",
    "body": "the core of the post",
    "cta": "the closing question",
    "predicted_stage": "Stage1-Stage4",
    "conversation_trigger": "why this draws replies",
    "reasoning": "why this structure (max 100 characters)"
  }
]
</output_format>`))

// humanizePromptTmpl rewrites one draft into a more human register while
// preserving its content and topic tag.
var humanizePromptTmpl = template.Must(template.New("humanize").Parse(`<role>
You are an editor who makes Threads posts read professional but conversational: polite, warm, and reply-inviting.
</role>

<persona>
Name: {{.Persona.Name}}
Specialty: {{.Persona.Specialty}}
Tone: {{.Persona.Tone}}
Values: {{.Persona.Values}}
Audience: {{.Persona.TargetAudience}}
Goals: {{.Persona.Goals}}
</persona>

<style_mode>
{{.ModeLabel}}
</style_mode>

<input>
Below is a draft. Keep its content - claims, examples, and line of argument - and raise only the human feel of the prose.
Draft:
{{.DraftText}}
</input>

<human_style_spec>
- Default to polite phrasing, but keep conversational warmth.
- {{.VocabHint}}
- {{.WarmthHint}}
- Include exactly one small real-world aside or first-hand observation.
- Do not over-polish: leave room for the reader to push back.
- Hedge at most once; never more.
- Never surface labels like "Hook:", "Body:", or "CTA:" in the text.
- Avoid stock AI constructions (e.g. "in conclusion", "fundamentally", "the key is", "in essence").
- End with a question. Avoid yes/no; prefer a choice or a memory prompt (e.g. "where did you get stuck?", "which camp are you in?").
- Stay under 500 characters.
- Keep the topic tag unchanged.
</human_style_spec>

<output_rules>
Output JSON only, a single object. The first character must be '{' and the last must be '}'.
</output_rules>

<output_format>
{
  "post_text": "the rewritten post (max 500 characters)",
  "topic_tag": "{{.TopicTag}}",
  "hook": "gist of the hook (short)",
  "body": "gist of the body (short)",
  "cta": "the closing question (short)",
  "predicted_stage": "{{.Stage}}",
  "conversation_trigger": "why the reader replies (short)",
  "reasoning": "intent of the rewrite (max 100 characters)",
  "style_mode": "{{.Mode}}"
}
</output_format>`))

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// AIBackend abstracts the Generative AI API so tests can supply a mock.
type AIBackend interface {
	// Draft produces count post candidates for the persona and news context.
	Draft(ctx context.Context, persona types.PersonaConfig, news string, count int) (string, error)

	// Humanize rewrites one draft in the given style mode and returns the
	// raw response.
	Humanize(ctx context.Context, persona types.PersonaConfig, draft types.Post, mode types.StyleMode) (string, error)
}

// ClaudeBackend calls the Claude Messages API for both generation passes.
type ClaudeBackend struct {
	APIKey string
	Model  string
	Client *http.Client

	// DraftTemperature and HumanizeTemperature control sampling per pass;
	// drafts lean divergent, rewrites lean stable.
	DraftTemperature    float64
	HumanizeTemperature float64
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature,omitempty"`
	Messages    []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Draft renders the draft prompt and returns the model's raw text.
func (c *ClaudeBackend) Draft(ctx context.Context, persona types.PersonaConfig, news string, count int) (string, error) {
	var buf bytes.Buffer
	err := draftPromptTmpl.Execute(&buf, struct {
		Persona types.PersonaConfig
		News    string
		Count   int
	}{persona, news, count})
	if err != nil {
		return "", fmt.Errorf("rendering draft prompt: %w", err)
	}
	return c.call(ctx, buf.String(), 4000, c.DraftTemperature)
}

// Humanize renders the rewrite prompt for one draft and returns the
// model's raw text.
func (c *ClaudeBackend) Humanize(ctx context.Context, persona types.PersonaConfig, draft types.Post, mode types.StyleMode) (string, error) {
	modeLabel, vocabHint, warmthHint := styleHints(mode)

	tag := draft.TopicTag
	if tag == "" {
		tag = fallbackTopicTag
	}
	stage := draft.PredictedStage
	if stage == "" {
		stage = types.Stage2
	}

	var buf bytes.Buffer
	err := humanizePromptTmpl.Execute(&buf, struct {
		Persona    types.PersonaConfig
		ModeLabel  string
		VocabHint  string
		WarmthHint string
		DraftText  string
		TopicTag   string
		Stage      types.Stage
		Mode       types.StyleMode
	}{persona, modeLabel, vocabHint, warmthHint, draft.Text, tag, stage, mode})
	if err != nil {
		return "", fmt.Errorf("rendering humanize prompt: %w", err)
	}
	return c.call(ctx, buf.String(), 1200, c.HumanizeTemperature)
}

// styleHints returns the prompt fragments that differentiate the calm and
// warm rewrite registers.
func styleHints(mode types.StyleMode) (label, vocab, warmth string) {
	if mode == types.StyleCalm {
		return "polite_calm (measured, polite conversation: suits how-to and numbers content)",
			`Use measured wording ("this comes up in consultations", "in the field", "this is the crux"). Never slangy.`,
			"To avoid stiffness, include exactly one conversational softener."
	}
	return "polite_warm (polite with a slightly casual, closer voice)",
		`Allow slightly closer phrasing ("this happens a lot", "people miss this one"). Never flippant.`,
		"Keep the politeness but raise the temperature a little."
}

func (c *ClaudeBackend) call(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	reqBody := claudeRequest{
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Claude API response")
}
