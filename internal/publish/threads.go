// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish talks to the Threads Graph API: OAuth token exchange,
// the two-step post flow, and per-post insights.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/thread-genius/internal/httputil"
	"github.com/pdiddy/thread-genius/pkg/types"
)

// API endpoints. Package-level vars for test substitution.
var (
	threadsGraphBase = "https://graph.threads.net"
	threadsAuthBase  = "https://threads.net/oauth/authorize"
)

// oauthScopes are requested during authorization. Publishing needs the
// first two; insights and reply management need the rest.
var oauthScopes = []string{
	"threads_basic",
	"threads_content_publish",
	"threads_manage_insights",
	"threads_manage_replies",
}

// insightMetrics is the metric list requested from the insights endpoint.
const insightMetrics = "views,likes,replies,reposts,quotes"

// Client is a Threads Graph API client. AccessToken and UserID are
// populated by the OAuth exchange or supplied from config.
type Client struct {
	AppID       string
	AppSecret   string
	RedirectURI string
	AccessToken string
	UserID      string

	HTTPClient *http.Client
	MaxRetries int
}

// NewClient builds a Client from config, preferring an already-stored token.
func NewClient(cfg types.PublishConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		AppID:       cfg.AppID,
		AppSecret:   cfg.AppSecret,
		RedirectURI: cfg.RedirectURI,
		AccessToken: cfg.AccessToken,
		UserID:      cfg.UserID,
		HTTPClient:  &http.Client{Timeout: timeout},
	}
}

// AuthorizationURL returns the URL the operator opens to grant access.
func (c *Client) AuthorizationURL() string {
	params := url.Values{
		"client_id":     {c.AppID},
		"redirect_uri":  {c.RedirectURI},
		"scope":         {strings.Join(oauthScopes, ",")},
		"response_type": {"code"},
	}
	return threadsAuthBase + "?" + params.Encode()
}

// tokenResponse is the token endpoint reply for both exchanges.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ExchangeCode trades an authorization code for a short-lived access token
// and then upgrades it to a long-lived (60-day) token. A failed upgrade is
// reported on w but keeps the short-lived token usable.
func (c *Client) ExchangeCode(ctx context.Context, code string, w io.Writer) error {
	form := url.Values{
		"client_id":     {c.AppID},
		"client_secret": {c.AppSecret},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {c.RedirectURI},
		"code":          {code},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		threadsGraphBase+"/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok tokenResponse
	if err := c.do(ctx, req, &tok); err != nil {
		return fmt.Errorf("exchanging code: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("token endpoint returned no access token")
	}

	c.AccessToken = tok.AccessToken
	c.UserID = fmt.Sprintf("%d", tok.UserID)
	fmt.Fprintf(w, "access token obtained for user %s\n", c.UserID)

	if err := c.exchangeLongLived(ctx); err != nil {
		fmt.Fprintf(w, "warning: long-lived token exchange failed, keeping short-lived token: %v\n", err)
		return nil
	}
	fmt.Fprintln(w, "upgraded to long-lived token (60 days)")
	return nil
}

// exchangeLongLived upgrades the current token to the 60-day variant.
func (c *Client) exchangeLongLived(ctx context.Context) error {
	params := url.Values{
		"grant_type":    {"th_exchange_token"},
		"client_secret": {c.AppSecret},
		"access_token":  {c.AccessToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		threadsGraphBase+"/access_token?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	var tok tokenResponse
	if err := c.do(ctx, req, &tok); err != nil {
		return err
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("no access token in response")
	}
	c.AccessToken = tok.AccessToken
	return nil
}

// PublishResult records a successful publish.
type PublishResult struct {
	PostID    string    `json:"post_id" yaml:"post_id"`
	Text      string    `json:"text" yaml:"text"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// CreatePost publishes text as a new Threads post using the two-step
// container flow. Text over the platform limit is truncated with a
// warning on w.
func (c *Client) CreatePost(ctx context.Context, text string, w io.Writer) (*PublishResult, error) {
	if c.AccessToken == "" {
		return nil, fmt.Errorf("not authenticated: run the auth flow or set publish.access_token")
	}
	if c.UserID == "" {
		return nil, fmt.Errorf("no user ID: re-run the auth flow or set publish.user_id")
	}

	if runes := []rune(text); len(runes) > types.MaxPostLength {
		fmt.Fprintf(w, "warning: post is %d characters, truncating to %d\n", len(runes), types.MaxPostLength)
		text = string(runes[:types.MaxPostLength])
	}

	containerID, err := c.createContainer(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("creating media container: %w", err)
	}
	fmt.Fprintf(w, "media container created: %s\n", containerID)

	postID, err := c.publishContainer(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("publishing container %s: %w", containerID, err)
	}
	fmt.Fprintf(w, "published: %s\n", postID)

	return &PublishResult{
		PostID:    postID,
		Text:      text,
		Timestamp: time.Now(),
	}, nil
}

// idResponse is the common {"id": "..."} reply shape.
type idResponse struct {
	ID string `json:"id"`
}

// createContainer performs step one: register the text as a media container.
func (c *Client) createContainer(ctx context.Context, text string) (string, error) {
	form := url.Values{
		"media_type":   {"TEXT"},
		"text":         {text},
		"access_token": {c.AccessToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1.0/%s/threads", threadsGraphBase, c.UserID),
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out idResponse
	if err := c.do(ctx, req, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("no container ID in response")
	}
	return out.ID, nil
}

// publishContainer performs step two: make the container public.
func (c *Client) publishContainer(ctx context.Context, containerID string) (string, error) {
	form := url.Values{
		"creation_id":  {containerID},
		"access_token": {c.AccessToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1.0/%s/threads_publish", threadsGraphBase, c.UserID),
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out idResponse
	if err := c.do(ctx, req, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("no post ID in response")
	}
	return out.ID, nil
}

// Insights holds the engagement counters for one post.
type Insights struct {
	Views   int64 `json:"views" yaml:"views"`
	Likes   int64 `json:"likes" yaml:"likes"`
	Replies int64 `json:"replies" yaml:"replies"`
	Reposts int64 `json:"reposts" yaml:"reposts"`
	Quotes  int64 `json:"quotes" yaml:"quotes"`
}

// insightsResponse is the raw insights endpoint reply.
type insightsResponse struct {
	Data []struct {
		Name   string `json:"name"`
		Values []struct {
			Value int64 `json:"value"`
		} `json:"values"`
	} `json:"data"`
}

// GetInsights fetches engagement metrics for a published post.
func (c *Client) GetInsights(ctx context.Context, postID string) (*Insights, error) {
	if c.AccessToken == "" {
		return nil, fmt.Errorf("not authenticated: run the auth flow or set publish.access_token")
	}

	params := url.Values{
		"metric":       {insightMetrics},
		"access_token": {c.AccessToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1.0/%s/insights?%s", threadsGraphBase, postID, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var raw insightsResponse
	if err := c.do(ctx, req, &raw); err != nil {
		return nil, fmt.Errorf("fetching insights for %s: %w", postID, err)
	}

	insights := &Insights{}
	for _, metric := range raw.Data {
		if len(metric.Values) == 0 {
			continue
		}
		v := metric.Values[0].Value
		switch metric.Name {
		case "views":
			insights.Views = v
		case "likes":
			insights.Likes = v
		case "replies":
			insights.Replies = v
		case "reposts":
			insights.Reposts = v
		case "quotes":
			insights.Quotes = v
		}
	}
	return insights, nil
}

// ScheduledPost is a local pending record; the Threads API has no
// server-side scheduling, so an external runner picks these up.
type ScheduledPost struct {
	Text         string    `json:"text" yaml:"text"`
	ScheduleTime time.Time `json:"schedule_time" yaml:"schedule_time"`
	Status       string    `json:"status" yaml:"status"`
}

// SchedulePost records a post for later publication.
func SchedulePost(text string, at time.Time) ScheduledPost {
	return ScheduledPost{
		Text:         text,
		ScheduleTime: at,
		Status:       "pending",
	}
}

// do executes a request with 429 retry handling and decodes the JSON reply
// into out. Non-2xx responses surface the body for debugging.
func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Threads API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
