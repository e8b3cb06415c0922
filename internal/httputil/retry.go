// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the collector and the
// Threads client.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

const (
	defaultMaxRetries = 5

	// maxRetryAfter caps server-supplied Retry-After values so a
	// misbehaving endpoint cannot park a run for hours.
	maxRetryAfter = 5 * time.Minute
)

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests). The wait honors a Retry-After header in seconds when present
// (capped at 5 minutes); otherwise it backs off exponentially from
// RetryBaseDelay: 10 s, 20 s, 40 s, ...
//
// Requests with a body are replayed through GetBody, so form POSTs built
// with http.NewRequestWithContext retry correctly. When maxRetries is 0
// the default (5) is used. If the context is cancelled during a wait the
// function returns ctx.Err(). After exhausting retries the last 429
// response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Exhausted retries — return the 429 response as-is.
		if attempt >= maxRetries {
			return resp, nil
		}

		wait := retryWait(resp, attempt)

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// retryWait picks the delay before the next attempt: the server's
// Retry-After when it parses as seconds, exponential backoff otherwise.
func retryWait(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
			wait := time.Duration(secs) * time.Second
			if wait > maxRetryAfter {
				wait = maxRetryAfter
			}
			return wait
		}
	}
	return time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
}
