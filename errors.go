package social

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMissingCredentials is returned by NewClient when the auth descriptor has
// no client id or client secret.
var ErrMissingCredentials = errors.New("missing client credentials: client_id and client_secret are required")

// AuthenticationError is returned when a bearer credential could not be obtained.
// StatusCode is zero when the auth endpoint produced no HTTP response.
type AuthenticationError struct {
	StatusCode int
	Err        error
}

func (e *AuthenticationError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("authentication failed: HTTP %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("authentication failed: HTTP %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("authentication failed: %v", e.Err)
	}
	return "authentication failed"
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// FetchError is returned when an upstream GET answers with a non-success status.
type FetchError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *FetchError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// TransportError is a network-level failure: no HTTP response was received.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RateLimitedError is returned without touching the network while a resource
// is cooling down after an upstream 429.
type RateLimitedError struct {
	Endpoint string
	Resource string // path below the base URL, e.g. posts/7/comments
	Until    time.Time
}

func (e *RateLimitedError) Error() string {
	name := e.Endpoint
	if e.Resource != "" {
		name = e.Resource
	}
	if e.Until.IsZero() {
		return fmt.Sprintf("%s: rate limited", name)
	}
	return fmt.Sprintf("%s: rate limited until %s", name, e.Until.Format(time.RFC3339))
}

// upstreamMessage extracts a human-readable reason from an upstream error body.
// Falls back to the truncated raw body.
func upstreamMessage(body []byte) string {
	var probe struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &probe) == nil {
		if probe.Message != "" {
			return probe.Message
		}
		if probe.Error != "" {
			return probe.Error
		}
	}
	return strings.TrimSpace(truncateBytes(body, 200))
}

// parseRetryAfter resolves when a 429'd endpoint may be retried, from either
// Retry-After (seconds) or x-ratelimit-reset (unix seconds).
// Falls back to one minute from now.
func parseRetryAfter(headers map[string]string, now time.Time) time.Time {
	if v := headers["retry-after"]; v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return now.Add(time.Duration(secs) * time.Second)
		}
	}
	if v := headers["x-ratelimit-reset"]; v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil && ts > now.Unix() {
			return time.Unix(ts, 0)
		}
	}
	return now.Add(time.Minute)
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
