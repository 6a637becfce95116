package social

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// RequestOptions customises a FetchAuthenticated call.
type RequestOptions struct {
	// Method defaults to GET.
	Method string

	// Headers are merged over the defaults. An authorization entry is
	// always overridden by the client's bearer token.
	Headers map[string]string

	Body []byte

	// Endpoint names the operation for logging and metrics.
	// Derived from the URL path when empty.
	Endpoint string
}

// Response is a raw upstream response.
type Response struct {
	StatusCode int
	Body       []byte
	Header     map[string]string

	// Retried is set when the response came from the post-401 retry.
	Retried bool
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// FetchAuthenticated issues a request carrying the cached bearer token.
//
// A 401 clears the token store, forces one fresh credential and retries exactly
// once; whatever the retry returns is handed back, even another 401.
// Transport failures are returned as *TransportError and never retried.
func (c *Client) FetchAuthenticated(ctx context.Context, rawURL string, opts RequestOptions) (*Response, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = endpointName(rawURL)
	}

	// Cooldowns are per resource so one post's 429 never blocks another post.
	resource := c.resourceKey(rawURL)
	if c.endpoints.IsRateLimited(resource) {
		c.recordAPICall(endpoint, false, true)
		return nil, &RateLimitedError{Endpoint: endpoint, Resource: resource, Until: c.endpoints.AvailableAt(resource)}
	}

	token, err := c.auth.ValidToken(ctx)
	if err != nil {
		slog.Warn("fetch: no credential", slog.String("endpoint", endpoint), slog.Any("error", err))
		c.recordAPICall(endpoint, false, false)
		return nil, err
	}

	resp, err := c.send(ctx, rawURL, opts, token)
	if err != nil {
		slog.Warn("fetch: transport error", slog.String("endpoint", endpoint), slog.Any("error", err))
		c.recordAPICall(endpoint, false, false)
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		slog.Info("token rejected, reauthenticating", slog.String("endpoint", endpoint))
		c.auth.Invalidate()
		token, err = c.auth.ValidToken(ctx)
		if err != nil {
			slog.Warn("fetch: reauthentication failed", slog.String("endpoint", endpoint), slog.Any("error", err))
			c.recordAPICall(endpoint, false, false)
			return nil, err
		}
		resp, err = c.send(ctx, rawURL, opts, token)
		if err != nil {
			slog.Warn("fetch: transport error on retry", slog.String("endpoint", endpoint), slog.Any("error", err))
			c.recordAPICall(endpoint, false, false)
			return nil, err
		}
		resp.Retried = true
	}

	rateLimited := resp.StatusCode == http.StatusTooManyRequests
	if rateLimited {
		// The endpoint limiter runs on the wall clock, not cfg.Now.
		until := parseRetryAfter(resp.Header, time.Now())
		c.endpoints.MarkRateLimited(resource, until)
		slog.Warn("resource rate limited",
			slog.String("endpoint", endpoint),
			slog.String("resource", resource),
			slog.Time("until", until))
	}
	c.recordAPICall(endpoint, resp.OK(), rateLimited)
	return resp, nil
}

// send performs a single throttled exchange with the given token.
func (c *Client) send(ctx context.Context, rawURL string, opts RequestOptions, token string) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Op: method, URL: rawURL, Err: err}
	}

	headers := mergeHeaders(baseHeaders(), opts.Headers, token)
	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
		if _, ok := headers["content-type"]; !ok {
			headers["content-type"] = "application/json"
		}
	}

	respBody, respHdrs, status, err := c.doer.DoWithHeaderOrder(method, rawURL, headers, body, headerOrder)
	if err != nil {
		return nil, &TransportError{Op: method, URL: rawURL, Err: err}
	}
	if respHdrs == nil {
		respHdrs = map[string]string{}
	}
	return &Response{StatusCode: status, Body: respBody, Header: respHdrs}, nil
}

// resourceKey identifies the requested resource by its path below the base
// URL, so /posts/7/comments becomes "posts/7/comments".
func (c *Client) resourceKey(rawURL string) string {
	path := rawURL
	if rest, ok := strings.CutPrefix(rawURL, c.cfg.BaseURL); ok {
		path = rest
	} else if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path = strings.Trim(path, "/"); path == "" {
		return "root"
	}
	return path
}

// endpointName derives an operation name from the last non-numeric path
// segment, so /posts/7/comments becomes "comments".
func endpointName(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i] == "" {
			continue
		}
		if _, err := strconv.ParseInt(segs[i], 10, 64); err == nil {
			continue
		}
		return segs[i]
	}
	return "root"
}
