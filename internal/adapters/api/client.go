// Package api is the typed client for the remote marketplace REST API.
// Every method accepts a context; a session token placed on the context with
// WithToken is sent as a bearer credential.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/tomnomnom/linkheader"

	"academyhub/internal/adapters/http/perf"
)

// DefaultMaxPages caps how many Link rel="next" pages a list call follows.
const DefaultMaxPages = 20

// DefaultTimeout bounds a single upstream round trip.
const DefaultTimeout = 10 * time.Second

// Options configures a Client.
type Options struct {
	Timeout   time.Duration
	MaxPages  int
	SlowMs    float64
	Collector *perf.Collector
	// HTTPClient overrides the transport (tests use httptest servers directly).
	HTTPClient *http.Client
}

// Client talks to the marketplace API. Safe for concurrent use.
type Client struct {
	rc        *resty.Client
	base      *url.URL
	maxPages  int
	slowMs    float64
	collector *perf.Collector
}

// NewClient creates a client rooted at baseURL (e.g. "http://localhost:5000/api").
// PRE: baseURL is an absolute http(s) URL
// POST: returned client never retries; each call is a single round trip
func NewClient(baseURL string, opts Options) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	base, err := url.Parse(trimmed)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(trimmed).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)

	return &Client{
		rc:        rc,
		base:      base,
		maxPages:  opts.MaxPages,
		slowMs:    opts.SlowMs,
		collector: opts.Collector,
	}, nil
}

type tokenKey struct{}

// WithToken returns a context that makes the client send token as a bearer credential.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the bearer token carried by ctx, if any.
func TokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

type requestIDKey struct{}

// WithRequestID makes outbound calls reuse id as their X-Request-ID, so upstream logs
// line up with the inbound request that caused them.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return uuid.NewString()
}

// call performs one round trip and returns the decoded JSON payload.
// target is either a path relative to the base URL or an absolute URL.
func (c *Client) call(ctx context.Context, method, target string, query map[string]string, body any) (any, http.Header, error) {
	req := c.rc.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", requestID(ctx))
	if tok := TokenFrom(ctx); tok != "" {
		req.SetAuthToken(tok)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, target)
	status := 0
	if resp != nil && resp.RawResponse != nil {
		status = resp.StatusCode()
	}
	c.record(method, target, status, start)

	if err != nil {
		msg := "could not reach the marketplace"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "the marketplace took too long to respond"
		}
		return nil, nil, &Error{Kind: KindTransport, Method: method, Path: target, Message: msg, Err: err}
	}

	payload, decodeErr := decodeJSON(resp.Body())
	if apiErr := classify(status, payload); apiErr != nil {
		apiErr.Method, apiErr.Path = method, target
		return nil, nil, apiErr
	}
	if decodeErr != nil {
		return nil, nil, &Error{Kind: KindDecode, Status: status, Method: method, Path: target,
			Message: "unexpected response from the marketplace", Err: decodeErr}
	}
	return payload, resp.Header(), nil
}

func (c *Client) record(method, target string, status int, start time.Time) {
	dur := float64(time.Since(start).Microseconds()) / 1000.0
	path := target
	if u, err := url.Parse(target); err == nil && u.IsAbs() {
		path = strings.TrimPrefix(u.Path, c.base.Path)
	}
	label := method + " upstream:" + path
	if c.collector != nil {
		c.collector.Record(perf.Entry{
			Kind:       perf.KindUpstream,
			Path:       label,
			StatusCode: status,
			DurationMs: dur,
			Timestamp:  start,
		})
	}
	if c.slowMs > 0 && dur > c.slowMs {
		slog.Warn("slow_upstream", "call", label, "status", status, "duration_ms", dur)
	}
}

// getObject fetches a single resource, unwrapping a {data: ...} envelope.
func (c *Client) getObject(ctx context.Context, path string, query map[string]string) (map[string]any, error) {
	payload, _, err := c.call(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return asObject(path, payload)
}

// postObject sends body as JSON and returns the (possibly enveloped) object reply.
// An empty 2xx reply yields an empty map.
func (c *Client) postObject(ctx context.Context, path string, body any) (map[string]any, error) {
	payload, _, err := c.call(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return map[string]any{}, nil
	}
	return asObject(path, payload)
}

// getList fetches a collection, following Link rel="next" up to the page cap.
func (c *Client) getList(ctx context.Context, path string, query map[string]string) ([]any, error) {
	var all []any
	target := path
	for page := 0; page < c.maxPages; page++ {
		payload, header, err := c.call(ctx, http.MethodGet, target, query, nil)
		if err != nil {
			return nil, err
		}
		items, ok := listItems(payload)
		if !ok {
			return nil, &Error{Kind: KindDecode, Method: http.MethodGet, Path: path,
				Message: "unexpected response from the marketplace"}
		}
		all = append(all, items...)

		next := c.nextPage(header)
		if next == "" {
			break
		}
		// the next link already carries the query string
		target, query = next, nil
	}
	return all, nil
}

func (c *Client) nextPage(header http.Header) string {
	if header == nil {
		return ""
	}
	raw := header.Get("Link")
	if raw == "" {
		return ""
	}
	links := linkheader.Parse(raw).FilterByRel("next")
	if len(links) == 0 || links[0].URL == "" {
		return ""
	}
	ref, err := url.Parse(links[0].URL)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	// relative links resolve against the API host, not the /api prefix
	return c.base.ResolveReference(ref).String()
}

func decodeJSON(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}

func asObject(path string, payload any) (map[string]any, error) {
	if obj, ok := payload.(map[string]any); ok {
		if inner, ok := obj["data"].(map[string]any); ok {
			return inner, nil
		}
		return obj, nil
	}
	return nil, &Error{Kind: KindDecode, Path: path, Message: "unexpected response from the marketplace"}
}

func listItems(payload any) ([]any, bool) {
	switch v := payload.(type) {
	case nil:
		return nil, true
	case []any:
		return v, true
	case map[string]any:
		for _, key := range []string{"data", "items", "results"} {
			if inner, ok := v[key]; ok {
				return listItems(inner)
			}
		}
	}
	return nil, false
}
