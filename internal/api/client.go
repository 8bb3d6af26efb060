// Package api is the outbound client for the school backend. Every call is
// independent: no retries, no caching and no deduplication.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gitea.jw6.us/james/campusdesk/internal/metrics"
)

// ErrRequestFailed is the single failure reported for network errors,
// non-2xx responses and malformed response bodies.
var ErrRequestFailed = errors.New("backend request failed")

// maxResponseBytes caps how much of a backend response is buffered.
const maxResponseBytes = 16 << 20

// CredentialSource yields the bearer credential for the caller of ctx, if any.
type CredentialSource interface {
	Credential(ctx context.Context) (string, bool)
}

// Request describes one backend call. Operation labels metrics; it defaults
// to "METHOD path".
type Request struct {
	Method    string
	Path      string
	Body      Body
	Operation string
}

// Response is a fully read 2xx backend response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrRequestFailed, err)
	}
	return nil
}

// Client sends authenticated requests to the backend API.
type Client struct {
	base  *url.URL
	http  *http.Client
	creds CredentialSource
}

// New builds a client rooted at baseURL. A nil httpClient uses
// http.DefaultClient; a nil creds sends every request anonymously.
func New(baseURL string, httpClient *http.Client, creds CredentialSource) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api base url must be absolute: %q", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: base, http: httpClient, creds: creds}, nil
}

// Do dispatches req and returns the buffered response. Any failure wraps ErrRequestFailed.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	op := req.Operation
	if op == "" {
		op = req.Method + " " + req.Path
	}
	start := time.Now()
	defer metrics.ObserveUpstreamLatency(ctx, op, start)

	var (
		body        io.Reader
		contentType string
	)
	if req.Body != nil {
		var err error
		body, contentType, err = req.Body.Encode()
		if err != nil {
			return nil, fmt.Errorf("%w: encode %s: %v", ErrRequestFailed, op, err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.resolve(req.Path), body)
	if err != nil {
		return nil, fmt.Errorf("%w: build %s: %v", ErrRequestFailed, op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.creds != nil {
		if token, ok := c.creds.Credential(ctx); ok && token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRequestFailed, op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrRequestFailed, op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", ErrRequestFailed, op, resp.StatusCode)
	}

	return &Response{StatusCode: resp.StatusCode, Body: bytes.TrimSpace(data)}, nil
}

// resolve appends an already escaped path to the base URL.
func (c *Client) resolve(path string) string {
	return c.base.String() + "/" + strings.TrimLeft(path, "/")
}
