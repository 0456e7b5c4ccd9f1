// Package backend is the authenticated HTTP client for the loan management
// REST API. Calls never panic or return transport errors directly: every
// outcome is a Response whose Err method yields a typed *Error.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// APIPrefix is prepended to every request path that does not already start with it.
const APIPrefix = "/api/v1"

// DefaultTimeout bounds a single backend request.
const DefaultTimeout = 15 * time.Second

// maxBody caps how much of a response body is read.
const maxBody = 32 << 20

// TokenSource yields the bearer token of the current session.
// An empty token means the request is sent without an Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to a TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// Token implements TokenSource.
func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Client talks to the backend on behalf of one session.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens == nil {
		c.tokens = StaticToken("")
	}
	return c
}

// WithTokens returns a copy of the client that authenticates with tokens.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

// NormalizePath prefixes path with the API version segment unless present.
func NormalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path == APIPrefix || strings.HasPrefix(path, APIPrefix+"/") || strings.HasPrefix(path, APIPrefix+"?") {
		return path
	}
	return APIPrefix + path
}

// Do sends a JSON request. body is marshalled unless it is nil.
func (c *Client) Do(ctx context.Context, method, path string, body any) *Response {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &Response{
				Error: fmt.Sprintf("encoding request: %v", err),
				err:   &Error{Kind: KindDecode, Message: fmt.Sprintf("encoding request: %v", err), Err: err},
			}
		}
		reader = bytes.NewReader(buf)
	}
	return c.send(ctx, method, path, reader, "application/json")
}

// Upload sends a single file as multipart/form-data under the given field.
func (c *Client) Upload(ctx context.Context, path, field, filename, contentType string, data []byte) *Response {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err == nil {
		_, err = part.Write(data)
	}
	if err == nil {
		err = mw.Close()
	}
	if err != nil {
		return transportError(fmt.Errorf("building upload: %w", err))
	}

	return c.send(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) *Response {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	url := c.baseURL + NormalizePath(path)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return transportError(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return transportError(fmt.Errorf("getting access token: %w", err))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("backend request failed", "method", method, "path", req.URL.Path, "error", err)
		return transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		slog.Warn("reading backend response failed", "method", method, "path", req.URL.Path, "error", err)
		return transportError(fmt.Errorf("reading response: %w", err))
	}

	r := parseBody(resp.StatusCode, raw)
	if !r.OK {
		slog.Warn("backend request unsuccessful", "method", method, "path", req.URL.Path,
			"status", resp.StatusCode, "error", r.Error, "duration", time.Since(start).Round(time.Millisecond))
	}
	return r
}

// Get fetches path and decodes the payload into T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	return decode[T](c.Do(ctx, http.MethodGet, path, nil))
}

// Post sends body to path and decodes the payload into T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return decode[T](c.Do(ctx, http.MethodPost, path, body))
}

// Put sends body to path and decodes the payload into T.
func Put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return decode[T](c.Do(ctx, http.MethodPut, path, body))
}

// Patch sends body to path and decodes the payload into T.
func Patch[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return decode[T](c.Do(ctx, http.MethodPatch, path, body))
}

// Delete sends a DELETE, with an optional body, and decodes the payload into T.
func Delete[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return decode[T](c.Do(ctx, http.MethodDelete, path, body))
}

func decode[T any](r *Response) (T, error) {
	var v T
	err := r.Decode(&v)
	return v, err
}
