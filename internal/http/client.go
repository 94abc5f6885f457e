package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "PlayDeck"

// Client fetches remote audio, playlists and artwork.
//
// Example:
//
//	client := NewClient()
//	data, err := client.Fetch(ctx, "https://cdn.example.com/audio/song.mp3", func(read, total int64) {
//	    fmt.Printf("%d / %d\n", read, total)
//	})
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTransport replaces the underlying transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// NewClient creates a Client with a 60 second timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProgressWriter counts bytes passing through to Writer and reports them
// through OnUpdate.
type ProgressWriter struct {
	Writer io.Writer

	// Total is the expected size, or -1 when unknown.
	Total int64

	Written int64

	OnUpdate func(written, total int64)
}

// Write implements io.Writer.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Open issues a GET request and returns the response body. The caller must
// close it. The second return value is the Content-Length, or -1.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	return resp.Body, resp.ContentLength, nil
}

// Fetch downloads url into memory. onProgress may be nil.
func (c *Client) Fetch(ctx context.Context, url string, onProgress func(read, total int64)) ([]byte, error) {
	body, total, err := c.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}
	var w io.Writer = &buf
	if onProgress != nil {
		w = &ProgressWriter{Writer: &buf, Total: total, OnUpdate: onProgress}
	}
	if _, err := io.Copy(w, body); err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return buf.Bytes(), nil
}

// Get downloads url into memory without progress reporting.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	return c.Fetch(ctx, url, nil)
}
