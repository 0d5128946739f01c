// Package fetch retrieves the candidate replacement document and parses
// it into a detached tree, with no side effects on the live page.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/html"

	"github.com/hazyhaar/livepatch/dom"
)

// ErrStatus marks a non-success HTTP response.
var ErrStatus = errors.New("fetch: non-success status")

// ErrParse marks a response body that did not parse as HTML.
var ErrParse = errors.New("fetch: parse document")

// Result is the outcome of one document fetch.
type Result struct {
	Doc        *html.Node // detached parsed tree, discarded after the cycle
	Body       []byte
	StatusCode int
}

// Fetcher performs HTTP GETs and parses replacement documents.
type Fetcher struct {
	client *http.Client
	ua     string
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets a custom HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.ua = ua }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New creates a Fetcher with sensible defaults.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
		ua:     "livepatch/1.0",
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch GETs the resolved URL and parses the body into a detached tree.
// Any 2xx status is a success; everything else wraps ErrStatus.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: new request: %w", err)
	}
	req.Header.Set("User-Agent", f.ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrStatus, pageURL, resp.StatusCode)
	}

	// Cap read to 10MB to prevent runaway downloads.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}

	doc, err := dom.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	f.logger.Debug("fetch: fetched",
		"url", pageURL, "status", resp.StatusCode, "size", len(body))

	return &Result{Doc: doc, Body: body, StatusCode: resp.StatusCode}, nil
}
