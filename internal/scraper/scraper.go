package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	BaseURL   = "https://www3.nhk.or.jp"
	UserAgent = "covid-jp-sync/1.0 (github.com/pfrederiksen/covid-jp-sync)"
	Timeout   = 30 * time.Second

	// DefaultPages is the listing depth used to find a summary article.
	DefaultPages = 5
	// ListPages is the listing depth used for article batches.
	ListPages = 20
	// MaxPages is the deepest page the feed serves.
	MaxPages = 25
)

// Scraper handles fetching NHK listings and articles
type Scraper struct {
	client    *http.Client
	baseURL   string
	userAgent string
	logger    *zap.Logger
}

// Option configures a Scraper
type Option func(*Scraper)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithBaseURL points the scraper at another host, used by tests
func WithBaseURL(u string) Option {
	return func(s *Scraper) { s.baseURL = u }
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Scraper) { s.logger = l }
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		baseURL:   BaseURL,
		userAgent: UserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BaseURL returns the host that relative article links resolve against.
func (s *Scraper) BaseURL() string {
	return s.baseURL
}

// get fetches url and returns the response body. The caller closes it.
func (s *Scraper) get(ctx context.Context, url string) (io.ReadCloser, error) {
	return Get(ctx, s.client, s.userAgent, url)
}

// Get issues a GET for url with userAgent set and returns the body of a
// 200 response. The caller closes it.
func Get(ctx context.Context, client *http.Client, userAgent, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: unexpected status code: %d", url, resp.StatusCode)
	}

	return resp.Body, nil
}
