package mhlw

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pfrederiksen/covid-jp-sync/internal/scraper"
)

const (
	IndexURL  = "https://www.mhlw.go.jp/stf/seisakunitsuite/bunya/topics_shingata_09444.html"
	UserAgent = "covid-jp-sync/1.0 (github.com/pfrederiksen/covid-jp-sync)"
	Timeout   = 30 * time.Second
)

// Link texts of the reports on the index page.
const (
	SituationReport = "新型コロナウイルス感染症の現在の状況"
	PortReport      = "新型コロナウイルス感染症の患者等の発生について（空港"
)

// Client fetches ministry pages.
type Client struct {
	client    *http.Client
	indexURL  string
	userAgent string
	logger    *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.client = c }
}

// WithIndexURL overrides the report index page
func WithIndexURL(u string) Option {
	return func(cl *Client) {
		if u != "" {
			cl.indexURL = u
		}
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		client:    &http.Client{Timeout: Timeout},
		indexURL:  IndexURL,
		userAgent: UserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IndexURL returns the index page in use.
func (c *Client) IndexURL() string {
	return c.indexURL
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	return scraper.Get(ctx, c.client, c.userAgent, url)
}
