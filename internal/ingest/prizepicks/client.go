package prizepicks

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fortuna/propline/internal/logger"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	BaseURL = "https://www.prizepicks.com"

	DefaultTimeout     = 10 * time.Second
	DefaultPageTimeout = 15 * time.Second
)

// DefaultEndpoints are the projection endpoint shapes tried against the base URL.
var DefaultEndpoints = []string{
	"/api/projections",
	"/api/leagues/NBA/projections",
	"/projections/NBA",
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	Endpoints   []string
	UserAgents  []string
	Timeout     time.Duration
	PageTimeout time.Duration
}

// Client talks to PrizePicks over plain HTTP. Every request is made exactly
// once (no retries) and carries the next user agent in the rotation.
type Client struct {
	http       *resty.Client
	baseURL    string
	endpoints  []string
	userAgents []string
	next       atomic.Uint64
	timeout    time.Duration
	pageTO     time.Duration
	log        *logger.Logger
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

// NewClient creates a PrizePicks client.
func NewClient(opts Options, log *logger.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}
	if len(opts.Endpoints) == 0 {
		opts.Endpoints = DefaultEndpoints
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = DefaultPageTimeout
	}
	if len(opts.UserAgents) == 0 {
		opts.UserAgents = []string{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"}
	}

	client := resty.New()
	client.SetRetryCount(0)
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")

	return &Client{
		http:       client,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		endpoints:  opts.Endpoints,
		userAgents: opts.UserAgents,
		timeout:    opts.Timeout,
		pageTO:     opts.PageTimeout,
		log:        log.Named("prizepicks"),
	}
}

// BaseURL returns the site root, which is also the page the HTML strategy scrapes.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// EndpointURLs resolves the configured endpoints against the base URL.
// Absolute URLs are used as is.
func (c *Client) EndpointURLs() []string {
	urls := make([]string, 0, len(c.endpoints))
	for _, e := range c.endpoints {
		if strings.HasPrefix(e, "http://") || strings.HasPrefix(e, "https://") {
			urls = append(urls, e)
			continue
		}
		urls = append(urls, c.baseURL+"/"+strings.TrimLeft(e, "/"))
	}
	return urls
}

// NextUserAgent returns the next user agent in the rotation.
func (c *Client) NextUserAgent() string {
	n := c.next.Add(1) - 1
	return c.userAgents[n%uint64(len(c.userAgents))]
}

// GetJSON fetches an API endpoint. The body is returned raw; callers decide
// whether it is JSON or an HTML page.
func (c *Client) GetJSON(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, url, "application/json, text/plain, */*", c.timeout)
}

// FetchPage fetches an HTML page. It satisfies PageFetcher.
func (c *Client) FetchPage(ctx context.Context, url string) (string, error) {
	body, err := c.get(ctx, url, "text/html,application/xhtml+xml,*/*;q=0.8", c.pageTO)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, url, accept string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ua := c.NextUserAgent()
	c.log.Debug("GET", zap.String("url", url), zap.String("user_agent", ua))

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", ua).
		SetHeader("Accept", accept).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if !res.IsSuccess() {
		return nil, &StatusError{URL: url, StatusCode: res.StatusCode()}
	}
	return res.Body(), nil
}
