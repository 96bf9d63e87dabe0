// Package feed fetches release-signal feeds through the response cache and
// decodes their heterogeneous shapes into a uniform item list.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/farheen-shaikh530/releasehub/internal/cache"
	"github.com/farheen-shaikh530/releasehub/internal/metrics"
	"github.com/farheen-shaikh530/releasehub/internal/model"
	"github.com/farheen-shaikh530/releasehub/internal/worker"
)

// Sentinel errors for remote fetches
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrRobotsDisallowed = errors.New("disallowed by robots.txt")
)

// Raw-layer source names for the two built-in feeds
const (
	SourceComponentOS = "component_os"
	SourceReddit      = "reddit"
)

// Cache keys shared by ingest and query time, so both hit the same files
const (
	KeyComponentOS = "os_seed"
	KeyReddit      = "reddit_seed"
	KeyVendorNames = "vendor_names"
)

// Client performs cached, rate-limited GETs of JSON feeds
type Client struct {
	httpClient *http.Client
	cache      cache.Cache // nil disables caching
	limiter    *worker.Limiter
	robots     *RobotsChecker // nil skips robots.txt
	userAgent  string
	maxBytes   int64
	logger     *zap.SugaredLogger
	metrics    *metrics.Metrics
}

// Options configures a Client
type Options struct {
	HTTP    model.HTTPConfig
	Cache   cache.Cache
	Logger  *zap.SugaredLogger
	Metrics *metrics.Metrics
}

// NewClient creates a feed client
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	maxBytes := opts.HTTP.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 20_000_000
	}

	httpClient := &http.Client{
		Timeout: opts.HTTP.Timeout,
		Transport: &http.Transport{
			Proxy:               proxyFunc(opts.HTTP.HTTPProxy, opts.HTTP.HTTPSProxy),
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}

	c := &Client{
		httpClient: httpClient,
		cache:      opts.Cache,
		limiter:    worker.NewLimiter(opts.HTTP.RatePerSecond, opts.HTTP.Burst),
		userAgent:  opts.HTTP.UserAgent,
		maxBytes:   maxBytes,
		logger:     logger,
		metrics:    opts.Metrics,
	}
	if opts.HTTP.RespectRobots {
		c.robots = NewRobotsChecker(httpClient, opts.HTTP.UserAgent)
	}
	return c
}

// Fetch returns the raw JSON body for rawURL, served from cache when the
// entry under cacheKey is younger than ttl. A fetched body is written back
// to the cache; a failed cache write is logged and otherwise ignored.
func (c *Client) Fetch(ctx context.Context, rawURL, cacheKey string, ttl time.Duration) ([]byte, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(cacheKey, ttl); ok && json.Valid(body) {
			c.metrics.Fetch(cacheKey, "cache_hit")
			return body, nil
		}
	}

	body, err := c.get(ctx, rawURL)
	if err != nil {
		c.metrics.Fetch(cacheKey, "error")
		return nil, err
	}
	c.metrics.Fetch(cacheKey, "live")

	if c.cache != nil {
		if err := c.cache.Set(cacheKey, body); err != nil {
			c.metrics.WriteFailure("http_cache")
			c.logger.Warnw("Cache write failed", "key", cacheKey, "error", err)
		}
	}
	return body, nil
}

// GetJSON is Fetch followed by JSON decoding
func (c *Client) GetJSON(ctx context.Context, rawURL, cacheKey string, ttl time.Duration) (any, error) {
	body, err := c.Fetch(ctx, rawURL, cacheKey, ttl)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, errors.Wrapf(err, "decode %s", rawURL)
	}
	return v, nil
}

// Items fetches rawURL and normalizes the response to a list of objects
func (c *Client) Items(ctx context.Context, rawURL, cacheKey string, ttl time.Duration) ([]Item, error) {
	v, err := c.GetJSON(ctx, rawURL, cacheKey, ttl)
	if err != nil {
		return nil, err
	}
	return Normalize(v), nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if c.robots != nil {
		allowed, delay := c.robots.CanFetch(ctx, rawURL)
		if !allowed {
			return nil, errors.Wrap(ErrRobotsDisallowed, rawURL)
		}
		c.limiter.ApplyCrawlDelay(rawURL, delay)
	}
	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		return nil, errors.Wrap(err, "rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Wrapf(ErrUnexpectedStatus, "%d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	if !json.Valid(body) {
		return nil, errors.Newf("response from %s is not JSON", rawURL)
	}
	return body, nil
}

// proxyFunc routes requests through explicit proxies, else the environment
func proxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}
	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

// ComponentOSURL is the OS component feed query
func ComponentOSURL(base string) string {
	return base + "?q=os"
}

// RedditURL is the first page of the general discussion feed
func RedditURL(base string) string {
	return fmt.Sprintf("%s?limit=100&page=1", base)
}
