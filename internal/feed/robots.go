package feed

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
)

// RobotsChecker answers whether a feed URL may be fetched under the host's robots.txt
type RobotsChecker struct {
	hosts      *gocache.Cache
	httpClient *http.Client
	agent      string
}

// NewRobotsChecker creates a checker; parsed robots.txt files are kept for an hour
func NewRobotsChecker(httpClient *http.Client, userAgent string) *RobotsChecker {
	return &RobotsChecker{
		hosts:      gocache.New(time.Hour, 10*time.Minute),
		httpClient: httpClient,
		agent:      productToken(userAgent),
	}
}

// CanFetch returns (allowed, crawlDelay). An unreachable robots.txt allows everything.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0
	}

	data, err := r.robots(ctx, parsed)
	if err != nil {
		return true, 0
	}

	var delay time.Duration
	if group := data.FindGroup(r.agent); group != nil {
		delay = group.CrawlDelay
	}
	return data.TestAgent(parsed.Path, r.agent), delay
}

func (r *RobotsChecker) robots(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	if v, ok := r.hosts.Get(u.Host); ok {
		return v.(*robotstxt.RobotsData), nil
	}

	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create robots request")
	}
	req.Header.Set("User-Agent", r.agent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch robots.txt")
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, errors.Wrap(err, "parse robots.txt")
	}
	r.hosts.SetDefault(u.Host, data)
	return data, nil
}

// productToken reduces "releasehub/0.1 (+url)" to "releasehub" for group matching
func productToken(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) == 0 {
		return ua
	}
	return strings.Split(parts[0], "/")[0]
}
