package orchestrator

import (
	"context"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/farheen-shaikh530/releasehub/internal/feed"
	"github.com/farheen-shaikh530/releasehub/internal/model"
	"github.com/farheen-shaikh530/releasehub/internal/vendor"
)

// KnownOS lists the operating systems the OS strategy recognizes, in match order
var KnownOS = []string{"android", "ios", "windows", "macos", "linux"}

// OSFeeds locates the two feeds searched for OS version objects
type OSFeeds struct {
	ComponentURL string
	ComponentTTL time.Duration
	RedditURL    string
	RedditTTL    time.Duration
}

// OSVersionStrategy answers "latest <os> version/release/build" questions
// with the versionId of the newest matching OS version object. It only
// applies to queries that also name an allow-listed vendor; anything else
// is left to the generic strategy.
type OSVersionStrategy struct {
	vendors VendorSource
	feeds   FeedSource
	urls    OSFeeds
	logger  *zap.SugaredLogger
}

// NewOSVersionStrategy creates the strategy. urls hold the feed base URLs;
// query strings are added here.
func NewOSVersionStrategy(vendors VendorSource, feeds FeedSource, urls OSFeeds, logger *zap.SugaredLogger) *OSVersionStrategy {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &OSVersionStrategy{vendors: vendors, feeds: feeds, urls: urls, logger: logger}
}

// Name implements Strategy
func (s *OSVersionStrategy) Name() string { return "os_latest" }

// osCandidate is a matching version object and the feed it came from
type osCandidate struct {
	item   feed.Item
	source string
}

// Try implements Strategy
func (s *OSVersionStrategy) Try(ctx context.Context, query string) (*model.Answer, error) {
	q := strings.ToLower(query)
	if !strings.Contains(q, "latest") {
		return nil, nil
	}
	if !strings.Contains(q, "version") && !strings.Contains(q, "release") && !strings.Contains(q, "build") {
		return nil, nil
	}
	osName := detectOS(query)
	if osName == "" {
		return nil, nil
	}

	set, err := s.vendors.Load(ctx)
	if err != nil {
		s.logger.Warnw("Vendor list unavailable", "error", err)
	}
	if vendor.NewSubstring(set.Names).First(query) == "" {
		return nil, nil
	}

	day := osDay(query)
	trace := map[string]any{"mode": "os_latest", "os_name": osName, "day": day}

	var candidates []osCandidate
	collect := func(source, rawURL, key string, ttl time.Duration) {
		items, err := s.feeds.Items(ctx, rawURL, key, ttl)
		if err != nil {
			s.logger.Warnw("Feed unavailable", "source", source, "url", rawURL, "error", err)
			trace[source+"_error"] = err.Error()
			return
		}
		trace[source+"_items"] = len(items)
		for _, it := range items {
			candidates = appendOSMatches(candidates, it, source, osName, day)
		}
	}
	collect("reddit", feed.RedditURL(s.urls.RedditURL), feed.KeyReddit, s.urls.RedditTTL)
	collect("component_os", feed.ComponentOSURL(s.urls.ComponentURL), feed.KeyComponentOS, s.urls.ComponentTTL)
	trace["candidates"] = len(candidates)

	dayNote := ""
	if day != "" {
		dayNote = " on " + day
	}
	if len(candidates) == 0 {
		a := model.AbstainAnswer("OS: "+osName+dayNote+" · Abstained (no matching OS version object found)", 40)
		a.Debug = trace
		return a, nil
	}

	latest := candidates[0]
	for _, c := range candidates[1:] {
		if c.item.Int64("versionTimestamp") > latest.item.Int64("versionTimestamp") {
			latest = c
		}
	}
	// no versionId means nothing verified: shown as Unknown, never rephrased
	verified := latest.item.First("versionId")
	versionID := verified
	if versionID == "" {
		versionID = "Unknown"
	}
	trace["picked_source"] = latest.source

	return &model.Answer{
		ShortAnswer: versionID,
		Meta:        "OS: " + osName + dayNote + " · Matched by versionTimestampLastUpdate date",
		Evidence: []model.Evidence{{
			Title:  osName + " " + versionID,
			Source: latest.source,
			Date:   latest.item.String("versionTimestampLastUpdate"),
			Fields: latest.item,
		}},
		Confidence: 90,
		Version:    verified,
		Debug:      trace,
	}, nil
}

// detectOS returns the first known OS named as a whole word in query
func detectOS(query string) string {
	words := vendor.Tokenize(query)
	for _, name := range KnownOS {
		if slices.Contains(words, name) {
			return name
		}
	}
	return ""
}

// appendOSMatches adds it and any objects nested under versionList that
// describe osName and fall on day
func appendOSMatches(out []osCandidate, it feed.Item, source, osName, day string) []osCandidate {
	if matchesOS(it, osName, day) {
		out = append(out, osCandidate{item: it, source: source})
	}
	nested, ok := it["versionList"].([]any)
	if !ok {
		return out
	}
	for _, v := range nested {
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if sub := feed.Item(obj); matchesOS(sub, osName, day) {
			out = append(out, osCandidate{item: sub, source: source})
		}
	}
	return out
}

func matchesOS(it feed.Item, osName, day string) bool {
	if !looksLikeVersion(it) {
		return false
	}
	return it.Lower("versionProductType") == "os" &&
		it.Lower("versionProductName") == osName &&
		sameDay(it, day)
}

func looksLikeVersion(it feed.Item) bool {
	for _, k := range []string{"versionProductType", "versionProductName", "versionNumber", "versionId"} {
		if _, ok := it[k]; ok {
			return true
		}
	}
	return false
}

// sameDay matches day against the last-update prefix or anywhere in the release date
func sameDay(it feed.Item, day string) bool {
	if day == "" {
		return true
	}
	if strings.HasPrefix(strings.TrimSpace(it.String("versionTimestampLastUpdate")), day) {
		return true
	}
	return strings.Contains(strings.TrimSpace(it.String("versionReleaseDate")), day)
}
