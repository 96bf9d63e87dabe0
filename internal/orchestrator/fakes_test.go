package orchestrator

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/farheen-shaikh530/releasehub/internal/feed"
	"github.com/farheen-shaikh530/releasehub/internal/model"
	"github.com/farheen-shaikh530/releasehub/internal/vendor"
)

type fakeVendors struct {
	names []string
	err   error
}

func (f fakeVendors) Load(context.Context) (feed.VendorSet, error) {
	if f.err != nil {
		return feed.VendorSet{Names: vendor.AllowList{}, Origin: feed.OriginAPI}, f.err
	}
	return feed.VendorSet{Names: vendor.NewAllowList(f.names...), Origin: feed.OriginLocalFile}, nil
}

type fakeFacts struct {
	latest  map[string]*model.LatestVersionFact
	release *model.ReleaseFact
	err     error
}

func (f *fakeFacts) LatestFact(_ context.Context, v string) (*model.LatestVersionFact, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.latest[v], nil
}

func (f *fakeFacts) ReleaseFact(_ context.Context, v string, intent model.Intent) (*model.ReleaseFact, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.release != nil && f.release.Vendor == v && f.release.Intent == intent {
		return f.release, nil
	}
	return nil, nil
}

type fakeSentences struct {
	out       []model.Sentence
	gotVendor string
	gotIntent model.Intent
	gotLimit  int
}

func (f *fakeSentences) QuerySentences(_ context.Context, v string, intent model.Intent, limit int) ([]model.Sentence, error) {
	f.gotVendor, f.gotIntent, f.gotLimit = v, intent, limit
	return f.out, nil
}

type fakeFeeds struct {
	byKey map[string][]feed.Item
	errs  map[string]error
	urls  []string
}

func (f *fakeFeeds) Items(_ context.Context, rawURL, key string, _ time.Duration) ([]feed.Item, error) {
	f.urls = append(f.urls, rawURL)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.byKey[key], nil
}

type fakeRephraser struct {
	text    string
	err     error
	calls   int
	version string
}

func (f *fakeRephraser) Rephrase(_ context.Context, _, version, _ string) (string, error) {
	f.calls++
	f.version = version
	return f.text, f.err
}

var errFeedDown = errors.New("feed down")
