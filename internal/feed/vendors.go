package feed

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/farheen-shaikh530/releasehub/internal/metrics"
	"github.com/farheen-shaikh530/releasehub/internal/vendor"
)

// VendorCacheFile is the local allow-list snapshot, kept indefinitely once written
const VendorCacheFile = "vendor_names_local.json"

// Where an allow-list came from
const (
	OriginLocalFile = "local_file"
	OriginAPI       = "api"
	OriginMissing   = "missing_cfg"
)

// VendorSet is a loaded allow-list plus its origin
type VendorSet struct {
	Names  vendor.AllowList
	Origin string
}

// VendorLoader loads the allow-list local-file first, remote second
type VendorLoader struct {
	client   *Client
	url      string
	cacheDir string
	ttl      time.Duration
	logger   *zap.SugaredLogger
	metrics  *metrics.Metrics
}

// NewVendorLoader creates a loader. ttl only governs the HTTP cache entry;
// the local snapshot never expires.
func NewVendorLoader(client *Client, vendorURL, cacheDir string, ttl time.Duration, logger *zap.SugaredLogger, m *metrics.Metrics) *VendorLoader {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &VendorLoader{
		client:   client,
		url:      vendorURL,
		cacheDir: cacheDir,
		ttl:      ttl,
		logger:   logger,
		metrics:  m,
	}
}

// Path is the local snapshot location
func (l *VendorLoader) Path() string {
	return filepath.Join(l.cacheDir, VendorCacheFile)
}

// Load returns the allow-list. A remote failure yields an empty set and the
// error, which callers log and otherwise ignore.
func (l *VendorLoader) Load(ctx context.Context) (VendorSet, error) {
	if l.url == "" || l.cacheDir == "" {
		return VendorSet{Names: vendor.AllowList{}, Origin: OriginMissing}, nil
	}

	if names, ok := l.readLocal(); ok {
		return VendorSet{Names: names, Origin: OriginLocalFile}, nil
	}

	raw, err := l.client.GetJSON(ctx, l.url, KeyVendorNames, l.ttl)
	if err != nil {
		return VendorSet{Names: vendor.AllowList{}, Origin: OriginAPI}, errors.Wrap(err, "fetch vendor names")
	}
	names := ParseVendorNames(raw)

	if err := l.persist(names); err != nil {
		l.metrics.WriteFailure("vendor_file")
		l.logger.Warnw("Vendor snapshot not persisted", "path", l.Path(), "error", err)
	}
	return VendorSet{Names: names, Origin: OriginAPI}, nil
}

// ParseVendorNames accepts objects with a "name" field or bare strings
func ParseVendorNames(raw any) vendor.AllowList {
	names := vendor.AllowList{}
	for _, it := range Normalize(raw) {
		if s, ok := it["name"].(string); ok {
			if n := vendor.Normalize(s); n != "" {
				names[n] = struct{}{}
			}
		}
	}
	if list, ok := raw.([]any); ok {
		for _, v := range list {
			if s, ok := v.(string); ok {
				if n := vendor.Normalize(s); n != "" {
					names[n] = struct{}{}
				}
			}
		}
	}
	return names
}

func (l *VendorLoader) readLocal() (vendor.AllowList, bool) {
	data, err := os.ReadFile(l.Path())
	if err != nil {
		return nil, false
	}
	var list []any
	if err := json.Unmarshal(data, &list); err != nil {
		l.logger.Debugw("Ignoring unreadable vendor snapshot", "path", l.Path(), "error", err)
		return nil, false
	}
	names := vendor.AllowList{}
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if n := vendor.Normalize(s); n != "" {
			names[n] = struct{}{}
		}
	}
	if len(names) == 0 {
		return nil, false
	}
	return names, true
}

func (l *VendorLoader) persist(names vendor.AllowList) error {
	if err := os.MkdirAll(l.cacheDir, 0o755); err != nil {
		return errors.Wrap(err, "create cache dir")
	}
	data, err := json.Marshal(names.Sorted())
	if err != nil {
		return errors.Wrap(err, "encode vendor names")
	}
	return errors.Wrap(os.WriteFile(l.Path(), data, 0o644), "write vendor snapshot")
}
