package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/farheen-shaikh530/releasehub/internal/cache"
	"github.com/farheen-shaikh530/releasehub/internal/feed"
	"github.com/farheen-shaikh530/releasehub/internal/metrics"
	"github.com/farheen-shaikh530/releasehub/internal/model"
	"github.com/farheen-shaikh530/releasehub/internal/store"
)

// app holds the components shared by every command
type app struct {
	cfg     *model.Config
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
	client  *feed.Client
	vendors *feed.VendorLoader
	store   *store.Store
}

// openApp loads configuration and builds the feed client, vendor loader
// and store. Callers must call close.
func openApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := newLogger()
	if err != nil {
		return nil, err
	}
	m := metrics.New()

	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Paths.CacheDir)
	}
	client := feed.NewClient(feed.Options{
		HTTP:    cfg.HTTP,
		Cache:   c,
		Logger:  log.Named("feed"),
		Metrics: m,
	})

	st, err := store.Open(ctx, cfg.Paths.DBPath, store.Options{
		Logger:  log.Named("store"),
		Metrics: m,
	})
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		log:     log,
		metrics: m,
		client:  client,
		vendors: feed.NewVendorLoader(client, cfg.Feeds.VendorURL, cfg.Paths.CacheDir, cfg.Cache.VendorTTL, log.Named("vendors"), m),
		store:   st,
	}, nil
}

// loadVendors returns the allow-list; a failed remote load is logged and
// leaves an empty list
func (a *app) loadVendors(ctx context.Context) feed.VendorSet {
	set, err := a.vendors.Load(ctx)
	if err != nil {
		a.log.Warnw("Vendor allow-list unavailable", "origin", set.Origin, "error", err)
	}
	return set
}

func (a *app) close() error {
	err := a.store.Close()
	if metricsFile != "" {
		if wErr := prometheus.WriteToTextfile(metricsFile, a.metrics.Registry); wErr != nil {
			a.log.Warnw("Metrics not written", "path", metricsFile, "error", wErr)
		}
	}
	_ = a.log.Sync()
	if err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
