package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/farheen-shaikh530/releasehub/internal/feed"
	"github.com/farheen-shaikh530/releasehub/internal/model"
	"github.com/farheen-shaikh530/releasehub/internal/worker"
)

var (
	ingestFeedsFile   string
	ingestConcurrency int
	ingestTimeout     time.Duration
	ingestFresh       bool
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Capture the release-signal feeds into the raw layer",
	Long: `Ingest fetches the OS component feed and the general discussion feed
(plus any extra feeds listed with --feeds) concurrently and appends each
response to the raw table. Every run adds new rows; nothing is deduplicated.

Example:
  releasehub ingest
  releasehub ingest --fresh
  releasehub ingest --feeds extra.txt --concurrency 4`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestFeedsFile, "feeds", "", `file of extra feeds, one "<source> <url>" per line`)
	ingestCmd.Flags().IntVar(&ingestConcurrency, "concurrency", 0, "number of concurrent fetches (default: limits.fetch_workers)")
	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", 2*time.Minute, "overall ingest timeout")
	ingestCmd.Flags().BoolVar(&ingestFresh, "fresh", false, "bypass the feed cache")
}

// ingestTargets lists the built-in feeds
func ingestTargets(cfg *model.Config, fresh bool) []worker.Target {
	componentTTL, redditTTL := cfg.Cache.ComponentTTL, cfg.Cache.RedditTTL
	if fresh {
		componentTTL, redditTTL = 0, 0
	}
	return []worker.Target{
		{
			Source:   feed.SourceComponentOS,
			URL:      feed.ComponentOSURL(cfg.Feeds.ComponentURL),
			CacheKey: feed.KeyComponentOS,
			TTL:      componentTTL,
		},
		{
			Source:   feed.SourceReddit,
			URL:      feed.RedditURL(cfg.Feeds.RedditURL),
			CacheKey: feed.KeyReddit,
			TTL:      redditTTL,
		},
	}
}

func runIngest(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), ingestTimeout)
	defer cancel()

	a, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := a.close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	targets := ingestTargets(a.cfg, ingestFresh)
	if ingestFeedsFile != "" {
		ttl := a.cfg.Cache.RedditTTL
		if ingestFresh {
			ttl = 0
		}
		extra, err := worker.ReadTargetsFromFile(ingestFeedsFile, ttl)
		if err != nil {
			return fmt.Errorf("read feeds: %w", err)
		}
		targets = append(targets, extra...)
	}

	concurrency := ingestConcurrency
	if concurrency <= 0 {
		concurrency = a.cfg.Limits.FetchWorkers
	}

	results := worker.NewBatchIngester(a.client, a.store, concurrency).Run(ctx, targets)

	for _, res := range results {
		if res.Error != nil {
			a.log.Warnw("Feed not ingested", "source", res.Target.Source, "url", res.Target.URL, "error", res.Error)
			continue
		}
		a.log.Infow("Feed ingested", "source", res.Target.Source, "id", res.Record.ID, "bytes", len(res.Record.Payload))
	}

	failed := len(worker.Errors(results))
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Ingested %d/%d feeds\n", len(results)-failed, len(targets))
	if failed == len(targets) {
		return fmt.Errorf("no feed could be ingested")
	}
	return nil
}
