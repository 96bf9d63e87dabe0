package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/farheen-shaikh530/releasehub/internal/model"
)

// Fetcher reads one feed body, possibly from cache
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, cacheKey string, ttl time.Duration) ([]byte, error)
}

// Sink appends a fetched payload to the raw layer
type Sink interface {
	Ingest(ctx context.Context, source, url string, payload any) (model.RawRecord, error)
}

// Target is one feed to capture
type Target struct {
	Source   string
	URL      string
	CacheKey string
	TTL      time.Duration // 0 forces a live fetch
}

// IngestJob fetches one target and stores the body as a raw record
type IngestJob struct {
	Target  Target
	Fetcher Fetcher
	Sink    Sink
}

// Execute fetches the target and appends the body to the raw layer
func (j *IngestJob) Execute(ctx context.Context) *IngestResult {
	body, err := j.Fetcher.Fetch(ctx, j.Target.URL, j.Target.CacheKey, j.Target.TTL)
	if err != nil {
		return &IngestResult{Target: j.Target, Error: errors.Wrapf(err, "fetch %s", j.Target.Source)}
	}
	rec, err := j.Sink.Ingest(ctx, j.Target.Source, j.Target.URL, json.RawMessage(body))
	if err != nil {
		return &IngestResult{Target: j.Target, Error: err}
	}
	return &IngestResult{Target: j.Target, Record: rec}
}

// IngestResult is the outcome of one IngestJob
type IngestResult struct {
	Target Target
	Record model.RawRecord
	Error  error
}

// BatchIngester captures several feeds concurrently
type BatchIngester struct {
	fetcher     Fetcher
	sink        Sink
	concurrency int
}

// NewBatchIngester creates a batch ingester
func NewBatchIngester(fetcher Fetcher, sink Sink, concurrency int) *BatchIngester {
	return &BatchIngester{
		fetcher:     fetcher,
		sink:        sink,
		concurrency: concurrency,
	}
}

// Run ingests every target. One failed target does not stop the others;
// every target gets a result, in completion order.
func (b *BatchIngester) Run(ctx context.Context, targets []Target) []*IngestResult {
	jobs := make([]*IngestJob, len(targets))
	for i, t := range targets {
		jobs[i] = &IngestJob{Target: t, Fetcher: b.fetcher, Sink: b.sink}
	}
	return NewPool(b.concurrency).Run(ctx, jobs)
}

// ReadTargetsFromFile reads extra feeds, one "<source> <url>" pair per line.
// A line holding only a URL gets source "custom". Blank lines and # comments
// are skipped and repeated URLs are dropped.
func ReadTargetsFromFile(filePath string, ttl time.Duration) ([]Target, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}
	defer func() { _ = file.Close() }()

	var targets []Target
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		source, url := "custom", line
		if fields := strings.Fields(line); len(fields) >= 2 {
			source, url = fields[0], fields[1]
		}
		if seen[url] {
			continue
		}
		seen[url] = true
		targets = append(targets, Target{
			Source:   source,
			URL:      url,
			CacheKey: source + "_" + url,
			TTL:      ttl,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan file")
	}
	return targets, nil
}
