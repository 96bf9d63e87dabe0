// Package orchestrator answers free-text release questions by trying an
// ordered list of strategies; the first one that produces an answer wins.
package orchestrator

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farheen-shaikh530/releasehub/internal/feed"
	"github.com/farheen-shaikh530/releasehub/internal/metrics"
	"github.com/farheen-shaikh530/releasehub/internal/model"
)

// Strategy is one way of answering a query. Try returns (nil, nil) when the
// strategy does not apply to the query.
type Strategy interface {
	Name() string
	Try(ctx context.Context, query string) (*model.Answer, error)
}

// VendorSource loads the vendor allow-list
type VendorSource interface {
	Load(ctx context.Context) (feed.VendorSet, error)
}

// FactSource looks up resolved facts
type FactSource interface {
	LatestFact(ctx context.Context, vendor string) (*model.LatestVersionFact, error)
	ReleaseFact(ctx context.Context, vendor string, intent model.Intent) (*model.ReleaseFact, error)
}

// SentenceSource searches the sentence layer
type SentenceSource interface {
	QuerySentences(ctx context.Context, vendor string, intent model.Intent, limit int) ([]model.Sentence, error)
}

// FeedSource reads cached feed items
type FeedSource interface {
	Items(ctx context.Context, rawURL, cacheKey string, ttl time.Duration) ([]feed.Item, error)
}

// Rephraser optionally rewords an answer around an already verified version
type Rephraser interface {
	Rephrase(ctx context.Context, query, version, draft string) (string, error)
}

// Options configures an Orchestrator
type Options struct {
	Logger    *zap.SugaredLogger
	Metrics   *metrics.Metrics
	Rephraser Rephraser // nil keeps deterministic text
	Debug     bool      // attach the per-query trace to answers
}

// Orchestrator runs strategies in priority order
type Orchestrator struct {
	strategies []Strategy
	logger     *zap.SugaredLogger
	metrics    *metrics.Metrics
	rephraser  Rephraser
	debug      bool
}

// New creates an orchestrator over strategies, evaluated in the given order
func New(strategies []Strategy, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Orchestrator{
		strategies: strategies,
		logger:     logger,
		metrics:    opts.Metrics,
		rephraser:  opts.Rephraser,
		debug:      opts.Debug,
	}
}

// Answer returns the first strategy answer for query. Abstention is an
// answer, not an error; errors come only from the local store.
func (o *Orchestrator) Answer(ctx context.Context, query string) (*model.Answer, error) {
	traceID := uuid.NewString()
	log := o.logger.With("trace_id", traceID)

	for _, s := range o.strategies {
		a, err := s.Try(ctx, query)
		if err != nil {
			return nil, errors.Wrapf(err, "strategy %s", s.Name())
		}
		if a == nil {
			log.Debugw("Strategy not applicable", "strategy", s.Name())
			continue
		}

		a.Strategy = s.Name()
		a.TraceID = traceID
		o.rephrase(ctx, log, query, a)
		if !o.debug {
			a.Debug = nil
		}
		o.metrics.Answer(a.Strategy, a.Abstained)
		log.Infow("Answered", "strategy", a.Strategy, "abstained", a.Abstained, "confidence", a.Confidence)
		return a, nil
	}

	a := model.AbstainAnswer("Abstained", 0)
	a.TraceID = traceID
	o.metrics.Answer("none", true)
	return a, nil
}

// rephrase is only consulted for answers carrying a verified version
func (o *Orchestrator) rephrase(ctx context.Context, log *zap.SugaredLogger, query string, a *model.Answer) {
	if o.rephraser == nil || a.Abstained || a.Version == "" {
		return
	}
	text, err := o.rephraser.Rephrase(ctx, query, a.Version, a.ShortAnswer)
	if err != nil {
		log.Warnw("Keeping deterministic answer", "error", err)
		return
	}
	a.ShortAnswer = text
}
