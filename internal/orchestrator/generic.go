package orchestrator

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/farheen-shaikh530/releasehub/internal/feed"
	"github.com/farheen-shaikh530/releasehub/internal/model"
	"github.com/farheen-shaikh530/releasehub/internal/synth"
	"github.com/farheen-shaikh530/releasehub/internal/vendor"
	"github.com/farheen-shaikh530/releasehub/internal/verify"
)

// Fixed confidences for the generic strategy's record-based outcomes
const (
	confidenceNoVendor = 20
	confidenceNoRecord = 40
	confidenceRecord   = 90
)

// GenericConfig wires the generic strategy
type GenericConfig struct {
	Vendors       VendorSource
	Facts         FactSource
	Sentences     SentenceSource
	Feeds         FeedSource
	ComponentURL  string // component feed base; "?q=os" is appended
	ComponentTTL  time.Duration
	EvidenceLimit int
	Logger        *zap.SugaredLogger
}

// GenericStrategy detects a vendor from the allow-list and answers from the
// gold fact, the OS component feed or matching sentences depending on intent.
// It always produces an answer.
type GenericStrategy struct {
	cfg GenericConfig
	log *zap.SugaredLogger
}

// NewGenericStrategy creates the strategy
func NewGenericStrategy(cfg GenericConfig) *GenericStrategy {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if cfg.EvidenceLimit <= 0 {
		cfg.EvidenceLimit = 20
	}
	return &GenericStrategy{cfg: cfg, log: log}
}

// Name implements Strategy
func (s *GenericStrategy) Name() string { return "generic" }

// Try implements Strategy
func (s *GenericStrategy) Try(ctx context.Context, query string) (*model.Answer, error) {
	trace := map[string]any{"query": query}

	set, err := s.cfg.Vendors.Load(ctx)
	if err != nil {
		s.log.Warnw("Vendor list unavailable", "error", err)
		trace["vendor_error"] = err.Error()
	}
	trace["vendor_source"] = set.Origin
	trace["allowed_vendors_count"] = len(set.Names)

	matcher := vendor.NewSubstring(set.Names)
	name := matcher.First(query)
	trace["vendor_detected"] = name
	trace["vendor_matcher"] = matcher.Name()
	if name == "" {
		a := model.AbstainAnswer("Abstained", confidenceNoVendor)
		a.Debug = trace
		return a, nil
	}

	day := genericDay(query)
	intent := model.ClassifyIntent(query)
	trace["day"] = day
	trace["intent"] = string(intent)

	var a *model.Answer
	if intent == model.IntentVersion {
		a, err = s.version(ctx, name, day, trace)
	} else {
		a, err = s.evidence(ctx, name, intent, day, trace)
	}
	if err != nil {
		return nil, err
	}
	a.Debug = trace
	return a, nil
}

// version answers from the gold fact, falling back to OS component records
func (s *GenericStrategy) version(ctx context.Context, name, day string, trace map[string]any) (*model.Answer, error) {
	fact, err := s.cfg.Facts.LatestFact(ctx, name)
	if err != nil {
		return nil, err
	}
	if fact != nil && day != "" && dayOf(fact.FactDate) != day {
		trace["fact_day_mismatch"] = fact.FactDate
		fact = nil
	}
	trace["fact_found"] = fact != nil

	if fact != nil {
		v := verify.Verify(model.IntentVersion, true, true, false)
		a := synth.Synthesize(model.IntentVersion, name, v, fact, nil)
		a.Version = fact.Version
		return a, nil
	}

	noFact := verify.Verify(model.IntentVersion, true, false, false)
	abstain := func(why string) *model.Answer {
		return model.AbstainAnswer("Intent: VERSION · Vendor: "+name+" · Abstained · "+noFact.Reason+" "+why, confidenceNoRecord)
	}

	items, err := s.cfg.Feeds.Items(ctx, feed.ComponentOSURL(s.cfg.ComponentURL), feed.KeyComponentOS, s.cfg.ComponentTTL)
	if err != nil {
		s.log.Warnw("Component feed unavailable", "vendor", name, "error", err)
		trace["os_error"] = err.Error()
	}
	trace["os_items"] = len(items)

	records := filterBrand(items, name, day)
	trace["candidates"] = len(records)
	if len(records) == 0 {
		return abstain("No matching feed record."), nil
	}

	best := pickLatest(records)
	number := strings.TrimSpace(best.String("versionNumber"))
	trace["picked_versionId"] = best.String("versionId")
	trace["picked_versionNumber"] = number
	trace["picked_last_update"] = best.String("versionTimestampLastUpdate")
	if number == "" {
		return abstain("Feed record has no version number."), nil
	}

	scope := "Latest"
	if day != "" {
		scope = "On " + day
	}
	return &model.Answer{
		ShortAnswer: number,
		Meta:        "Vendor: " + name + " · " + scope,
		Evidence: []model.Evidence{{
			Title:  name + " " + number,
			Source: "component_os",
			Date:   best.String("versionTimestampLastUpdate"),
			Fields: map[string]any{
				"versionId":                  best.String("versionId"),
				"versionNumber":              number,
				"versionProductBrand":        best["versionProductBrand"],
				"versionTimestampLastUpdate": best["versionTimestampLastUpdate"],
			},
		}},
		Confidence: confidenceRecord,
		Version:    number,
	}, nil
}

// evidence answers CVE, PATCH and other intents from matching sentences
func (s *GenericStrategy) evidence(ctx context.Context, name string, intent model.Intent, day string, trace map[string]any) (*model.Answer, error) {
	sentences, err := s.cfg.Sentences.QuerySentences(ctx, name, intent, s.cfg.EvidenceLimit)
	if err != nil {
		return nil, err
	}
	if day != "" {
		kept := make([]model.Sentence, 0, len(sentences))
		for _, sent := range sentences {
			if dayOf(sent.PublishedAt) == day {
				kept = append(kept, sent)
			}
		}
		sentences = kept
	}
	trace["sentences"] = len(sentences)

	evidence := synth.SentenceEvidence(sentences)
	if intent == model.IntentCVE || intent == model.IntentPatch {
		rf, err := s.cfg.Facts.ReleaseFact(ctx, name, intent)
		if err != nil {
			return nil, err
		}
		if rf != nil && (day == "" || dayOf(rf.FactDate) == day) {
			trace["release_fact"] = rf.ID
			evidence = append([]model.Evidence{{
				Title:   name + " " + string(rf.Intent),
				Source:  rf.Source,
				Date:    rf.FactDate,
				URL:     rf.URL,
				Snippet: rf.Snippet,
				Fields:  factFields(rf.Payload),
			}}, evidence...)
		}
	}

	v := verify.Verify(intent, true, false, len(evidence) > 0)
	return synth.Synthesize(intent, name, v, nil, evidence), nil
}

// factFields exposes a release-fact payload as evidence fields; non-object
// payloads sit under "fact"
func factFields(payload any) map[string]any {
	switch p := payload.(type) {
	case nil:
		return nil
	case map[string]any:
		return p
	default:
		return map[string]any{"fact": p}
	}
}

// filterBrand keeps records whose product brand is vendor, on day when given
func filterBrand(items []feed.Item, vendorName, day string) []feed.Item {
	var out []feed.Item
	for _, it := range items {
		if it.Lower("versionProductBrand") != vendorName {
			continue
		}
		if day != "" && dayOf(it.String("versionTimestampLastUpdate")) != day {
			continue
		}
		out = append(out, it)
	}
	return out
}

// pickLatest orders by numeric versionTimestamp, then last-update text;
// the first record wins ties
func pickLatest(records []feed.Item) feed.Item {
	best := records[0]
	for _, it := range records[1:] {
		if recordNewer(it, best) {
			best = it
		}
	}
	return best
}

func recordNewer(a, b feed.Item) bool {
	ta, tb := a.Int64("versionTimestamp"), b.Int64("versionTimestamp")
	if ta != tb {
		return ta > tb
	}
	return lastUpdate(a) > lastUpdate(b)
}

func lastUpdate(it feed.Item) string {
	s := it.String("versionTimestampLastUpdate")
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	return s
}
