// Package synth renders a verified decision and its evidence as an answer.
package synth

import (
	"fmt"
	"math"

	"github.com/farheen-shaikh530/releasehub/internal/model"
	"github.com/farheen-shaikh530/releasehub/internal/resolve"
)

const (
	maxCitations = 6
	maxEvidence  = 8
)

// Synthesize formats the final answer. An abstaining verification never
// carries citations or evidence, whatever was gathered.
func Synthesize(intent model.Intent, vendor string, v model.Verification, fact *model.LatestVersionFact, evidence []model.Evidence) *model.Answer {
	pct := Percent(v.Confidence)
	shownVendor := vendor
	if shownVendor == "" {
		shownVendor = "—"
	}

	if v.Abstain {
		return model.AbstainAnswer(
			fmt.Sprintf("Intent: %s · Vendor: %s · Abstained · Confidence: %d%% · %s", intent, shownVendor, pct, v.Reason),
			pct,
		)
	}

	if intent == model.IntentVersion && fact != nil {
		a := &model.Answer{
			ShortAnswer: fmt.Sprintf("Latest version of **%s** is **%s**.", vendor, fact.Version),
			Meta:        fmt.Sprintf("Intent: VERSION · Vendor: %s · VersionFound: yes · Confidence: %d%% · %s", vendor, pct, v.Reason),
			Evidence:    []model.Evidence{FactEvidence(vendor, fact)},
			Confidence:  pct,
		}
		if fact.URL != "" {
			a.Citations = []string{fact.URL}
		}
		return a
	}

	var citations []string
	for _, e := range evidence {
		if e.URL == "" {
			continue
		}
		citations = append(citations, e.URL)
		if len(citations) == maxCitations {
			break
		}
	}
	if len(evidence) > maxEvidence {
		evidence = evidence[:maxEvidence]
	}
	return &model.Answer{
		ShortAnswer: fmt.Sprintf("Here’s what I found for **%s** related to **%s**.", shownVendor, intent),
		Meta:        fmt.Sprintf("Intent: %s · Vendor: %s · Confidence: %d%% · %s", intent, shownVendor, pct, v.Reason),
		Citations:   citations,
		Evidence:    evidence,
		Confidence:  pct,
	}
}

// Percent converts a 0..1 confidence to a whole percentage
func Percent(c float64) int {
	return int(math.Round(c * 100))
}

// FactEvidence is the single evidence entry shown with a version fact
func FactEvidence(vendor string, f *model.LatestVersionFact) model.Evidence {
	return model.Evidence{
		Title:   vendor + " " + f.Version,
		Source:  f.Source,
		Date:    f.FactDate,
		URL:     f.URL,
		Snippet: f.Snippet,
	}
}

// SentenceEvidence turns matched sentences into evidence entries
func SentenceEvidence(sentences []model.Sentence) []model.Evidence {
	out := make([]model.Evidence, 0, len(sentences))
	for _, s := range sentences {
		snippet := []rune(s.Text)
		if len(snippet) > resolve.SnippetLimit {
			snippet = snippet[:resolve.SnippetLimit]
		}
		out = append(out, model.Evidence{
			Title:   s.Source,
			Source:  s.Source,
			Date:    s.PublishedAt,
			URL:     s.URL,
			Snippet: string(snippet),
		})
	}
	return out
}
