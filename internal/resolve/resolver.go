package resolve

import (
	"sort"
	"strings"

	"github.com/farheen-shaikh530/releasehub/internal/model"
)

// SnippetLimit caps the sentence text stored with a fact
const SnippetLimit = 260

type candidate struct {
	key  RankKey
	fact model.LatestVersionFact
}

// Resolver keeps the best (date, version) pairing per vendor.
// Ties keep the first pairing added; replacement needs a strictly greater key.
type Resolver struct {
	best map[string]candidate
}

// NewResolver creates an empty resolver
func NewResolver() *Resolver {
	return &Resolver{best: make(map[string]candidate)}
}

// Add considers every (vendor, version) pair of one sentence
func (r *Resolver) Add(s model.Sentence) {
	for _, v := range s.Vendors {
		vendor := strings.ToLower(strings.TrimSpace(v))
		if vendor == "" {
			continue
		}
		for _, ver := range s.Versions {
			ver = strings.TrimSpace(ver)
			if ver == "" {
				continue
			}
			key := RankKey{Date: s.PublishedAt, Version: SemverKey(ver)}
			if cur, ok := r.best[vendor]; ok && !key.Greater(cur.key) {
				continue
			}
			r.best[vendor] = candidate{
				key: key,
				fact: model.LatestVersionFact{
					Vendor:   vendor,
					Version:  ver,
					FactDate: s.PublishedAt,
					Source:   s.Source,
					URL:      s.URL,
					Snippet:  truncate(s.Text, SnippetLimit),
				},
			}
		}
	}
}

// Len is the number of vendors resolved so far
func (r *Resolver) Len() int {
	return len(r.best)
}

// Results returns the winning fact per vendor, ordered by vendor name
func (r *Resolver) Results() []model.LatestVersionFact {
	out := make([]model.LatestVersionFact, 0, len(r.best))
	for _, c := range r.best {
		out = append(out, c.fact)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Vendor < out[j].Vendor })
	return out
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
