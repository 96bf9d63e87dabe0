package model

import "strings"

// AbstainText is the fixed answer surfaced whenever evidence is insufficient
const AbstainText = "I don’t know from the current evidence."

// Intent classifies what a query is asking for
type Intent string

const (
	IntentVersion Intent = "VERSION"
	IntentCVE     Intent = "CVE"
	IntentPatch   Intent = "PATCH"
	IntentOther   Intent = "OTHER"
)

// ParseIntent normalizes a stored or user-supplied intent name
func ParseIntent(s string) Intent {
	switch Intent(strings.ToUpper(strings.TrimSpace(s))) {
	case IntentVersion:
		return IntentVersion
	case IntentCVE:
		return IntentCVE
	case IntentPatch:
		return IntentPatch
	default:
		return IntentOther
	}
}

// ClassifyIntent picks an intent from keywords in a free-text query.
// CVE wins over PATCH, PATCH over VERSION.
func ClassifyIntent(query string) Intent {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "cve") || strings.Contains(q, "vulnerab"):
		return IntentCVE
	case strings.Contains(q, "patch") || strings.Contains(q, "hotfix") || strings.Contains(q, "security update"):
		return IntentPatch
	case strings.Contains(q, "version") || strings.Contains(q, "release") ||
		strings.Contains(q, "latest") || strings.Contains(q, "build"):
		return IntentVersion
	default:
		return IntentOther
	}
}

// Verification is the verifier's decision for one query
type Verification struct {
	Abstain    bool    `json:"abstain"`
	Confidence float64 `json:"confidence"` // 0..1
	Reason     string  `json:"reason"`
}

// Evidence is one supporting record shown with an answer
type Evidence struct {
	Title   string         `json:"title,omitempty"`
	Source  string         `json:"source,omitempty"`
	Date    string         `json:"date,omitempty"`
	URL     string         `json:"url,omitempty"`
	Snippet string         `json:"snippet,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"` // raw feed fields for record-based answers
}

// Answer is the final record returned for a query
type Answer struct {
	ShortAnswer string         `json:"short_answer"`
	Meta        string         `json:"meta"`
	Citations   []string       `json:"citations,omitempty"`
	Evidence    []Evidence     `json:"evidence,omitempty"`
	Abstained   bool           `json:"abstained"`
	Confidence  int            `json:"confidence"` // 0..100, advisory
	Version     string         `json:"version,omitempty"` // verified version string, when one was resolved
	Strategy    string         `json:"strategy,omitempty"`
	TraceID     string         `json:"trace_id,omitempty"`
	Debug       map[string]any `json:"debug,omitempty"`
}

// AbstainAnswer builds an abstain answer with a fixed confidence
func AbstainAnswer(meta string, confidence int) *Answer {
	return &Answer{
		ShortAnswer: AbstainText,
		Meta:        meta,
		Abstained:   true,
		Confidence:  confidence,
	}
}
