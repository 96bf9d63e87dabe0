package model

import "time"

// RawRecord is one captured feed payload. Rows are never mutated.
type RawRecord struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
	URL       string    `json:"url"`
	Payload   []byte    `json:"payload"` // JSON as received
}

// Sentence is an atomic unit derived from a raw record
type Sentence struct {
	ID                string   `json:"id"`
	Source            string   `json:"source"`
	URL               string   `json:"url"`
	PublishedAt       string   `json:"published_at"`
	Text              string   `json:"text"`
	Versions          []string `json:"versions"`
	Vendors           []string `json:"vendors"`
	HasVersionKeyword bool     `json:"has_version_kw"`
}

// LatestVersionFact is the single best version per vendor
type LatestVersionFact struct {
	Vendor   string `json:"vendor"`
	Version  string `json:"latest_version"`
	FactDate string `json:"fact_date"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet"`
}

// ReleaseFact is a generic per-intent fact (CVE, PATCH).
// Nothing populates it yet; lookups return nil until a stage does.
type ReleaseFact struct {
	ID       string `json:"id"`
	Vendor   string `json:"vendor"`
	Intent   Intent `json:"intent"`
	FactDate string `json:"fact_date"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet"`
	Payload  any    `json:"fact,omitempty"` // any JSON value
}

// StageState is the build status of one derived layer
type StageState string

const (
	StageNotBuilt StageState = "not_built"
	StageBuilding StageState = "building"
	StageBuilt    StageState = "built"
)
