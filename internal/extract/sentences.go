package extract

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/farheen-shaikh530/releasehub/internal/feed"
	"github.com/farheen-shaikh530/releasehub/internal/model"
	"github.com/farheen-shaikh530/releasehub/internal/vendor"
)

// Field-name variants seen across upstream feeds
var (
	titleFields     = []string{"title", "versionProductName"}
	notesFields     = []string{"notes", "versionReleaseNotes", "body"}
	publishedFields = []string{"updatedAt", "createdAt", "created_utc"}
)

// Extractor derives sentence records from raw feed records
type Extractor struct {
	matcher      vendor.Matcher // nil tags no vendors
	maxSentences int
}

// NewExtractor creates an extractor. matcher may be nil when no allow-list is loaded.
func NewExtractor(matcher vendor.Matcher, maxSentences int) *Extractor {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	return &Extractor{matcher: matcher, maxSentences: maxSentences}
}

// Blob joins an item's title-like and notes-like fields into one text
func Blob(it feed.Item) string {
	title := it.First(titleFields...)
	notes := VisibleText(it.First(notesFields...))
	return strings.TrimSpace(title + ". " + notes)
}

// PublishedAt resolves an item's publication time, falling back to fetchedAt
func PublishedAt(it feed.Item, fetchedAt string) string {
	if p := it.First(publishedFields...); p != "" {
		return p
	}
	return fetchedAt
}

// SentenceID is the content address of one sentence
func SentenceID(source, url, publishedAt, text string) string {
	sum := sha1.Sum([]byte(source + "|" + url + "|" + publishedAt + "|" + text))
	return hex.EncodeToString(sum[:])
}

// Derive returns the sentences of every item in rec's payload.
// The payload must already be decoded; see feed.DecodePayload.
func (e *Extractor) Derive(rec model.RawRecord, items []feed.Item) []model.Sentence {
	fetchedAt := FormatTime(rec.FetchedAt)

	var out []model.Sentence
	for _, it := range items {
		published := PublishedAt(it, fetchedAt)
		for _, text := range SplitSentences(Blob(it), e.maxSentences) {
			out = append(out, e.sentence(rec, published, text))
		}
	}
	return out
}

func (e *Extractor) sentence(rec model.RawRecord, published, text string) model.Sentence {
	var vendors []string
	if e.matcher != nil {
		vendors = e.matcher.Match(text)
	}
	return model.Sentence{
		ID:                SentenceID(rec.Source, rec.URL, published, text),
		Source:            rec.Source,
		URL:               rec.URL,
		PublishedAt:       published,
		Text:              text,
		Versions:          nonNil(Versions(text)),
		Vendors:           nonNil(vendors),
		HasVersionKeyword: HasVersionKeyword(text),
	}
}

// FormatTime is the textual timestamp used in ids and fallbacks
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
