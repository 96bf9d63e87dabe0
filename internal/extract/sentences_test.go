package extract

import (
	"reflect"
	"testing"
	"time"

	"github.com/farheen-shaikh530/releasehub/internal/feed"
	"github.com/farheen-shaikh530/releasehub/internal/model"
	"github.com/farheen-shaikh530/releasehub/internal/vendor"
)

func testRecord() model.RawRecord {
	return model.RawRecord{
		ID:        "raw-1",
		Source:    "reddit",
		URL:       "https://example.test/api/reddit",
		FetchedAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBlob_FieldVariants(t *testing.T) {
	tests := []struct {
		name string
		item feed.Item
		want string
	}{
		{"title and notes", feed.Item{"title": "Acme", "notes": "Version 1.2 out."}, "Acme. Version 1.2 out."},
		{"product name and release notes", feed.Item{"versionProductName": "Android", "versionReleaseNotes": "Release 15."}, "Android. Release 15."},
		{"body fallback", feed.Item{"title": "t", "body": "b"}, "t. b"},
		{"title wins over product name", feed.Item{"title": "A", "versionProductName": "B"}, "A."},
		{"nothing", feed.Item{}, "."},
		{"html notes", feed.Item{"title": "Acme", "notes": "<p>Release <b>2.0</b></p>"}, "Acme. Release 2.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Blob(tt.item); got != tt.want {
				t.Errorf("Blob() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPublishedAt(t *testing.T) {
	if got := PublishedAt(feed.Item{"createdAt": "2025-01-02", "updatedAt": "2025-02-03"}, "x"); got != "2025-02-03" {
		t.Errorf("updatedAt should win, got %q", got)
	}
	if got := PublishedAt(feed.Item{"created_utc": 1712345678.0}, "x"); got != "1712345678" {
		t.Errorf("created_utc not stringified, got %q", got)
	}
	if got := PublishedAt(feed.Item{}, "2025-05-01T12:00:00Z"); got != "2025-05-01T12:00:00Z" {
		t.Errorf("fetch time fallback, got %q", got)
	}
}

func TestExtractor_Derive(t *testing.T) {
	matcher := vendor.NewNGram(vendor.NewAllowList("acme", "watch guard", "watch guard fireware os"))
	e := NewExtractor(matcher, 0)

	items := []feed.Item{
		{
			"title":     "Watch Guard Fireware OS 12.10 release",
			"notes":     "Acme also shipped version 3.4.0. Nothing else here.",
			"updatedAt": "2025-05-01",
		},
	}
	got := e.Derive(testRecord(), items)
	if len(got) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %+v", len(got), got)
	}

	first := got[0]
	if first.Text != "Watch Guard Fireware OS 12.10 release." {
		t.Errorf("unexpected first sentence %q", first.Text)
	}
	if !reflect.DeepEqual(first.Vendors, []string{"watch guard fireware os", "watch guard"}) {
		t.Errorf("vendors = %q", first.Vendors)
	}
	if !reflect.DeepEqual(first.Versions, []string{"12.10"}) || !first.HasVersionKeyword {
		t.Errorf("versions/keyword wrong: %+v", first)
	}
	if first.PublishedAt != "2025-05-01" {
		t.Errorf("published = %q", first.PublishedAt)
	}

	second := got[1]
	if !reflect.DeepEqual(second.Vendors, []string{"acme"}) || !reflect.DeepEqual(second.Versions, []string{"3.4.0"}) {
		t.Errorf("second sentence wrong: %+v", second)
	}

	third := got[2]
	if len(third.Vendors) != 0 || len(third.Versions) != 0 || third.HasVersionKeyword {
		t.Errorf("third sentence should carry no annotations: %+v", third)
	}
	if third.Vendors == nil || third.Versions == nil {
		t.Error("empty annotations must be empty lists, not nil")
	}
}

func TestExtractor_DeterministicIDs(t *testing.T) {
	e := NewExtractor(nil, 0)
	items := []feed.Item{{"title": "Acme", "notes": "Version 1.2."}}

	a := e.Derive(testRecord(), items)
	b := e.Derive(testRecord(), items)
	if len(a) == 0 || a[0].ID != b[0].ID {
		t.Fatal("same input must yield the same sentence id")
	}
	if a[0].ID != SentenceID("reddit", "https://example.test/api/reddit", "2025-05-01T12:00:00Z", "Acme.") {
		t.Errorf("id does not match source|url|published|text: %s", a[0].ID)
	}
	if len(a[0].ID) != 40 {
		t.Errorf("expected sha1 hex, got %q", a[0].ID)
	}
}

func TestExtractor_MaxSentences(t *testing.T) {
	e := NewExtractor(nil, 2)
	got := e.Derive(testRecord(), []feed.Item{{"title": "A", "notes": "B. C. D."}})
	if len(got) != 2 {
		t.Errorf("expected cap of 2, got %d", len(got))
	}
}
