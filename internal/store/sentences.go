package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/farheen-shaikh530/releasehub/internal/extract"
	"github.com/farheen-shaikh530/releasehub/internal/feed"
	"github.com/farheen-shaikh530/releasehub/internal/model"
)

// BuildSentences derives the sentence layer from every raw record, once.
// It does nothing while the sentence table has rows. Payloads that fail to
// decode are logged and skipped; duplicate sentence ids are dropped.
func (s *Store) BuildSentences(ctx context.Context, ex *extract.Extractor) (StageResult, error) {
	return s.runStage(ctx, StageSentences,
		func(ctx context.Context) (bool, error) {
			n, err := s.count(ctx, "sentences")
			return n > 0, err
		},
		func(ctx context.Context) (int, error) {
			return s.buildSentences(ctx, ex)
		})
}

func (s *Store) buildSentences(ctx context.Context, ex *extract.Extractor) (int, error) {
	records, err := s.RawRecords(ctx)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin sentence build")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sentences (id, source, url, published_at, text, versions_json, vendors_json, has_version_kw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return 0, errors.Wrap(err, "prepare sentence insert")
	}
	defer func() { _ = stmt.Close() }()

	inserted, skipped := 0, 0
	for _, rec := range records {
		payload, err := feed.DecodePayload(rec.Payload)
		if err != nil {
			skipped++
			s.logger.Warnw("Skipping undecodable raw payload", "id", rec.ID, "source", rec.Source, "error", err)
			continue
		}
		for _, sent := range ex.Derive(rec, payload.Items()) {
			versions, _ := json.Marshal(sent.Versions)
			vendors, _ := json.Marshal(sent.Vendors)
			res, err := stmt.ExecContext(ctx,
				sent.ID, sent.Source, sent.URL, sent.PublishedAt, sent.Text,
				string(versions), string(vendors), sent.HasVersionKeyword)
			if err != nil {
				return 0, errors.Wrapf(err, "insert sentence %s", sent.ID)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit sentence build")
	}
	s.metrics.RowsWritten("sentences", inserted)
	if skipped > 0 {
		s.logger.Infow("Raw records skipped", "stage", StageSentences, "skipped", skipped)
	}
	return inserted, nil
}

// QuerySentences returns sentences mentioning vendor (substring of the stored
// vendor list) that fit intent, newest first. VERSION requires the keyword
// flag and at least one version token; CVE and PATCH require the flag.
func (s *Store) QuerySentences(ctx context.Context, vendor string, intent model.Intent, limit int) ([]model.Sentence, error) {
	var (
		where []string
		args  []any
	)
	if v := strings.ToLower(strings.TrimSpace(vendor)); v != "" {
		where = append(where, "lower(vendors_json) LIKE ?")
		args = append(args, "%"+v+"%")
	}
	switch intent {
	case model.IntentVersion:
		where = append(where, "has_version_kw", "versions_json IS NOT NULL AND versions_json != '[]'")
	case model.IntentCVE, model.IntentPatch:
		where = append(where, "has_version_kw")
	}

	q := `SELECT id, source, url, published_at, text, versions_json, vendors_json, has_version_kw FROM sentences`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY published_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query sentences")
	}
	defer func() { _ = rows.Close() }()

	var out []model.Sentence
	for rows.Next() {
		var (
			sent              model.Sentence
			versions, vendors string
		)
		if err := rows.Scan(&sent.ID, &sent.Source, &sent.URL, &sent.PublishedAt, &sent.Text,
			&versions, &vendors, &sent.HasVersionKeyword); err != nil {
			return nil, errors.Wrap(err, "scan sentence")
		}
		if !decodeTokens(versions, &sent.Versions) || !decodeTokens(vendors, &sent.Vendors) {
			s.logger.Debugw("Skipping sentence with malformed token lists", "id", sent.ID)
			continue
		}
		out = append(out, sent)
	}
	return out, errors.Wrap(rows.Err(), "iterate sentences")
}

// factCandidates lists every sentence qualifying for a version fact, newest first
func (s *Store) factCandidates(ctx context.Context) ([]model.Sentence, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT published_at, source, url, text, versions_json, vendors_json
		FROM sentences
		WHERE versions_json IS NOT NULL AND versions_json != '[]'
		  AND vendors_json IS NOT NULL AND vendors_json != '[]'
		  AND has_version_kw
		ORDER BY published_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "query fact candidates")
	}
	defer func() { _ = rows.Close() }()

	var out []model.Sentence
	for rows.Next() {
		var (
			sent              model.Sentence
			versions, vendors string
		)
		if err := rows.Scan(&sent.PublishedAt, &sent.Source, &sent.URL, &sent.Text, &versions, &vendors); err != nil {
			return nil, errors.Wrap(err, "scan fact candidate")
		}
		if !decodeTokens(versions, &sent.Versions) || !decodeTokens(vendors, &sent.Vendors) {
			continue
		}
		sent.HasVersionKeyword = true
		out = append(out, sent)
	}
	return out, errors.Wrap(rows.Err(), "iterate fact candidates")
}

// decodeTokens parses a stored JSON string list; non-string entries are dropped
func decodeTokens(raw string, dst *[]string) bool {
	if raw == "" {
		*dst = []string{}
		return true
	}
	var vs []any
	if err := json.Unmarshal([]byte(raw), &vs); err != nil {
		return false
	}
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	*dst = out
	return true
}
