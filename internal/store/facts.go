package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/farheen-shaikh530/releasehub/internal/model"
	"github.com/farheen-shaikh530/releasehub/internal/resolve"
)

// BuildFacts resolves one latest-version fact per vendor from the sentence
// layer. It does nothing when the fact table has rows or the sentence table
// is missing. Existing facts are deleted and the winners inserted in one
// transaction.
func (s *Store) BuildFacts(ctx context.Context) (StageResult, error) {
	return s.runStage(ctx, StageFacts,
		func(ctx context.Context) (bool, error) {
			exists, err := s.tableExists(ctx, "sentences")
			if err != nil || !exists {
				// nothing to build from counts as done
				return !exists, err
			}
			n, err := s.count(ctx, "latest_version_fact")
			return n > 0, err
		},
		s.buildFacts)
}

func (s *Store) buildFacts(ctx context.Context) (int, error) {
	candidates, err := s.factCandidates(ctx)
	if err != nil {
		return 0, err
	}

	r := resolve.NewResolver()
	for _, sent := range candidates {
		r.Add(sent)
	}
	facts := r.Results()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin fact build")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM latest_version_fact`); err != nil {
		return 0, errors.Wrap(err, "clear facts")
	}
	for _, f := range facts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO latest_version_fact (vendor, version, fact_date, source, url, snippet) VALUES (?, ?, ?, ?, ?, ?)`,
			f.Vendor, f.Version, f.FactDate, f.Source, f.URL, f.Snippet)
		if err != nil {
			return 0, errors.Wrapf(err, "insert fact for %s", f.Vendor)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit fact build")
	}

	s.metrics.RowsWritten("latest_version_fact", len(facts))
	s.logger.Debugw("Resolved facts", "candidates", len(candidates), "vendors", len(facts))
	return len(facts), nil
}

// LatestFact returns the fact for vendor, matched case-insensitively, or nil
func (s *Store) LatestFact(ctx context.Context, vendor string) (*model.LatestVersionFact, error) {
	var f model.LatestVersionFact
	err := s.db.QueryRowContext(ctx, `
		SELECT vendor, version, fact_date, source, url, snippet
		FROM latest_version_fact
		WHERE lower(vendor) = lower(?)
		LIMIT 1`, vendor).
		Scan(&f.Vendor, &f.Version, &f.FactDate, &f.Source, &f.URL, &f.Snippet)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "lookup fact for %s", vendor)
	}
	return &f, nil
}

// Facts lists every latest-version fact ordered by vendor
func (s *Store) Facts(ctx context.Context) ([]model.LatestVersionFact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT vendor, version, fact_date, source, url, snippet FROM latest_version_fact ORDER BY vendor`)
	if err != nil {
		return nil, errors.Wrap(err, "list facts")
	}
	defer func() { _ = rows.Close() }()

	var out []model.LatestVersionFact
	for rows.Next() {
		var f model.LatestVersionFact
		if err := rows.Scan(&f.Vendor, &f.Version, &f.FactDate, &f.Source, &f.URL, &f.Snippet); err != nil {
			return nil, errors.Wrap(err, "scan fact")
		}
		out = append(out, f)
	}
	return out, errors.Wrap(rows.Err(), "iterate facts")
}

// ReleaseFact returns the newest generic fact for vendor and intent, or nil.
// A payload that is not valid JSON comes back as a nil Payload.
func (s *Store) ReleaseFact(ctx context.Context, vendor string, intent model.Intent) (*model.ReleaseFact, error) {
	var (
		f       model.ReleaseFact
		intentS string
		payload sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, vendor, intent, fact_date, source, url, snippet, payload
		FROM release_fact
		WHERE lower(vendor) = lower(?) AND upper(intent) = upper(?)
		ORDER BY fact_date DESC
		LIMIT 1`, vendor, string(intent)).
		Scan(&f.ID, &f.Vendor, &intentS, &f.FactDate, &f.Source, &f.URL, &f.Snippet, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "lookup %s fact for %s", intent, vendor)
	}
	f.Intent = model.ParseIntent(intentS)
	if payload.Valid && payload.String != "" {
		var v any
		if err := json.Unmarshal([]byte(payload.String), &v); err == nil {
			f.Payload = v
		}
	}
	return &f, nil
}

// PutReleaseFact inserts or replaces one generic fact by id
func (s *Store) PutReleaseFact(ctx context.Context, f model.ReleaseFact) error {
	var payload any
	if f.Payload != nil {
		b, err := json.Marshal(f.Payload)
		if err != nil {
			return errors.Wrap(err, "encode release fact payload")
		}
		payload = string(b)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO release_fact (id, vendor, intent, fact_date, source, url, snippet, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Vendor, string(f.Intent), f.FactDate, f.Source, f.URL, f.Snippet, payload)
	if err != nil {
		return errors.Wrapf(err, "put release fact %s", f.ID)
	}
	s.metrics.RowsWritten("release_fact", 1)
	return nil
}
