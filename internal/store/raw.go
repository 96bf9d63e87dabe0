package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/farheen-shaikh530/releasehub/internal/model"
)

// RawID is the content address of one fetch: source|url|fetched_at
func RawID(source, url string, fetchedAt time.Time) string {
	sum := sha256.Sum256([]byte(source + "|" + url + "|" + fetchedAt.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])
}

// Ingest appends one fetched payload. There is no deduplication: every call
// gets its own fetch time and therefore its own row. payload may be raw
// JSON ([]byte, json.RawMessage) or any JSON-encodable value.
func (s *Store) Ingest(ctx context.Context, source, url string, payload any) (model.RawRecord, error) {
	body, err := encodePayload(payload)
	if err != nil {
		return model.RawRecord{}, err
	}

	// DuckDB timestamps hold microseconds; hash what is stored
	fetchedAt := s.now().UTC().Truncate(time.Microsecond)
	rec := model.RawRecord{
		ID:        RawID(source, url, fetchedAt),
		Source:    source,
		FetchedAt: fetchedAt,
		URL:       url,
		Payload:   body,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO raw (id, source, fetched_at, url, payload) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Source, rec.FetchedAt, rec.URL, string(rec.Payload))
	if err != nil {
		return model.RawRecord{}, errors.Wrapf(err, "ingest %s", url)
	}
	s.metrics.RowsWritten("raw", 1)
	s.logger.Debugw("Ingested raw record", "source", source, "url", url, "id", rec.ID, "bytes", len(body))
	return rec, nil
}

// RawRecords lists every raw record, newest fetch first
func (s *Store) RawRecords(ctx context.Context) ([]model.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, fetched_at, url, payload FROM raw ORDER BY fetched_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "query raw records")
	}
	defer func() { _ = rows.Close() }()

	var out []model.RawRecord
	for rows.Next() {
		var (
			rec     model.RawRecord
			payload string
		)
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.FetchedAt, &rec.URL, &payload); err != nil {
			return nil, errors.Wrap(err, "scan raw record")
		}
		rec.FetchedAt = rec.FetchedAt.UTC()
		rec.Payload = []byte(payload)
		out = append(out, rec)
	}
	return out, errors.Wrap(rows.Err(), "iterate raw records")
}

func encodePayload(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case []byte:
		return p, nil
	case json.RawMessage:
		return p, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encode payload")
	}
	return body, nil
}
