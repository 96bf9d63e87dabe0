package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/farheen-shaikh530/releasehub/internal/model"
)

// ErrStageBusy is returned when another build of the same layer is running
var ErrStageBusy = errors.New("build stage already running")

// Stage names, also the keys of pipeline_stages
const (
	StageSentences = "sentences"
	StageFacts     = "latest_version_fact"
)

// staleBuild is how long a persisted "building" row blocks other processes
// before it is considered abandoned
const staleBuild = 15 * time.Minute

// StageResult reports what one build invocation did
type StageResult struct {
	Stage   string
	Skipped bool // layer already populated
	Rows    int
}

// StageStatus is one pipeline_stages row
type StageStatus struct {
	Stage     string
	State     model.StageState
	Rows      int
	UpdatedAt time.Time
}

// Status returns the persisted status of a stage; unknown stages are not_built
func (s *Store) Status(ctx context.Context, stage string) (StageStatus, error) {
	st := StageStatus{Stage: stage, State: model.StageNotBuilt}
	var (
		rows    sql.NullInt64
		updated sql.NullTime
		state   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT state, row_count, updated_at FROM pipeline_stages WHERE stage = ?`, stage).
		Scan(&state, &rows, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return st, nil
	}
	if err != nil {
		return st, errors.Wrapf(err, "read stage %s", stage)
	}
	st.State = model.StageState(state)
	st.Rows = int(rows.Int64)
	st.UpdatedAt = updated.Time
	return st, nil
}

func (s *Store) setStatus(ctx context.Context, stage string, state model.StageState, rows int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO pipeline_stages (stage, state, row_count, updated_at) VALUES (?, ?, ?, ?)`,
		stage, string(state), rows, s.now().UTC())
	return errors.Wrapf(err, "set stage %s to %s", stage, state)
}

// runStage runs build once under the single-writer lock. populated reports
// whether the layer already holds rows, in which case nothing is rebuilt.
// A build that writes zero rows leaves the stage not_built so a later call
// tries again.
func (s *Store) runStage(
	ctx context.Context,
	stage string,
	populated func(context.Context) (bool, error),
	build func(context.Context) (int, error),
) (StageResult, error) {
	res := StageResult{Stage: stage}
	if !s.buildMu.TryLock() {
		s.metrics.StageRun(stage, "busy")
		return res, errors.Wrap(ErrStageBusy, stage)
	}
	defer s.buildMu.Unlock()

	st, err := s.Status(ctx, stage)
	if err != nil {
		return res, err
	}
	if st.State == model.StageBuilding && s.now().Sub(st.UpdatedAt) < staleBuild {
		s.metrics.StageRun(stage, "busy")
		return res, errors.Wrapf(ErrStageBusy, "%s marked building since %s", stage, st.UpdatedAt.Format(time.RFC3339))
	}

	done, err := populated(ctx)
	if err != nil {
		return res, err
	}
	if done {
		if st.State != model.StageBuilt {
			if err := s.setStatus(ctx, stage, model.StageBuilt, st.Rows); err != nil {
				return res, err
			}
		}
		s.metrics.StageRun(stage, "skipped")
		s.logger.Debugw("Stage already built", "stage", stage)
		res.Skipped = true
		return res, nil
	}

	if err := s.setStatus(ctx, stage, model.StageBuilding, 0); err != nil {
		return res, err
	}

	start := s.now()
	n, err := build(ctx)
	if err != nil {
		if resetErr := s.setStatus(ctx, stage, model.StageNotBuilt, 0); resetErr != nil {
			s.logger.Warnw("Stage status not reset", "stage", stage, "error", resetErr)
		}
		s.metrics.StageRun(stage, "error")
		return res, errors.Wrapf(err, "build %s", stage)
	}
	res.Rows = n

	final, outcome := model.StageBuilt, "built"
	if n == 0 {
		final, outcome = model.StageNotBuilt, "empty"
	}
	if err := s.setStatus(ctx, stage, final, n); err != nil {
		return res, err
	}
	s.metrics.StageRun(stage, outcome)
	s.logger.Infow("Stage finished", "stage", stage, "rows", n, "state", final, "took", s.now().Sub(start).String())
	return res, nil
}
