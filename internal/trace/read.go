package trace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound reports a run ID with no stored record.
var ErrRunNotFound = errors.New("trace: run not found")

// ReadRun loads one run's metadata.
func (s *Store) ReadRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, scenario, description, started_at, frame_count
		FROM runs WHERE id = ?
	`, id)
	return scanRun(row)
}

// ListRuns returns runs newest first, optionally filtered by scenario
// name. limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, scenario string, limit int) ([]Run, error) {
	query := `
		SELECT id, scenario, description, started_at, frame_count
		FROM runs
	`
	var args []any
	if scenario != "" {
		query += " WHERE scenario = ?"
		args = append(args, scenario)
	}
	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// ReadFrames loads a run's frames in attempt order, emissions included.
func (s *Store) ReadFrames(ctx context.Context, runID string) ([]Frame, error) {
	if _, err := s.ReadRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, state, range_lower, range_upper
		FROM frames WHERE run_id = ? ORDER BY idx
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}
	defer rows.Close()

	var frames []Frame
	byIdx := make(map[int]int)
	for rows.Next() {
		var f Frame
		if err := rows.Scan(&f.Index, &f.State, &f.Lower, &f.Upper); err != nil {
			return nil, fmt.Errorf("read frames: %w", err)
		}
		byIdx[f.Index] = len(frames)
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}

	erows, err := s.db.QueryContext(ctx, `
		SELECT frame_idx, stream, stamp, payload
		FROM emissions WHERE run_id = ? ORDER BY frame_idx, stream, ord
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read emissions: %w", err)
	}
	defer erows.Close()

	for erows.Next() {
		var idx int
		var stream string
		var e Emission
		if err := erows.Scan(&idx, &stream, &e.Stamp, &e.Payload); err != nil {
			return nil, fmt.Errorf("read emissions: %w", err)
		}
		i, ok := byIdx[idx]
		if !ok {
			return nil, fmt.Errorf("read emissions: orphan frame index %d", idx)
		}
		if frames[i].Streams == nil {
			frames[i].Streams = make(map[string][]Emission)
		}
		frames[i].Streams[stream] = append(frames[i].Streams[stream], e)
	}
	return frames, erows.Err()
}

// StreamEmissions loads one stream's emissions across a run, in frame
// then emission order.
func (s *Store) StreamEmissions(ctx context.Context, runID, stream string) ([]Emission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stamp, payload
		FROM emissions WHERE run_id = ? AND stream = ?
		ORDER BY frame_idx, ord
	`, runID, stream)
	if err != nil {
		return nil, fmt.Errorf("stream emissions: %w", err)
	}
	defer rows.Close()

	var out []Emission
	for rows.Next() {
		var e Emission
		if err := rows.Scan(&e.Stamp, &e.Payload); err != nil {
			return nil, fmt.Errorf("stream emissions: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*Run, error) {
	var r Run
	var started string
	err := row.Scan(&r.ID, &r.Scenario, &r.Description, &started, &r.FrameCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	r.StartedAt, err = time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return nil, fmt.Errorf("parse run start time: %w", err)
	}
	return &r, nil
}
