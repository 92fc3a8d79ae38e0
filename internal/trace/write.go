package trace

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// BeginRun inserts a run record and returns its generated ID.
func (s *Store) BeginRun(ctx context.Context, scenario, description string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, description, started_at, frame_count)
		VALUES (?, ?, ?, ?, 0)
	`, id, scenario, description, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// WriteFrame inserts a frame and its emissions atomically and bumps
// the run's frame count. Duplicate (run, index) writes are silently
// ignored so a replayed recording stays idempotent.
func (s *Store) WriteFrame(ctx context.Context, runID string, f *Frame) error {
	payload, err := MarshalCanonical(f)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO frames (run_id, idx, state, range_lower, range_upper, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, idx) DO NOTHING
	`, runID, f.Index, f.State, f.Lower, f.Upper, string(payload))
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if inserted == 0 {
		return nil
	}

	streams := make([]string, 0, len(f.Streams))
	for name := range f.Streams {
		streams = append(streams, name)
	}
	sort.Strings(streams)
	for _, name := range streams {
		for ord, e := range f.Streams[name] {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO emissions (run_id, frame_idx, stream, ord, stamp, payload)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(run_id, frame_idx, stream, ord) DO NOTHING
			`, runID, f.Index, name, ord, e.Stamp, e.Payload); err != nil {
				return fmt.Errorf("write emission %s[%d]: %w", name, ord, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE runs SET frame_count = frame_count + 1 WHERE id = ?
	`, runID); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
