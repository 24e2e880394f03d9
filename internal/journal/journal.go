// Package journal stores table sessions and their operator inputs in
// Postgres so a finished table can be replayed frame by frame.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/pinball/internal/game"
)

// Store is a game.Journal backed by sqlx.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// StartSession inserts the session row for a new table.
func (s *Store) StartSession(ctx context.Context, rec game.TableRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO table_sessions (id, seed, layout, created_at) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.Seed, rec.Layout, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", rec.ID, err)
	}
	return nil
}

// RecordInput appends one operator input. Inputs of a table are read back in
// insertion order, which is also frame order.
func (s *Store) RecordInput(ctx context.Context, tableID string, ev game.InputEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO input_events (table_id, frame, kind, pressed) VALUES ($1, $2, $3, $4)`,
		tableID, ev.Frame, string(ev.Kind), ev.Pressed,
	)
	if err != nil {
		return fmt.Errorf("insert input for %s: %w", tableID, err)
	}
	return nil
}

// EndSession marks a session closed with its final frame and score.
func (s *Store) EndSession(ctx context.Context, tableID string, frame, score int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE table_sessions SET closed_at = NOW(), final_frame = $2, final_score = $3 WHERE id = $1`,
		tableID, frame, score,
	)
	if err != nil {
		return fmt.Errorf("close session %s: %w", tableID, err)
	}
	return nil
}

// sessionRow is a table_sessions row. FinalFrame stays NULL until EndSession.
type sessionRow struct {
	game.TableRecord
	FinalFrame sql.NullInt64 `db:"final_frame"`
}

// Load returns a session and its inputs. Unknown tables yield
// game.ErrTableNotFound.
func (s *Store) Load(ctx context.Context, tableID string) (game.TableRecord, []game.InputEvent, error) {
	row, inputs, err := s.load(ctx, tableID)
	return row.TableRecord, inputs, err
}

func (s *Store) load(ctx context.Context, tableID string) (sessionRow, []game.InputEvent, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, seed, layout, created_at, final_frame FROM table_sessions WHERE id = $1`, tableID)
	if errors.Is(err, sql.ErrNoRows) {
		return row, nil, game.ErrTableNotFound
	}
	if err != nil {
		return row, nil, fmt.Errorf("load session %s: %w", tableID, err)
	}

	var inputs []game.InputEvent
	err = s.db.SelectContext(ctx, &inputs,
		`SELECT frame, kind, pressed FROM input_events WHERE table_id = $1 ORDER BY frame, id`, tableID)
	if err != nil {
		return row, nil, fmt.Errorf("load inputs for %s: %w", tableID, err)
	}
	return row, inputs, nil
}

// lastFrame is the furthest frame a session can be replayed to: its final
// frame once closed, otherwise the frame of its last recorded input.
func lastFrame(final sql.NullInt64, inputs []game.InputEvent) int {
	if final.Valid {
		return int(final.Int64)
	}
	last := 0
	for _, ev := range inputs {
		if ev.Frame > last {
			last = ev.Frame
		}
	}
	return last
}

// Replay rebuilds a journaled table at frame using layout. Frames past the
// end of the session yield game.ErrFrameOutOfRange.
func (s *Store) Replay(ctx context.Context, layout game.Layout, tableID string, frame int) (game.Snapshot, error) {
	row, inputs, err := s.load(ctx, tableID)
	if err != nil {
		return game.Snapshot{}, err
	}
	if end := lastFrame(row.FinalFrame, inputs); frame < 0 || frame > end {
		return game.Snapshot{}, fmt.Errorf("%w: %d outside [0, %d]", game.ErrFrameOutOfRange, frame, end)
	}
	return game.Replay(layout, row.Seed, inputs, frame).Snapshot(), nil
}
