package repository

import (
	"context"
	"database/sql"
	"fmt"

	"hero-arena/internal/constants"
	"hero-arena/internal/domain"

	"github.com/rs/zerolog"
)

// EventRepository persists match event logs. SaveAll replaces a match's rows
// wholesale; sequence numbers come from the simulator, so concurrent
// persistence of different matches cannot corrupt a single match's ordering.
type EventRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewEventRepository(db *sql.DB, logger zerolog.Logger) *EventRepository {
	return &EventRepository{db: db, logger: logger}
}

func (r *EventRepository) SaveAll(ctx context.Context, events []domain.MatchEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// A match that failed after its events were written gets re-simulated on
	// retry with an identical log. Replace the match's rows in the same
	// transaction so the inserts below never collide on (match_id, seq).
	cleared := make(map[string]struct{})
	for _, e := range events {
		if _, ok := cleared[e.MatchID]; ok {
			continue
		}
		cleared[e.MatchID] = struct{}{}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM match_events WHERE match_id = ?", e.MatchID); err != nil {
			return fmt.Errorf("failed to clear events for match %s: %w", e.MatchID, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO match_events (match_id, seq, type, timestamp, description, actor_id, target_id, value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare event insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < len(events); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(events) {
			end = len(events)
		}

		for _, e := range events[i:end] {
			if _, err := stmt.ExecContext(ctx, e.MatchID, e.Seq, e.Type, e.Timestamp,
				e.Description, e.ActorID, e.TargetID, e.Value); err != nil {
				return fmt.Errorf("failed to insert event %s/%d: %w", e.MatchID, e.Seq, err)
			}
		}
	}

	return tx.Commit()
}

func (r *EventRepository) FindByMatchID(ctx context.Context, matchID string) ([]domain.MatchEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT match_id, seq, type, timestamp, description, actor_id, target_id, value
		FROM match_events WHERE match_id = ? ORDER BY seq`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.MatchEvent
	for rows.Next() {
		var e domain.MatchEvent
		if err := rows.Scan(&e.MatchID, &e.Seq, &e.Type, &e.Timestamp,
			&e.Description, &e.ActorID, &e.TargetID, &e.Value); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
