package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"hero-arena/internal/domain"

	"github.com/rs/zerolog"
)

// RoundRepository persists rounds; the spec ruleset is stored as a JSON
// column and never mutated after creation.
type RoundRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRoundRepository(db *sql.DB, logger zerolog.Logger) *RoundRepository {
	return &RoundRepository{db: db, logger: logger}
}

const roundColumns = "round_no, session_id, spec, status, seed, deadline, created_at, updated_at"

func scanRound(row interface{ Scan(...any) error }) (domain.Round, error) {
	var rd domain.Round
	var specJSON string
	var status string
	err := row.Scan(&rd.RoundNo, &rd.SessionID, &specJSON, &status, &rd.Seed, &rd.Deadline, &rd.CreatedAt, &rd.UpdatedAt)
	if err != nil {
		return domain.Round{}, err
	}
	if err := json.Unmarshal([]byte(specJSON), &rd.Spec); err != nil {
		return domain.Round{}, fmt.Errorf("decode spec for round %d: %w", rd.RoundNo, err)
	}
	rd.Status = domain.RoundStatus(status)
	return rd, nil
}

func (r *RoundRepository) FindBySessionAndRoundNo(ctx context.Context, sessionID string, roundNo int) (*domain.Round, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+roundColumns+" FROM rounds WHERE session_id = ? AND round_no = ?", sessionID, roundNo)
	round, err := scanRound(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrRoundNotFound
	}
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *RoundRepository) FindBySession(ctx context.Context, sessionID string) ([]domain.Round, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+roundColumns+" FROM rounds WHERE session_id = ? ORDER BY round_no", sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []domain.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}

func (r *RoundRepository) Save(ctx context.Context, round domain.Round) error {
	specJSON, err := json.Marshal(round.Spec)
	if err != nil {
		return fmt.Errorf("encode spec for round %d: %w", round.RoundNo, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO rounds (round_no, session_id, spec, status, seed, deadline, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, round_no) DO UPDATE SET
			status = excluded.status,
			updated_at = excluded.updated_at`,
		round.RoundNo, round.SessionID, string(specJSON), string(round.Status),
		round.Seed, round.Deadline, round.CreatedAt, round.UpdatedAt)
	return err
}
