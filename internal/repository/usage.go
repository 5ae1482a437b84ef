package repository

import (
	"context"
	"database/sql"
	"fmt"

	"hero-arena/internal/domain"

	"github.com/rs/zerolog"
)

// UsageRepository is the fatigue ledger store. Rows are append-only history;
// each round's usage is inserted as new rows, never updated in place.
type UsageRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewUsageRepository(db *sql.DB, logger zerolog.Logger) *UsageRepository {
	return &UsageRepository{db: db, logger: logger}
}

func (r *UsageRepository) FindByTeamAndRound(ctx context.Context, teamID string, roundNo int) ([]domain.HeroUsage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT team_id, hero_id, round_no, streak, multiplier
		FROM hero_usage WHERE team_id = ? AND round_no = ?`, teamID, roundNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usages []domain.HeroUsage
	for rows.Next() {
		var u domain.HeroUsage
		if err := rows.Scan(&u.TeamID, &u.HeroID, &u.RoundNo, &u.Streak, &u.Multiplier); err != nil {
			return nil, err
		}
		usages = append(usages, u)
	}
	return usages, rows.Err()
}

func (r *UsageRepository) SaveAll(ctx context.Context, usages []domain.HeroUsage) error {
	if len(usages) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, u := range usages {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO hero_usage (team_id, hero_id, round_no, streak, multiplier)
			VALUES (?, ?, ?, ?, ?)`,
			u.TeamID, u.HeroID, u.RoundNo, u.Streak, u.Multiplier); err != nil {
			return fmt.Errorf("failed to insert usage %s/%d/%d: %w", u.TeamID, u.HeroID, u.RoundNo, err)
		}
	}

	return tx.Commit()
}
