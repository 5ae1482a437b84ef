package repository

import (
	"context"
	"database/sql"

	"hero-arena/internal/domain"

	"github.com/rs/zerolog"
)

type TeamRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewTeamRepository(db *sql.DB, logger zerolog.Logger) *TeamRepository {
	return &TeamRepository{db: db, logger: logger}
}

func (r *TeamRepository) FindByID(ctx context.Context, teamID string) (*domain.Team, error) {
	var t domain.Team
	err := r.db.QueryRowContext(ctx,
		"SELECT team_id, session_id, name, created_at FROM teams WHERE team_id = ?", teamID).
		Scan(&t.TeamID, &t.SessionID, &t.Name, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TeamRepository) FindBySession(ctx context.Context, sessionID string) ([]domain.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT team_id, session_id, name, created_at FROM teams WHERE session_id = ? ORDER BY created_at", sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.TeamID, &t.SessionID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *TeamRepository) Save(ctx context.Context, team domain.Team) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO teams (team_id, session_id, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(team_id) DO UPDATE SET name = excluded.name`,
		team.TeamID, team.SessionID, team.Name, team.CreatedAt)
	return err
}
