package repository

import (
	"context"
	"database/sql"

	"hero-arena/internal/domain"

	"github.com/rs/zerolog"
)

type SessionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSessionRepository(db *sql.DB, logger zerolog.Logger) *SessionRepository {
	return &SessionRepository{db: db, logger: logger}
}

func (r *SessionRepository) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRowContext(ctx,
		"SELECT session_id, started_at, active FROM sessions WHERE session_id = ?", sessionID).
		Scan(&s.SessionID, &s.StartedAt, &s.Active)
	if err == sql.ErrNoRows {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) FindAll(ctx context.Context) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT session_id, started_at, active FROM sessions ORDER BY started_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.SessionID, &s.StartedAt, &s.Active); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) Save(ctx context.Context, session domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, started_at, active)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET active = excluded.active`,
		session.SessionID, session.StartedAt, session.Active)
	return err
}
