package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"hero-arena/internal/domain"

	"github.com/rs/zerolog"
)

type MatchRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRepository(db *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{db: db, logger: logger}
}

const matchColumns = "match_id, session_id, round_no, team_a, team_b, status, winner_team, result, created_at, updated_at"

func scanMatch(row interface{ Scan(...any) error }) (domain.Match, error) {
	var m domain.Match
	var status string
	var resultJSON sql.NullString
	err := row.Scan(&m.MatchID, &m.SessionID, &m.RoundNo, &m.TeamA, &m.TeamB,
		&status, &m.WinnerTeam, &resultJSON, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return domain.Match{}, err
	}
	m.Status = domain.MatchStatus(status)
	if resultJSON.Valid && resultJSON.String != "" {
		var result domain.MatchResult
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return domain.Match{}, fmt.Errorf("decode result for match %s: %w", m.MatchID, err)
		}
		m.Result = &result
	}
	return m, nil
}

func (r *MatchRepository) FindByID(ctx context.Context, matchID string) (*domain.Match, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+matchColumns+" FROM matches WHERE match_id = ?", matchID)
	match, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// FindPending lists a round's PENDING matches; an empty sessionID matches
// every session.
func (r *MatchRepository) FindPending(ctx context.Context, roundNo int, sessionID string) ([]domain.Match, error) {
	query := "SELECT " + matchColumns + " FROM matches WHERE round_no = ? AND status = ?"
	args := []any{roundNo, string(domain.MatchPending)}
	if sessionID != "" {
		query += " AND session_id = ?"
		args = append(args, sessionID)
	}
	query += " ORDER BY created_at, match_id"

	return r.queryMatches(ctx, query, args...)
}

func (r *MatchRepository) FindByRound(ctx context.Context, roundNo int, sessionID string) ([]domain.Match, error) {
	return r.queryMatches(ctx,
		"SELECT "+matchColumns+" FROM matches WHERE round_no = ? AND session_id = ? ORDER BY created_at, match_id",
		roundNo, sessionID)
}

func (r *MatchRepository) queryMatches(ctx context.Context, query string, args ...any) ([]domain.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func (r *MatchRepository) Save(ctx context.Context, match domain.Match) error {
	var resultJSON any
	if match.Result != nil {
		encoded, err := json.Marshal(match.Result)
		if err != nil {
			return fmt.Errorf("encode result for match %s: %w", match.MatchID, err)
		}
		resultJSON = string(encoded)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO matches (match_id, session_id, round_no, team_a, team_b, status, winner_team, result, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id) DO UPDATE SET
			status = excluded.status,
			winner_team = excluded.winner_team,
			result = excluded.result,
			updated_at = excluded.updated_at`,
		match.MatchID, match.SessionID, match.RoundNo, match.TeamA, match.TeamB,
		string(match.Status), match.WinnerTeam, resultJSON, match.CreatedAt, match.UpdatedAt)
	return err
}
