package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"hero-arena/internal/domain"

	"github.com/rs/zerolog"
)

// SubmissionRepository persists team drafts; the (team_id, round_no) primary
// key enforces at most one submission per team per round.
type SubmissionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSubmissionRepository(db *sql.DB, logger zerolog.Logger) *SubmissionRepository {
	return &SubmissionRepository{db: db, logger: logger}
}

const submissionColumns = "team_id, round_no, draft, accepted, rejection_reason, submitted_at"

func scanSubmission(row interface{ Scan(...any) error }) (domain.Submission, error) {
	var s domain.Submission
	var draftJSON string
	err := row.Scan(&s.TeamID, &s.RoundNo, &draftJSON, &s.Accepted, &s.RejectionReason, &s.SubmittedAt)
	if err != nil {
		return domain.Submission{}, err
	}
	if err := json.Unmarshal([]byte(draftJSON), &s.Draft); err != nil {
		return domain.Submission{}, fmt.Errorf("decode draft for team %s round %d: %w", s.TeamID, s.RoundNo, err)
	}
	return s, nil
}

func (r *SubmissionRepository) FindByTeamAndRound(ctx context.Context, teamID string, roundNo int) (*domain.Submission, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+submissionColumns+" FROM submissions WHERE team_id = ? AND round_no = ?", teamID, roundNo)
	sub, err := scanSubmission(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindByRound returns a round's submissions limited to the session's teams,
// ordered by submission time, which is the pairing order AutoMatch relies on.
func (r *SubmissionRepository) FindByRound(ctx context.Context, roundNo int, sessionID string) ([]domain.Submission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.team_id, s.round_no, s.draft, s.accepted, s.rejection_reason, s.submitted_at
		FROM submissions s
		JOIN teams t ON t.team_id = s.team_id
		WHERE s.round_no = ? AND t.session_id = ?
		ORDER BY s.submitted_at, s.team_id`, roundNo, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *SubmissionRepository) Save(ctx context.Context, submission domain.Submission) error {
	draftJSON, err := json.Marshal(submission.Draft)
	if err != nil {
		return fmt.Errorf("encode draft for team %s: %w", submission.TeamID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO submissions (team_id, round_no, draft, accepted, rejection_reason, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		submission.TeamID, submission.RoundNo, string(draftJSON),
		submission.Accepted, submission.RejectionReason, submission.SubmittedAt)
	return err
}
