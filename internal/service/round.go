package service

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"hero-arena/internal/domain"

	"github.com/rs/zerolog"
)

// RoundService manages round creation and team submissions.
type RoundService struct {
	roundStore      RoundStore
	sessionStore    SessionStore
	teamStore       TeamStore
	submissionStore SubmissionStore
	validator       *SubmissionValidator
	logger          zerolog.Logger
}

func NewRoundService(
	roundStore RoundStore,
	sessionStore SessionStore,
	teamStore TeamStore,
	submissionStore SubmissionStore,
	validator *SubmissionValidator,
	logger zerolog.Logger,
) *RoundService {
	return &RoundService{
		roundStore:      roundStore,
		sessionStore:    sessionStore,
		teamStore:       teamStore,
		submissionStore: submissionStore,
		validator:       validator,
		logger:          logger,
	}
}

// newSeed draws a high-entropy seed for a round's PRNG streams.
func newSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// CreateRound opens a round in an active session. The seed is fixed here and
// never changes, so every match in the round replays identically.
func (s *RoundService) CreateRound(ctx context.Context, sessionID string, roundNo int, spec domain.RoundSpec, deadline *time.Time) (int, error) {
	session, err := s.sessionStore.FindByID(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if !session.Active {
		return 0, domain.NewStateError("session %s is not active", sessionID)
	}

	if _, err := s.roundStore.FindBySessionAndRoundNo(ctx, sessionID, roundNo); err == nil {
		return 0, domain.NewStateError("round %d already exists in session %s", roundNo, sessionID)
	} else if !errors.Is(err, domain.ErrRoundNotFound) {
		return 0, fmt.Errorf("check round %d: %w", roundNo, err)
	}

	seed, err := newSeed()
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	round := domain.Round{
		RoundNo:   roundNo,
		SessionID: sessionID,
		Spec:      spec,
		Status:    domain.RoundOpen,
		Seed:      seed,
		Deadline:  deadline,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.roundStore.Save(ctx, round); err != nil {
		return 0, fmt.Errorf("save round: %w", err)
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Int("round_no", roundNo).
		Int64("seed", seed).
		Msg("round created")
	return roundNo, nil
}

func (s *RoundService) GetRoundSpec(ctx context.Context, sessionID string, roundNo int) (*domain.RoundSpec, error) {
	round, err := s.roundStore.FindBySessionAndRoundNo(ctx, sessionID, roundNo)
	if err != nil {
		return nil, err
	}
	return &round.Spec, nil
}

func (s *RoundService) ListRounds(ctx context.Context, sessionID string) ([]domain.Round, error) {
	return s.roundStore.FindBySession(ctx, sessionID)
}

// SubmitTeam validates and stores a team's draft for a round. A team submits
// at most once per round; later attempts are rejected, not overwritten.
func (s *RoundService) SubmitTeam(ctx context.Context, roundNo int, teamID string, draft domain.DraftSubmission) error {
	team, err := s.teamStore.FindByID(ctx, teamID)
	if err != nil {
		return fmt.Errorf("load team %s: %w", teamID, err)
	}

	round, err := s.roundStore.FindBySessionAndRoundNo(ctx, team.SessionID, roundNo)
	if err != nil {
		return fmt.Errorf("load round %d in session %s: %w", roundNo, team.SessionID, err)
	}
	if round.Status != domain.RoundOpen {
		return domain.NewStateError("round %d is %s, not open for submissions", roundNo, round.Status)
	}
	if round.Deadline != nil && time.Now().UTC().After(*round.Deadline) {
		return domain.NewStateError("submission deadline for round %d has passed", roundNo)
	}

	if _, err := s.submissionStore.FindByTeamAndRound(ctx, teamID, roundNo); err == nil {
		return domain.NewStateError("team %s already submitted for round %d", teamID, roundNo)
	} else if !errors.Is(err, domain.ErrSubmissionNotFound) {
		return fmt.Errorf("check existing submission: %w", err)
	}

	if err := s.validator.Validate(ctx, draft, round.Spec); err != nil {
		return err
	}

	submission := domain.Submission{
		TeamID:      teamID,
		RoundNo:     roundNo,
		Draft:       draft,
		Accepted:    true,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.submissionStore.Save(ctx, submission); err != nil {
		return fmt.Errorf("save submission: %w", err)
	}

	s.logger.Info().
		Str("team_id", teamID).
		Int("round_no", roundNo).
		Int("heroes", len(draft.HeroIDs)).
		Msg("team submission accepted")
	return nil
}

func (s *RoundService) GetSubmission(ctx context.Context, teamID string, roundNo int) (*domain.Submission, error) {
	return s.submissionStore.FindByTeamAndRound(ctx, teamID, roundNo)
}
