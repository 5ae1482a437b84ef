package service

import (
	"context"
	"fmt"
	"time"

	"hero-arena/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// SessionService handles tournament session and team bookkeeping.
type SessionService struct {
	sessionStore SessionStore
	teamStore    TeamStore
	logger       zerolog.Logger
}

func NewSessionService(sessionStore SessionStore, teamStore TeamStore, logger zerolog.Logger) *SessionService {
	return &SessionService{sessionStore: sessionStore, teamStore: teamStore, logger: logger}
}

// StartSession opens a new active session and returns its id.
func (s *SessionService) StartSession(ctx context.Context) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	session := domain.Session{
		SessionID: id,
		StartedAt: time.Now().UTC(),
		Active:    true,
	}
	if err := s.sessionStore.Save(ctx, session); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	s.logger.Info().Str("session_id", id).Msg("session started")
	return id, nil
}

func (s *SessionService) ListSessions(ctx context.Context) ([]domain.Session, error) {
	return s.sessionStore.FindAll(ctx)
}

// RegisterTeam creates a team inside an active session.
func (s *SessionService) RegisterTeam(ctx context.Context, sessionID, name string) (string, error) {
	session, err := s.sessionStore.FindByID(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if !session.Active {
		return "", domain.NewStateError("session %s is not active", sessionID)
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate team id: %w", err)
	}

	team := domain.Team{
		TeamID:    id,
		SessionID: sessionID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.teamStore.Save(ctx, team); err != nil {
		return "", fmt.Errorf("save team: %w", err)
	}

	s.logger.Info().Str("team_id", id).Str("session_id", sessionID).Str("name", name).Msg("team registered")
	return id, nil
}

func (s *SessionService) ListTeams(ctx context.Context, sessionID string) ([]domain.Team, error) {
	return s.teamStore.FindBySession(ctx, sessionID)
}
