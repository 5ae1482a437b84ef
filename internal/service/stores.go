package service

import (
	"context"

	"hero-arena/internal/domain"
)

// Store contracts consumed by the services. The sqlite repositories implement
// them; tests substitute in-memory fakes.

// HeroCatalog resolves hero ids against the catalog. FindByIDs may return
// fewer heroes than requested; callers detect and reject missing ids.
type HeroCatalog interface {
	FindByID(ctx context.Context, id int) (*domain.Hero, error)
	FindByIDs(ctx context.Context, ids []int) ([]domain.Hero, error)
}

type SubmissionStore interface {
	FindByTeamAndRound(ctx context.Context, teamID string, roundNo int) (*domain.Submission, error)
	FindByRound(ctx context.Context, roundNo int, sessionID string) ([]domain.Submission, error)
	Save(ctx context.Context, submission domain.Submission) error
}

type MatchStore interface {
	FindByID(ctx context.Context, matchID string) (*domain.Match, error)
	// FindPending returns the PENDING matches of a round; an empty sessionID
	// matches every session.
	FindPending(ctx context.Context, roundNo int, sessionID string) ([]domain.Match, error)
	FindByRound(ctx context.Context, roundNo int, sessionID string) ([]domain.Match, error)
	Save(ctx context.Context, match domain.Match) error
}

type RoundStore interface {
	FindBySessionAndRoundNo(ctx context.Context, sessionID string, roundNo int) (*domain.Round, error)
	FindBySession(ctx context.Context, sessionID string) ([]domain.Round, error)
	Save(ctx context.Context, round domain.Round) error
}

// UsageStore is the fatigue ledger's persistence: append-only HeroUsage rows.
type UsageStore interface {
	FindByTeamAndRound(ctx context.Context, teamID string, roundNo int) ([]domain.HeroUsage, error)
	SaveAll(ctx context.Context, usages []domain.HeroUsage) error
}

// EventStore persists the replayable trace of a match, ordered by sequence.
// SaveAll replaces any rows a match already has, so re-running a match after
// a partial failure persists cleanly.
type EventStore interface {
	SaveAll(ctx context.Context, events []domain.MatchEvent) error
	FindByMatchID(ctx context.Context, matchID string) ([]domain.MatchEvent, error)
}

type SessionStore interface {
	FindByID(ctx context.Context, sessionID string) (*domain.Session, error)
	FindAll(ctx context.Context) ([]domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
}

type TeamStore interface {
	FindByID(ctx context.Context, teamID string) (*domain.Team, error)
	FindBySession(ctx context.Context, sessionID string) ([]domain.Team, error)
	Save(ctx context.Context, team domain.Team) error
}
