package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hero-arena/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DrawResult is the caller-facing outcome of a match with no winner.
const DrawResult = "DRAW"

// LifecycleService orchestrates match execution: it pulls submissions and the
// round spec, applies fatigue, runs the simulator, persists the outcome and
// event log, records usage, and re-evaluates round closure.
type LifecycleService struct {
	matchStore      MatchStore
	submissionStore SubmissionStore
	roundStore      RoundStore
	eventStore      EventStore
	catalog         HeroCatalog
	engine          *BattleEngine
	fatigue         *FatigueService
	logger          zerolog.Logger
	batchWorkers    int
}

func NewLifecycleService(
	matchStore MatchStore,
	submissionStore SubmissionStore,
	roundStore RoundStore,
	eventStore EventStore,
	catalog HeroCatalog,
	engine *BattleEngine,
	fatigue *FatigueService,
	logger zerolog.Logger,
	batchWorkers int,
) *LifecycleService {
	if batchWorkers < 1 {
		batchWorkers = 1
	}
	return &LifecycleService{
		matchStore:      matchStore,
		submissionStore: submissionStore,
		roundStore:      roundStore,
		eventStore:      eventStore,
		catalog:         catalog,
		engine:          engine,
		fatigue:         fatigue,
		logger:          logger,
		batchWorkers:    batchWorkers,
	}
}

// CreateMatch registers a PENDING match between two teams for a round.
func (s *LifecycleService) CreateMatch(ctx context.Context, teamA, teamB string, roundNo int, sessionID string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate match id: %w", err)
	}

	now := time.Now().UTC()
	match := domain.Match{
		MatchID:   id,
		SessionID: sessionID,
		RoundNo:   roundNo,
		TeamA:     teamA,
		TeamB:     teamB,
		Status:    domain.MatchPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.matchStore.Save(ctx, match); err != nil {
		return "", fmt.Errorf("save match: %w", err)
	}
	return id, nil
}

// AutoMatch pairs adjacent submissions that are not yet attached to a match
// in the round, two at a time; an odd one stays unmatched. Already-matched
// teams are never paired again, so repeated calls are idempotent.
func (s *LifecycleService) AutoMatch(ctx context.Context, sessionID string, roundNo int) ([]string, error) {
	submissions, err := s.submissionStore.FindByRound(ctx, roundNo, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load submissions for round %d: %w", roundNo, err)
	}

	existing, err := s.matchStore.FindByRound(ctx, roundNo, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load matches for round %d: %w", roundNo, err)
	}

	matched := make(map[string]struct{}, len(existing)*2)
	for _, m := range existing {
		matched[m.TeamA] = struct{}{}
		matched[m.TeamB] = struct{}{}
	}

	var unmatched []domain.Submission
	for _, sub := range submissions {
		if !sub.Accepted {
			continue
		}
		if _, ok := matched[sub.TeamID]; ok {
			continue
		}
		unmatched = append(unmatched, sub)
	}

	var matchIDs []string
	for i := 0; i+1 < len(unmatched); i += 2 {
		id, err := s.CreateMatch(ctx, unmatched[i].TeamID, unmatched[i+1].TeamID, roundNo, sessionID)
		if err != nil {
			return matchIDs, err
		}
		matchIDs = append(matchIDs, id)
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Int("round_no", roundNo).
		Int("created", len(matchIDs)).
		Msg("auto-match pass completed")
	return matchIDs, nil
}

// RunMatch executes a single PENDING match and propagates any failure to the
// caller. Events are persisted before the match outcome, so a failure partway
// through leaves the match PENDING and eligible for retry.
func (s *LifecycleService) RunMatch(ctx context.Context, matchID string) (string, error) {
	match, err := s.matchStore.FindByID(ctx, matchID)
	if err != nil {
		return "", fmt.Errorf("load match %s: %w", matchID, err)
	}
	if match.Status != domain.MatchPending {
		return "", domain.NewStateError("match %s is %s, already run or running", matchID, match.Status)
	}

	subA, err := s.loadSubmission(ctx, match.TeamA, match.RoundNo)
	if err != nil {
		return "", err
	}
	subB, err := s.loadSubmission(ctx, match.TeamB, match.RoundNo)
	if err != nil {
		return "", err
	}

	round, err := s.roundStore.FindBySessionAndRoundNo(ctx, match.SessionID, match.RoundNo)
	if err != nil {
		return "", fmt.Errorf("load round %d in session %s: %w", match.RoundNo, match.SessionID, err)
	}

	teamAHeroes, err := s.buildBattleTeam(ctx, match.TeamA, subA.Draft, match.RoundNo)
	if err != nil {
		return "", err
	}
	teamBHeroes, err := s.buildBattleTeam(ctx, match.TeamB, subB.Draft, match.RoundNo)
	if err != nil {
		return "", err
	}

	result := s.engine.Simulate(matchID, teamAHeroes, teamBHeroes, round.Seed, match.TeamA, match.TeamB, round.Spec)

	if err := s.eventStore.SaveAll(ctx, result.Events); err != nil {
		return "", fmt.Errorf("save events for match %s: %w", matchID, err)
	}

	winner := result.WinnerTeamID
	outcome := winner
	if result.Draw() {
		outcome = DrawResult
	}

	match.Status = domain.MatchCompleted
	match.WinnerTeam = winner
	match.Result = &domain.MatchResult{
		Winner:     outcome,
		TotalTurns: result.TotalTurns,
		EventCount: len(result.Events),
	}
	match.UpdatedAt = time.Now().UTC()
	if err := s.matchStore.Save(ctx, *match); err != nil {
		return "", fmt.Errorf("save match %s outcome: %w", matchID, err)
	}

	if err := s.fatigue.RecordUsage(ctx, match.TeamA, match.RoundNo, subA.Draft.HeroIDs); err != nil {
		return "", err
	}
	if err := s.fatigue.RecordUsage(ctx, match.TeamB, match.RoundNo, subB.Draft.HeroIDs); err != nil {
		return "", err
	}

	return outcome, nil
}

// RunAllBattles runs every PENDING match of a round in one pass. Matches run
// in isolation across workers: one failure is logged and skipped without
// aborting siblings, and the failed match stays PENDING. sessionID may be
// empty, in which case it is inferred from any PENDING match in the round;
// with nothing to infer from, the pass returns a zero result.
func (s *LifecycleService) RunAllBattles(ctx context.Context, roundNo int, sessionID string) (domain.BatchResult, error) {
	result := domain.BatchResult{Winners: make(map[string]string)}

	if sessionID == "" {
		candidates, err := s.matchStore.FindPending(ctx, roundNo, "")
		if err != nil {
			return result, fmt.Errorf("find pending matches for round %d: %w", roundNo, err)
		}
		if len(candidates) == 0 {
			return result, nil
		}
		sessionID = candidates[0].SessionID
	}

	if _, err := s.roundStore.FindBySessionAndRoundNo(ctx, sessionID, roundNo); err != nil {
		return result, fmt.Errorf("load round %d in session %s: %w", roundNo, sessionID, err)
	}

	pending, err := s.matchStore.FindPending(ctx, roundNo, sessionID)
	if err != nil {
		return result, fmt.Errorf("find pending matches for round %d: %w", roundNo, err)
	}

	s.logger.Info().
		Int("round_no", roundNo).
		Str("session_id", sessionID).
		Int("pending", len(pending)).
		Msg("starting batch battle execution")

	result.Total = len(pending)

	// Each match touches only its own rows and PRNG stream, so the pass can
	// fan out across workers. Round closure waits for the join below.
	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchWorkers)

	for _, match := range pending {
		g.Go(func() error {
			outcome, err := s.RunMatch(gCtx, match.MatchID)
			if err != nil {
				s.logger.Error().
					Err(err).
					Str("match_id", match.MatchID).
					Msg("match failed during batch execution")
				return nil
			}

			mu.Lock()
			result.MatchIDs = append(result.MatchIDs, match.MatchID)
			result.Winners[match.MatchID] = outcome
			result.SuccessCount++
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; Wait is purely the join barrier before the
	// closure check.
	_ = g.Wait()

	if err := s.closeRoundIfFinished(ctx, roundNo, sessionID); err != nil {
		s.logger.Error().Err(err).Int("round_no", roundNo).Msg("round closure check failed")
	}

	s.logger.Info().
		Int("round_no", roundNo).
		Int("total", result.Total).
		Int("successful", result.SuccessCount).
		Int("failed", result.Total-result.SuccessCount).
		Msg("batch battle execution completed")
	return result, nil
}

// closeRoundIfFinished transitions the round to CLOSED once no PENDING
// matches remain for it in the session.
func (s *LifecycleService) closeRoundIfFinished(ctx context.Context, roundNo int, sessionID string) error {
	remaining, err := s.matchStore.FindPending(ctx, roundNo, sessionID)
	if err != nil {
		return fmt.Errorf("find pending matches for round %d: %w", roundNo, err)
	}
	if len(remaining) > 0 {
		return nil
	}

	round, err := s.roundStore.FindBySessionAndRoundNo(ctx, sessionID, roundNo)
	if err != nil {
		return fmt.Errorf("load round %d: %w", roundNo, err)
	}
	if round.Status != domain.RoundOpen {
		return nil
	}

	round.Status = domain.RoundClosed
	round.UpdatedAt = time.Now().UTC()
	if err := s.roundStore.Save(ctx, *round); err != nil {
		return fmt.Errorf("save round %d: %w", roundNo, err)
	}

	s.logger.Info().Int("round_no", roundNo).Str("session_id", sessionID).Msg("round closed")
	return nil
}

func (s *LifecycleService) GetMatch(ctx context.Context, matchID string) (*domain.Match, error) {
	return s.matchStore.FindByID(ctx, matchID)
}

// GetMatchEvents returns a match's replayable trace ordered by sequence.
func (s *LifecycleService) GetMatchEvents(ctx context.Context, matchID string) ([]domain.MatchEvent, error) {
	return s.eventStore.FindByMatchID(ctx, matchID)
}

// loadSubmission distinguishes a team that never submitted (a state
// rejection) from a store failure, which propagates as-is.
func (s *LifecycleService) loadSubmission(ctx context.Context, teamID string, roundNo int) (*domain.Submission, error) {
	sub, err := s.submissionStore.FindByTeamAndRound(ctx, teamID, roundNo)
	if errors.Is(err, domain.ErrSubmissionNotFound) {
		return nil, domain.NewStateError("submission missing for team %s in round %d", teamID, roundNo)
	}
	if err != nil {
		return nil, fmt.Errorf("load submission for team %s in round %d: %w", teamID, roundNo, err)
	}
	return sub, nil
}

// buildBattleTeam resolves a draft against the catalog in one lookup and
// applies fatigue to the whole roster with one usage-history read.
func (s *LifecycleService) buildBattleTeam(ctx context.Context, teamID string, draft domain.DraftSubmission, roundNo int) ([]domain.Hero, error) {
	found, err := s.catalog.FindByIDs(ctx, draft.HeroIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve roster for team %s: %w", teamID, err)
	}

	byID := make(map[int]domain.Hero, len(found))
	for _, h := range found {
		byID[h.ID] = h
	}

	heroes := make([]domain.Hero, 0, len(draft.HeroIDs))
	for _, id := range draft.HeroIDs {
		hero, ok := byID[id]
		if !ok {
			return nil, &domain.HeroNotFoundError{HeroID: id}
		}
		heroes = append(heroes, hero)
	}

	return s.fatigue.ApplyFatigue(ctx, teamID, heroes, roundNo)
}
