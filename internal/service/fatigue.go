package service

import (
	"context"
	"fmt"

	"hero-arena/internal/constants"
	"hero-arena/internal/domain"

	"github.com/rs/zerolog"
)

// FatigueService tracks consecutive-usage streaks per (team, hero, round) and
// derives the stat multiplier a streak implies. It never mutates heroes or
// ledger rows in place: fatigue produces derived hero copies, and each round's
// usage is appended as new rows.
type FatigueService struct {
	usageStore UsageStore
	logger     zerolog.Logger
}

func NewFatigueService(usageStore UsageStore, logger zerolog.Logger) *FatigueService {
	return &FatigueService{usageStore: usageStore, logger: logger}
}

// FatigueMultiplier converts a streak into the stat multiplier: a 5% per-round
// reduction capped at 30%, so the multiplier never drops below 0.70.
func FatigueMultiplier(streak int) float64 {
	reduction := float64(streak) * constants.FatigueStepPenalty
	if reduction > constants.FatigueMaxPenalty {
		reduction = constants.FatigueMaxPenalty
	}
	return 1.0 - reduction
}

// ApplyFatigue returns derived copies of the heroes with the fatigue
// multiplier applied to all six power attributes. The team's round-(N-1)
// usage is fetched once and reused for the whole roster; one lookup per team
// per round, not per hero.
func (s *FatigueService) ApplyFatigue(ctx context.Context, teamID string, heroes []domain.Hero, currentRoundNo int) ([]domain.Hero, error) {
	previous, err := s.usageStore.FindByTeamAndRound(ctx, teamID, currentRoundNo-1)
	if err != nil {
		return nil, fmt.Errorf("load usage history for team %s round %d: %w", teamID, currentRoundNo-1, err)
	}

	streaks := make(map[int]int, len(previous))
	for _, u := range previous {
		streaks[u.HeroID] = u.Streak
	}

	fatigued := make([]domain.Hero, len(heroes))
	for i, hero := range heroes {
		streak := streaks[hero.ID]
		if streak == 0 {
			fatigued[i] = hero
			continue
		}

		multiplier := FatigueMultiplier(streak)
		s.logger.Debug().
			Str("team_id", teamID).
			Int("hero_id", hero.ID).
			Int("streak", streak).
			Float64("multiplier", multiplier).
			Msg("applying fatigue")
		fatigued[i] = hero.Scaled(multiplier)
	}

	return fatigued, nil
}

// MultiplierFor returns the fatigue multiplier a single hero enters the given
// round with. Streak 0 (no row for round N-1) means no penalty.
func (s *FatigueService) MultiplierFor(ctx context.Context, teamID string, heroID, roundNo int) (float64, error) {
	previous, err := s.usageStore.FindByTeamAndRound(ctx, teamID, roundNo-1)
	if err != nil {
		return 0, fmt.Errorf("load usage history for team %s round %d: %w", teamID, roundNo-1, err)
	}

	for _, u := range previous {
		if u.HeroID == heroID {
			return FatigueMultiplier(u.Streak), nil
		}
	}
	return 1.0, nil
}

// RecordUsage appends this round's ledger rows for the given heroes: each
// streak is the round-(N-1) streak (default 0) plus one. Called once per team
// after its match resolves, so a hero's first use in a round is judged against
// the history entering that round.
func (s *FatigueService) RecordUsage(ctx context.Context, teamID string, roundNo int, heroIDs []int) error {
	previous, err := s.usageStore.FindByTeamAndRound(ctx, teamID, roundNo-1)
	if err != nil {
		return fmt.Errorf("load usage history for team %s round %d: %w", teamID, roundNo-1, err)
	}

	streaks := make(map[int]int, len(previous))
	for _, u := range previous {
		streaks[u.HeroID] = u.Streak
	}

	usages := make([]domain.HeroUsage, 0, len(heroIDs))
	for _, heroID := range heroIDs {
		streak := streaks[heroID] + 1
		usages = append(usages, domain.HeroUsage{
			TeamID:     teamID,
			HeroID:     heroID,
			RoundNo:    roundNo,
			Streak:     streak,
			Multiplier: FatigueMultiplier(streak),
		})
	}

	if err := s.usageStore.SaveAll(ctx, usages); err != nil {
		return fmt.Errorf("save usage for team %s round %d: %w", teamID, roundNo, err)
	}

	s.logger.Info().
		Str("team_id", teamID).
		Int("round_no", roundNo).
		Int("heroes", len(usages)).
		Msg("recorded hero usage")
	return nil
}
