package service

import (
	"context"
	"errors"
	"testing"

	"hero-arena/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingUsageStore records every lookup so tests can assert the one-query-
// per-team batch property.
type countingUsageStore struct {
	rows    []domain.HeroUsage
	saved   []domain.HeroUsage
	lookups int
	findErr error
	saveErr error
}

func (s *countingUsageStore) FindByTeamAndRound(_ context.Context, teamID string, roundNo int) ([]domain.HeroUsage, error) {
	s.lookups++
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []domain.HeroUsage
	for _, u := range s.rows {
		if u.TeamID == teamID && u.RoundNo == roundNo {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *countingUsageStore) SaveAll(_ context.Context, usages []domain.HeroUsage) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, usages...)
	return nil
}

func TestFatigueMultiplier(t *testing.T) {
	cases := []struct {
		streak   int
		expected float64
	}{
		{0, 1.0},
		{1, 0.95},
		{2, 0.90},
		{3, 0.85},
		{5, 0.75},
		{6, 0.70},
		{7, 0.70},
		{100, 0.70},
	}

	for _, tc := range cases {
		assert.InDelta(t, tc.expected, FatigueMultiplier(tc.streak), 1e-9, "streak %d", tc.streak)
	}
}

func TestFatigueMultiplierNonIncreasing(t *testing.T) {
	prev := FatigueMultiplier(0)
	for streak := 1; streak <= 20; streak++ {
		current := FatigueMultiplier(streak)
		assert.LessOrEqual(t, current, prev)
		assert.GreaterOrEqual(t, current, 0.70)
		prev = current
	}
}

func TestApplyFatigueOneLookupPerTeam(t *testing.T) {
	store := &countingUsageStore{
		rows: []domain.HeroUsage{
			{TeamID: "team-1", HeroID: 1, RoundNo: 2, Streak: 2},
			{TeamID: "team-1", HeroID: 3, RoundNo: 2, Streak: 1},
		},
	}
	svc := NewFatigueService(store, zerolog.Nop())

	roster := []domain.Hero{
		testHero(1, "A", domain.PowerStats{Durability: 100, Strength: 50, Power: 40, Speed: 30, Intelligence: 20, Combat: 10}),
		testHero(2, "B", domain.PowerStats{Durability: 80, Strength: 40, Power: 30, Speed: 20}),
		testHero(3, "C", domain.PowerStats{Durability: 60, Strength: 30, Power: 20, Speed: 10}),
		testHero(4, "D", domain.PowerStats{Durability: 40, Strength: 20, Power: 10, Speed: 5}),
		testHero(5, "E", domain.PowerStats{Durability: 20, Strength: 10, Power: 5, Speed: 1}),
	}

	fatigued, err := svc.ApplyFatigue(context.Background(), "team-1", roster, 3)
	require.NoError(t, err)
	require.Len(t, fatigued, 5)

	assert.Equal(t, 1, store.lookups, "one usage query per team per round, regardless of roster size")

	// streak 2 -> x0.90, truncated toward zero
	assert.Equal(t, 90, fatigued[0].PowerStats.Durability)
	assert.Equal(t, 45, fatigued[0].PowerStats.Strength)
	assert.Equal(t, 36, fatigued[0].PowerStats.Power)
	assert.Equal(t, 27, fatigued[0].PowerStats.Speed)
	assert.Equal(t, 18, fatigued[0].PowerStats.Intelligence)
	assert.Equal(t, 9, fatigued[0].PowerStats.Combat)

	// no history: hero is passed through untouched
	assert.Equal(t, roster[1], fatigued[1])

	// streak 1 -> x0.95
	assert.Equal(t, 57, fatigued[2].PowerStats.Durability)

	// originals are never mutated
	assert.Equal(t, 100, roster[0].PowerStats.Durability)
}

func TestApplyFatigueStoreError(t *testing.T) {
	store := &countingUsageStore{findErr: errors.New("disk on fire")}
	svc := NewFatigueService(store, zerolog.Nop())

	_, err := svc.ApplyFatigue(context.Background(), "team-1", []domain.Hero{testHero(1, "A", domain.PowerStats{})}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage history")
}

func TestMultiplierFor(t *testing.T) {
	store := &countingUsageStore{
		rows: []domain.HeroUsage{
			{TeamID: "team-1", HeroID: 7, RoundNo: 4, Streak: 3},
		},
	}
	svc := NewFatigueService(store, zerolog.Nop())

	m, err := svc.MultiplierFor(context.Background(), "team-1", 7, 5)
	require.NoError(t, err)
	assert.InDelta(t, 0.85, m, 1e-9)

	m, err = svc.MultiplierFor(context.Background(), "team-1", 99, 5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m, 1e-9, "unused hero carries no penalty")
}

func TestRecordUsageIncrementsStreaks(t *testing.T) {
	store := &countingUsageStore{
		rows: []domain.HeroUsage{
			{TeamID: "team-1", HeroID: 1, RoundNo: 2, Streak: 2},
		},
	}
	svc := NewFatigueService(store, zerolog.Nop())

	err := svc.RecordUsage(context.Background(), "team-1", 3, []int{1, 2})
	require.NoError(t, err)
	require.Len(t, store.saved, 2)

	assert.Equal(t, domain.HeroUsage{TeamID: "team-1", HeroID: 1, RoundNo: 3, Streak: 3, Multiplier: 0.85}, store.saved[0])
	assert.Equal(t, domain.HeroUsage{TeamID: "team-1", HeroID: 2, RoundNo: 3, Streak: 1, Multiplier: 0.95}, store.saved[1])
}

func TestRecordUsageSkippedRoundResetsStreak(t *testing.T) {
	// History exists for round 1 only; recording round 3 looks at round 2,
	// finds nothing, and starts the streak over.
	store := &countingUsageStore{
		rows: []domain.HeroUsage{
			{TeamID: "team-1", HeroID: 1, RoundNo: 1, Streak: 4},
		},
	}
	svc := NewFatigueService(store, zerolog.Nop())

	err := svc.RecordUsage(context.Background(), "team-1", 3, []int{1})
	require.NoError(t, err)
	require.Len(t, store.saved, 1)
	assert.Equal(t, 1, store.saved[0].Streak)
}
