package repository

import (
	"context"
	"errors"
	"testing"

	"hero-arena/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageFindByTeamAndRound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM hero_usage WHERE team_id = \\? AND round_no = \\?").
		WithArgs("team-a", 2).
		WillReturnRows(sqlmock.NewRows([]string{"team_id", "hero_id", "round_no", "streak", "multiplier"}).
			AddRow("team-a", 1, 2, 2, 0.90).
			AddRow("team-a", 3, 2, 1, 0.95))

	repo := NewUsageRepository(db, zerolog.Nop())
	usages, err := repo.FindByTeamAndRound(context.Background(), "team-a", 2)
	require.NoError(t, err)
	require.Len(t, usages, 2)
	assert.Equal(t, 2, usages[0].Streak)
	assert.InDelta(t, 0.95, usages[1].Multiplier, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageFindByTeamAndRoundEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM hero_usage").
		WithArgs("team-a", 0).
		WillReturnRows(sqlmock.NewRows([]string{"team_id", "hero_id", "round_no", "streak", "multiplier"}))

	repo := NewUsageRepository(db, zerolog.Nop())
	usages, err := repo.FindByTeamAndRound(context.Background(), "team-a", 0)
	require.NoError(t, err)
	assert.Empty(t, usages, "no history before the first round")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageSaveAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO hero_usage").
		WithArgs("team-a", 1, 3, 2, 0.90).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO hero_usage").
		WithArgs("team-a", 2, 3, 1, 0.95).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	repo := NewUsageRepository(db, zerolog.Nop())
	err = repo.SaveAll(context.Background(), []domain.HeroUsage{
		{TeamID: "team-a", HeroID: 1, RoundNo: 3, Streak: 2, Multiplier: 0.90},
		{TeamID: "team-a", HeroID: 2, RoundNo: 3, Streak: 1, Multiplier: 0.95},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageSaveAllEmptyIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUsageRepository(db, zerolog.Nop())
	require.NoError(t, repo.SaveAll(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageSaveAllRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO hero_usage").
		WithArgs("team-a", 1, 3, 2, 0.90).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	repo := NewUsageRepository(db, zerolog.Nop())
	err = repo.SaveAll(context.Background(), []domain.HeroUsage{
		{TeamID: "team-a", HeroID: 1, RoundNo: 3, Streak: 2, Multiplier: 0.90},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert usage")
	assert.NoError(t, mock.ExpectationsWereMet())
}
