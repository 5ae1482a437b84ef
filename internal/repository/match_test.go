package repository

import (
	"context"
	"testing"
	"time"

	"hero-arena/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"match_id", "session_id", "round_no", "team_a", "team_b",
		"status", "winner_team", "result", "created_at", "updated_at",
	})
}

func TestMatchFindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM matches WHERE match_id").
		WithArgs("m1").
		WillReturnRows(matchRows().AddRow(
			"m1", "sess", 1, "team-a", "team-b",
			"COMPLETED", "team-a", `{"winner":"team-a","totalTurns":7,"eventCount":42}`, now, now,
		))

	repo := NewMatchRepository(db, zerolog.Nop())
	match, err := repo.FindByID(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, domain.MatchCompleted, match.Status)
	assert.Equal(t, "team-a", match.WinnerTeam)
	require.NotNil(t, match.Result)
	assert.Equal(t, 7, match.Result.TotalTurns)
	assert.Equal(t, 42, match.Result.EventCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchFindByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM matches WHERE match_id").
		WithArgs("ghost").
		WillReturnRows(matchRows())

	repo := NewMatchRepository(db, zerolog.Nop())
	_, err = repo.FindByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchFindByIDNullResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM matches WHERE match_id").
		WithArgs("m1").
		WillReturnRows(matchRows().AddRow(
			"m1", "sess", 1, "team-a", "team-b", "PENDING", "", nil, now, now,
		))

	repo := NewMatchRepository(db, zerolog.Nop())
	match, err := repo.FindByID(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.MatchPending, match.Status)
	assert.Nil(t, match.Result, "unfinished match carries no result")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchFindPendingFiltersSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM matches WHERE round_no = \\? AND status = \\? AND session_id = \\?").
		WithArgs(2, "PENDING", "sess").
		WillReturnRows(matchRows().
			AddRow("m1", "sess", 2, "team-a", "team-b", "PENDING", "", nil, now, now).
			AddRow("m2", "sess", 2, "team-c", "team-d", "PENDING", "", nil, now, now))

	repo := NewMatchRepository(db, zerolog.Nop())
	matches, err := repo.FindPending(context.Background(), 2, "sess")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "m1", matches[0].MatchID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchFindPendingAllSessions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM matches WHERE round_no = \\? AND status = \\? ORDER BY").
		WithArgs(2, "PENDING").
		WillReturnRows(matchRows())

	repo := NewMatchRepository(db, zerolog.Nop())
	matches, err := repo.FindPending(context.Background(), 2, "")
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchSaveUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	match := domain.Match{
		MatchID:    "m1",
		SessionID:  "sess",
		RoundNo:    1,
		TeamA:      "team-a",
		TeamB:      "team-b",
		Status:     domain.MatchCompleted,
		WinnerTeam: "team-a",
		Result:     &domain.MatchResult{Winner: "team-a", TotalTurns: 3, EventCount: 20},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	mock.ExpectExec("INSERT INTO matches").
		WithArgs("m1", "sess", 1, "team-a", "team-b", "COMPLETED", "team-a", sqlmock.AnyArg(), now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewMatchRepository(db, zerolog.Nop())
	require.NoError(t, repo.Save(context.Background(), match))
	assert.NoError(t, mock.ExpectationsWereMet())
}
