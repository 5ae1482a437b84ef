package repository

import (
	"context"
	"testing"

	"hero-arena/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSaveAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	events := []domain.MatchEvent{
		{MatchID: "m1", Seq: 1, Type: domain.EventMatchStart, Timestamp: 0, Description: "Match started"},
		{MatchID: "m1", Seq: 2, Type: domain.EventHit, Timestamp: 1, Description: "hit", ActorID: "a_1", TargetID: "b_2", Value: 12},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM match_events WHERE match_id").
		WithArgs("m1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("INSERT INTO match_events")
	for _, e := range events {
		prep.ExpectExec().
			WithArgs(e.MatchID, e.Seq, e.Type, e.Timestamp, e.Description, e.ActorID, e.TargetID, e.Value).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	repo := NewEventRepository(db, zerolog.Nop())
	require.NoError(t, repo.SaveAll(context.Background(), events))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventSaveAllRetryReplacesExistingRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	events := []domain.MatchEvent{
		{MatchID: "m1", Seq: 1, Type: domain.EventMatchStart, Timestamp: 0, Description: "Match started"},
		{MatchID: "m1", Seq: 2, Type: domain.EventHit, Timestamp: 1, Description: "hit", ActorID: "a_1", TargetID: "b_2", Value: 12},
	}

	// A retried match re-simulates the identical log; each pass clears the
	// match's rows first so the second insert cannot collide on (match_id, seq).
	for pass := 0; pass < 2; pass++ {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM match_events WHERE match_id").
			WithArgs("m1").
			WillReturnResult(sqlmock.NewResult(0, int64(pass*len(events))))
		prep := mock.ExpectPrepare("INSERT INTO match_events")
		for _, e := range events {
			prep.ExpectExec().
				WithArgs(e.MatchID, e.Seq, e.Type, e.Timestamp, e.Description, e.ActorID, e.TargetID, e.Value).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
		mock.ExpectCommit()
	}

	repo := NewEventRepository(db, zerolog.Nop())
	require.NoError(t, repo.SaveAll(context.Background(), events))
	require.NoError(t, repo.SaveAll(context.Background(), events))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventFindByMatchIDOrdersBySeq(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM match_events WHERE match_id = \\? ORDER BY seq").
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{
			"match_id", "seq", "type", "timestamp", "description", "actor_id", "target_id", "value",
		}).
			AddRow("m1", 1, domain.EventMatchStart, 0, "Match started", "", "", 0).
			AddRow("m1", 2, domain.EventHit, 1, "hit", "a_1", "b_2", 12).
			AddRow("m1", 3, domain.EventMatchEnd, 2, "Winner: a", "", "", 0))

	repo := NewEventRepository(db, zerolog.Nop())
	events, err := repo.FindByMatchID(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, i+1, e.Seq)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
