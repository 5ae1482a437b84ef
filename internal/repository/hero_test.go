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

func heroRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "durability", "strength", "power", "speed",
		"intelligence", "combat", "role", "cost", "tags", "alignment", "publisher",
	})
}

func TestHeroFindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM heroes WHERE id = \\?").
		WithArgs(70).
		WillReturnRows(heroRows().AddRow(
			70, "Batman", 50, 26, 47, 27, 100, 100, "Tactician", 35, `["Tech","Gadgets"]`, "good", "DC Comics",
		))

	repo := NewHeroRepository(db, zerolog.Nop())
	hero, err := repo.FindByID(context.Background(), 70)
	require.NoError(t, err)

	assert.Equal(t, "Batman", hero.Name)
	assert.Equal(t, 100, hero.PowerStats.Combat)
	assert.Equal(t, []string{"Tech", "Gadgets"}, hero.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHeroFindByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM heroes WHERE id = \\?").
		WithArgs(999).
		WillReturnRows(heroRows())

	repo := NewHeroRepository(db, zerolog.Nop())
	_, err = repo.FindByID(context.Background(), 999)

	var nfErr *domain.HeroNotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, 999, nfErr.HeroID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHeroFindByIDsPartialResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Only one of the two requested ids exists; the repository hands back what
	// it found and leaves missing-id detection to the caller.
	mock.ExpectQuery("SELECT (.+) FROM heroes WHERE id IN").
		WithArgs(1, 999).
		WillReturnRows(heroRows().AddRow(
			1, "Flash", 40, 30, 60, 100, 60, 70, "Assault", 30, `[]`, "good", "DC Comics",
		))

	repo := NewHeroRepository(db, zerolog.Nop())
	heroes, err := repo.FindByIDs(context.Background(), []int{1, 999})
	require.NoError(t, err)
	require.Len(t, heroes, 1)
	assert.Equal(t, "Flash", heroes[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHeroFindByIDsEmptyInput(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewHeroRepository(db, zerolog.Nop())
	heroes, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, heroes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHeroUpsertBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO heroes").
		WithArgs(
			1, "Flash", 40, 30, 60, 100, 60, 70, "Assault", 30, `["Speedster"]`, "good", "DC Comics",
			sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repo := NewHeroRepository(db, zerolog.Nop())
	err = repo.UpsertBatch(context.Background(), []domain.Hero{
		domain.NewHero(1, "Flash", domain.PowerStats{Durability: 40, Strength: 30, Power: 60, Speed: 100, Intelligence: 60, Combat: 70},
			"Assault", 30, []string{"Speedster"}, "good", "DC Comics"),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHeroUpsertBatchEmptyIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewHeroRepository(db, zerolog.Nop())
	require.NoError(t, repo.UpsertBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
