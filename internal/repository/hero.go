package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hero-arena/internal/domain"

	"github.com/rs/zerolog"
)

// HeroRepository is the sqlite-backed hero catalog. Tags are stored as a JSON
// array in a single column.
type HeroRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewHeroRepository(db *sql.DB, logger zerolog.Logger) *HeroRepository {
	return &HeroRepository{db: db, logger: logger}
}

const heroColumns = "id, name, durability, strength, power, speed, intelligence, combat, role, cost, tags, alignment, publisher"

func scanHero(row interface{ Scan(...any) error }) (domain.Hero, error) {
	var h domain.Hero
	var tagsJSON string
	err := row.Scan(
		&h.ID, &h.Name,
		&h.PowerStats.Durability, &h.PowerStats.Strength, &h.PowerStats.Power,
		&h.PowerStats.Speed, &h.PowerStats.Intelligence, &h.PowerStats.Combat,
		&h.Role, &h.Cost, &tagsJSON, &h.Alignment, &h.Publisher,
	)
	if err != nil {
		return domain.Hero{}, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &h.Tags); err != nil {
		return domain.Hero{}, fmt.Errorf("decode tags for hero %d: %w", h.ID, err)
	}
	return h, nil
}

func (r *HeroRepository) FindByID(ctx context.Context, id int) (*domain.Hero, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+heroColumns+" FROM heroes WHERE id = ?", id)
	hero, err := scanHero(row)
	if err == sql.ErrNoRows {
		return nil, &domain.HeroNotFoundError{HeroID: id}
	}
	if err != nil {
		return nil, err
	}
	return &hero, nil
}

// FindByIDs returns the heroes it can resolve; callers detect missing ids by
// comparing counts.
func (r *HeroRepository) FindByIDs(ctx context.Context, ids []int) ([]domain.Hero, error) {
	if len(ids) == 0 {
		return []domain.Hero{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+heroColumns+" FROM heroes WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var heroes []domain.Hero
	for rows.Next() {
		hero, err := scanHero(rows)
		if err != nil {
			return nil, err
		}
		heroes = append(heroes, hero)
	}
	return heroes, rows.Err()
}

func (r *HeroRepository) List(ctx context.Context) ([]domain.Hero, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+heroColumns+" FROM heroes ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var heroes []domain.Hero
	for rows.Next() {
		hero, err := scanHero(rows)
		if err != nil {
			return nil, err
		}
		heroes = append(heroes, hero)
	}
	return heroes, rows.Err()
}

func (r *HeroRepository) UpsertBatch(ctx context.Context, heroes []domain.Hero) error {
	if len(heroes) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, h := range heroes {
		tagsJSON, err := json.Marshal(h.Tags)
		if err != nil {
			return fmt.Errorf("encode tags for hero %d: %w", h.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO heroes (id, name, durability, strength, power, speed, intelligence, combat, role, cost, tags, alignment, publisher, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				durability = excluded.durability,
				strength = excluded.strength,
				power = excluded.power,
				speed = excluded.speed,
				intelligence = excluded.intelligence,
				combat = excluded.combat,
				role = excluded.role,
				cost = excluded.cost,
				tags = excluded.tags,
				alignment = excluded.alignment,
				publisher = excluded.publisher,
				updated_at = excluded.updated_at`,
			h.ID, h.Name,
			h.PowerStats.Durability, h.PowerStats.Strength, h.PowerStats.Power,
			h.PowerStats.Speed, h.PowerStats.Intelligence, h.PowerStats.Combat,
			h.Role, h.Cost, string(tagsJSON), h.Alignment, h.Publisher, now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert hero %d: %w", h.ID, err)
		}
	}

	return tx.Commit()
}
