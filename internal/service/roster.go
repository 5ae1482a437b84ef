package service

import (
	"context"
	"fmt"

	"hero-arena/internal/domain"

	"github.com/rs/zerolog"
)

// RosterCatalog extends the read-only HeroCatalog with the import/list
// surface the admin API exposes.
type RosterCatalog interface {
	HeroCatalog
	UpsertBatch(ctx context.Context, heroes []domain.Hero) error
	List(ctx context.Context) ([]domain.Hero, error)
}

// RosterService is the hero catalog facade.
type RosterService struct {
	catalog RosterCatalog
	logger  zerolog.Logger
}

func NewRosterService(catalog RosterCatalog, logger zerolog.Logger) *RosterService {
	return &RosterService{catalog: catalog, logger: logger}
}

// ImportHeroes upserts a batch of catalog entries, normalizing defaults.
func (s *RosterService) ImportHeroes(ctx context.Context, heroes []domain.Hero) (int, error) {
	normalized := make([]domain.Hero, len(heroes))
	for i, h := range heroes {
		normalized[i] = domain.NewHero(h.ID, h.Name, h.PowerStats, h.Role, h.Cost, h.Tags, h.Alignment, h.Publisher)
	}

	if err := s.catalog.UpsertBatch(ctx, normalized); err != nil {
		return 0, fmt.Errorf("import heroes: %w", err)
	}

	s.logger.Info().Int("count", len(normalized)).Msg("heroes imported")
	return len(normalized), nil
}

func (s *RosterService) GetHero(ctx context.Context, id int) (*domain.Hero, error) {
	return s.catalog.FindByID(ctx, id)
}

func (s *RosterService) GetHeroes(ctx context.Context, ids []int) ([]domain.Hero, error) {
	return s.catalog.FindByIDs(ctx, ids)
}

func (s *RosterService) ListHeroes(ctx context.Context) ([]domain.Hero, error) {
	return s.catalog.List(ctx)
}
