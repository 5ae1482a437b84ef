package service

import (
	"context"
	"fmt"

	"hero-arena/internal/domain"

	"github.com/rs/zerolog"
)

// Rule is one independent submission constraint, checked against the resolved
// hero list and the round spec. Rules run in registration order and the first
// failure short-circuits the chain.
type Rule interface {
	Validate(heroes []domain.Hero, spec domain.RoundSpec) error
}

// SubmissionValidator checks a draft against a round's constraints: team
// size, duplicates, and catalog resolution first (they operate on raw ids),
// then the pluggable rule chain over the resolved heroes.
type SubmissionValidator struct {
	catalog HeroCatalog
	rules   []Rule
	logger  zerolog.Logger
}

func NewSubmissionValidator(catalog HeroCatalog, logger zerolog.Logger) *SubmissionValidator {
	return &SubmissionValidator{
		catalog: catalog,
		rules:   DefaultRules(),
		logger:  logger,
	}
}

// DefaultRules is the standard chain: budget, banned tags, role composition.
func DefaultRules() []Rule {
	return []Rule{
		BudgetRule{},
		BannedTagRule{},
		RoleCompositionRule{},
	}
}

// WithRules replaces the rule chain; used to add round constraints without
// touching existing rules.
func (v *SubmissionValidator) WithRules(rules ...Rule) *SubmissionValidator {
	v.rules = rules
	return v
}

func (v *SubmissionValidator) Validate(ctx context.Context, draft domain.DraftSubmission, spec domain.RoundSpec) error {
	v.logger.Debug().
		Ints("hero_ids", draft.HeroIDs).
		Str("round", spec.Description).
		Msg("validating submission")

	if len(draft.HeroIDs) != spec.TeamSize {
		return &domain.TeamSizeError{Expected: spec.TeamSize, Actual: len(draft.HeroIDs)}
	}

	seen := make(map[int]struct{}, len(draft.HeroIDs))
	for _, id := range draft.HeroIDs {
		if _, dup := seen[id]; dup {
			return &domain.DuplicateHeroError{HeroID: id}
		}
		seen[id] = struct{}{}
	}

	heroes, err := v.ResolveHeroes(ctx, draft.HeroIDs)
	if err != nil {
		return err
	}

	for _, rule := range v.rules {
		if err := rule.Validate(heroes, spec); err != nil {
			v.logger.Warn().Err(err).Ints("hero_ids", draft.HeroIDs).Msg("submission validation failed")
			return err
		}
	}

	v.logger.Info().Int("heroes", len(heroes)).Msg("submission validation successful")
	return nil
}

// ResolveHeroes looks up every id against the catalog in draft order,
// tolerating a partial result from the store and rejecting the first missing
// id.
func (v *SubmissionValidator) ResolveHeroes(ctx context.Context, heroIDs []int) ([]domain.Hero, error) {
	found, err := v.catalog.FindByIDs(ctx, heroIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve heroes: %w", err)
	}

	byID := make(map[int]domain.Hero, len(found))
	for _, h := range found {
		byID[h.ID] = h
	}

	heroes := make([]domain.Hero, 0, len(heroIDs))
	for _, id := range heroIDs {
		hero, ok := byID[id]
		if !ok {
			return nil, &domain.HeroNotFoundError{HeroID: id}
		}
		heroes = append(heroes, hero)
	}
	return heroes, nil
}

// BudgetRule rejects rosters whose summed cost exceeds the budget cap.
type BudgetRule struct{}

func (BudgetRule) Validate(heroes []domain.Hero, spec domain.RoundSpec) error {
	total := 0
	for _, h := range heroes {
		total += h.Cost
	}
	if total > spec.BudgetCap {
		return &domain.BudgetExceededError{Total: total, Cap: spec.BudgetCap}
	}
	return nil
}

// BannedTagRule rejects the first hero, in list order, carrying a banned tag.
type BannedTagRule struct{}

func (BannedTagRule) Validate(heroes []domain.Hero, spec domain.RoundSpec) error {
	if len(spec.BannedTags) == 0 {
		return nil
	}

	banned := make(map[string]struct{}, len(spec.BannedTags))
	for _, tag := range spec.BannedTags {
		banned[tag] = struct{}{}
	}

	for _, hero := range heroes {
		for _, tag := range hero.Tags {
			if _, ok := banned[tag]; ok {
				return &domain.BannedTagError{HeroName: hero.Name, Tag: tag}
			}
		}
	}
	return nil
}

// RoleCompositionRule enforces per-role minimums, then per-role maximums.
type RoleCompositionRule struct{}

func (RoleCompositionRule) Validate(heroes []domain.Hero, spec domain.RoundSpec) error {
	counts := make(map[string]int, len(heroes))
	for _, h := range heroes {
		counts[h.Role]++
	}

	for role, min := range spec.RequiredRoles {
		if counts[role] < min {
			return &domain.MissingRequiredRoleError{Role: role, Required: min}
		}
	}
	for role, max := range spec.MaxSameRole {
		if counts[role] > max {
			return &domain.TooManyOfRoleError{Role: role, Max: max}
		}
	}
	return nil
}
