package service

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"

	"hero-arena/internal/constants"
	"hero-arena/internal/domain"

	"github.com/rs/zerolog"
)

// BattleEngine resolves a match deterministically: the only randomness source
// is a PRNG seeded from the round seed and the match id, so replaying with
// identical inputs reproduces the event log byte for byte.
type BattleEngine struct {
	logger zerolog.Logger

	// critAndDodge gates the optional critical-hit/dodge mechanics. They
	// consume the match PRNG, so flipping this changes replay output for
	// existing seeds; it is off unless explicitly enabled.
	critAndDodge bool
}

type EngineOption func(*BattleEngine)

// WithCritAndDodge enables dodge checks and critical hits during attacks.
func WithCritAndDodge() EngineOption {
	return func(e *BattleEngine) { e.critAndDodge = true }
}

func NewBattleEngine(logger zerolog.Logger, opts ...EngineOption) *BattleEngine {
	e := &BattleEngine{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// battleHero is the mutable per-match combat state of a hero. The hero value
// itself stays untouched; only hp changes during the fight.
type battleHero struct {
	hero   domain.Hero
	teamID string
	hp     int
}

func (bh *battleHero) alive() bool { return bh.hp > 0 }

// compositeID distinguishes the same hero fighting on different teams.
func (bh *battleHero) compositeID() string {
	return fmt.Sprintf("%s_%d", bh.teamID, bh.hero.ID)
}

// eventLog assigns sequence numbers scoped to a single simulation call.
type eventLog struct {
	matchID string
	events  []domain.MatchEvent
}

func (l *eventLog) append(evtType, description, actorID, targetID string, value int) {
	l.events = append(l.events, domain.MatchEvent{
		MatchID:     l.matchID,
		Seq:         len(l.events) + 1,
		Type:        evtType,
		Timestamp:   int64(len(l.events)),
		Description: description,
		ActorID:     actorID,
		TargetID:    targetID,
		Value:       value,
	})
}

// Simulate runs the turn-based battle between the two rosters and returns the
// winner (empty for a draw), the turn count, and the ordered event log.
func (e *BattleEngine) Simulate(
	matchID string,
	teamAHeroes, teamBHeroes []domain.Hero,
	roundSeed int64,
	teamAID, teamBID string,
	spec domain.RoundSpec,
) domain.SimulationResult {
	e.logger.Info().
		Str("match_id", matchID).
		Str("team_a", teamAID).
		Str("team_b", teamBID).
		Int64("seed", roundSeed).
		Msg("starting battle simulation")

	rng := rand.New(rand.NewSource(roundSeed + matchSeedOffset(matchID)))

	combatants := make([]*battleHero, 0, len(teamAHeroes)+len(teamBHeroes))
	for _, h := range teamAHeroes {
		combatants = append(combatants, &battleHero{hero: h, teamID: teamAID, hp: h.PowerStats.Durability})
	}
	for _, h := range teamBHeroes {
		combatants = append(combatants, &battleHero{hero: h, teamID: teamBID, hp: h.PowerStats.Durability})
	}

	// Initiative order is fixed for the whole match: speed descending, hero
	// id ascending on ties. Fatigue or damage never re-sorts it.
	sort.Slice(combatants, func(i, j int) bool {
		a, b := combatants[i], combatants[j]
		if a.hero.PowerStats.Speed != b.hero.PowerStats.Speed {
			return a.hero.PowerStats.Speed > b.hero.PowerStats.Speed
		}
		return a.hero.ID < b.hero.ID
	})

	log := &eventLog{matchID: matchID}
	log.append(domain.EventMatchStart, "Match started", "", "", 0)

	turn := 0
	winnerID, ended := winCondition(combatants, teamAID, teamBID)

	for !ended && turn < constants.MaxTurns {
		turn++
		log.append(domain.EventTurnStart, fmt.Sprintf("Turn %d started", turn), "", "", turn)

		winnerID, ended = e.executeTurn(combatants, teamAID, teamBID, spec, rng, log)

		if turn%10 == 0 {
			e.logger.Debug().Str("match_id", matchID).Int("turn", turn).Msg("battle progress")
		}
	}

	switch {
	case winnerID != "":
		log.append(domain.EventMatchEnd, fmt.Sprintf("Winner: %s", winnerID), "", "", 0)
		e.logger.Info().Str("match_id", matchID).Str("winner", winnerID).Int("turns", turn).Msg("battle completed")
	case ended:
		// Neither side has anyone standing, so the match ended before the cap.
		log.append(domain.EventMatchEnd, "Draw - no combatants remain", "", "", 0)
		e.logger.Info().Str("match_id", matchID).Int("turns", turn).Msg("battle completed with draw")
	default:
		log.append(domain.EventMatchEnd, "Draw - max turns reached", "", "", 0)
		e.logger.Info().Str("match_id", matchID).Int("turns", turn).Msg("battle completed with draw")
	}

	return domain.SimulationResult{
		WinnerTeamID: winnerID,
		TotalTurns:   turn,
		Events:       log.events,
	}
}

// executeTurn gives every living combatant one action in initiative order.
// It reports the winner and whether the match ended during the turn.
func (e *BattleEngine) executeTurn(
	combatants []*battleHero,
	teamAID, teamBID string,
	spec domain.RoundSpec,
	rng *rand.Rand,
	log *eventLog,
) (string, bool) {
	for _, attacker := range combatants {
		if !attacker.alive() {
			continue
		}

		if winnerID, ended := winCondition(combatants, teamAID, teamBID); ended {
			return winnerID, true
		}

		target := selectTarget(attacker, combatants, teamAID, teamBID, rng)
		if target == nil {
			// No living opponents left; the acting side wins outright.
			return attacker.teamID, true
		}

		e.performAttack(attacker, target, spec, rng, log)
	}

	return winCondition(combatants, teamAID, teamBID)
}

func (e *BattleEngine) performAttack(attacker, target *battleHero, spec domain.RoundSpec, rng *rand.Rand, log *eventLog) {
	if e.critAndDodge {
		dodgeChance := CalculateDodgeChance(attacker.hero, target.hero)
		if dodgeChance > 0 && rng.Float64() < dodgeChance {
			log.append(domain.EventDodge,
				fmt.Sprintf("%s dodges %s", target.hero.Name, attacker.hero.Name),
				attacker.compositeID(), target.compositeID(), 0)
			return
		}
	}

	isCrit := false
	if e.critAndDodge {
		critChance := CalculateCriticalHitChance(attacker.hero)
		isCrit = critChance > 0 && rng.Float64() < critChance
	}

	damage := CalculateDamage(attacker.hero, target.hero, spec, isCrit)
	target.hp -= damage
	if target.hp < 0 {
		target.hp = 0
	}

	if isCrit {
		log.append(domain.EventCriticalHit,
			fmt.Sprintf("%s critically hits %s for %d", attacker.hero.Name, target.hero.Name, damage),
			attacker.compositeID(), target.compositeID(), damage)
	} else {
		log.append(domain.EventHit,
			fmt.Sprintf("%s hits %s for %d", attacker.hero.Name, target.hero.Name, damage),
			attacker.compositeID(), target.compositeID(), damage)
	}

	if target.hp == 0 {
		log.append(domain.EventKO,
			fmt.Sprintf("%s is KO!", target.hero.Name),
			attacker.compositeID(), target.compositeID(), 0)
	}
}

// selectTarget picks a living opponent with the minimum current HP, breaking
// ties uniformly with the match PRNG. Returns nil when no opponents remain.
func selectTarget(attacker *battleHero, combatants []*battleHero, teamAID, teamBID string, rng *rand.Rand) *battleHero {
	opposingTeamID := teamBID
	if attacker.teamID == teamBID {
		opposingTeamID = teamAID
	}

	var candidates []*battleHero
	minHP := 0
	for _, bh := range combatants {
		if bh.teamID != opposingTeamID || !bh.alive() {
			continue
		}
		switch {
		case len(candidates) == 0 || bh.hp < minHP:
			candidates = candidates[:0]
			candidates = append(candidates, bh)
			minHP = bh.hp
		case bh.hp == minHP:
			candidates = append(candidates, bh)
		}
	}

	switch len(candidates) {
	case 0:
		return nil
	case 1:
		return candidates[0]
	default:
		return candidates[rng.Intn(len(candidates))]
	}
}

// winCondition evaluates the global end state: ended is true once either side
// is fully dead; winner is empty when both sides are wiped (defensive draw).
func winCondition(combatants []*battleHero, teamAID, teamBID string) (winner string, ended bool) {
	teamADead := teamWipedOut(combatants, teamAID)
	teamBDead := teamWipedOut(combatants, teamBID)

	switch {
	case teamADead && teamBDead:
		return "", true
	case teamADead:
		return teamBID, true
	case teamBDead:
		return teamAID, true
	default:
		return "", false
	}
}

func teamWipedOut(combatants []*battleHero, teamID string) bool {
	for _, bh := range combatants {
		if bh.teamID == teamID && bh.alive() {
			return false
		}
	}
	return true
}

// CalculateDamage computes the damage one attack deals. The tag multiplier is
// the product of the round's modifiers over every matching attacker tag; a
// critical hit scales the post-mitigation damage by 1.5. The result is never
// below 1 so a turn always makes forward progress.
func CalculateDamage(attacker, target domain.Hero, spec domain.RoundSpec, isCrit bool) int {
	multiplier := 1.0
	for _, tag := range attacker.Tags {
		if mod, ok := spec.TagModifiers[tag]; ok {
			multiplier *= mod
		}
	}

	raw := float64(attacker.PowerStats.Strength)*multiplier -
		float64(target.PowerStats.Power)*constants.DamageDefenseFactor
	if isCrit {
		raw *= 1.5
	}

	damage := int(math.Round(raw))
	if damage < 1 {
		damage = 1
	}
	return damage
}

// CalculateCriticalHitChance derives the crit chance from the attacker's
// combat attribute, clamped to [0, 0.5].
func CalculateCriticalHitChance(attacker domain.Hero) float64 {
	return clampChance(float64(attacker.PowerStats.Combat) / 200.0)
}

// CalculateDodgeChance derives the dodge chance from the speed advantage of
// the target over the attacker, clamped to [0, 0.5].
func CalculateDodgeChance(attacker, target domain.Hero) float64 {
	diff := target.PowerStats.Speed - attacker.PowerStats.Speed
	return clampChance(float64(diff) / 200.0)
}

func clampChance(chance float64) float64 {
	if chance < 0 {
		return 0
	}
	if chance > 0.5 {
		return 0.5
	}
	return chance
}

// matchSeedOffset folds the match id into the round seed so every match in a
// round gets its own PRNG stream while staying replayable.
func matchSeedOffset(matchID string) int64 {
	h := fnv.New32a()
	h.Write([]byte(matchID))
	return int64(int32(h.Sum32()))
}
