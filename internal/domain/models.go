package domain

import (
	"time"
)

// PowerStats is the six-attribute power profile of a hero.
type PowerStats struct {
	Durability   int `json:"durability"`
	Strength     int `json:"strength"`
	Power        int `json:"power"`
	Speed        int `json:"speed"`
	Intelligence int `json:"intelligence"`
	Combat       int `json:"combat"`
}

// Hero is the battle-relevant projection of a catalog entry. Values are
// immutable once constructed; fatigue produces a derived copy via Scaled.
type Hero struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	PowerStats PowerStats `json:"powerstats"`
	Role       string     `json:"role"`
	Cost       int        `json:"cost"`
	Tags       []string   `json:"tags"`
	Alignment  string     `json:"alignment"`
	Publisher  string     `json:"publisher"`
}

// NewHero builds a Hero, filling the defaults the catalog import relies on.
func NewHero(id int, name string, stats PowerStats, role string, cost int, tags []string, alignment, publisher string) Hero {
	if role == "" {
		role = "Fighter"
	}
	if cost <= 0 {
		cost = 10
	}
	if tags == nil {
		tags = []string{}
	}
	return Hero{
		ID:         id,
		Name:       name,
		PowerStats: stats,
		Role:       role,
		Cost:       cost,
		Tags:       tags,
		Alignment:  alignment,
		Publisher:  publisher,
	}
}

// Scaled returns a copy of the hero with every power attribute multiplied by
// factor, truncated toward zero. The receiver is never mutated.
func (h Hero) Scaled(factor float64) Hero {
	scaled := h
	scaled.PowerStats = PowerStats{
		Durability:   int(float64(h.PowerStats.Durability) * factor),
		Strength:     int(float64(h.PowerStats.Strength) * factor),
		Power:        int(float64(h.PowerStats.Power) * factor),
		Speed:        int(float64(h.PowerStats.Speed) * factor),
		Intelligence: int(float64(h.PowerStats.Intelligence) * factor),
		Combat:       int(float64(h.PowerStats.Combat) * factor),
	}
	return scaled
}

// RoundSpec is the ruleset of a round. Maps and slices may be empty but are
// never mutated after round creation.
type RoundSpec struct {
	Description   string             `json:"description"`
	TeamSize      int                `json:"teamSize"`
	BudgetCap     int                `json:"budgetCap"`
	RequiredRoles map[string]int     `json:"requiredRoles"` // role -> min count
	MaxSameRole   map[string]int     `json:"maxSameRole"`   // role -> max count
	BannedTags    []string           `json:"bannedTags"`
	TagModifiers  map[string]float64 `json:"tagModifiers"` // tag -> damage multiplier
	MapType       string             `json:"mapType"`
}

type RoundStatus string

const (
	RoundScheduled RoundStatus = "SCHEDULED"
	RoundOpen      RoundStatus = "OPEN"
	RoundClosed    RoundStatus = "CLOSED"
	RoundProcessed RoundStatus = "PROCESSED"
)

// Round is a numbered stage of a session. The seed is fixed at creation and is
// the sole source of combat randomness for every match in the round.
type Round struct {
	RoundNo   int
	SessionID string
	Spec      RoundSpec
	Status    RoundStatus
	Seed      int64
	Deadline  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Session struct {
	SessionID string
	StartedAt time.Time
	Active    bool
}

type Team struct {
	TeamID    string
	SessionID string
	Name      string
	CreatedAt time.Time
}

// DraftSubmission is the hero list a team submits for a round.
type DraftSubmission struct {
	HeroIDs  []int  `json:"heroIds"`
	Strategy string `json:"strategy"`
}

// Submission records a team's accepted draft for a round. At most one exists
// per (team, round); later attempts are rejected, not overwritten.
type Submission struct {
	TeamID          string
	RoundNo         int
	Draft           DraftSubmission
	Accepted        bool
	RejectionReason string
	SubmittedAt     time.Time
}

type MatchStatus string

const (
	MatchPending    MatchStatus = "PENDING"
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchCompleted  MatchStatus = "COMPLETED"
	MatchCancelled  MatchStatus = "CANCELLED"
)

// MatchResult is the summary persisted with a completed match.
type MatchResult struct {
	Winner     string `json:"winner"` // winning team id, or "DRAW"
	TotalTurns int    `json:"totalTurns"`
	EventCount int    `json:"eventCount"`
}

// Match pairs two teams within a round. It transitions PENDING -> COMPLETED
// exactly once; WinnerTeam is empty for a draw or an undecided match.
type Match struct {
	MatchID    string
	SessionID  string
	RoundNo    int
	TeamA      string
	TeamB      string
	Status     MatchStatus
	WinnerTeam string
	Result     *MatchResult
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Event types emitted by the combat simulator.
const (
	EventMatchStart  = "MATCH_START"
	EventTurnStart   = "TURN_START"
	EventHit         = "HIT"
	EventKO          = "KO"
	EventDodge       = "DODGE"
	EventCriticalHit = "CRITICAL_HIT"
	EventMatchEnd    = "MATCH_END"
)

// MatchEvent is one entry of a match's append-only, replayable trace. Seq is
// strictly increasing per match, starting at 1, and assigned by the simulator.
type MatchEvent struct {
	MatchID     string `json:"matchId"`
	Seq         int    `json:"seq"`
	Type        string `json:"type"`
	Timestamp   int64  `json:"timestamp"` // logical time, not wall clock
	Description string `json:"description"`
	ActorID     string `json:"actorId,omitempty"`  // teamID_heroID composite
	TargetID    string `json:"targetId,omitempty"` // teamID_heroID composite
	Value       int    `json:"value"`
}

// HeroUsage is one append-only fatigue ledger row: the consecutive-use streak
// a hero reached in a round for a team, and the stat multiplier that streak
// implies for the following round.
type HeroUsage struct {
	TeamID     string
	HeroID     int
	RoundNo    int
	Streak     int
	Multiplier float64
}

// SimulationResult is what the combat simulator hands back to the lifecycle
// controller: the winner (empty on a draw), the turn count, and the ordered
// event log.
type SimulationResult struct {
	WinnerTeamID string
	TotalTurns   int
	Events       []MatchEvent
}

// Draw reports whether the simulation ended without a winner.
func (r SimulationResult) Draw() bool {
	return r.WinnerTeamID == ""
}

// BatchResult summarizes one RunAllBattles pass. Total vs SuccessCount lets a
// caller detect partial failure without parsing logs.
type BatchResult struct {
	MatchIDs     []string          `json:"matchIds"`
	Winners      map[string]string `json:"winners"` // match id -> winning team id, or "DRAW"
	Total        int               `json:"total"`
	SuccessCount int               `json:"successCount"`
}
