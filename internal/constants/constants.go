package constants

import "time"

const (
	// MaxTurns caps a simulation; hitting it with both sides alive is a draw.
	MaxTurns = 50
	// DamageDefenseFactor scales the defender's power in the damage formula.
	DamageDefenseFactor = 0.6
)

const (
	// FatigueStepPenalty is the stat reduction per consecutive round of use.
	FatigueStepPenalty = 0.05
	// FatigueMaxPenalty caps the total reduction (multiplier floor 0.70).
	FatigueMaxPenalty = 0.30
)

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// DefaultBatchWorkers bounds parallel match execution in one batch pass.
	DefaultBatchWorkers = 4
)
