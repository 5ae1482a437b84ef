package domain

import (
	"errors"
	"fmt"
)

// Validation errors are user-caused, surfaced verbatim, and never retried.
// State errors reject an operation attempted against the wrong lifecycle
// state; they are not retried automatically either, but a PENDING match that
// failed mid-run stays eligible for a later batch pass.

// ValidationError is implemented by every submission-validation failure so
// callers can classify with errors.As without enumerating concrete types.
type ValidationError interface {
	error
	validation()
}

// TeamSizeError reports a draft whose hero count does not match the round's
// required team size.
type TeamSizeError struct {
	Expected int
	Actual   int
}

func (e *TeamSizeError) Error() string {
	return fmt.Sprintf("team must have exactly %d heroes, got %d", e.Expected, e.Actual)
}

func (e *TeamSizeError) validation() {}

// DuplicateHeroError reports a draft containing the same hero more than once.
type DuplicateHeroError struct {
	HeroID int
}

func (e *DuplicateHeroError) Error() string {
	return fmt.Sprintf("duplicate hero in submission: %d", e.HeroID)
}

func (e *DuplicateHeroError) validation() {}

// HeroNotFoundError reports a hero id that did not resolve against the catalog.
type HeroNotFoundError struct {
	HeroID int
}

func (e *HeroNotFoundError) Error() string {
	return fmt.Sprintf("hero not found in roster: %d", e.HeroID)
}

func (e *HeroNotFoundError) validation() {}

// BudgetExceededError reports a roster whose total cost is above the cap.
type BudgetExceededError struct {
	Total int
	Cap   int
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("team cost exceeds maximum: %d > %d", e.Total, e.Cap)
}

func (e *BudgetExceededError) validation() {}

// BannedTagError reports the first hero carrying a tag banned by the round.
type BannedTagError struct {
	HeroName string
	Tag      string
}

func (e *BannedTagError) Error() string {
	return fmt.Sprintf("hero %s carries banned tag %q", e.HeroName, e.Tag)
}

func (e *BannedTagError) validation() {}

// MissingRequiredRoleError reports a role below its required minimum count.
type MissingRequiredRoleError struct {
	Role     string
	Required int
}

func (e *MissingRequiredRoleError) Error() string {
	return fmt.Sprintf("team needs at least %d heroes with role %s", e.Required, e.Role)
}

func (e *MissingRequiredRoleError) validation() {}

// TooManyOfRoleError reports a role above its allowed maximum count.
type TooManyOfRoleError struct {
	Role string
	Max  int
}

func (e *TooManyOfRoleError) Error() string {
	return fmt.Sprintf("team may have at most %d heroes with role %s", e.Max, e.Role)
}

func (e *TooManyOfRoleError) validation() {}

// StateError rejects an operation attempted against an entity in the wrong
// lifecycle state (match not PENDING, submissions missing, duplicate
// submission).
type StateError struct {
	msg string
}

func (e *StateError) Error() string { return e.msg }

func NewStateError(format string, args ...any) *StateError {
	return &StateError{msg: fmt.Sprintf(format, args...)}
}

// Sentinel lookup failures shared by the stores.
var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrRoundNotFound      = errors.New("round not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

// IsValidation reports whether err is any submission-validation failure.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// IsState reports whether err is a lifecycle-state rejection.
func IsState(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}
