package models

import "time"

// RoundState is the lifecycle of one (section, round).
//
// Empty → Generated → InProgress → Complete, with Reset as the only backward
// transition (any state → Empty).
type RoundState string

const (
	RoundEmpty      RoundState = "empty"
	RoundGenerated  RoundState = "generated"
	RoundInProgress RoundState = "in_progress"
	RoundComplete   RoundState = "complete"
)

func (s RoundState) Valid() bool {
	switch s {
	case RoundEmpty, RoundGenerated, RoundInProgress, RoundComplete:
		return true
	}
	return false
}

// CanTransitionTo enforces the forward ladder. Transitions to RoundEmpty are
// always allowed: that is a reset, guarded separately by the service layer.
func (s RoundState) CanTransitionTo(next RoundState) bool {
	if next == RoundEmpty {
		return true
	}
	switch s {
	case RoundEmpty:
		return next == RoundGenerated
	case RoundGenerated:
		return next == RoundInProgress || next == RoundComplete
	case RoundInProgress:
		return next == RoundComplete
	case RoundComplete:
		return false
	}
	return false
}

type SectionRoundState struct {
	SectionID int        `json:"section_id" db:"section_id"`
	Round     int        `json:"round" db:"round"`
	State     RoundState `json:"state" db:"state"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// RoundCompletion is the result of completing a round for a section.
type RoundCompletion struct {
	SectionID       int  `json:"section_id"`
	Round           int  `json:"round"`
	NextRound       *int `json:"next_round,omitempty"`
	SectionComplete bool `json:"section_complete"`
}
