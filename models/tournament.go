package models

import "time"

type PairingStrategy string

const (
	StrategySwiss            PairingStrategy = "swiss"
	StrategySwissAccelerated PairingStrategy = "swiss_accelerated"
	StrategyQuads            PairingStrategy = "quads"
	StrategyTeam             PairingStrategy = "team"
)

func (s PairingStrategy) Valid() bool {
	switch s {
	case StrategySwiss, StrategySwissAccelerated, StrategyQuads, StrategyTeam:
		return true
	}
	return false
}

type Tournament struct {
	ID          int             `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	TotalRounds int             `json:"total_rounds" db:"total_rounds"`
	Strategy    PairingStrategy `json:"strategy" db:"strategy"`

	// Points awarded in lieu of a game: ByePoints for the odd-player bye
	// assigned by the generator, RequestedByePoints for rounds a participant
	// asked to sit out.
	ByePoints          float64 `json:"bye_points" db:"bye_points"`
	RequestedByePoints float64 `json:"requested_bye_points" db:"requested_bye_points"`

	// Number of early rounds the accelerated variant boosts the top half.
	AcceleratedRounds int `json:"accelerated_rounds" db:"accelerated_rounds"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Sections []Section `json:"sections,omitempty" db:"-"`
}
