package models

import "time"

// Section is an independently scored sub-bracket of a tournament. Sections
// never share matches or standings.
type Section struct {
	ID           int    `json:"id" db:"id"`
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	Name         string `json:"name" db:"name"`

	MinRating *int `json:"min_rating,omitempty" db:"min_rating"`
	MaxRating *int `json:"max_rating,omitempty" db:"max_rating"`

	// Optional override of the tournament-level pairing strategy.
	Strategy *PairingStrategy `json:"strategy,omitempty" db:"strategy"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EffectiveStrategy resolves the strategy for this section, falling back to
// the tournament default.
func (s *Section) EffectiveStrategy(t *Tournament) PairingStrategy {
	if s.Strategy != nil && s.Strategy.Valid() {
		return *s.Strategy
	}
	return t.Strategy
}
