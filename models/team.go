package models

import "time"

type TeamScoringMode string

const (
	ScoringSumAll  TeamScoringMode = "sum_all"
	ScoringSumTopN TeamScoringMode = "sum_top_n"
)

func (m TeamScoringMode) Valid() bool {
	return m == ScoringSumAll || m == ScoringSumTopN
}

type Team struct {
	ID        int             `json:"id" db:"id"`
	SectionID int             `json:"section_id" db:"section_id"`
	Name      string          `json:"name" db:"name"`
	Mode      TeamScoringMode `json:"scoring_mode" db:"scoring_mode"`

	// TopN only applies when Mode is sum_top_n. A TopN larger than the
	// roster degrades to sum_all.
	TopN int `json:"top_n" db:"top_n"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Members []Participant `json:"members,omitempty" db:"-"`
}

// TeamPairing is the team-vs-team view of one round, assembled from the
// individual board matches. It is derived, never stored.
type TeamPairing struct {
	Round   int      `json:"round"`
	TeamAID int      `json:"team_a_id"`
	TeamBID *int     `json:"team_b_id,omitempty"` // nil when the team has a bye
	Boards  []*Match `json:"boards"`
}
