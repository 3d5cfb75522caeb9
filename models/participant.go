package models

import "time"

type ParticipantStatus string

const (
	ParticipantActive    ParticipantStatus = "active"
	ParticipantInactive  ParticipantStatus = "inactive"
	ParticipantWithdrawn ParticipantStatus = "withdrawn"
)

func (s ParticipantStatus) Valid() bool {
	switch s {
	case ParticipantActive, ParticipantInactive, ParticipantWithdrawn:
		return true
	}
	return false
}

type Participant struct {
	ID        int    `json:"id" db:"id"`
	SectionID int    `json:"section_id" db:"section_id"`
	FullName  string `json:"full_name" db:"full_name"`

	// Rating is nil for unrated participants.
	Rating *int `json:"rating,omitempty" db:"rating"`

	TeamID *int              `json:"team_id,omitempty" db:"team_id"`
	Status ParticipantStatus `json:"status" db:"status"`

	// Rounds the participant asked to sit out.
	ByeRounds []int `json:"bye_rounds" db:"bye_rounds"`

	// Seed is the registration order within the section, the stable
	// last-resort sort key.
	Seed int `json:"seed" db:"seed"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RatingOrZero treats unrated participants as rating 0 for ordering purposes.
func (p *Participant) RatingOrZero() int {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// RequestedBye reports whether the participant asked to sit out the round.
func (p *Participant) RequestedBye(round int) bool {
	for _, r := range p.ByeRounds {
		if r == round {
			return true
		}
	}
	return false
}
