package pairings

import "github.com/crosstable/pairing-system/models"

// History indexes a section's match ledger for pairing decisions: who has
// played whom, side distribution, byes received, and current scores. It is
// rebuilt from the match list on demand and never persisted.
type History struct {
	byePoints          float64
	requestedByePoints float64

	opponents  map[int]map[int]bool
	sideACount map[int]int
	sideBCount map[int]int
	hadBye     map[int]bool
	scores     map[int]float64

	// Highest round for which any match exists; requested byes only score
	// for rounds that actually took place.
	lastRound int
}

// NewHistory builds the index from every match of the section, decided or
// not. Scores only accumulate from decided outcomes and byes.
func NewHistory(t *models.Tournament, participants []*models.Participant, matches []*models.Match) *History {
	h := &History{
		byePoints:          t.ByePoints,
		requestedByePoints: t.RequestedByePoints,
		opponents:          make(map[int]map[int]bool),
		sideACount:         make(map[int]int),
		sideBCount:         make(map[int]int),
		hadBye:             make(map[int]bool),
		scores:             make(map[int]float64),
	}

	for _, m := range matches {
		if m.Round > h.lastRound {
			h.lastRound = m.Round
		}
		if m.IsBye {
			if m.SideAID != nil {
				h.hadBye[*m.SideAID] = true
				h.scores[*m.SideAID] += h.byePoints
			}
			continue
		}
		if m.SideAID != nil && m.SideBID != nil {
			h.recordOpponents(*m.SideAID, *m.SideBID)
			h.sideACount[*m.SideAID]++
			h.sideBCount[*m.SideBID]++
		}
		if m.Outcome.Decided() {
			if m.SideAID != nil {
				h.scores[*m.SideAID] += m.PointsFor(*m.SideAID, t.ByePoints)
			}
			if m.SideBID != nil {
				h.scores[*m.SideBID] += m.PointsFor(*m.SideBID, t.ByePoints)
			}
		}
	}

	for _, p := range participants {
		for _, r := range p.ByeRounds {
			if r >= 1 && r <= h.lastRound {
				h.scores[p.ID] += h.requestedByePoints
			}
		}
	}

	return h
}

func (h *History) recordOpponents(a, b int) {
	if h.opponents[a] == nil {
		h.opponents[a] = make(map[int]bool)
	}
	if h.opponents[b] == nil {
		h.opponents[b] = make(map[int]bool)
	}
	h.opponents[a][b] = true
	h.opponents[b][a] = true
}

// Score returns the participant's accumulated points so far.
func (h *History) Score(participantID int) float64 {
	return h.scores[participantID]
}

// HavePlayed reports whether the two participants already met.
func (h *History) HavePlayed(a, b int) bool {
	return h.opponents[a][b]
}

// SideBalance is sideA games minus sideB games. Positive means the
// participant is owed side B.
func (h *History) SideBalance(participantID int) int {
	return h.sideACount[participantID] - h.sideBCount[participantID]
}

// HadBye reports whether the participant already received an odd-player bye.
func (h *History) HadBye(participantID int) bool {
	return h.hadBye[participantID]
}

// LastRound is the highest round number with any generated match.
func (h *History) LastRound() int {
	return h.lastRound
}
