package standings

import (
	"fmt"
	"sort"
)

const (
	TiebreakBuchholz        = "buchholz"
	TiebreakBuchholzCut1    = "buchholz_cut1"
	TiebreakSonnebornBerger = "sonneborn_berger"
	TiebreakProgressive     = "progressive"
)

// Tiebreak is a pure function over the computed table. Implementations never
// look at anything but their participant's games and the final scores, which
// keeps each one independently testable.
type Tiebreak interface {
	Name() string
	Values(participantID int, t *table) []float64
}

// ForNames resolves an ordered tiebreak pipeline. Unknown names are a
// validation error, not a silent skip.
func ForNames(names []string) ([]Tiebreak, error) {
	breaks := make([]Tiebreak, 0, len(names))
	for _, name := range names {
		switch name {
		case TiebreakBuchholz:
			breaks = append(breaks, buchholz{cut: false})
		case TiebreakBuchholzCut1:
			breaks = append(breaks, buchholz{cut: true})
		case TiebreakSonnebornBerger:
			breaks = append(breaks, sonnebornBerger{})
		case TiebreakProgressive:
			breaks = append(breaks, progressive{})
		default:
			return nil, fmt.Errorf("unknown tiebreak %q", name)
		}
	}
	return breaks, nil
}

// buchholz sums the final scores of every opponent actually played. The cut-1
// variant drops the single lowest opponent score.
type buchholz struct {
	cut bool
}

func (b buchholz) Name() string {
	if b.cut {
		return TiebreakBuchholzCut1
	}
	return TiebreakBuchholz
}

func (b buchholz) Values(pid int, t *table) []float64 {
	oppScores := make([]float64, 0, len(t.games[pid]))
	for _, g := range t.games[pid] {
		oppScores = append(oppScores, t.scores[g.opponent])
	}
	sum := 0.0
	for _, s := range oppScores {
		sum += s
	}
	if b.cut && len(oppScores) > 0 {
		sort.Float64s(oppScores)
		sum -= oppScores[0]
	}
	return []float64{sum}
}

// sonnebornBerger credits the full opponent score for each win and half for
// each draw.
type sonnebornBerger struct{}

func (sonnebornBerger) Name() string { return TiebreakSonnebornBerger }

func (sonnebornBerger) Values(pid int, t *table) []float64 {
	sum := 0.0
	for _, g := range t.games[pid] {
		switch g.points {
		case 1:
			sum += t.scores[g.opponent]
		case 0.5:
			sum += t.scores[g.opponent] / 2
		}
	}
	return []float64{sum}
}

// progressive is the cumulative score after each round, compared
// lexicographically; early winning streaks rank ahead of late ones.
type progressive struct{}

func (progressive) Name() string { return TiebreakProgressive }

func (progressive) Values(pid int, t *table) []float64 {
	vec := make([]float64, t.rounds)
	running := 0.0
	for r := 1; r <= t.rounds; r++ {
		running += t.perRound[pid][r]
		vec[r-1] = running
	}
	return vec
}
