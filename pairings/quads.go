package pairings

import (
	"context"
	"sort"

	"github.com/crosstable/pairing-system/models"
)

// quadRounds is the fixed three-round schedule of a group of four, indexed by
// position in the ranked group. Each element is (sideA, sideB).
var quadRounds = [3][2][2]int{
	{{0, 3}, {1, 2}},
	{{2, 0}, {3, 1}},
	{{0, 1}, {2, 3}},
}

// QuadGenerator partitions the section into banded groups of four and emits
// the complete three-round round-robin schedule for every group in one shot.
// The first cycle bands by rating; follow-up cycles start at params.Round and
// band by accumulated score, so quads are reassigned at each cycle boundary.
// A trailing remainder of one to three participants round-robins among
// itself, with byes filling the empty seats.
type QuadGenerator struct{}

func NewQuadGenerator() Generator {
	return &QuadGenerator{}
}

func (g *QuadGenerator) Name() string {
	return "Quads"
}

func (g *QuadGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.Match, error) {
	active := make([]*models.Participant, 0, len(params.Participants))
	for _, p := range params.Participants {
		if p.Status == models.ParticipantActive {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil, ErrInsufficientParticipants
	}

	sort.SliceStable(active, func(i, j int) bool {
		if params.History.Score(active[i].ID) != params.History.Score(active[j].ID) {
			return params.History.Score(active[i].ID) > params.History.Score(active[j].ID)
		}
		if active[i].RatingOrZero() != active[j].RatingOrZero() {
			return active[i].RatingOrZero() > active[j].RatingOrZero()
		}
		return active[i].Seed < active[j].Seed
	})

	first := params.Round
	if first < 1 {
		first = 1
	}
	cycleLen := 3
	if params.Tournament.TotalRounds > 0 && first+cycleLen-1 > params.Tournament.TotalRounds {
		cycleLen = params.Tournament.TotalRounds - first + 1
	}
	var matches []*models.Match
	boards := [3]int{} // per-round board counters

	for start := 0; start < len(active); start += 4 {
		end := start + 4
		if end > len(active) {
			end = len(active)
		}
		group := make([]*models.Participant, 4)
		copy(group, active[start:end]) // missing seats stay nil

		byed := make(map[int]bool)
		for r := 0; r < cycleLen; r++ {
			for _, seats := range quadRounds[r] {
				a, b := group[seats[0]], group[seats[1]]
				switch {
				case a != nil && b != nil:
					boards[r]++
					matches = append(matches, &models.Match{
						TournamentID: params.Tournament.ID,
						SectionID:    params.Section.ID,
						Round:        first + r,
						Board:        boards[r],
						SideAID:      &a.ID,
						SideBID:      &b.ID,
						Outcome:      models.OutcomePending,
					})
				case a != nil && !byed[a.ID]:
					byed[a.ID] = true
					boards[r]++
					matches = append(matches, byeMatch(params, first+r, boards[r], a))
				case b != nil && !byed[b.ID]:
					byed[b.ID] = true
					boards[r]++
					matches = append(matches, byeMatch(params, first+r, boards[r], b))
				}
			}
		}
	}

	// Fields of one or two leave some cycle rounds without a single game.
	// Those rounds are dropped and the rest renumbered so the schedule has
	// no gaps.
	renumberContiguous(matches, first, cycleLen)

	return matches, nil
}

func renumberContiguous(matches []*models.Match, first, cycleLen int) {
	present := make(map[int]bool, cycleLen)
	for _, m := range matches {
		present[m.Round] = true
	}
	renum := make(map[int]int, len(present))
	next := first
	for r := first; r < first+cycleLen; r++ {
		if present[r] {
			renum[r] = next
			next++
		}
	}
	for _, m := range matches {
		m.Round = renum[m.Round]
	}
}

func byeMatch(params GenerateParams, round, board int, p *models.Participant) *models.Match {
	return &models.Match{
		TournamentID: params.Tournament.ID,
		SectionID:    params.Section.ID,
		Round:        round,
		Board:        board,
		SideAID:      &p.ID,
		Outcome:      models.OutcomeSideAWin,
		IsBye:        true,
	}
}
