package pairings

import (
	"context"
	"sort"

	"github.com/crosstable/pairing-system/models"
)

// SwissGenerator pairs one round at a time: sort by score, pair top-down
// within and across score groups, never repeat an opponent, balance sides,
// and give the odd participant out a bye.
//
// The accelerated variant boosts the effective score of the top half of the
// field for a configured number of early rounds, so under-matched strong
// players meet each other sooner.
type SwissGenerator struct {
	accelerated bool
}

func NewSwissGenerator() Generator {
	return &SwissGenerator{}
}

func NewAcceleratedSwissGenerator() Generator {
	return &SwissGenerator{accelerated: true}
}

func (g *SwissGenerator) Name() string {
	if g.accelerated {
		return "SwissAccelerated"
	}
	return "Swiss"
}

type swissEntry struct {
	p     *models.Participant
	score float64
}

func (g *SwissGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.Match, error) {
	h := params.History
	round := params.Round

	entries := make([]*swissEntry, 0, len(params.Participants))
	for _, p := range params.Participants {
		if p.Status != models.ParticipantActive || p.RequestedBye(round) {
			continue
		}
		entries = append(entries, &swissEntry{p: p, score: h.Score(p.ID)})
	}
	if len(entries) == 0 {
		return nil, ErrInsufficientParticipants
	}

	if g.accelerated && round <= params.Tournament.AcceleratedRounds {
		// Virtual point for the top half of the initial rating ranking. The
		// boost only affects the ordering below, never the stored score.
		byRating := make([]*swissEntry, len(entries))
		copy(byRating, entries)
		sort.SliceStable(byRating, func(i, j int) bool {
			if byRating[i].p.RatingOrZero() != byRating[j].p.RatingOrZero() {
				return byRating[i].p.RatingOrZero() > byRating[j].p.RatingOrZero()
			}
			return byRating[i].p.Seed < byRating[j].p.Seed
		})
		boosted := (len(byRating) + 1) / 2
		for i := 0; i < boosted; i++ {
			byRating[i].score++
		}
	}

	sortEntries(entries)

	var (
		pairs [][2]*swissEntry
		bye   *swissEntry
	)
	if len(entries)%2 == 0 {
		var ok bool
		pairs, ok = pairEntries(entries, h)
		if !ok {
			return nil, ErrNoFeasiblePairing
		}
	} else {
		var ok bool
		pairs, bye, ok = pairWithBye(entries, h)
		if !ok {
			return nil, ErrNoFeasiblePairing
		}
	}

	matches := make([]*models.Match, 0, len(pairs)+1)
	for i, pair := range pairs {
		sideA, sideB := orderSides(pair[0], pair[1], h)
		matches = append(matches, &models.Match{
			TournamentID: params.Tournament.ID,
			SectionID:    params.Section.ID,
			Round:        round,
			Board:        i + 1,
			SideAID:      &sideA.p.ID,
			SideBID:      &sideB.p.ID,
			Outcome:      models.OutcomePending,
		})
	}
	if bye != nil {
		matches = append(matches, &models.Match{
			TournamentID: params.Tournament.ID,
			SectionID:    params.Section.ID,
			Round:        round,
			Board:        len(pairs) + 1,
			SideAID:      &bye.p.ID,
			Outcome:      models.OutcomeSideAWin,
			IsBye:        true,
		})
	}
	return matches, nil
}

// sortEntries orders by score, then rating, then registration order, which
// keeps every downstream decision deterministic.
func sortEntries(entries []*swissEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		if entries[i].p.RatingOrZero() != entries[j].p.RatingOrZero() {
			return entries[i].p.RatingOrZero() > entries[j].p.RatingOrZero()
		}
		return entries[i].p.Seed < entries[j].p.Seed
	})
}

// pairEntries pairs an even-length ordered field without rematches. The top
// unpaired participant tries opponents in ranking order, so an in-group
// opponent is always preferred and a float to the next group down only
// happens when the group is exhausted. Backtracking proves infeasibility
// instead of ever emitting a rematch.
func pairEntries(entries []*swissEntry, h *History) ([][2]*swissEntry, bool) {
	if len(entries) == 0 {
		return nil, true
	}
	first := entries[0]
	for j := 1; j < len(entries); j++ {
		opp := entries[j]
		if h.HavePlayed(first.p.ID, opp.p.ID) {
			continue
		}
		rest := make([]*swissEntry, 0, len(entries)-2)
		rest = append(rest, entries[1:j]...)
		rest = append(rest, entries[j+1:]...)
		tail, ok := pairEntries(rest, h)
		if ok {
			return append([][2]*swissEntry{{first, opp}}, tail...), true
		}
	}
	return nil, false
}

// pairWithBye picks the bye and pairs the rest. Candidates are tried from the
// bottom of the field up, participants without a prior bye first, so a round
// is never declared infeasible because of an unlucky bye pick.
func pairWithBye(entries []*swissEntry, h *History) ([][2]*swissEntry, *swissEntry, bool) {
	candidates := make([]int, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if !h.HadBye(entries[i].p.ID) {
			candidates = append(candidates, i)
		}
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if h.HadBye(entries[i].p.ID) {
			candidates = append(candidates, i)
		}
	}

	for _, idx := range candidates {
		rest := make([]*swissEntry, 0, len(entries)-1)
		rest = append(rest, entries[:idx]...)
		rest = append(rest, entries[idx+1:]...)
		pairs, ok := pairEntries(rest, h)
		if ok {
			return pairs, entries[idx], true
		}
	}
	return nil, nil, false
}

// orderSides assigns the board sides of a pair. The participant with the
// higher side-A surplus takes side B; on equal balance the higher-ranked
// participant takes side A.
func orderSides(higher, lower *swissEntry, h *History) (*swissEntry, *swissEntry) {
	if h.SideBalance(higher.p.ID) > h.SideBalance(lower.p.ID) {
		return lower, higher
	}
	return higher, lower
}
