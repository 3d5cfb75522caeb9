package pairings

import (
	"context"
	"errors"

	"github.com/crosstable/pairing-system/models"
)

var (
	// ErrInsufficientParticipants means the section has nobody to pair after
	// removing inactive participants and requested byes.
	ErrInsufficientParticipants = errors.New("not enough pairable participants")

	// ErrNoFeasiblePairing means every candidate match set violates the
	// no-rematch rule. It is surfaced instead of silently producing a
	// rematch.
	ErrNoFeasiblePairing = errors.New("no feasible pairing exists")
)

type GenerateParams struct {
	Tournament *models.Tournament
	Section    *models.Section

	// Round being generated. The quad generator ignores it and produces the
	// whole three-round schedule at once.
	Round int

	// Active participants of the section, in registration order.
	Participants []*models.Participant

	// Teams of the section; only the team generator reads it.
	Teams []*models.Team

	// Full match ledger of the section. The team generator derives team
	// scores and team rematches from it.
	Matches []*models.Match

	History *History
}

// Generator produces the match set for a round (or, for quads, the whole
// cycle). Implementations are pure: the same params always yield the same
// matches.
type Generator interface {
	Generate(ctx context.Context, params GenerateParams) ([]*models.Match, error)
	Name() string
}

// ForStrategy returns the generator for a pairing strategy.
func ForStrategy(strategy models.PairingStrategy) (Generator, bool) {
	switch strategy {
	case models.StrategySwiss:
		return NewSwissGenerator(), true
	case models.StrategySwissAccelerated:
		return NewAcceleratedSwissGenerator(), true
	case models.StrategyQuads:
		return NewQuadGenerator(), true
	case models.StrategyTeam:
		return NewTeamGenerator(), true
	}
	return nil, false
}
