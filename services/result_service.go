package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crosstable/pairing-system/models"
	"github.com/crosstable/pairing-system/repositories"
)

type ResultService interface {
	// SubmitResult records (or corrects) the outcome of a match. Byes are
	// immutable and completed rounds are frozen until explicitly reset.
	SubmitResult(ctx context.Context, matchID int, outcome models.MatchOutcome) (*models.Match, error)
}

type resultService struct {
	matchRepo repositories.MatchRepository
	stateRepo repositories.RoundStateRepository
	standings StandingsInvalidator
	logger    *slog.Logger
}

func NewResultService(
	matchRepo repositories.MatchRepository,
	stateRepo repositories.RoundStateRepository,
	standings StandingsInvalidator,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		matchRepo: matchRepo,
		stateRepo: stateRepo,
		standings: standings,
		logger:    logger,
	}
}

func (s *resultService) SubmitResult(ctx context.Context, matchID int, outcome models.MatchOutcome) (*models.Match, error) {
	if !outcome.Decided() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.IsBye {
		return nil, ErrByeImmutable
	}

	state, err := s.stateRepo.Get(ctx, match.SectionID, match.Round)
	if err != nil {
		return nil, err
	}
	if state == models.RoundComplete {
		return nil, ErrRoundAlreadyComplete
	}

	// Overwriting a decided outcome is a correction, not a new entry; it is
	// logged so the ledger's audit trail stays honest.
	if match.Outcome.Decided() && match.Outcome != outcome {
		s.logger.Info("result correction",
			slog.Int("match_id", match.ID),
			slog.Int("section_id", match.SectionID),
			slog.Int("round", match.Round),
			slog.String("old_outcome", string(match.Outcome)),
			slog.String("new_outcome", string(outcome)),
		)
	}

	if err := s.matchRepo.UpdateOutcome(ctx, matchID, outcome); err != nil {
		return nil, err
	}
	match.Outcome = outcome

	// First result moves the round out of Generated.
	if state.CanTransitionTo(models.RoundInProgress) {
		if err := s.stateRepo.SetState(ctx, nil, match.SectionID, match.Round, models.RoundInProgress); err != nil {
			return nil, err
		}
	}

	s.standings.Invalidate(match.SectionID)
	return match, nil
}
