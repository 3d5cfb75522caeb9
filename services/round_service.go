package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crosstable/pairing-system/models"
	"github.com/crosstable/pairing-system/repositories"
)

type RoundService interface {
	// Complete finalizes a round once every match has a result. It unlocks
	// generation for the next round and reports whether the section is done.
	Complete(ctx context.Context, tournamentID, round, sectionID int) (*models.RoundCompletion, error)

	// States returns the full round ladder of a section, with missing rows
	// filled in as Empty.
	States(ctx context.Context, tournamentID, sectionID int) ([]*models.SectionRoundState, error)
}

type roundService struct {
	tx             TxRunner
	tournamentRepo repositories.TournamentRepository
	sectionRepo    repositories.SectionRepository
	matchRepo      repositories.MatchRepository
	stateRepo      repositories.RoundStateRepository
	standings      StandingsInvalidator
	locks          *SectionLocker
	logger         *slog.Logger
}

func NewRoundService(
	tx TxRunner,
	tournamentRepo repositories.TournamentRepository,
	sectionRepo repositories.SectionRepository,
	matchRepo repositories.MatchRepository,
	stateRepo repositories.RoundStateRepository,
	standings StandingsInvalidator,
	locks *SectionLocker,
	logger *slog.Logger,
) RoundService {
	return &roundService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		sectionRepo:    sectionRepo,
		matchRepo:      matchRepo,
		stateRepo:      stateRepo,
		standings:      standings,
		locks:          locks,
		logger:         logger,
	}
}

func (s *roundService) Complete(ctx context.Context, tournamentID, round, sectionID int) (*models.RoundCompletion, error) {
	tournament, _, err := loadTournamentSection(ctx, s.tournamentRepo, s.sectionRepo, tournamentID, sectionID)
	if err != nil {
		return nil, err
	}
	if round < 1 || round > tournament.TotalRounds {
		return nil, fmt.Errorf("%w: round %d of %d", ErrInvalidRound, round, tournament.TotalRounds)
	}

	unlock := s.locks.Lock(sectionID)
	defer unlock()

	state, err := s.stateRepo.Get(ctx, sectionID, round)
	if err != nil {
		return nil, err
	}
	if state == models.RoundComplete {
		return nil, ErrRoundAlreadyComplete
	}
	if !state.CanTransitionTo(models.RoundComplete) {
		return nil, ErrRoundNotGenerated
	}

	matches, err := s.matchRepo.ListBySectionRound(ctx, sectionID, round)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrRoundNotGenerated
	}
	for _, m := range matches {
		if !m.IsBye && !m.Outcome.Decided() {
			return nil, fmt.Errorf("%w: board %d", ErrRoundHasPendingResults, m.Board)
		}
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.stateRepo.SetState(ctx, exec, sectionID, round, models.RoundComplete)
	})
	if err != nil {
		return nil, err
	}

	s.standings.Invalidate(sectionID)

	completion := &models.RoundCompletion{SectionID: sectionID, Round: round}
	if round < tournament.TotalRounds {
		next := round + 1
		completion.NextRound = &next
	} else {
		completion.SectionComplete = true
	}

	s.logger.Info("round complete",
		slog.Int("tournament_id", tournamentID),
		slog.Int("section_id", sectionID),
		slog.Int("round", round),
		slog.Bool("section_complete", completion.SectionComplete),
	)
	return completion, nil
}

func (s *roundService) States(ctx context.Context, tournamentID, sectionID int) ([]*models.SectionRoundState, error) {
	tournament, _, err := loadTournamentSection(ctx, s.tournamentRepo, s.sectionRepo, tournamentID, sectionID)
	if err != nil {
		return nil, err
	}

	stored, err := s.stateRepo.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	byRound := make(map[int]*models.SectionRoundState, len(stored))
	for _, st := range stored {
		byRound[st.Round] = st
	}

	ladder := make([]*models.SectionRoundState, 0, tournament.TotalRounds)
	for r := 1; r <= tournament.TotalRounds; r++ {
		if st, ok := byRound[r]; ok {
			ladder = append(ladder, st)
			continue
		}
		ladder = append(ladder, &models.SectionRoundState{
			SectionID: sectionID,
			Round:     r,
			State:     models.RoundEmpty,
		})
	}
	return ladder, nil
}
