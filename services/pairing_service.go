package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crosstable/pairing-system/models"
	"github.com/crosstable/pairing-system/pairings"
	"github.com/crosstable/pairing-system/repositories"
)

// StandingsInvalidator drops cached standings for a section after any
// mutation of its ledger.
type StandingsInvalidator interface {
	Invalidate(sectionID int)
}

type PairingService interface {
	// Generate produces and stores the matches for one (round, section).
	Generate(ctx context.Context, tournamentID, round, sectionID int, strategy string) ([]*models.Match, error)

	// GenerateQuads produces the next three-round quad cycle for every quad
	// section of the tournament, keyed by section id. The first call
	// schedules rounds 1-3; once a cycle is fully complete, the next call
	// reassigns quads by current score and schedules the following cycle.
	GenerateQuads(ctx context.Context, tournamentID int) (map[int][]*models.Match, error)

	// Reset deletes the matches of a round. A nil sectionID targets every
	// section of the tournament.
	Reset(ctx context.Context, tournamentID, round int, sectionID *int) error

	ListPairings(ctx context.Context, tournamentID, round int, sectionID *int) ([]*models.Match, error)
	TeamPairings(ctx context.Context, tournamentID, round int) ([]*models.TeamPairing, error)
}

type pairingService struct {
	tx              TxRunner
	tournamentRepo  repositories.TournamentRepository
	sectionRepo     repositories.SectionRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	stateRepo       repositories.RoundStateRepository
	teamRepo        repositories.TeamRepository
	standings       StandingsInvalidator
	locks           *SectionLocker
	logger          *slog.Logger
}

func NewPairingService(
	tx TxRunner,
	tournamentRepo repositories.TournamentRepository,
	sectionRepo repositories.SectionRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	stateRepo repositories.RoundStateRepository,
	teamRepo repositories.TeamRepository,
	standings StandingsInvalidator,
	locks *SectionLocker,
	logger *slog.Logger,
) PairingService {
	return &pairingService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		sectionRepo:     sectionRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		stateRepo:       stateRepo,
		teamRepo:        teamRepo,
		standings:       standings,
		locks:           locks,
		logger:          logger,
	}
}

func (s *pairingService) Generate(ctx context.Context, tournamentID, round, sectionID int, strategy string) ([]*models.Match, error) {
	tournament, section, err := s.loadTournamentSection(ctx, tournamentID, sectionID)
	if err != nil {
		return nil, err
	}
	if round < 1 || round > tournament.TotalRounds {
		return nil, fmt.Errorf("%w: round %d of %d", ErrInvalidRound, round, tournament.TotalRounds)
	}

	strat := section.EffectiveStrategy(tournament)
	if strategy != "" {
		strat = models.PairingStrategy(strategy)
		if !strat.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
		}
	}
	if strat == models.StrategyQuads {
		return nil, ErrQuadsWholeEvent
	}

	unlock := s.locks.Lock(sectionID)
	defer unlock()

	if round > 1 {
		prev, err := s.stateRepo.Get(ctx, sectionID, round-1)
		if err != nil {
			return nil, err
		}
		if prev != models.RoundComplete {
			return nil, fmt.Errorf("%w: round %d is %s", ErrPriorRoundIncomplete, round-1, prev)
		}
	}

	// Regeneration is rejected, never silently overwritten.
	count, err := s.matchRepo.CountBySectionRound(ctx, sectionID, round)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrPairingsAlreadyExist
	}

	generated, err := s.dryRun(ctx, tournament, section, round, strat)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.CreateBatch(ctx, exec, generated); err != nil {
			return err
		}
		return s.stateRepo.SetState(ctx, exec, sectionID, round, models.RoundGenerated)
	})
	if err != nil {
		return nil, err
	}

	s.standings.Invalidate(sectionID)
	s.logger.Info("pairings generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("section_id", sectionID),
		slog.Int("round", round),
		slog.String("strategy", string(strat)),
		slog.Int("matches", len(generated)),
	)
	return generated, nil
}

// dryRun computes the match set without touching storage.
func (s *pairingService) dryRun(ctx context.Context, tournament *models.Tournament, section *models.Section, round int, strat models.PairingStrategy) ([]*models.Match, error) {
	participants, err := s.participantRepo.ListBySection(ctx, section.ID, nil)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListBySection(ctx, section.ID)
	if err != nil {
		return nil, err
	}

	params := pairings.GenerateParams{
		Tournament:   tournament,
		Section:      section,
		Round:        round,
		Participants: participants,
		Matches:      matches,
		History:      pairings.NewHistory(tournament, participants, matches),
	}
	if strat == models.StrategyTeam {
		teams, err := s.teamRepo.ListBySection(ctx, section.ID)
		if err != nil {
			return nil, err
		}
		params.Teams = teams
	}

	gen, ok := pairings.ForStrategy(strat)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strat)
	}
	generated, err := gen.Generate(ctx, params)
	if err != nil {
		return nil, mapGeneratorError(err)
	}
	return generated, nil
}

func (s *pairingService) GenerateQuads(ctx context.Context, tournamentID int) (map[int][]*models.Match, error) {
	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	sections, err := s.sectionRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	quadSections := make([]*models.Section, 0, len(sections))
	for _, sec := range sections {
		if sec.EffectiveStrategy(tournament) == models.StrategyQuads {
			quadSections = append(quadSections, sec)
		}
	}
	if len(quadSections) == 0 {
		return nil, ErrNoQuadSections
	}

	result := make(map[int][]*models.Match, len(quadSections))
	for _, sec := range quadSections {
		generated, err := s.generateQuadSection(ctx, tournament, sec)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", sec.ID, err)
		}
		result[sec.ID] = generated
	}
	return result, nil
}

func (s *pairingService) generateQuadSection(ctx context.Context, tournament *models.Tournament, section *models.Section) ([]*models.Match, error) {
	unlock := s.locks.Lock(section.ID)
	defer unlock()

	existing, err := s.matchRepo.ListBySection(ctx, section.ID)
	if err != nil {
		return nil, err
	}

	// A new cycle opens only once every scheduled round is complete; a
	// partially played cycle has to be reset, never overwritten.
	startRound := 1
	for _, m := range existing {
		if m.Round >= startRound {
			startRound = m.Round + 1
		}
	}
	for r := 1; r < startRound; r++ {
		state, err := s.stateRepo.Get(ctx, section.ID, r)
		if err != nil {
			return nil, err
		}
		if state != models.RoundComplete {
			return nil, ErrPairingsAlreadyExist
		}
	}
	if startRound > tournament.TotalRounds {
		return nil, ErrPairingsAlreadyExist
	}

	participants, err := s.participantRepo.ListBySection(ctx, section.ID, nil)
	if err != nil {
		return nil, err
	}
	gen := pairings.NewQuadGenerator()
	generated, err := gen.Generate(ctx, pairings.GenerateParams{
		Tournament:   tournament,
		Section:      section,
		Round:        startRound,
		Participants: participants,
		Matches:      existing,
		History:      pairings.NewHistory(tournament, participants, existing),
	})
	if err != nil {
		return nil, mapGeneratorError(err)
	}

	lastRound := 0
	for _, m := range generated {
		if m.Round > lastRound {
			lastRound = m.Round
		}
	}

	// The whole cycle is known up front, so every scheduled round is marked
	// Generated at once; results and completion still advance round by round.
	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.CreateBatch(ctx, exec, generated); err != nil {
			return err
		}
		for r := startRound; r <= lastRound; r++ {
			if err := s.stateRepo.SetState(ctx, exec, section.ID, r, models.RoundGenerated); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.standings.Invalidate(section.ID)
	s.logger.Info("quad cycle generated",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("section_id", section.ID),
		slog.Int("first_round", startRound),
		slog.Int("last_round", lastRound),
		slog.Int("matches", len(generated)),
	)
	return generated, nil
}

func (s *pairingService) Reset(ctx context.Context, tournamentID, round int, sectionID *int) error {
	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if round < 1 || round > tournament.TotalRounds {
		return fmt.Errorf("%w: round %d of %d", ErrInvalidRound, round, tournament.TotalRounds)
	}

	var targets []*models.Section
	if sectionID != nil {
		_, section, err := s.loadTournamentSection(ctx, tournamentID, *sectionID)
		if err != nil {
			return err
		}
		targets = []*models.Section{section}
	} else {
		targets, err = s.sectionRepo.ListByTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
	}

	for _, sec := range targets {
		if err := s.resetSection(ctx, sec.ID, round); err != nil {
			return fmt.Errorf("section %d: %w", sec.ID, err)
		}
	}
	return nil
}

func (s *pairingService) resetSection(ctx context.Context, sectionID, round int) error {
	unlock := s.locks.Lock(sectionID)
	defer unlock()

	// A reset must not orphan later rounds: they have to be reset first.
	states, err := s.stateRepo.ListBySection(ctx, sectionID)
	if err != nil {
		return err
	}
	for _, st := range states {
		if st.Round > round && st.State != models.RoundEmpty {
			return fmt.Errorf("%w: round %d is %s", ErrForwardRoundExists, st.Round, st.State)
		}
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.DeleteBySectionRound(ctx, exec, sectionID, round); err != nil {
			return err
		}
		return s.stateRepo.Delete(ctx, exec, sectionID, round)
	})
	if err != nil {
		return err
	}

	s.standings.Invalidate(sectionID)
	s.logger.Info("round reset", slog.Int("section_id", sectionID), slog.Int("round", round))
	return nil
}

func (s *pairingService) ListPairings(ctx context.Context, tournamentID, round int, sectionID *int) ([]*models.Match, error) {
	if sectionID != nil {
		_, _, err := s.loadTournamentSection(ctx, tournamentID, *sectionID)
		if err != nil {
			return nil, err
		}
		return s.matchRepo.ListBySectionRound(ctx, *sectionID, round)
	}
	if _, err := s.getTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.matchRepo.ListByTournament(ctx, tournamentID, &round)
}

// TeamPairings assembles the team-vs-team view of a round from the stored
// board matches.
func (s *pairingService) TeamPairings(ctx context.Context, tournamentID, round int) ([]*models.TeamPairing, error) {
	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	sections, err := s.sectionRepo.ListByTournament(ctx, tournament.ID)
	if err != nil {
		return nil, err
	}

	teamOf := make(map[int]int)
	for _, sec := range sections {
		participants, err := s.participantRepo.ListBySection(ctx, sec.ID, nil)
		if err != nil {
			return nil, err
		}
		for _, p := range participants {
			if p.TeamID != nil {
				teamOf[p.ID] = *p.TeamID
			}
		}
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, &round)
	if err != nil {
		return nil, err
	}

	var (
		order     []*models.TeamPairing
		byKey     = make(map[[2]int]*models.TeamPairing)
		byeByTeam = make(map[int]*models.TeamPairing)
	)
	for _, m := range matches {
		if m.IsBye {
			if m.SideAID == nil {
				continue
			}
			teamID, ok := teamOf[*m.SideAID]
			if !ok {
				continue
			}
			tp, exists := byeByTeam[teamID]
			if !exists {
				tp = &models.TeamPairing{Round: round, TeamAID: teamID}
				byeByTeam[teamID] = tp
				order = append(order, tp)
			}
			tp.Boards = append(tp.Boards, m)
			continue
		}
		if m.SideAID == nil || m.SideBID == nil {
			continue
		}
		ta, okA := teamOf[*m.SideAID]
		tb, okB := teamOf[*m.SideBID]
		if !okA || !okB || ta == tb {
			continue
		}
		key := [2]int{ta, tb}
		if tb < ta {
			key = [2]int{tb, ta}
		}
		tp, exists := byKey[key]
		if !exists {
			tbCopy := tb
			tp = &models.TeamPairing{Round: round, TeamAID: ta, TeamBID: &tbCopy}
			byKey[key] = tp
			order = append(order, tp)
		}
		tp.Boards = append(tp.Boards, m)
	}
	return order, nil
}

func (s *pairingService) getTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *pairingService) loadTournamentSection(ctx context.Context, tournamentID, sectionID int) (*models.Tournament, *models.Section, error) {
	return loadTournamentSection(ctx, s.tournamentRepo, s.sectionRepo, tournamentID, sectionID)
}

func mapGeneratorError(err error) error {
	switch {
	case errors.Is(err, pairings.ErrInsufficientParticipants):
		return ErrInsufficientParticipants
	case errors.Is(err, pairings.ErrNoFeasiblePairing):
		return ErrNoFeasiblePairing
	}
	return err
}
