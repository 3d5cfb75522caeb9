package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/crosstable/pairing-system/models"
	"github.com/crosstable/pairing-system/repositories"
)

// TxRunner wraps a unit of work in a transaction. Services depend on this
// instead of *sql.DB directly so tests can run the same code with in-memory
// repositories.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
}

type sqlTxRunner struct {
	db *sql.DB
}

func NewSQLTxRunner(db *sql.DB) TxRunner {
	return &sqlTxRunner{db: db}
}

func (r *sqlTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SectionLocker serializes generate/reset/complete per section, so concurrent
// duplicate requests queue up instead of racing to write duplicate rounds.
// Sections lock independently; there is no global flag. One instance is
// shared by the pairing and round services.
type SectionLocker struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewSectionLocker() *SectionLocker {
	return &SectionLocker{locks: make(map[int]*sync.Mutex)}
}

// Lock acquires the section's mutex and returns the unlock func.
func (l *SectionLocker) Lock(sectionID int) func() {
	l.mu.Lock()
	m, ok := l.locks[sectionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sectionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// loadTournamentSection resolves both entities and verifies the section
// really belongs to the tournament; a mismatch reads the same as a missing
// section.
func loadTournamentSection(
	ctx context.Context,
	tournamentRepo repositories.TournamentRepository,
	sectionRepo repositories.SectionRepository,
	tournamentID, sectionID int,
) (*models.Tournament, *models.Section, error) {
	tournament, err := tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, nil, ErrTournamentNotFound
		}
		return nil, nil, err
	}
	section, err := sectionRepo.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSectionNotFound) {
			return nil, nil, ErrSectionNotFound
		}
		return nil, nil, err
	}
	if section.TournamentID != tournament.ID {
		return nil, nil, ErrSectionNotFound
	}
	return tournament, section, nil
}
