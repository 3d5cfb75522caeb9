package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crosstable/pairing-system/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

// TournamentDefaults supplies values for tournaments that leave the
// corresponding columns NULL.
type TournamentDefaults struct {
	ByePoints          float64
	RequestedByePoints float64
	AcceleratedRounds  int
}

type TournamentRepository interface {
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db       *sql.DB
	defaults TournamentDefaults
}

func NewPostgresTournamentRepository(db *sql.DB, defaults TournamentDefaults) TournamentRepository {
	return &postgresTournamentRepository{db: db, defaults: defaults}
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, name, total_rounds, strategy, bye_points, requested_bye_points,
		       accelerated_rounds, created_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	var byePoints, requestedByePoints sql.NullFloat64
	var acceleratedRounds sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.TotalRounds,
		&t.Strategy,
		&byePoints,
		&requestedByePoints,
		&acceleratedRounds,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}

	t.ByePoints = r.defaults.ByePoints
	if byePoints.Valid {
		t.ByePoints = byePoints.Float64
	}
	t.RequestedByePoints = r.defaults.RequestedByePoints
	if requestedByePoints.Valid {
		t.RequestedByePoints = requestedByePoints.Float64
	}
	t.AcceleratedRounds = r.defaults.AcceleratedRounds
	if acceleratedRounds.Valid {
		t.AcceleratedRounds = int(acceleratedRounds.Int64)
	}
	return t, nil
}
