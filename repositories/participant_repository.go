package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/crosstable/pairing-system/models"
	"github.com/lib/pq"
)

var ErrParticipantNotFound = errors.New("participant not found")

// ParticipantRepository is the read side of the roster store. The engine
// never mutates participant records.
type ParticipantRepository interface {
	GetByID(ctx context.Context, id int) (*models.Participant, error)
	ListBySection(ctx context.Context, sectionID int, status *models.ParticipantStatus) ([]*models.Participant, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

const participantColumns = `id, section_id, full_name, rating, team_id, status, bye_rounds, seed, created_at`

func scanParticipant(scanner interface{ Scan(...interface{}) error }) (*models.Participant, error) {
	p := &models.Participant{}
	var byeRounds pq.Int64Array
	err := scanner.Scan(
		&p.ID,
		&p.SectionID,
		&p.FullName,
		&p.Rating,
		&p.TeamID,
		&p.Status,
		&byeRounds,
		&p.Seed,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ByeRounds = make([]int, len(byeRounds))
	for i, r := range byeRounds {
		p.ByeRounds[i] = int(r)
	}
	return p, nil
}

func (r *postgresParticipantRepository) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`

	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to scan participant %d: %w", id, err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) ListBySection(ctx context.Context, sectionID int, statusFilter *models.ParticipantStatus) ([]*models.Participant, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + participantColumns + ` FROM participants WHERE section_id = $1`)

	args := []interface{}{sectionID}
	if statusFilter != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(len(args) + 1))
		args = append(args, *statusFilter)
	}
	queryBuilder.WriteString(" ORDER BY seed ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for section %d: %w", sectionID, err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p, scanErr := scanParticipant(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}
