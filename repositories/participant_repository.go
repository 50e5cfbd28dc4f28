package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/openbracket/tournament-engine/models"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantConflict = errors.New("user already registered for this tournament")
	ErrSeedConflict        = errors.New("seed already taken in this tournament")
)

type ParticipantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error
	GetByID(ctx context.Context, id int) (*models.Participant, error)
	GetByTournamentAndUser(ctx context.Context, tournamentID, userID int) (*models.Participant, error)
	// ListByTournament returns participants ordered by seed ascending.
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ParticipantStatus) error
	// SetByeRound records one received bye: it stamps the round and
	// increments the participant's bye count.
	SetByeRound(ctx context.Context, exec SQLExecutor, id int, round int) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	query := `
		INSERT INTO participants (tournament_id, user_id, seed, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		p.TournamentID,
		p.UserID,
		p.Seed,
		p.Status,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "participants_tournament_id_user_id_key":
				return ErrParticipantConflict
			case "participants_tournament_id_seed_key":
				return ErrSeedConflict
			}
			return ErrParticipantConflict
		}
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

const participantColumns = `id, tournament_id, user_id, seed, status, bye_round, byes, created_at`

func scanParticipant(row interface{ Scan(...interface{}) error }) (*models.Participant, error) {
	p := &models.Participant{}
	err := row.Scan(
		&p.ID,
		&p.TournamentID,
		&p.UserID,
		&p.Seed,
		&p.Status,
		&p.ByeRound,
		&p.Byes,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
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

func (r *postgresParticipantRepository) GetByTournamentAndUser(ctx context.Context, tournamentID, userID int) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE tournament_id = $1 AND user_id = $2`
	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, tournamentID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to scan participant for tournament %d user %d: %w", tournamentID, userID, err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE tournament_id = $1 ORDER BY seed ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for tournament %d: %w", tournamentID, err)
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
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participants WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresParticipantRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ParticipantStatus) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE participants SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update participant %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) SetByeRound(ctx context.Context, exec SQLExecutor, id int, round int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE participants SET bye_round = $1, byes = byes + 1 WHERE id = $2`, round, id)
	if err != nil {
		return fmt.Errorf("failed to set participant %d bye round: %w", id, err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}
