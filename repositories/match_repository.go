package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/openbracket/tournament-engine/models"
)

var ErrMatchNotFound = errors.New("match not found")

// MatchFilter narrows ListByTournament; nil fields are ignored. The
// advancement resolver uses it to locate target slots by round and bracket.
type MatchFilter struct {
	Round   *int
	Bracket *models.BracketType
	Status  *models.MatchStatus
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, m *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, filter MatchFilter) ([]*models.Match, error)
	UpdatePlayers(ctx context.Context, exec SQLExecutor, id int, player1ID, player2ID *int, status models.MatchStatus) error
	Complete(ctx context.Context, exec SQLExecutor, id int, winnerID int, score *string, completedAt time.Time) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, round, match_number, bracket,
	player1_id, player2_id, status, winner_id, score, created_at, completed_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	score, err := models.EncodeScore(m.Score)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO matches
			(tournament_id, round, match_number, bracket, player1_id, player2_id, status, winner_id, score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err = exec.QueryRowContext(ctx, query,
		m.TournamentID,
		m.Round,
		m.MatchNumber,
		m.Bracket,
		m.Player1ID,
		m.Player2ID,
		m.Status,
		m.WinnerID,
		score,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	var rawScore *string
	err := row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.Round,
		&m.MatchNumber,
		&m.Bracket,
		&m.Player1ID,
		&m.Player2ID,
		&m.Status,
		&m.WinnerID,
		&rawScore,
		&m.CreatedAt,
		&m.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Score, err = models.DecodeScore(rawScore)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, filter MatchFilter) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholder := 2

	if filter.Round != nil {
		queryBuilder.WriteString(" AND round = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.Round)
		placeholder++
	}
	if filter.Bracket != nil {
		queryBuilder.WriteString(" AND bracket = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.Bracket)
		placeholder++
	}
	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.Status)
	}

	queryBuilder.WriteString(" ORDER BY round ASC, match_number ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdatePlayers(ctx context.Context, exec SQLExecutor, id int, player1ID, player2ID *int, status models.MatchStatus) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE matches SET player1_id = $1, player2_id = $2, status = $3 WHERE id = $4 AND status != $5`,
		player1ID, player2ID, status, id, models.MatchCompleted)
	if err != nil {
		return fmt.Errorf("failed to update match %d players: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Complete(ctx context.Context, exec SQLExecutor, id int, winnerID int, score *string, completedAt time.Time) error {
	// The status guard keeps a completed match immutable at the storage level
	// as well.
	result, err := exec.ExecContext(ctx,
		`UPDATE matches SET winner_id = $1, score = $2, status = $3, completed_at = $4
		 WHERE id = $5 AND status != $3`,
		winnerID, score, models.MatchCompleted, completedAt, id)
	if err != nil {
		return fmt.Errorf("failed to complete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
