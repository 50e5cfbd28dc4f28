package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
)

// CompleteMatchInput reports the outcome of one match.
type CompleteMatchInput struct {
	WinnerID int
	Score    *models.MatchScore
}

type MatchService interface {
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error)
	// CompleteMatch records the result and applies every structural
	// consequence (advancement, losers-bracket placement, eliminations,
	// next Swiss round, tournament completion) in one transaction.
	CompleteMatch(ctx context.Context, matchID int, input CompleteMatchInput) (*models.Match, error)
}

type matchService struct {
	tx              repositories.TxRunner
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	locks           *TournamentLocks
	logger          *slog.Logger
}

func NewMatchService(
	tx repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	locks *TournamentLocks,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		locks:           locks,
		logger:          logger,
	}
}

func (s *matchService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("get match %d: %w", matchID, err)
	}
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("get tournament %d: %w", tournamentID, err)
	}
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, filter)
	if err != nil {
		return nil, fmt.Errorf("list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) CompleteMatch(ctx context.Context, matchID int, input CompleteMatchInput) (*models.Match, error) {
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(match.TournamentID)
	defer unlock()

	// Re-read under the lock: a concurrent completion may have advanced the
	// bracket since the first lookup.
	match, err = s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("get tournament %d: %w", match.TournamentID, err)
	}

	if tournament.Status != models.StatusInProgress {
		return nil, ErrInvalidState
	}
	if match.Status == models.MatchCompleted {
		return nil, ErrMatchAlreadyCompleted
	}
	if match.Status == models.MatchWaiting || match.Player1ID == nil || match.Player2ID == nil {
		return nil, ErrMatchNotReady
	}
	if !match.HasPlayer(input.WinnerID) {
		return nil, ErrInvalidWinner
	}
	if input.Score != nil {
		if err := input.Score.Validate(); err != nil {
			return nil, ErrInvalidScore
		}
	}

	participants, err := s.participantRepo.ListByTournament(ctx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("list participants for tournament %d: %w", tournament.ID, err)
	}
	matches, err := s.matchRepo.ListByTournament(ctx, tournament.ID, repositories.MatchFilter{})
	if err != nil {
		return nil, fmt.Errorf("list matches for tournament %d: %w", tournament.ID, err)
	}

	res := newResolution(tournament, participants, matches)
	completed := res.find(match.Bracket, match.Round, match.MatchNumber)
	if completed == nil || completed.ID != match.ID {
		return nil, fmt.Errorf("match %d missing from tournament %d match set", match.ID, tournament.ID)
	}
	winnerID := input.WinnerID
	now := time.Now().UTC()
	completed.WinnerID = &winnerID
	completed.Status = models.MatchCompleted
	completed.CompletedAt = &now

	if err := res.resolve(completed); err != nil {
		return nil, fmt.Errorf("resolve match %d: %w", match.ID, err)
	}

	encodedScore, err := models.EncodeScore(input.Score)
	if err != nil {
		return nil, ErrInvalidScore
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.applyResolution(ctx, exec, res, matches, match.ID, winnerID, encodedScore, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match completed",
		"tournament_id", tournament.ID,
		"match_id", match.ID,
		"winner_id", winnerID,
		"eliminated", len(res.eliminated),
		"tournament_finished", res.finished,
	)

	return s.GetMatch(ctx, matchID)
}

// applyResolution diffs the resolved view against the loaded match set and
// persists completion, slot updates, new rows, removed rows, eliminations,
// Swiss byes, and the tournament transition as one unit.
func (s *matchService) applyResolution(
	ctx context.Context,
	exec repositories.SQLExecutor,
	res *resolution,
	loaded []*models.Match,
	completedID int,
	winnerID int,
	score *string,
	completedAt time.Time,
) error {
	if err := s.matchRepo.Complete(ctx, exec, completedID, winnerID, score, completedAt); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchAlreadyCompleted
		}
		return fmt.Errorf("complete match %d: %w", completedID, err)
	}

	before := make(map[int]*models.Match, len(loaded))
	for _, m := range loaded {
		before[m.ID] = m
	}
	seen := make(map[int]bool, len(res.view))

	for _, m := range res.view {
		if m.ID < 0 {
			m.ID = 0
			if err := s.matchRepo.Create(ctx, exec, m); err != nil {
				return fmt.Errorf("create match r%d m%d: %w", m.Round, m.MatchNumber, err)
			}
			continue
		}
		seen[m.ID] = true
		if m.ID == completedID {
			continue
		}
		orig := before[m.ID]
		if orig == nil || playersEqual(orig, m) && orig.Status == m.Status {
			continue
		}
		if err := s.matchRepo.UpdatePlayers(ctx, exec, m.ID, m.Player1ID, m.Player2ID, m.Status); err != nil {
			return fmt.Errorf("update match %d: %w", m.ID, err)
		}
	}

	for _, m := range loaded {
		if !seen[m.ID] && m.ID != completedID {
			if err := s.matchRepo.Delete(ctx, exec, m.ID); err != nil {
				return fmt.Errorf("delete match %d: %w", m.ID, err)
			}
		}
	}

	for _, pid := range res.eliminated {
		if err := s.participantRepo.UpdateStatus(ctx, exec, pid, models.ParticipantEliminated); err != nil {
			return fmt.Errorf("eliminate participant %d: %w", pid, err)
		}
	}
	for _, bye := range res.byes {
		if err := s.participantRepo.SetByeRound(ctx, exec, bye.ParticipantID, bye.Round); err != nil {
			return fmt.Errorf("record bye for participant %d: %w", bye.ParticipantID, err)
		}
	}

	if res.finished {
		t := res.tournament
		t.Status = models.StatusCompleted
		t.EndedAt = &completedAt
		if err := s.tournamentRepo.Update(ctx, exec, t); err != nil {
			return fmt.Errorf("finish tournament %d: %w", t.ID, err)
		}
	}
	return nil
}

func playersEqual(a, b *models.Match) bool {
	return intPtrEqual(a.Player1ID, b.Player1ID) && intPtrEqual(a.Player2ID, b.Player2ID)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
