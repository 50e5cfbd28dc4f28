package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
)

type StandingsService interface {
	// GetStandings projects current standings from stored results. It is
	// read-only and valid at any point after the tournament starts.
	GetStandings(ctx context.Context, tournamentID int) ([]models.Standing, error)
}

type standingsService struct {
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
) StandingsService {
	return &standingsService{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
	}
}

func (s *standingsService) GetStandings(ctx context.Context, tournamentID int) ([]models.Standing, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("get tournament %d: %w", tournamentID, err)
	}

	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list participants for tournament %d: %w", tournamentID, err)
	}
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, repositories.MatchFilter{})
	if err != nil {
		return nil, fmt.Errorf("list matches for tournament %d: %w", tournamentID, err)
	}

	standings := make([]models.Standing, 0, len(participants))
	for _, p := range participants {
		wins, losses := record(p.ID, matches)
		// Swiss byes score as wins, one point each; elsewhere a bye is
		// structural and carries no point.
		if tournament.Format == models.FormatSwiss {
			wins += p.Byes
		}
		standings = append(standings, models.Standing{
			ParticipantID: p.ID,
			UserID:        p.UserID,
			Seed:          p.Seed,
			Wins:          wins,
			Losses:        losses,
			Status:        p.Status,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		aOut := a.Status == models.ParticipantEliminated
		bOut := b.Status == models.ParticipantEliminated
		if aOut != bOut {
			return !aOut
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.Seed < b.Seed
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings, nil
}

func record(participantID int, matches []*models.Match) (wins, losses int) {
	for _, m := range matches {
		if m.Status != models.MatchCompleted || m.WinnerID == nil || !m.HasPlayer(participantID) {
			continue
		}
		if *m.WinnerID == participantID {
			wins++
		} else {
			losses++
		}
	}
	return wins, losses
}
