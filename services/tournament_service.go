package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openbracket/tournament-engine/brackets"
	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
)

type CreateTournamentInput struct {
	Name                 string                  `json:"name"`
	Description          *string                 `json:"description"`
	Format               models.TournamentFormat `json:"format"`
	MaxParticipants      int                     `json:"max_participants"`
	RegistrationDeadline time.Time               `json:"registration_deadline"`
	SwissRounds          *int                    `json:"swiss_rounds"`
}

type UpdateTournamentInput struct {
	Name                 *string    `json:"name"`
	Description          *string    `json:"description"`
	MaxParticipants      *int       `json:"max_participants"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	SwissRounds          *int       `json:"swiss_rounds"`
}

type RegisterParticipantInput struct {
	UserID int  `json:"user_id"`
	Seed   *int `json:"seed"`
}

type ListTournamentsFilter = repositories.TournamentFilter

// TournamentService owns the tournament and participant state machines:
// creation, registration, start (bracket generation), pre-start updates and
// cancellation.
type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error)
	RegisterParticipant(ctx context.Context, tournamentID int, input RegisterParticipantInput) (*models.Participant, error)
	StartTournament(ctx context.Context, tournamentID int) (*models.Tournament, error)
	UpdateTournament(ctx context.Context, tournamentID int, input UpdateTournamentInput) (*models.Tournament, error)
	CancelTournament(ctx context.Context, tournamentID int) error
}

type tournamentService struct {
	tx              repositories.TxRunner
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	locks           *TournamentLocks
	logger          *slog.Logger
}

func NewTournamentService(
	tx repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	locks *TournamentLocks,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		locks:           locks,
		logger:          logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if !input.Format.Valid() {
		return nil, ErrInvalidFormat
	}
	if input.MaxParticipants < 2 {
		return nil, ErrInvalidCapacity
	}
	if input.RegistrationDeadline.IsZero() {
		return nil, ErrInvalidDeadline
	}
	if input.SwissRounds != nil && *input.SwissRounds < 1 {
		return nil, ErrInvalidSwissRounds
	}

	tournament := &models.Tournament{
		Name:                 input.Name,
		Description:          input.Description,
		Format:               input.Format,
		Status:               models.StatusRegistration,
		MaxParticipants:      input.MaxParticipants,
		RegistrationDeadline: input.RegistrationDeadline,
		SwissRounds:          input.SwissRounds,
	}

	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.tournamentRepo.Create(ctx, exec, tournament)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("create tournament: %w", err)
	}

	s.logger.InfoContext(ctx, "tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.String("format", string(tournament.Format)))
	return tournament, nil
}

// GetTournament returns the tournament with its participants and matches
// loaded in parallel.
func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		participants, err := s.participantRepo.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("load participants for tournament %d: %w", id, err)
		}
		tournament.Participants = make([]models.Participant, len(participants))
		for i, p := range participants {
			tournament.Participants[i] = *p
		}
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, id, repositories.MatchFilter{})
		if err != nil {
			return fmt.Errorf("load matches for tournament %d: %w", id, err)
		}
		tournament.Matches = make([]models.Match, len(matches))
		for i, m := range matches {
			tournament.Matches[i] = *m
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) RegisterParticipant(ctx context.Context, tournamentID int, input RegisterParticipantInput) (*models.Participant, error) {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !tournament.Status.IsPreStart() {
		return nil, ErrRegistrationClosed
	}
	if time.Now().After(tournament.RegistrationDeadline) {
		return nil, ErrDeadlinePassed
	}

	if _, err := s.participantRepo.GetByTournamentAndUser(ctx, tournamentID, input.UserID); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, repositories.ErrParticipantNotFound) {
		return nil, fmt.Errorf("check existing registration: %w", err)
	}

	count, err := s.participantRepo.CountByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	if count >= tournament.MaxParticipants {
		return nil, ErrTournamentFull
	}

	seed := count + 1
	if input.Seed != nil {
		if *input.Seed < 1 {
			return nil, ErrInvalidSeed
		}
		seed = *input.Seed
	}

	participant := &models.Participant{
		TournamentID: tournamentID,
		UserID:       input.UserID,
		Seed:         seed,
		Status:       models.ParticipantRegistered,
	}
	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.participantRepo.Create(ctx, exec, participant)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrParticipantConflict):
			return nil, ErrAlreadyRegistered
		case errors.Is(err, repositories.ErrSeedConflict):
			return nil, ErrSeedTaken
		}
		return nil, fmt.Errorf("register participant: %w", err)
	}

	s.logger.InfoContext(ctx, "participant registered",
		slog.Int("tournament_id", tournamentID),
		slog.Int("user_id", input.UserID),
		slog.Int("seed", seed))
	return participant, nil
}

// StartTournament validates the pre-start state, orders participants by seed,
// delegates to the format's bracket generator and persists the produced match
// structure in one transaction.
func (s *tournamentService) StartTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !tournament.Status.IsPreStart() {
		return nil, ErrInvalidState
	}

	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list participants for tournament %d: %w", tournamentID, err)
	}
	if len(participants) < 2 {
		return nil, ErrInsufficientParticipants
	}

	generator, ok := brackets.ForFormat(tournament.Format)
	if !ok {
		return nil, ErrInvalidFormat
	}

	if tournament.Format == models.FormatSwiss && tournament.SwissRounds == nil {
		rounds := brackets.DefaultSwissRounds(len(participants))
		tournament.SwissRounds = &rounds
	}

	result, err := generator.Generate(ctx, brackets.GenerateParams{
		Tournament:   tournament,
		Participants: participants,
	})
	if err != nil {
		return nil, fmt.Errorf("generate %s bracket for tournament %d: %w", generator.Name(), tournamentID, err)
	}

	now := time.Now().UTC()
	tournament.Status = models.StatusInProgress
	tournament.StartedAt = &now

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, m := range result.Matches {
			if err := s.matchRepo.Create(ctx, exec, m); err != nil {
				return err
			}
		}
		for _, bye := range result.Byes {
			if err := s.participantRepo.SetByeRound(ctx, exec, bye.ParticipantID, bye.Round); err != nil {
				return err
			}
		}
		for _, p := range participants {
			if err := s.participantRepo.UpdateStatus(ctx, exec, p.ID, models.ParticipantActive); err != nil {
				return err
			}
		}
		return s.tournamentRepo.Update(ctx, exec, tournament)
	})
	if err != nil {
		return nil, fmt.Errorf("persist bracket for tournament %d: %w", tournamentID, err)
	}

	s.logger.InfoContext(ctx, "tournament started",
		slog.Int("tournament_id", tournamentID),
		slog.String("format", string(tournament.Format)),
		slog.Int("participants", len(participants)),
		slog.Int("matches", len(result.Matches)),
		slog.Int("byes", len(result.Byes)))
	return tournament, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, tournamentID int, input UpdateTournamentInput) (*models.Tournament, error) {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !tournament.Status.IsPreStart() {
		return nil, ErrInvalidState
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrTournamentNameRequired
		}
		tournament.Name = *input.Name
	}
	if input.Description != nil {
		tournament.Description = input.Description
	}
	if input.MaxParticipants != nil {
		if *input.MaxParticipants < 2 {
			return nil, ErrInvalidCapacity
		}
		tournament.MaxParticipants = *input.MaxParticipants
	}
	if input.RegistrationDeadline != nil {
		tournament.RegistrationDeadline = *input.RegistrationDeadline
	}
	if input.SwissRounds != nil {
		if *input.SwissRounds < 1 {
			return nil, ErrInvalidSwissRounds
		}
		tournament.SwissRounds = input.SwissRounds
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.tournamentRepo.Update(ctx, exec, tournament)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("update tournament %d: %w", tournamentID, err)
	}
	return tournament, nil
}

func (s *tournamentService) CancelTournament(ctx context.Context, tournamentID int) error {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if !tournament.Status.IsPreStart() {
		return ErrInvalidState
	}

	now := time.Now().UTC()
	tournament.Status = models.StatusCancelled
	tournament.EndedAt = &now

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.tournamentRepo.Update(ctx, exec, tournament)
	})
	if err != nil {
		return fmt.Errorf("cancel tournament %d: %w", tournamentID, err)
	}

	s.logger.InfoContext(ctx, "tournament cancelled", slog.Int("tournament_id", tournamentID))
	return nil
}

func (s *tournamentService) getTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("get tournament %d: %w", id, err)
	}
	return tournament, nil
}
