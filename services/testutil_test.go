package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
	"github.com/openbracket/tournament-engine/services"
)

type engine struct {
	store      *repositories.MemoryStore
	tournament services.TournamentService
	matches    services.MatchService
	standings  services.StandingsService
}

func newEngine() *engine {
	store := repositories.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	locks := services.NewTournamentLocks()

	return &engine{
		store: store,
		tournament: services.NewTournamentService(
			store, store.Tournaments(), store.Participants(), store.Matches(), locks, logger),
		matches: services.NewMatchService(
			store, store.Tournaments(), store.Participants(), store.Matches(), locks, logger),
		standings: services.NewStandingsService(
			store.Tournaments(), store.Participants(), store.Matches()),
	}
}

func createTournament(t *testing.T, e *engine, name string, format models.TournamentFormat, capacity int) *models.Tournament {
	t.Helper()
	tournament, err := e.tournament.CreateTournament(context.Background(), services.CreateTournamentInput{
		Name:                 name,
		Format:               format,
		MaxParticipants:      capacity,
		RegistrationDeadline: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	return tournament
}

// registerField registers n players and returns participant IDs keyed by
// seed (registration order assigns seeds 1..n).
func registerField(t *testing.T, e *engine, tournamentID, n int) map[int]int {
	t.Helper()
	bySeed := make(map[int]int, n)
	for i := 1; i <= n; i++ {
		p, err := e.tournament.RegisterParticipant(context.Background(), tournamentID, services.RegisterParticipantInput{
			UserID: 1000 + i,
		})
		require.NoError(t, err)
		bySeed[p.Seed] = p.ID
	}
	return bySeed
}

func startedTournament(t *testing.T, e *engine, name string, format models.TournamentFormat, players int) (*models.Tournament, map[int]int) {
	t.Helper()
	tournament := createTournament(t, e, name, format, players)
	bySeed := registerField(t, e, tournament.ID, players)
	started, err := e.tournament.StartTournament(context.Background(), tournament.ID)
	require.NoError(t, err)
	return started, bySeed
}

func listMatches(t *testing.T, e *engine, tournamentID int, filter repositories.MatchFilter) []*models.Match {
	t.Helper()
	matches, err := e.matches.ListMatches(context.Background(), tournamentID, filter)
	require.NoError(t, err)
	return matches
}

func findMatch(t *testing.T, e *engine, tournamentID int, bracket models.BracketType, round, number int) *models.Match {
	t.Helper()
	for _, m := range listMatches(t, e, tournamentID, repositories.MatchFilter{Round: &round, Bracket: &bracket}) {
		if m.MatchNumber == number {
			return m
		}
	}
	t.Fatalf("no match for bracket %q round %d number %d", bracket, round, number)
	return nil
}

func completeMatch(t *testing.T, e *engine, matchID, winnerID int) *models.Match {
	t.Helper()
	m, err := e.matches.CompleteMatch(context.Background(), matchID, services.CompleteMatchInput{WinnerID: winnerID})
	require.NoError(t, err)
	return m
}

func getTournament(t *testing.T, e *engine, id int) *models.Tournament {
	t.Helper()
	tournament, err := e.tournament.GetTournament(context.Background(), id)
	require.NoError(t, err)
	return tournament
}
