package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbracket/tournament-engine/models"
)

func seedTournament(t *testing.T, store *MemoryStore) *models.Tournament {
	t.Helper()
	tournament := &models.Tournament{
		Name:                 "fixture",
		Format:               models.FormatSingleElimination,
		Status:               models.StatusRegistration,
		MaxParticipants:      8,
		RegistrationDeadline: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Tournaments().Create(context.Background(), nil, tournament))
	return tournament
}

func TestMemoryTournamentNameConflict(t *testing.T) {
	store := NewMemoryStore()
	seedTournament(t, store)

	dup := &models.Tournament{Name: "fixture", Format: models.FormatSwiss, MaxParticipants: 4}
	err := store.Tournaments().Create(context.Background(), nil, dup)
	assert.ErrorIs(t, err, ErrTournamentNameConflict)
}

func TestMemoryParticipantConflicts(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tournament := seedTournament(t, store)

	first := &models.Participant{TournamentID: tournament.ID, UserID: 1, Seed: 1}
	require.NoError(t, store.Participants().Create(ctx, nil, first))

	sameUser := &models.Participant{TournamentID: tournament.ID, UserID: 1, Seed: 2}
	assert.ErrorIs(t, store.Participants().Create(ctx, nil, sameUser), ErrParticipantConflict)

	sameSeed := &models.Participant{TournamentID: tournament.ID, UserID: 2, Seed: 1}
	assert.ErrorIs(t, store.Participants().Create(ctx, nil, sameSeed), ErrSeedConflict)
}

func TestMemoryCompletedMatchIsImmutable(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tournament := seedTournament(t, store)

	p1 := &models.Participant{TournamentID: tournament.ID, UserID: 1, Seed: 1}
	p2 := &models.Participant{TournamentID: tournament.ID, UserID: 2, Seed: 2}
	require.NoError(t, store.Participants().Create(ctx, nil, p1))
	require.NoError(t, store.Participants().Create(ctx, nil, p2))

	match := &models.Match{
		TournamentID: tournament.ID,
		Round:        1,
		MatchNumber:  1,
		Player1ID:    &p1.ID,
		Player2ID:    &p2.ID,
		Status:       models.MatchPending,
	}
	require.NoError(t, store.Matches().Create(ctx, nil, match))
	require.NoError(t, store.Matches().Complete(ctx, nil, match.ID, p1.ID, nil, time.Now()))

	// A second completion or player update must not touch the stored result.
	assert.ErrorIs(t, store.Matches().Complete(ctx, nil, match.ID, p2.ID, nil, time.Now()), ErrMatchNotFound)
	assert.ErrorIs(t, store.Matches().UpdatePlayers(ctx, nil, match.ID, &p2.ID, &p1.ID, models.MatchScheduled), ErrMatchNotFound)

	stored, err := store.Matches().GetByID(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, p1.ID, *stored.WinnerID)
}

func TestMemoryMatchListFilters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tournament := seedTournament(t, store)

	for round := 1; round <= 2; round++ {
		for number := 1; number <= 2; number++ {
			require.NoError(t, store.Matches().Create(ctx, nil, &models.Match{
				TournamentID: tournament.ID,
				Round:        round,
				MatchNumber:  number,
				Bracket:      models.BracketWinners,
				Status:       models.MatchWaiting,
			}))
		}
	}

	round := 2
	matches, err := store.Matches().ListByTournament(ctx, tournament.ID, MatchFilter{Round: &round})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 1, matches[0].MatchNumber)
	assert.Equal(t, 2, matches[1].MatchNumber)

	losers := models.BracketLosers
	matches, err = store.Matches().ListByTournament(ctx, tournament.ID, MatchFilter{Bracket: &losers})
	require.NoError(t, err)
	assert.Empty(t, matches)
}
