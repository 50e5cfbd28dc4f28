package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
	"github.com/openbracket/tournament-engine/services"
)

func TestCompleteMatchGuards(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	tournament, seeds := startedTournament(t, e, "guarded", models.FormatSingleElimination, 4)

	semi1 := findMatch(t, e, tournament.ID, models.BracketNone, 1, 1)
	final := findMatch(t, e, tournament.ID, models.BracketNone, 2, 1)

	// A waiting match has no players to win it.
	_, err := e.matches.CompleteMatch(ctx, final.ID, services.CompleteMatchInput{WinnerID: seeds[1]})
	assert.ErrorIs(t, err, services.ErrMatchNotReady)

	// The winner must be one of the two players.
	_, err = e.matches.CompleteMatch(ctx, semi1.ID, services.CompleteMatchInput{WinnerID: seeds[2]})
	assert.ErrorIs(t, err, services.ErrInvalidWinner)

	// A score must be internally consistent.
	_, err = e.matches.CompleteMatch(ctx, semi1.ID, services.CompleteMatchInput{
		WinnerID: seeds[1],
		Score:    &models.MatchScore{Player1: -1, Player2: 3},
	})
	assert.ErrorIs(t, err, services.ErrInvalidScore)

	completeMatch(t, e, semi1.ID, seeds[1])

	// Completed results are immutable.
	_, err = e.matches.CompleteMatch(ctx, semi1.ID, services.CompleteMatchInput{WinnerID: seeds[4]})
	assert.ErrorIs(t, err, services.ErrMatchAlreadyCompleted)

	_, err = e.matches.CompleteMatch(ctx, 999999, services.CompleteMatchInput{WinnerID: seeds[1]})
	assert.ErrorIs(t, err, services.ErrMatchNotFound)
}

func TestCompleteMatchRequiresRunningTournament(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	tournament, seeds := startedTournament(t, e, "finished early", models.FormatSingleElimination, 2)

	final := findMatch(t, e, tournament.ID, models.BracketNone, 1, 1)
	completeMatch(t, e, final.ID, seeds[1])

	got := getTournament(t, e, tournament.ID)
	require.Equal(t, models.StatusCompleted, got.Status)

	// The tournament is over; nothing further can be reported.
	_, err := e.matches.CompleteMatch(ctx, final.ID, services.CompleteMatchInput{WinnerID: seeds[1]})
	assert.ErrorIs(t, err, services.ErrInvalidState)
}

func TestSingleEliminationFourPlayerRun(t *testing.T) {
	e := newEngine()
	tournament, seeds := startedTournament(t, e, "se four", models.FormatSingleElimination, 4)

	semi1 := findMatch(t, e, tournament.ID, models.BracketNone, 1, 1)
	semi2 := findMatch(t, e, tournament.ID, models.BracketNone, 1, 2)

	// Canonical seeding: 1v4 and 2v3.
	assert.Equal(t, seeds[1], *semi1.Player1ID)
	assert.Equal(t, seeds[4], *semi1.Player2ID)
	assert.Equal(t, seeds[2], *semi2.Player1ID)
	assert.Equal(t, seeds[3], *semi2.Player2ID)

	completeMatch(t, e, semi1.ID, seeds[1])

	// The final holds the first winner and waits for the second.
	final := findMatch(t, e, tournament.ID, models.BracketNone, 2, 1)
	assert.Equal(t, models.MatchWaiting, final.Status)
	require.NotNil(t, final.Player1ID)
	assert.Equal(t, seeds[1], *final.Player1ID)
	assert.Nil(t, final.Player2ID)

	completeMatch(t, e, semi2.ID, seeds[3])

	final = findMatch(t, e, tournament.ID, models.BracketNone, 2, 1)
	assert.Equal(t, models.MatchScheduled, final.Status)
	assert.Equal(t, seeds[3], *final.Player2ID)

	completeMatch(t, e, final.ID, seeds[1])

	got := getTournament(t, e, tournament.ID)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.EndedAt)

	standings, err := e.standings.GetStandings(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, standings, 4)
	assert.Equal(t, seeds[1], standings[0].ParticipantID)
	assert.Equal(t, 2, standings[0].Wins)
	assert.NotEqual(t, models.ParticipantEliminated, standings[0].Status)
	assert.Equal(t, seeds[3], standings[1].ParticipantID)
	// Winless players fall back to seed order.
	assert.Equal(t, seeds[2], standings[2].ParticipantID)
	assert.Equal(t, seeds[4], standings[3].ParticipantID)
}

func TestSingleEliminationByeOpponentRun(t *testing.T) {
	e := newEngine()
	tournament, seeds := startedTournament(t, e, "se three", models.FormatSingleElimination, 3)

	// Seed 1 was byed into the final; seeds 2 and 3 play round 1.
	opener := findMatch(t, e, tournament.ID, models.BracketNone, 1, 2)
	assert.Equal(t, seeds[2], *opener.Player1ID)
	assert.Equal(t, seeds[3], *opener.Player2ID)

	final := findMatch(t, e, tournament.ID, models.BracketNone, 2, 1)
	require.NotNil(t, final.Player1ID)
	assert.Equal(t, seeds[1], *final.Player1ID)
	assert.Equal(t, models.MatchWaiting, final.Status)

	completeMatch(t, e, opener.ID, seeds[2])
	final = findMatch(t, e, tournament.ID, models.BracketNone, 2, 1)
	assert.Equal(t, models.MatchScheduled, final.Status)
	assert.Equal(t, seeds[2], *final.Player2ID)

	completeMatch(t, e, final.ID, seeds[2])
	assert.Equal(t, models.StatusCompleted, getTournament(t, e, tournament.ID).Status)
}

func TestRoundRobinRunToCompletion(t *testing.T) {
	e := newEngine()
	tournament, seeds := startedTournament(t, e, "rr three", models.FormatRoundRobin, 3)

	matches := listMatches(t, e, tournament.ID, repositories.MatchFilter{})
	require.Len(t, matches, 3)

	// Seed 1 wins both games; seed 2 beats seed 3.
	for _, m := range matches {
		winner := *m.Player1ID
		if m.HasPlayer(seeds[1]) {
			winner = seeds[1]
		} else if m.HasPlayer(seeds[2]) {
			winner = seeds[2]
		}
		completeMatch(t, e, m.ID, winner)
	}

	got := getTournament(t, e, tournament.ID)
	assert.Equal(t, models.StatusCompleted, got.Status)

	standings, err := e.standings.GetStandings(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, standings, 3)
	assert.Equal(t, seeds[1], standings[0].ParticipantID)
	assert.Equal(t, 2, standings[0].Wins)
	assert.Equal(t, seeds[2], standings[1].ParticipantID)
	assert.Equal(t, seeds[3], standings[2].ParticipantID)

	// Round robin never eliminates anyone.
	for _, s := range standings {
		assert.NotEqual(t, models.ParticipantEliminated, s.Status)
	}
}
