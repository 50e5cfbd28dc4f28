package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/services"
)

func TestStandingsUnknownTournament(t *testing.T) {
	e := newEngine()
	_, err := e.standings.GetStandings(context.Background(), 42)
	assert.ErrorIs(t, err, services.ErrTournamentNotFound)
}

func TestStandingsMidTournament(t *testing.T) {
	e := newEngine()
	tournament, seeds := startedTournament(t, e, "mid run", models.FormatSingleElimination, 4)

	semi2 := findMatch(t, e, tournament.ID, models.BracketNone, 1, 2)
	completeMatch(t, e, semi2.ID, seeds[3])

	standings, err := e.standings.GetStandings(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, standings, 4)

	// The eliminated player ranks last even while the bracket is open.
	assert.Equal(t, seeds[2], standings[3].ParticipantID)
	assert.Equal(t, models.ParticipantEliminated, standings[3].Status)
	assert.Equal(t, 1, standings[3].Losses)

	// The only win so far leads; the rest follow in seed order.
	assert.Equal(t, seeds[3], standings[0].ParticipantID)
	assert.Equal(t, 1, standings[0].Wins)
	assert.Equal(t, seeds[1], standings[1].ParticipantID)
	assert.Equal(t, seeds[4], standings[2].ParticipantID)

	for i, s := range standings {
		assert.Equal(t, i+1, s.Rank)
	}
}

func TestStandingsByeScoresOnlyInSwiss(t *testing.T) {
	e := newEngine()
	tournament, seeds := startedTournament(t, e, "se bye scoring", models.FormatSingleElimination, 3)

	standings, err := e.standings.GetStandings(context.Background(), tournament.ID)
	require.NoError(t, err)

	// Seed 1 was byed past round 1 but has not won anything yet.
	for _, s := range standings {
		if s.ParticipantID == seeds[1] {
			assert.Equal(t, 0, s.Wins)
		}
	}
}
