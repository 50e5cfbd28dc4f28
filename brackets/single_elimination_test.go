package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbracket/tournament-engine/models"
)

func testParticipants(n int) []*models.Participant {
	out := make([]*models.Participant, n)
	for i := 0; i < n; i++ {
		out[i] = &models.Participant{
			ID:           100 + i + 1,
			TournamentID: 1,
			UserID:       200 + i + 1,
			Seed:         i + 1,
			Status:       models.ParticipantRegistered,
		}
	}
	return out
}

func generateParams(n int) GenerateParams {
	return GenerateParams{
		Tournament:   &models.Tournament{ID: 1, Format: models.FormatSingleElimination},
		Participants: testParticipants(n),
	}
}

func TestSeedOrder(t *testing.T) {
	assert.Equal(t, []int{1, 2}, seedOrder(2))
	assert.Equal(t, []int{1, 4, 2, 3}, seedOrder(4))
	assert.Equal(t, []int{1, 8, 4, 5, 2, 7, 3, 6}, seedOrder(8))
}

func TestSingleEliminationFourPlayers(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	result, err := gen.Generate(context.Background(), generateParams(4))
	require.NoError(t, err)
	require.Empty(t, result.Byes)

	var round1, round2 []*models.Match
	for _, m := range result.Matches {
		switch m.Round {
		case 1:
			round1 = append(round1, m)
		case 2:
			round2 = append(round2, m)
		}
	}
	require.Len(t, round1, 2)
	require.Len(t, round2, 1)

	// Seed 1 meets seed 4, seed 2 meets seed 3.
	assert.Equal(t, 101, *round1[0].Player1ID)
	assert.Equal(t, 104, *round1[0].Player2ID)
	assert.Equal(t, models.MatchPending, round1[0].Status)
	assert.Equal(t, 102, *round1[1].Player1ID)
	assert.Equal(t, 103, *round1[1].Player2ID)

	final := round2[0]
	assert.Equal(t, models.MatchWaiting, final.Status)
	assert.Nil(t, final.Player1ID)
	assert.Nil(t, final.Player2ID)
}

func TestSingleEliminationTwoPlayers(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	result, err := gen.Generate(context.Background(), generateParams(2))
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, 1, result.Matches[0].Round)
	assert.Equal(t, models.MatchPending, result.Matches[0].Status)
}

func TestSingleEliminationByesFillRoundTwo(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	result, err := gen.Generate(context.Background(), generateParams(5))
	require.NoError(t, err)

	// Bracket of 8: seeds 1, 2, 3 sit out round 1.
	require.Len(t, result.Byes, 3)
	byed := map[int]bool{}
	for _, b := range result.Byes {
		assert.Equal(t, 1, b.Round)
		byed[b.ParticipantID] = true
	}
	assert.True(t, byed[101])
	assert.True(t, byed[102])
	assert.True(t, byed[103])

	var round1, round2 []*models.Match
	for _, m := range result.Matches {
		switch m.Round {
		case 1:
			round1 = append(round1, m)
		case 2:
			round2 = append(round2, m)
		}
	}

	// Only seeds 4 and 5 play round 1, in virtual slot 2.
	require.Len(t, round1, 1)
	assert.Equal(t, 2, round1[0].MatchNumber)
	assert.Equal(t, 104, *round1[0].Player1ID)
	assert.Equal(t, 105, *round1[0].Player2ID)

	// Seed 1 waits in round 2 match 1; seeds 2 and 3 meet in round 2 match 2,
	// which is playable straight away.
	require.Len(t, round2, 2)
	assert.Equal(t, 101, *round2[0].Player1ID)
	assert.Nil(t, round2[0].Player2ID)
	assert.Equal(t, models.MatchWaiting, round2[0].Status)

	assert.Equal(t, 102, *round2[1].Player1ID)
	assert.Equal(t, 103, *round2[1].Player2ID)
	assert.Equal(t, models.MatchScheduled, round2[1].Status)
}

func TestSingleEliminationRejectsTooFewPlayers(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	_, err := gen.Generate(context.Background(), generateParams(1))
	assert.Error(t, err)
}

func TestDoubleEliminationTagsWinnersBracket(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	result, err := gen.Generate(context.Background(), generateParams(4))
	require.NoError(t, err)
	require.NotEmpty(t, result.Matches)
	for _, m := range result.Matches {
		assert.Equal(t, models.BracketWinners, m.Bracket)
	}
}
