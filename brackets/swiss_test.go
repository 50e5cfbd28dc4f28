package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbracket/tournament-engine/models"
)

func TestDefaultSwissRounds(t *testing.T) {
	assert.Equal(t, 0, DefaultSwissRounds(1))
	assert.Equal(t, 1, DefaultSwissRounds(2))
	assert.Equal(t, 3, DefaultSwissRounds(5))
	assert.Equal(t, 3, DefaultSwissRounds(8))
	assert.Equal(t, 4, DefaultSwissRounds(9))
}

func TestSwissFirstRoundHalves(t *testing.T) {
	gen := NewSwissGenerator()
	result, err := gen.Generate(context.Background(), generateParams(4))
	require.NoError(t, err)
	require.Empty(t, result.Byes)
	require.Len(t, result.Matches, 2)

	// Upper half against lower half: 1v3, 2v4.
	assert.Equal(t, 101, *result.Matches[0].Player1ID)
	assert.Equal(t, 103, *result.Matches[0].Player2ID)
	assert.Equal(t, 102, *result.Matches[1].Player1ID)
	assert.Equal(t, 104, *result.Matches[1].Player2ID)
}

func TestSwissFirstRoundOddFieldByesLowestSeed(t *testing.T) {
	gen := NewSwissGenerator()
	result, err := gen.Generate(context.Background(), generateParams(5))
	require.NoError(t, err)

	require.Len(t, result.Matches, 2)
	require.Len(t, result.Byes, 1)
	assert.Equal(t, 105, result.Byes[0].ParticipantID)
	assert.Equal(t, 1, result.Byes[0].Round)
}

func completedMatch(round, number, p1, p2, winner int) *models.Match {
	w := winner
	a, b := p1, p2
	return &models.Match{
		Round:       round,
		MatchNumber: number,
		Player1ID:   &a,
		Player2ID:   &b,
		WinnerID:    &w,
		Status:      models.MatchCompleted,
	}
}

func TestSwissScoresCountWinsAndByes(t *testing.T) {
	participants := testParticipants(5)
	byeRound := 1
	participants[4].ByeRound = &byeRound
	participants[4].Byes = 1

	matches := []*models.Match{
		completedMatch(1, 1, 101, 103, 101),
		completedMatch(1, 2, 102, 104, 102),
	}
	scores := SwissScores(participants, matches)
	assert.Equal(t, 1, scores[101])
	assert.Equal(t, 1, scores[102])
	assert.Equal(t, 0, scores[103])
	assert.Equal(t, 0, scores[104])
	assert.Equal(t, 1, scores[105])
}

func TestNextSwissRoundAvoidsRematchesAndRotatesBye(t *testing.T) {
	tournament := &models.Tournament{ID: 1, Format: models.FormatSwiss}
	participants := testParticipants(5)
	byeRound := 1
	participants[4].ByeRound = &byeRound
	participants[4].Byes = 1

	matches := []*models.Match{
		completedMatch(1, 1, 101, 103, 101),
		completedMatch(1, 2, 102, 104, 102),
	}

	result, err := NextSwissRound(tournament, participants, matches, 2)
	require.NoError(t, err)

	// Seed 4 is the weakest player who has not had a bye yet.
	require.Len(t, result.Byes, 1)
	assert.Equal(t, 104, result.Byes[0].ParticipantID)
	assert.Equal(t, 2, result.Byes[0].Round)

	require.Len(t, result.Matches, 2)
	for _, m := range result.Matches {
		assert.Equal(t, 2, m.Round)
		assert.Equal(t, models.MatchPending, m.Status)
	}

	// One-point group 101, 102, 105 floats 105 down to meet 103; the leaders
	// meet each other.
	assert.Equal(t, 101, *result.Matches[0].Player1ID)
	assert.Equal(t, 102, *result.Matches[0].Player2ID)
	assert.Equal(t, 105, *result.Matches[1].Player1ID)
	assert.Equal(t, 103, *result.Matches[1].Player2ID)

	// Nobody meets an earlier opponent.
	played := playedPairs(matches)
	for _, m := range result.Matches {
		assert.False(t, played[pairKey(*m.Player1ID, *m.Player2ID)])
	}
}

func TestSwissScoresCountEveryBye(t *testing.T) {
	participants := testParticipants(3)
	round := 4
	participants[2].ByeRound = &round
	participants[2].Byes = 2

	scores := SwissScores(participants, nil)
	assert.Equal(t, 2, scores[103])
}

func TestNextSwissRoundSecondByeGoesToWeakest(t *testing.T) {
	tournament := &models.Tournament{ID: 1, Format: models.FormatSwiss}
	participants := testParticipants(3)
	for i, p := range participants {
		round := i + 1
		p.ByeRound = &round
		p.Byes = 1
	}

	matches := []*models.Match{
		completedMatch(1, 1, 101, 102, 101),
	}

	// Everyone has sat out once, so the weakest player overall sits out again.
	result, err := NextSwissRound(tournament, participants, matches, 4)
	require.NoError(t, err)
	require.Len(t, result.Byes, 1)
	assert.Equal(t, 103, result.Byes[0].ParticipantID)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, 101, *result.Matches[0].Player1ID)
	assert.Equal(t, 102, *result.Matches[0].Player2ID)
}

func TestNextSwissRoundFallsBackToRematchWhenForced(t *testing.T) {
	tournament := &models.Tournament{ID: 1, Format: models.FormatSwiss}
	participants := testParticipants(2)

	matches := []*models.Match{
		completedMatch(1, 1, 101, 102, 101),
	}

	// Two players can only ever replay each other.
	result, err := NextSwissRound(tournament, participants, matches, 2)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, 101, *result.Matches[0].Player1ID)
	assert.Equal(t, 102, *result.Matches[0].Player2ID)
}

func TestNextSwissRoundSkipsEliminated(t *testing.T) {
	tournament := &models.Tournament{ID: 1, Format: models.FormatSwiss}
	participants := testParticipants(4)
	participants[3].Status = models.ParticipantEliminated

	matches := []*models.Match{
		completedMatch(1, 1, 101, 103, 101),
		completedMatch(1, 2, 102, 104, 102),
	}

	result, err := NextSwissRound(tournament, participants, matches, 2)
	require.NoError(t, err)

	// Three remain: the weakest without a bye sits out.
	require.Len(t, result.Byes, 1)
	assert.Equal(t, 103, result.Byes[0].ParticipantID)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, 101, *result.Matches[0].Player1ID)
	assert.Equal(t, 102, *result.Matches[0].Player2ID)
}
