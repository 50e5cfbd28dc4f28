package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbracket/tournament-engine/models"
)

func TestRoundRobinEveryPairOnce(t *testing.T) {
	gen := NewRoundRobinGenerator()
	result, err := gen.Generate(context.Background(), generateParams(4))
	require.NoError(t, err)
	require.Empty(t, result.Byes)
	require.Len(t, result.Matches, 6)

	seen := map[[2]int]int{}
	for i, m := range result.Matches {
		require.NotNil(t, m.Player1ID)
		require.NotNil(t, m.Player2ID)
		assert.Equal(t, 1, m.Round)
		assert.Equal(t, i+1, m.MatchNumber)
		assert.Equal(t, models.MatchPending, m.Status)
		seen[pairKey(*m.Player1ID, *m.Player2ID)]++
	}
	assert.Len(t, seen, 6)
	for pair, count := range seen {
		assert.Equalf(t, 1, count, "pair %v appears %d times", pair, count)
	}
}

func TestRoundRobinRejectsTooFewPlayers(t *testing.T) {
	gen := NewRoundRobinGenerator()
	_, err := gen.Generate(context.Background(), generateParams(1))
	assert.Error(t, err)
}
