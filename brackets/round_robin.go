package brackets

import (
	"context"
	"fmt"

	"github.com/openbracket/tournament-engine/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

// Generate creates one match per unordered pair of participants, N*(N-1)/2
// in total. All matches share round 1; there is no scheduling policy and no
// byes in this format.
func (g *RoundRobinGenerator) Generate(_ context.Context, params GenerateParams) (*Result, error) {
	participants := params.Participants
	if len(participants) < 2 {
		return nil, fmt.Errorf("round robin requires at least 2 participants (found %d)", len(participants))
	}

	result := &Result{}
	matchNumber := 0
	for i := 0; i < len(participants); i++ {
		for j := i + 1; j < len(participants); j++ {
			p1 := participants[i].ID
			p2 := participants[j].ID
			matchNumber++
			result.Matches = append(result.Matches, &models.Match{
				TournamentID: params.Tournament.ID,
				Round:        1,
				MatchNumber:  matchNumber,
				Player1ID:    &p1,
				Player2ID:    &p2,
				Status:       models.MatchPending,
			})
		}
	}
	return result, nil
}
