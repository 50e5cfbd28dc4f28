package brackets

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/openbracket/tournament-engine/models"
)

type SingleEliminationGenerator struct {
	bracket models.BracketType
}

func NewSingleEliminationGenerator() Generator {
	return &SingleEliminationGenerator{bracket: models.BracketNone}
}

func (g *SingleEliminationGenerator) Name() string {
	return "SingleElimination"
}

// seedOrder returns the canonical placement of ranks 1..size into bracket
// slots, so that rank 1 meets rank size in round 1 and the top two ranks can
// only meet in the final. size must be a power of two.
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		next := make([]int, 0, len(order)*2)
		mirror := len(order)*2 + 1
		for _, r := range order {
			next = append(next, r, mirror-r)
		}
		order = next
	}
	return order
}

// Generate builds the full single elimination skeleton: round 1 matches for
// every non-bye pairing and waiting placeholder matches for every later
// round. Round 1 matches keep their virtual slot numbers (gaps where byes
// fall), so the winner of round r match m always advances to round r+1 match
// ceil(m/2), slot 1 if m is odd and slot 2 otherwise. Byes are applied
// directly into their round 2 slots.
func (g *SingleEliminationGenerator) Generate(_ context.Context, params GenerateParams) (*Result, error) {
	participants := params.Participants
	n := len(participants)
	if n < 2 {
		return nil, errors.New("single elimination requires at least 2 participants")
	}

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := 1 << uint(numRounds)

	order := seedOrder(bracketSize)
	result := &Result{}
	byIndex := make(map[int]*models.Participant, n) // rank -> participant
	for i, p := range participants {
		byIndex[i+1] = p
	}

	// Waiting skeleton for rounds 2..numRounds.
	slots := make(map[string]*models.Match)
	for r := 2; r <= numRounds; r++ {
		count := bracketSize >> uint(r)
		for m := 1; m <= count; m++ {
			match := &models.Match{
				TournamentID: params.Tournament.ID,
				Round:        r,
				MatchNumber:  m,
				Bracket:      g.bracket,
				Status:       models.MatchWaiting,
			}
			slots[slotKey(r, m)] = match
			result.Matches = append(result.Matches, match)
		}
	}

	for vm := 1; vm <= bracketSize/2; vm++ {
		rankA := order[2*vm-2]
		rankB := order[2*vm-1]
		pA, okA := byIndex[rankA]
		pB, okB := byIndex[rankB]

		switch {
		case okA && okB:
			p1, p2 := pA.ID, pB.ID
			result.Matches = append(result.Matches, &models.Match{
				TournamentID: params.Tournament.ID,
				Round:        1,
				MatchNumber:  vm,
				Bracket:      g.bracket,
				Player1ID:    &p1,
				Player2ID:    &p2,
				Status:       models.MatchPending,
			})
		case okA || okB:
			p := pA
			if !okA {
				p = pB
			}
			result.Byes = append(result.Byes, ByeAdvance{ParticipantID: p.ID, Round: 1})
			if numRounds >= 2 {
				target := slots[slotKey(2, (vm+1)/2)]
				pid := p.ID
				if vm%2 == 1 {
					target.Player1ID = &pid
				} else {
					target.Player2ID = &pid
				}
			}
		default:
			return nil, fmt.Errorf("virtual match %d has no participants (n=%d, bracket=%d)", vm, n, bracketSize)
		}
	}

	// Two byes can land in the same round 2 match; it is playable right away.
	for _, m := range result.Matches {
		if m.Status == models.MatchWaiting && m.Player1ID != nil && m.Player2ID != nil {
			m.Status = models.MatchScheduled
		}
	}

	return result, nil
}

func slotKey(round, matchNumber int) string {
	return fmt.Sprintf("R%dM%d", round, matchNumber)
}
