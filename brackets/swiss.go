package brackets

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/openbracket/tournament-engine/models"
)

type SwissGenerator struct{}

func NewSwissGenerator() Generator {
	return &SwissGenerator{}
}

func (g *SwissGenerator) Name() string {
	return "Swiss"
}

// DefaultSwissRounds is the round count used when the tournament does not
// specify one: ceil(log2(N)).
func DefaultSwissRounds(participants int) int {
	if participants < 2 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(participants))))
}

// Generate pairs round 1 by splitting the seed order into halves: rank i of
// the upper half meets rank i of the lower half. With an odd field the lowest
// seed sits out with a bye; no match row is created for it.
func (g *SwissGenerator) Generate(_ context.Context, params GenerateParams) (*Result, error) {
	participants := params.Participants
	n := len(participants)
	if n < 2 {
		return nil, fmt.Errorf("swiss requires at least 2 participants (found %d)", n)
	}

	result := &Result{}
	half := n / 2
	for i := 0; i < half; i++ {
		p1 := participants[i].ID
		p2 := participants[half+i].ID
		result.Matches = append(result.Matches, &models.Match{
			TournamentID: params.Tournament.ID,
			Round:        1,
			MatchNumber:  i + 1,
			Player1ID:    &p1,
			Player2ID:    &p2,
			Status:       models.MatchPending,
		})
	}
	if n%2 == 1 {
		result.Byes = append(result.Byes, ByeAdvance{
			ParticipantID: participants[n-1].ID,
			Round:         1,
		})
	}
	return result, nil
}

// SwissScores tallies one point per win plus one per received bye for every
// participant, from completed matches only. Every bye counts, not just the
// most recent one.
func SwissScores(participants []*models.Participant, matches []*models.Match) map[int]int {
	scores := make(map[int]int, len(participants))
	for _, p := range participants {
		scores[p.ID] = p.Byes
	}
	for _, m := range matches {
		if m.Status == models.MatchCompleted && m.WinnerID != nil {
			scores[*m.WinnerID]++
		}
	}
	return scores
}

// playedPairs collects every pairing that has already happened.
func playedPairs(matches []*models.Match) map[[2]int]bool {
	pairs := make(map[[2]int]bool)
	for _, m := range matches {
		if m.Player1ID == nil || m.Player2ID == nil {
			continue
		}
		pairs[pairKey(*m.Player1ID, *m.Player2ID)] = true
	}
	return pairs
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// NextSwissRound builds the pairings for round nextRound from the cumulative
// scores of all completed matches so far. Players are grouped by score
// descending; each group is paired top half against bottom half, with a
// candidate pairing rejected in favor of the next one when the two already
// met. An odd group floats its weakest unpaired player into the group below.
// When the whole field is odd, the lowest-scoring player who has not yet had
// a bye sits out before pairing begins.
func NextSwissRound(
	tournament *models.Tournament,
	participants []*models.Participant,
	matches []*models.Match,
	nextRound int,
) (*Result, error) {
	pool := make([]*models.Participant, 0, len(participants))
	for _, p := range participants {
		if p.Status != models.ParticipantEliminated {
			pool = append(pool, p)
		}
	}
	if len(pool) < 2 {
		return nil, fmt.Errorf("swiss round %d needs at least 2 active participants", nextRound)
	}

	scores := SwissScores(participants, matches)
	played := playedPairs(matches)
	result := &Result{}

	// Score descending, then seed ascending: the order groups fall in.
	sort.Slice(pool, func(i, j int) bool {
		if scores[pool[i].ID] != scores[pool[j].ID] {
			return scores[pool[i].ID] > scores[pool[j].ID]
		}
		return pool[i].Seed < pool[j].Seed
	})

	if len(pool)%2 == 1 {
		bye := pickByeRecipient(pool)
		result.Byes = append(result.Byes, ByeAdvance{ParticipantID: bye.ID, Round: nextRound})
		trimmed := pool[:0]
		for _, p := range pool {
			if p.ID != bye.ID {
				trimmed = append(trimmed, p)
			}
		}
		pool = trimmed
	}

	matchNumber := 0
	var carry []*models.Participant
	idx := 0
	for idx < len(pool) {
		score := scores[pool[idx].ID]
		group := append([]*models.Participant{}, carry...)
		carry = nil
		for idx < len(pool) && scores[pool[idx].ID] == score {
			group = append(group, pool[idx])
			idx++
		}
		if len(group)%2 == 1 {
			carry = append(carry, group[len(group)-1])
			group = group[:len(group)-1]
		}

		upper := group[:len(group)/2]
		lower := append([]*models.Participant{}, group[len(group)/2:]...)
		for _, u := range upper {
			oppIdx := -1
			for i, l := range lower {
				if !played[pairKey(u.ID, l.ID)] {
					oppIdx = i
					break
				}
			}
			if oppIdx == -1 {
				// Every remaining candidate is a rematch; take the first so
				// the round can still be formed.
				oppIdx = 0
			}
			opp := lower[oppIdx]
			lower = append(lower[:oppIdx], lower[oppIdx+1:]...)
			played[pairKey(u.ID, opp.ID)] = true

			p1, p2 := u.ID, opp.ID
			matchNumber++
			result.Matches = append(result.Matches, &models.Match{
				TournamentID: tournament.ID,
				Round:        nextRound,
				MatchNumber:  matchNumber,
				Player1ID:    &p1,
				Player2ID:    &p2,
				Status:       models.MatchPending,
			})
		}
		carry = append(carry, lower...)
	}
	if len(carry) > 0 {
		return nil, fmt.Errorf("swiss round %d left %d players unpaired", nextRound, len(carry))
	}
	return result, nil
}

// pickByeRecipient chooses the lowest-scoring, weakest-seeded player who has
// not had a bye yet. If everyone has, the weakest overall sits out again.
func pickByeRecipient(pool []*models.Participant) *models.Participant {
	for i := len(pool) - 1; i >= 0; i-- {
		if pool[i].Byes == 0 {
			return pool[i]
		}
	}
	return pool[len(pool)-1]
}
