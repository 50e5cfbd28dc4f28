package services

import (
	"fmt"

	"github.com/openbracket/tournament-engine/brackets"
	"github.com/openbracket/tournament-engine/models"
)

// resolution is the working state of one advancement pass. It operates on
// in-memory copies of the tournament's matches and participants, records
// every consequence of the reported result (slot fills, new losers-bracket
// rows, eliminations, Swiss byes, tournament completion), and is diffed
// against the loaded state afterwards so all writes land in one transaction.
type resolution struct {
	tournament   *models.Tournament
	participants []*models.Participant
	view         []*models.Match
	eliminated   []int
	byes         []brackets.ByeAdvance
	finished     bool
	nextTempID   int
}

func newResolution(t *models.Tournament, participants []*models.Participant, matches []*models.Match) *resolution {
	view := make([]*models.Match, len(matches))
	for i, m := range matches {
		clone := *m
		view[i] = &clone
	}
	parts := make([]*models.Participant, len(participants))
	for i, p := range participants {
		clone := *p
		parts[i] = &clone
	}
	return &resolution{
		tournament:   t,
		participants: parts,
		view:         view,
		nextTempID:   -1,
	}
}

// resolve applies the consequences of completing the given match. The view
// copy of the match must already carry the winner and completed status.
func (r *resolution) resolve(completed *models.Match) error {
	switch r.tournament.Format {
	case models.FormatSingleElimination:
		return r.resolveSingleElimination(completed)
	case models.FormatDoubleElimination:
		return r.resolveDoubleElimination(completed)
	case models.FormatRoundRobin:
		return r.resolveRoundRobin()
	case models.FormatSwiss:
		return r.resolveSwiss(completed)
	}
	return fmt.Errorf("unsupported tournament format %q", r.tournament.Format)
}

func (r *resolution) resolveSingleElimination(completed *models.Match) error {
	if loser := completed.LoserID(); loser != nil {
		r.eliminate(*loser)
	}
	if completed.Round == r.maxRound(models.BracketNone) {
		// Root of the bracket: the tournament is decided.
		r.finished = true
		return nil
	}
	return r.advanceWinner(completed)
}

func (r *resolution) resolveRoundRobin() error {
	// Nobody is eliminated mid-tournament; completion comes from the last
	// result of the full pairing set.
	if !r.anyIncomplete(models.BracketNone) {
		r.finished = true
	}
	return nil
}

func (r *resolution) resolveSwiss(completed *models.Match) error {
	if r.anyIncompleteInRound(models.BracketNone, completed.Round) {
		return nil
	}
	if r.tournament.SwissRounds == nil {
		return fmt.Errorf("swiss tournament %d has no round count", r.tournament.ID)
	}
	if completed.Round >= *r.tournament.SwissRounds {
		r.finished = true
		return nil
	}

	next, err := brackets.NextSwissRound(r.tournament, r.participants, r.view, completed.Round+1)
	if err != nil {
		return err
	}
	for _, m := range next.Matches {
		r.create(m)
	}
	for _, bye := range next.Byes {
		r.recordBye(bye)
	}
	return nil
}

func (r *resolution) resolveDoubleElimination(completed *models.Match) error {
	switch completed.Bracket {
	case models.BracketGrandFinal:
		if *completed.WinnerID == *completed.Player1ID {
			// The winners-bracket survivor stays unbeaten; done.
			r.eliminate(*completed.Player2ID)
			r.finished = true
			return nil
		}
		// The losers-bracket survivor evened the score: bracket reset.
		r.create(&models.Match{
			TournamentID: r.tournament.ID,
			Round:        1,
			MatchNumber:  1,
			Bracket:      models.BracketGrandFinalReset,
			Player1ID:    completed.Player1ID,
			Player2ID:    completed.Player2ID,
			Status:       models.MatchScheduled,
		})
		return nil

	case models.BracketGrandFinalReset:
		if loser := completed.LoserID(); loser != nil {
			r.eliminate(*loser)
		}
		r.finished = true
		return nil

	case models.BracketWinners:
		loser := completed.LoserID()
		if loser == nil {
			return fmt.Errorf("completed winners match %d has no loser", completed.ID)
		}
		if completed.Round < r.maxRound(models.BracketWinners) {
			if err := r.advanceWinner(completed); err != nil {
				return err
			}
		}
		// First loss: drop into the losers bracket.
		r.placeInLosers(*loser, 2*completed.Round-1)

	case models.BracketLosers:
		loser := completed.LoserID()
		if loser == nil {
			return fmt.Errorf("completed losers match %d has no loser", completed.ID)
		}
		// Second loss eliminates.
		r.eliminate(*loser)
		r.placeInLosers(*completed.WinnerID, completed.Round+1)

	default:
		return fmt.Errorf("match %d has unexpected bracket %q", completed.ID, completed.Bracket)
	}

	r.settleLosersBracket()
	r.maybeCreateGrandFinal()
	return nil
}

// advanceWinner moves the winner into the pre-structured slot of the next
// round: match ceil(m/2), slot 1 when m is odd, slot 2 otherwise.
func (r *resolution) advanceWinner(completed *models.Match) error {
	target := r.find(completed.Bracket, completed.Round+1, (completed.MatchNumber+1)/2)
	if target == nil {
		return fmt.Errorf("no slot in round %d for winner of match %d", completed.Round+1, completed.ID)
	}
	winner := *completed.WinnerID
	if completed.MatchNumber%2 == 1 {
		target.Player1ID = &winner
	} else {
		target.Player2ID = &winner
	}
	if target.Player1ID != nil && target.Player2ID != nil {
		target.Status = models.MatchScheduled
	}
	return nil
}

// placeInLosers drops a player into the given losers-bracket round, filling
// the first open slot or opening a new match.
func (r *resolution) placeInLosers(participantID, round int) {
	maxNumber := 0
	for _, m := range r.view {
		if m.Bracket != models.BracketLosers || m.Round != round {
			continue
		}
		if m.MatchNumber > maxNumber {
			maxNumber = m.MatchNumber
		}
		if m.Status != models.MatchWaiting {
			continue
		}
		if m.Player1ID == nil {
			pid := participantID
			m.Player1ID = &pid
		} else if m.Player2ID == nil {
			pid := participantID
			m.Player2ID = &pid
		} else {
			continue
		}
		if m.Player1ID != nil && m.Player2ID != nil {
			m.Status = models.MatchScheduled
		}
		return
	}

	pid := participantID
	r.create(&models.Match{
		TournamentID: r.tournament.ID,
		Round:        round,
		MatchNumber:  maxNumber + 1,
		Bracket:      models.BracketLosers,
		Player1ID:    &pid,
		Status:       models.MatchWaiting,
	})
}

// settleLosersBracket auto-advances lone waiting players whose round can no
// longer receive an opponent. The waiting row is removed rather than played;
// a bye never persists as a match. Repeats until stable.
func (r *resolution) settleLosersBracket() {
	for {
		changed := false
		for _, m := range r.view {
			if m.Bracket != models.BracketLosers || m.Status != models.MatchWaiting {
				continue
			}
			occupant := m.Player1ID
			if occupant == nil {
				occupant = m.Player2ID
			}
			if occupant == nil || (m.Player1ID != nil && m.Player2ID != nil) {
				continue
			}
			if r.losersArrivalsPossible(m.Round) {
				continue
			}
			round := m.Round
			pid := *occupant
			r.remove(m)
			if r.anyIncomplete(models.BracketWinners) || r.anyIncomplete(models.BracketLosers) {
				r.placeInLosers(pid, round+1)
			}
			changed = true
			break
		}
		if !changed {
			return
		}
	}
}

// losersArrivalsPossible reports whether any player can still arrive in the
// given losers-bracket round: a pending drop from the winners round feeding
// it, an unfinished match in the round below, or (transitively) anything that
// could still feed the round below.
func (r *resolution) losersArrivalsPossible(round int) bool {
	if round < 1 {
		return false
	}
	if round%2 == 1 && r.anyIncompleteInRound(models.BracketWinners, (round+1)/2) {
		return true
	}
	if r.anyIncompleteInRound(models.BracketLosers, round-1) {
		return true
	}
	return r.losersArrivalsPossible(round - 1)
}

// maybeCreateGrandFinal creates the grand final once both brackets are done
// and exactly two players remain standing; the unbeaten winners-bracket
// survivor takes slot 1.
func (r *resolution) maybeCreateGrandFinal() {
	for _, m := range r.view {
		if m.Bracket == models.BracketGrandFinal {
			return
		}
	}
	if r.anyIncomplete(models.BracketWinners) || r.anyIncomplete(models.BracketLosers) {
		return
	}
	alive := r.alive()
	if len(alive) != 2 {
		return
	}
	p1, p2 := alive[0], alive[1]
	if r.losses(p2) < r.losses(p1) {
		p1, p2 = p2, p1
	}
	r.create(&models.Match{
		TournamentID: r.tournament.ID,
		Round:        1,
		MatchNumber:  1,
		Bracket:      models.BracketGrandFinal,
		Player1ID:    &p1,
		Player2ID:    &p2,
		Status:       models.MatchScheduled,
	})
}

func (r *resolution) eliminate(participantID int) {
	for _, p := range r.participants {
		if p.ID == participantID && p.Status != models.ParticipantEliminated {
			p.Status = models.ParticipantEliminated
			r.eliminated = append(r.eliminated, participantID)
			return
		}
	}
}

func (r *resolution) recordBye(bye brackets.ByeAdvance) {
	r.byes = append(r.byes, bye)
	for _, p := range r.participants {
		if p.ID == bye.ParticipantID {
			round := bye.Round
			p.ByeRound = &round
			p.Byes++
			return
		}
	}
}

func (r *resolution) create(m *models.Match) {
	m.ID = r.nextTempID
	r.nextTempID--
	r.view = append(r.view, m)
}

func (r *resolution) remove(target *models.Match) {
	for i, m := range r.view {
		if m == target {
			r.view = append(r.view[:i], r.view[i+1:]...)
			return
		}
	}
}

func (r *resolution) find(bracket models.BracketType, round, matchNumber int) *models.Match {
	for _, m := range r.view {
		if m.Bracket == bracket && m.Round == round && m.MatchNumber == matchNumber {
			return m
		}
	}
	return nil
}

func (r *resolution) maxRound(bracket models.BracketType) int {
	max := 0
	for _, m := range r.view {
		if m.Bracket == bracket && m.Round > max {
			max = m.Round
		}
	}
	return max
}

func (r *resolution) anyIncomplete(bracket models.BracketType) bool {
	for _, m := range r.view {
		if m.Bracket == bracket && m.Status != models.MatchCompleted {
			return true
		}
	}
	return false
}

func (r *resolution) anyIncompleteInRound(bracket models.BracketType, round int) bool {
	for _, m := range r.view {
		if m.Bracket == bracket && m.Round == round && m.Status != models.MatchCompleted {
			return true
		}
	}
	return false
}

// losses counts completed matches the participant took part in and lost.
func (r *resolution) losses(participantID int) int {
	count := 0
	for _, m := range r.view {
		if m.Status != models.MatchCompleted || m.WinnerID == nil {
			continue
		}
		if m.HasPlayer(participantID) && *m.WinnerID != participantID {
			count++
		}
	}
	return count
}

func (r *resolution) alive() []int {
	out := make([]int, 0, 2)
	for _, p := range r.participants {
		if p.Status != models.ParticipantEliminated {
			out = append(out, p.ID)
		}
	}
	return out
}
