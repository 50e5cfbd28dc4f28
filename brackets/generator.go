package brackets

import (
	"context"

	"github.com/openbracket/tournament-engine/models"
)

// GenerateParams carries everything a generator needs. Participants must be
// ordered by seed ascending (strongest first); the generator works with that
// order, not with the raw seed values.
type GenerateParams struct {
	Tournament   *models.Tournament
	Participants []*models.Participant
}

// ByeAdvance records a participant who advances past a round without a match
// row being created for it.
type ByeAdvance struct {
	ParticipantID int
	Round         int
}

// Result is the output of initial bracket generation: the match set for the
// tournament (round 1 plus any pre-structured later rounds) and the byes that
// were applied while building it.
type Result struct {
	Matches []*models.Match
	Byes    []ByeAdvance
}

// Generator produces the initial match structure for one tournament format.
// Generators are pure: same participants in, same bracket out.
type Generator interface {
	Generate(ctx context.Context, params GenerateParams) (*Result, error)
	Name() string
}

// ForFormat returns the generator responsible for the given format.
func ForFormat(format models.TournamentFormat) (Generator, bool) {
	switch format {
	case models.FormatSingleElimination:
		return NewSingleEliminationGenerator(), true
	case models.FormatDoubleElimination:
		return NewDoubleEliminationGenerator(), true
	case models.FormatRoundRobin:
		return NewRoundRobinGenerator(), true
	case models.FormatSwiss:
		return NewSwissGenerator(), true
	}
	return nil, false
}
