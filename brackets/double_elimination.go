package brackets

import (
	"context"

	"github.com/openbracket/tournament-engine/models"
)

// DoubleEliminationGenerator produces the winners bracket only. The losers
// bracket is built match by match as players drop, and the grand final (plus
// its reset) is created once both brackets have a single survivor; that logic
// lives with the advancement resolver because it depends on results, not on
// the initial draw.
type DoubleEliminationGenerator struct {
	winners *SingleEliminationGenerator
}

func NewDoubleEliminationGenerator() Generator {
	return &DoubleEliminationGenerator{
		winners: &SingleEliminationGenerator{bracket: models.BracketWinners},
	}
}

func (g *DoubleEliminationGenerator) Name() string {
	return "DoubleElimination"
}

func (g *DoubleEliminationGenerator) Generate(ctx context.Context, params GenerateParams) (*Result, error) {
	return g.winners.Generate(ctx, params)
}
