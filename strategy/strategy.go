// Package strategy holds the move selection heuristics used for hints and
// for computer players.
package strategy

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/domino14/dotsboxes/game"
)

const (
	NaiveName = "naive"
	SmartName = "smart"
)

// A Strategy picks a move for the player on turn. Implementations must not
// modify the game they are given, and must be safe for concurrent use on
// independent games.
type Strategy interface {
	Name() string
	// DetermineMove returns the chosen line, or -1 if no move is legal.
	DetermineMove(g *game.Game) int
}

// ByName returns the strategy with the given name. "novice" is accepted as
// an alias for the naive strategy.
func ByName(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case NaiveName, "novice":
		return NaiveStrategy{}, nil
	case SmartName:
		return SmartStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown strategy %q", name)
}

func randomMove(moves []int) int {
	if len(moves) == 0 {
		return -1
	}
	return moves[frand.Intn(len(moves))]
}

// NaiveStrategy plays a uniformly random legal move.
type NaiveStrategy struct{}

func (NaiveStrategy) Name() string { return NaiveName }

func (NaiveStrategy) DetermineMove(g *game.Game) int {
	return randomMove(g.ValidMoves())
}

// SmartStrategy looks one ply ahead. It takes a box whenever it can,
// otherwise it avoids lines that hand the opponent a box, and only when
// every line does so does it fall back to a random legal move.
type SmartStrategy struct{}

func (SmartStrategy) Name() string { return SmartName }

func (SmartStrategy) DetermineMove(g *game.Game) int {
	if m := FindScoringMove(g); m != -1 {
		return m
	}
	moves := g.ValidMoves()
	safe := lo.Filter(moves, func(m int, _ int) bool {
		cp := g.DeepCopy()
		if err := cp.DoMove(m); err != nil {
			return false
		}
		return FindScoringMove(cp) == -1
	})
	if len(safe) > 0 {
		return randomMove(safe)
	}
	return randomMove(moves)
}

// FindScoringMove returns the first line, in ValidMoves order, that scores
// one or two points for the player on turn, or -1 if there is none.
func FindScoringMove(g *game.Game) int {
	mover := g.PlayerOnTurn()
	before := g.PointsFor(mover)
	for _, m := range g.ValidMoves() {
		cp := g.DeepCopy()
		if err := cp.DoMove(m); err != nil {
			continue
		}
		if gain := cp.PointsFor(mover) - before; gain == 1 || gain == 2 {
			return m
		}
	}
	return -1
}
