package player

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/dotsboxes/game"
	"github.com/domino14/dotsboxes/strategy"
)

type countingInput struct{ requests int }

func (c *countingInput) RequestMove() { c.requests++ }

func TestHumanDefers(t *testing.T) {
	is := is.New(t)
	in := &countingInput{}
	h := NewHuman(in)
	is.Equal(h.DetermineMove(game.NewGame("a", "b")), Deferred)
	is.Equal(in.requests, 1)
}

func TestAIPlaysStrategyMove(t *testing.T) {
	is := is.New(t)
	g := game.NewGame("a", "b")
	for _, m := range []int{0, 11, 5} {
		is.NoErr(g.DoMove(m))
	}
	ai := NewAI(strategy.SmartStrategy{})
	is.Equal(ai.DetermineMove(g), 6)
}
