// Package player binds the local seat of a networked game to either the
// person at the keyboard or a computer strategy.
package player

import (
	"github.com/rs/zerolog/log"

	"github.com/domino14/dotsboxes/game"
	"github.com/domino14/dotsboxes/strategy"
)

// Deferred is returned by DetermineMove when the move will be sent later.
const Deferred = -1

// Player decides moves for the local seat. DetermineMove is called from the
// network goroutine with a snapshot of the game whenever it is our turn.
type Player interface {
	DetermineMove(g *game.Game) int
}

// MoveInput is asked for a move on behalf of a human player.
type MoveInput interface {
	RequestMove()
}

// Human defers every move to its MoveInput.
type Human struct {
	input MoveInput
}

func NewHuman(input MoveInput) *Human {
	return &Human{input: input}
}

func (h *Human) DetermineMove(g *game.Game) int {
	h.input.RequestMove()
	return Deferred
}

// AI plays the moves chosen by a strategy.
type AI struct {
	strategy strategy.Strategy
}

func NewAI(s strategy.Strategy) *AI {
	return &AI{strategy: s}
}

func (a *AI) DetermineMove(g *game.Game) int {
	m := a.strategy.DetermineMove(g)
	log.Debug().Str("strategy", a.strategy.Name()).Int("move", m).Msg("ai-determined-move")
	return m
}
