// Package game implements the rules of Dots and Boxes on a 5x5 box grid.
//
// Lines are numbered row by row. Every band of the board holds Dim
// horizontal lines followed by Dim+1 vertical lines, so for Dim = 5 the
// first band is 0-4 (horizontal) and 5-10 (vertical), the second band
// starts at 11, and the bottom edge is 55-59.
package game

import (
	"errors"
	"fmt"
)

const (
	// Dim is the number of boxes along one side of the board.
	Dim = 5
	// BandWidth is the number of line indices in one band of the board.
	BandWidth = 2*Dim + 1
	// NumLines is the total number of lines on the board.
	NumLines = Dim*BandWidth + Dim
	// NumBoxes is the total number of boxes on the board.
	NumBoxes = Dim * Dim

	noOwner = -1
)

var (
	ErrInvalidMove = errors.New("invalid move")
	ErrGameOver    = errors.New("game is over")
)

// Game is a single game of Dots and Boxes. The zero value is not usable;
// create games with NewGame. A Game is not safe for concurrent use; callers
// that share one across goroutines hand out DeepCopy snapshots.
type Game struct {
	lines   [NumLines]bool
	owners  [NumBoxes]int
	players [2]string
	scores  [2]int
	onturn  int
	played  int
}

// NewGame creates a game between two players. player1 moves first.
func NewGame(player1, player2 string) *Game {
	g := &Game{players: [2]string{player1, player2}}
	for i := range g.owners {
		g.owners[i] = noOwner
	}
	return g
}

func (g *Game) Player1() string { return g.players[0] }
func (g *Game) Player2() string { return g.players[1] }

// Turn returns the name of the player on turn.
func (g *Game) Turn() string {
	return g.players[g.onturn]
}

// PlayerOnTurn returns the index (0 or 1) of the player on turn.
func (g *Game) PlayerOnTurn() int {
	return g.onturn
}

// Score returns the number of boxes owned by the named player. Unknown
// names score 0.
func (g *Game) Score(player string) int {
	for i, p := range g.players {
		if p == player {
			return g.scores[i]
		}
	}
	return 0
}

// PointsFor returns the score of the player with the given index.
func (g *Game) PointsFor(idx int) int {
	return g.scores[idx]
}

// MovesPlayed returns the number of lines drawn so far.
func (g *Game) MovesPlayed() int {
	return g.played
}

// IsValidMove reports whether line idx exists and has not been drawn.
func (g *Game) IsValidMove(idx int) bool {
	return idx >= 0 && idx < NumLines && !g.lines[idx]
}

// ValidMoves returns every undrawn line in ascending order. Callers may
// rely on this order; strategies use it for tie breaking.
func (g *Game) ValidMoves() []int {
	moves := make([]int, 0, NumLines-g.played)
	for i, drawn := range g.lines {
		if !drawn {
			moves = append(moves, i)
		}
	}
	return moves
}

// DoMove draws line idx for the player on turn. Completing one or two
// boxes scores that many points and keeps the turn; otherwise the turn
// passes to the opponent.
func (g *Game) DoMove(idx int) error {
	if g.IsGameOver() {
		return ErrGameOver
	}
	if !g.IsValidMove(idx) {
		return fmt.Errorf("%w: line %d", ErrInvalidMove, idx)
	}
	g.lines[idx] = true
	g.played++

	completed := 0
	for _, box := range adjacentBoxes(idx) {
		if g.owners[box] == noOwner && g.boxComplete(box) {
			g.owners[box] = g.onturn
			completed++
		}
	}
	g.scores[g.onturn] += completed
	if completed == 0 {
		g.onturn = 1 - g.onturn
	}
	return nil
}

// IsGameOver reports whether every line has been drawn.
func (g *Game) IsGameOver() bool {
	return g.played == NumLines
}

// Winner returns the winner of a finished game. draw is true when both
// players own the same number of boxes. An unfinished game has no winner.
func (g *Game) Winner() (winner string, draw bool) {
	if !g.IsGameOver() {
		return "", false
	}
	switch {
	case g.scores[0] > g.scores[1]:
		return g.players[0], false
	case g.scores[1] > g.scores[0]:
		return g.players[1], false
	}
	return "", true
}

// DeepCopy returns an independent copy of the game. Moves played on the
// copy never affect the original.
func (g *Game) DeepCopy() *Game {
	cp := *g
	return &cp
}

func (g *Game) boxComplete(box int) bool {
	for _, l := range boxLines(box) {
		if !g.lines[l] {
			return false
		}
	}
	return true
}

// boxLines returns the top, bottom, left and right lines of a box.
func boxLines(box int) [4]int {
	r, c := box/Dim, box%Dim
	top := r*BandWidth + c
	left := r*BandWidth + Dim + c
	return [4]int{top, top + BandWidth, left, left + 1}
}

// adjacentBoxes returns the one or two boxes a line borders.
func adjacentBoxes(line int) []int {
	r, c := line/BandWidth, line%BandWidth
	boxes := make([]int, 0, 2)
	if c < Dim {
		// horizontal: box above and below
		if r > 0 {
			boxes = append(boxes, (r-1)*Dim+c)
		}
		if r < Dim {
			boxes = append(boxes, r*Dim+c)
		}
		return boxes
	}
	c -= Dim
	if c > 0 {
		boxes = append(boxes, r*Dim+c-1)
	}
	if c < Dim {
		boxes = append(boxes, r*Dim+c)
	}
	return boxes
}
