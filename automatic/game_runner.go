// Package automatic plays computer vs computer games of Dots and Boxes
// locally, to compare strategies.
package automatic

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/dotsboxes/game"
	"github.com/domino14/dotsboxes/strategy"
)

var ErrNoMove = errors.New("strategy returned no move")

// GameResult is the outcome of one arena game. Scores and First refer to
// arena players, not to seats on the board.
type GameResult struct {
	GameID int
	Scores [2]int
	// First is the arena player that made the first move.
	First int
	Moves int
}

// Margin is player 0's score minus player 1's.
func (r GameResult) Margin() int {
	return r.Scores[0] - r.Scores[1]
}

// Winner returns the index of the winning arena player, or -1 for a draw.
func (r GameResult) Winner() int {
	switch {
	case r.Scores[0] > r.Scores[1]:
		return 0
	case r.Scores[1] > r.Scores[0]:
		return 1
	}
	return -1
}

// GameRunner plays full games between two strategies.
type GameRunner struct {
	strategies [2]strategy.Strategy
	names      [2]string
	logchan    chan string
}

// NewGameRunner creates a runner. If logchan is not nil, a CSV line is sent
// on it for every move played.
func NewGameRunner(logchan chan string, s1, s2 strategy.Strategy) *GameRunner {
	return &GameRunner{
		strategies: [2]strategy.Strategy{s1, s2},
		names:      playerNames(s1, s2),
		logchan:    logchan,
	}
}

func playerNames(s1, s2 strategy.Strategy) [2]string {
	return [2]string{s1.Name() + "-1", s2.Name() + "-2"}
}

// PlayGame plays one game to the end. Arena player 0 moves first unless
// swap is set.
func (r *GameRunner) PlayGame(gameID int, swap bool) (GameResult, error) {
	seats := [2]int{0, 1}
	if swap {
		seats = [2]int{1, 0}
	}
	g := game.NewGame(r.names[seats[0]], r.names[seats[1]])
	for !g.IsGameOver() {
		seat := g.PlayerOnTurn()
		p := seats[seat]
		m := r.strategies[p].DetermineMove(g)
		if m < 0 {
			return GameResult{}, fmt.Errorf("%w: %s in game %d", ErrNoMove, r.names[p], gameID)
		}
		if err := g.DoMove(m); err != nil {
			return GameResult{}, fmt.Errorf("%s in game %d: %w", r.names[p], gameID, err)
		}
		if r.logchan != nil {
			r.logchan <- fmt.Sprintf("%d,%d,%s,%d,%d,%d\n",
				gameID, g.MovesPlayed(), r.names[p], m,
				g.PointsFor(seat), g.PointsFor(1-seat))
		}
	}
	res := GameResult{GameID: gameID, First: seats[0], Moves: g.MovesPlayed()}
	for seat, p := range seats {
		res.Scores[p] = g.PointsFor(seat)
	}
	winner, draw := g.Winner()
	log.Debug().Int("game", gameID).Ints("scores", res.Scores[:]).
		Str("winner", winner).Bool("draw", draw).Msg("game-over")
	return res, nil
}
