package game

import (
	"strings"
	"testing"

	"github.com/matryer/is"
)

func playAll(is *is.I, g *Game, moves ...int) {
	for _, m := range moves {
		is.NoErr(g.DoMove(m))
	}
}

func TestNewGame(t *testing.T) {
	is := is.New(t)
	g := NewGame("alice", "bob")
	is.Equal(g.Turn(), "alice")
	is.Equal(len(g.ValidMoves()), NumLines)
	is.Equal(NumLines, 60)
	is.True(!g.IsGameOver())
	w, draw := g.Winner()
	is.Equal(w, "")
	is.True(!draw)
}

func TestBoxLines(t *testing.T) {
	is := is.New(t)
	is.Equal(boxLines(0), [4]int{0, 11, 5, 6})
	is.Equal(boxLines(24), [4]int{48, 59, 53, 54})
	is.Equal(adjacentBoxes(0), []int{0})
	is.Equal(adjacentBoxes(6), []int{0, 1})
	is.Equal(adjacentBoxes(11), []int{0, 5})
	is.Equal(adjacentBoxes(10), []int{4})
	is.Equal(adjacentBoxes(59), []int{24})
}

func TestTurnPassesWithoutScore(t *testing.T) {
	is := is.New(t)
	g := NewGame("alice", "bob")
	playAll(is, g, 0)
	is.Equal(g.Turn(), "bob")
	playAll(is, g, 11)
	is.Equal(g.Turn(), "alice")
}

func TestCompletingBoxScoresAndKeepsTurn(t *testing.T) {
	is := is.New(t)
	g := NewGame("alice", "bob")
	playAll(is, g, 0, 11, 5, 6)
	is.Equal(g.Score("bob"), 1)
	is.Equal(g.Score("alice"), 0)
	is.Equal(g.Turn(), "bob")
}

func TestDoubleBox(t *testing.T) {
	is := is.New(t)
	g := NewGame("alice", "bob")
	playAll(is, g, 0, 11, 5, 1, 12, 7)
	is.Equal(g.Turn(), "alice")
	playAll(is, g, 6)
	is.Equal(g.Score("alice"), 2)
	is.Equal(g.Turn(), "alice")
}

func TestInvalidMoves(t *testing.T) {
	is := is.New(t)
	g := NewGame("alice", "bob")
	is.True(!g.IsValidMove(-1))
	is.True(!g.IsValidMove(NumLines))
	playAll(is, g, 3)
	is.True(!g.IsValidMove(3))
	err := g.DoMove(3)
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), ErrInvalidMove.Error()))
	is.Equal(g.MovesPlayed(), 1)
}

func TestFullGame(t *testing.T) {
	is := is.New(t)
	g := NewGame("alice", "bob")
	for !g.IsGameOver() {
		playAll(is, g, g.ValidMoves()[0])
	}
	is.Equal(g.Score("alice")+g.Score("bob"), NumBoxes)
	is.Equal(len(g.ValidMoves()), 0)
	is.Equal(g.DoMove(0), ErrGameOver)
	w, draw := g.Winner()
	is.True(!draw) // 25 boxes cannot split evenly
	is.True(w == "alice" || w == "bob")
}

func TestDeepCopyIsIndependent(t *testing.T) {
	is := is.New(t)
	g := NewGame("alice", "bob")
	playAll(is, g, 0, 11, 5)
	cp := g.DeepCopy()
	playAll(is, cp, 6)
	// bob is on turn after 0, 11 and 5, so line 6 closes box 0 for bob.
	is.Equal(cp.Score("bob"), 1)
	is.Equal(g.Score("bob"), 0)
	is.True(g.IsValidMove(6))
	is.Equal(g.MovesPlayed(), 3)
}

func TestDisplayText(t *testing.T) {
	is := is.New(t)
	g := NewGame("alice", "bob")
	playAll(is, g, 0, 11, 5, 6)
	txt := g.ToDisplayText()
	lines := strings.Split(txt, "\n")
	is.True(strings.HasPrefix(lines[0], "+----+  1 +"))
	is.True(strings.HasPrefix(lines[1], "| B  |"))
	is.True(strings.Contains(txt, "-> bob"))
	is.True(strings.Contains(txt, "59"))
}
