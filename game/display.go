package game

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const segmentWidth = 4

// ownerMarks returns the single-character marks used for boxes owned by
// each player. Players whose names share an initial fall back to digits.
func (g *Game) ownerMarks() [2]string {
	initial := func(s string) rune {
		r, _ := utf8.DecodeRuneInString(s)
		return unicode.ToUpper(r)
	}
	a, b := initial(g.players[0]), initial(g.players[1])
	if a == b || a == utf8.RuneError || b == utf8.RuneError {
		return [2]string{"1", "2"}
	}
	return [2]string{string(a), string(b)}
}

func (g *Game) playerStateString(idx int) string {
	onturn := "  "
	if !g.IsGameOver() && g.onturn == idx {
		onturn = "->"
	}
	return fmt.Sprintf("%s %-20s %3d", onturn, g.players[idx], g.scores[idx])
}

// ToDisplayText renders the board with the indices of all undrawn lines,
// followed by the players and their scores.
func (g *Game) ToDisplayText() string {
	var sb strings.Builder
	marks := g.ownerMarks()

	for r := 0; r <= Dim; r++ {
		// horizontal band
		for c := 0; c < Dim; c++ {
			idx := r*BandWidth + c
			sb.WriteString("+")
			if g.lines[idx] {
				sb.WriteString(strings.Repeat("-", segmentWidth))
			} else {
				sb.WriteString(fmt.Sprintf(" %2d ", idx))
			}
		}
		sb.WriteString("+\n")
		if r == Dim {
			break
		}
		// vertical band
		for c := 0; c <= Dim; c++ {
			idx := r*BandWidth + Dim + c
			token := "|"
			if !g.lines[idx] {
				token = strconv.Itoa(idx)
			}
			sb.WriteString(token)
			if c == Dim {
				break
			}
			mark := " "
			if owner := g.owners[r*Dim+c]; owner != noOwner {
				mark = marks[owner]
			}
			sb.WriteString(fmt.Sprintf("%-*s", segmentWidth+1-len(token), " "+mark))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	for pi := range g.players {
		sb.WriteString(fmt.Sprintf("%s (%s)\n", g.playerStateString(pi), marks[pi]))
	}
	return sb.String()
}

func (g *Game) String() string {
	return g.ToDisplayText()
}
