package stats

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(math.Abs(ZVal(95)-1.959964) < 1e-5)
	is.True(math.Abs(ZVal(99)-2.575829) < 1e-5)
}

func TestWinRateInterval(t *testing.T) {
	is := is.New(t)
	type tc struct {
		wins  float64
		games int
		lo    float64
		hi    float64
	}
	cases := []tc{
		{50, 100, 0.403832, 0.596168},
		{0, 0, 0, 0},
	}
	for _, c := range cases {
		lo, hi := WinRateInterval(c.wins, c.games, 95)
		is.True(math.Abs(lo-c.lo) < 1e-4)
		is.True(math.Abs(hi-c.hi) < 1e-4)
	}

	lo, hi := WinRateInterval(10, 10, 95)
	is.True(lo > 0.6 && lo < 1)
	is.True(math.Abs(hi-1) < 1e-6)
}
