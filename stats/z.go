// Package stats has small statistics helpers for comparing strategies.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ZVal returns the two-tailed Z-value associated with a specific confidence interval.
// The interval is a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	area := (1 + (confidenceInterval / 100)) / 2
	return dist.Quantile(area)
}

// WinRateInterval returns the Wilson score interval for a win rate of
// wins out of games, at the given confidence (0 to 100 percent). Draws
// count as half a win. Both bounds are 0 if no games were played.
func WinRateInterval(wins float64, games int, confidenceInterval float64) (lo, hi float64) {
	if games == 0 {
		return 0, 0
	}
	n := float64(games)
	z := ZVal(confidenceInterval)
	p := wins / n
	denom := 1 + z*z/n
	center := (p + z*z/(2*n)) / denom
	margin := z * math.Sqrt(p*(1-p)/n+z*z/(4*n*n)) / denom
	return math.Max(0, center-margin), math.Min(1, center+margin)
}
