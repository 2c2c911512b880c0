package automatic

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/domino14/dotsboxes/stats"
)

// Summary aggregates arena results.
type Summary struct {
	Players         [2]string  `yaml:"players"`
	Games           int        `yaml:"games"`
	Wins            [2]int     `yaml:"wins"`
	Draws           int        `yaml:"draws"`
	WentFirst       [2]int     `yaml:"went_first"`
	FirstPlayerWins float64    `yaml:"first_player_wins"`
	MeanScore       [2]float64 `yaml:"mean_score"`
	StdevScore      [2]float64 `yaml:"stdev_score"`
	MeanMargin      float64    `yaml:"mean_margin"`
	StdevMargin     float64    `yaml:"stdev_margin"`
	// 95% interval for the first strategy's win rate, draws counting half.
	WinRateLow  float64 `yaml:"win_rate_low"`
	WinRateHigh float64 `yaml:"win_rate_high"`
}

// Summary summarizes the games played so far.
func (a *Arena) Summary() Summary {
	return summarize(a.names, a.Results())
}

func meanStdDev(x []float64) (float64, float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

func summarize(names [2]string, results []GameResult) Summary {
	s := Summary{Players: names, Games: len(results)}
	scores := [2][]float64{}
	margins := make([]float64, 0, len(results))
	for _, r := range results {
		scores[0] = append(scores[0], float64(r.Scores[0]))
		scores[1] = append(scores[1], float64(r.Scores[1]))
		margins = append(margins, float64(r.Margin()))
		s.WentFirst[r.First]++
		switch w := r.Winner(); w {
		case -1:
			s.Draws++
			s.FirstPlayerWins += 0.5
		default:
			s.Wins[w]++
			if w == r.First {
				s.FirstPlayerWins++
			}
		}
	}
	for i := range scores {
		s.MeanScore[i], s.StdevScore[i] = meanStdDev(scores[i])
	}
	s.MeanMargin, s.StdevMargin = meanStdDev(margins)
	s.WinRateLow, s.WinRateHigh = stats.WinRateInterval(float64(s.Wins[0])+float64(s.Draws)/2, s.Games, 95)
	return s
}

func pct(n, total float64) float64 {
	if total == 0 {
		return math.NaN()
	}
	return 100.0 * n / total
}

func (s Summary) String() string {
	games := float64(s.Games)
	var b strings.Builder
	fmt.Fprintf(&b, "Games played: %d\n", s.Games)
	for i, name := range s.Players {
		fmt.Fprintf(&b, "%v wins: %d (%.3f%%)\n", name, s.Wins[i], pct(float64(s.Wins[i]), games))
	}
	fmt.Fprintf(&b, "Draws: %d (%.3f%%)\n", s.Draws, pct(float64(s.Draws), games))
	fmt.Fprintf(&b, "%v went first: %d (%.3f%%)\n", s.Players[0], s.WentFirst[0], pct(float64(s.WentFirst[0]), games))
	fmt.Fprintf(&b, "Player who went first wins: %.1f (%.3f%%)\n", s.FirstPlayerWins, pct(s.FirstPlayerWins, games))
	for i, name := range s.Players {
		fmt.Fprintf(&b, "%v Mean Score: %.6f  Stdev: %.6f\n", name, s.MeanScore[i], s.StdevScore[i])
	}
	fmt.Fprintf(&b, "Mean margin: %.6f  Stdev: %.6f\n", s.MeanMargin, s.StdevMargin)
	fmt.Fprintf(&b, "%v win rate, 95%% interval: [%.3f, %.3f]\n", s.Players[0], s.WinRateLow, s.WinRateHigh)
	return b.String()
}

func (s Summary) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

// Histogram renders the distribution of score margins (first strategy
// minus second) as a text histogram.
func (a *Arena) Histogram(w io.Writer) error {
	results := a.Results()
	if len(results) == 0 {
		return fmt.Errorf("no games played")
	}
	margins := make([]float64, len(results))
	for i, r := range results {
		margins[i] = float64(r.Margin())
	}
	fmt.Fprintf(w, "Score margin (%s - %s):\n", a.names[0], a.names[1])
	return histogram.Fprint(w, histogram.Hist(15, margins), histogram.Linear(40))
}

// AnalyzeLogFile reads a game log written by an arena and summarizes it.
func AnalyzeLogFile(filepath string) (Summary, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return Summary{}, err
	}
	defer file.Close()
	return analyzeLog(file)
}

func analyzeLog(rd io.Reader) (Summary, error) {
	r := csv.NewReader(rd)

	// Record looks like:
	// gameID,p1score,p2score,first
	var names [2]string
	var results []GameResult
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Summary{}, err
		}
		if len(record) != 4 {
			return Summary{}, fmt.Errorf("unexpected record %v", record)
		}
		if record[0] == "gameID" {
			// this is the header line
			names = [2]string{record[1], record[2]}
			continue
		}
		var res GameResult
		if res.GameID, err = strconv.Atoi(record[0]); err != nil {
			return Summary{}, err
		}
		if res.Scores[0], err = strconv.Atoi(record[1]); err != nil {
			return Summary{}, err
		}
		if res.Scores[1], err = strconv.Atoi(record[2]); err != nil {
			return Summary{}, err
		}
		if record[3] == names[1] {
			res.First = 1
		}
		results = append(results, res)
	}
	return summarize(names, results), nil
}
