package automatic

// Computer vs computer games, played in parallel.

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/dotsboxes/strategy"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

const (
	gameLogHeader = "gameID,%s,%s,first\n"
	turnLogHeader = "gameID,turn,player,line,score,oppscore\n"
)

// Arena pits two strategies against each other.
type Arena struct {
	strategies [2]strategy.Strategy
	names      [2]string

	gameLog io.Writer
	turnLog io.Writer

	playing atomic.Bool
	mu      sync.Mutex
	results []GameResult
}

func NewArena(s1, s2 strategy.Strategy) *Arena {
	return &Arena{
		strategies: [2]strategy.Strategy{s1, s2},
		names:      playerNames(s1, s2),
	}
}

// SetGameLog makes the arena write one CSV line per finished game to w.
// AnalyzeLogFile reads this format back.
func (a *Arena) SetGameLog(w io.Writer) {
	a.gameLog = w
}

// SetTurnLog makes the arena write one CSV line per move to w.
func (a *Arena) SetTurnLog(w io.Writer) {
	a.turnLog = w
}

func (a *Arena) Names() [2]string {
	return a.names
}

// Results returns the games played so far.
func (a *Arena) Results() []GameResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]GameResult(nil), a.results...)
}

func (a *Arena) record(res GameResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, res)
	if a.gameLog != nil {
		fmt.Fprintf(a.gameLog, "%d,%d,%d,%s\n", res.GameID, res.Scores[0], res.Scores[1], a.names[res.First])
	}
	CVCCounter.Add(1)
}

// Play plays numGames games on the given number of goroutines. The two
// strategies take turns going first. Cancelling ctx stops the arena
// early; the games finished so far are kept and no error is returned.
func (a *Arena) Play(ctx context.Context, numGames, threads int) error {
	if !a.playing.CompareAndSwap(false, true) {
		return ErrAlreadyPlaying
	}
	defer a.playing.Store(false)
	if threads < 1 {
		threads = 1
	}
	log.Debug().Msgf("Starting %v games, %v threads", numGames, threads)

	if a.gameLog != nil {
		fmt.Fprintf(a.gameLog, gameLogHeader, a.names[0], a.names[1])
	}

	var logChan chan string
	writer := errgroup.Group{}
	if a.turnLog != nil {
		logChan = make(chan string, 100)
		writer.Go(func() error {
			_, werr := io.WriteString(a.turnLog, turnLogHeader)
			// Keep draining after a failed write so players never block.
			for msg := range logChan {
				if werr == nil {
					_, werr = io.WriteString(a.turnLog, msg)
				}
			}
			log.Debug().Msg("Exiting turn logger goroutine!")
			return werr
		})
	}

	jobs := make(chan int, threads)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < numGames; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				log.Info().Msg("Got stop signal, exiting soon...")
				return gctx.Err()
			}
		}
		log.Debug().Msg("Finished queueing all jobs.")
		return nil
	})

	for t := 0; t < threads; t++ {
		g.Go(func() error {
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			r := NewGameRunner(logChan, a.strategies[0], a.strategies[1])
			for id := range jobs {
				res, err := r.PlayGame(id, id%2 == 1)
				if err != nil {
					return err
				}
				a.record(res)
			}
			return nil
		})
	}

	err := g.Wait()
	if logChan != nil {
		close(logChan)
	}
	if werr := writer.Wait(); werr != nil && err == nil {
		err = werr
	}
	log.Info().Int("games", len(a.Results())).Msg("All games finished.")
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		// Stopped by the caller; not an error.
		return nil
	}
	return err
}
