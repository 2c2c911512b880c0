package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/dotsboxes/automatic"
	"github.com/domino14/dotsboxes/config"
	"github.com/domino14/dotsboxes/strategy"
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	level := zerolog.InfoLevel
	if cfg.GetBool(config.ConfigDebug) {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
	log.Info().Msgf("Loaded config: %v", cfg.SanitizedSettings())

	if path := cfg.GetString(config.ConfigArenaAnalyze); path != "" {
		summary, err := automatic.AnalyzeLogFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("analyzing game log")
		}
		fmt.Print(summary.String())
		writeSummary(cfg, summary)
		return
	}

	names := cfg.GetStringSlice(config.ConfigArenaPlayers)
	if len(names) != 2 {
		log.Fatal().Strs("players", names).Msg("exactly two arena players are required")
	}
	var strats [2]strategy.Strategy
	for i, n := range names {
		s, err := strategy.ByName(n)
		if err != nil {
			log.Fatal().Err(err).Msg("bad arena player")
		}
		strats[i] = s
	}

	arena := automatic.NewArena(strats[0], strats[1])
	if path := cfg.GetString(config.ConfigArenaGameLog); path != "" {
		f, err := os.Create(path)
		if err != nil {
			log.Fatal().Err(err).Msg("creating game log")
		}
		defer f.Close()
		arena.SetGameLog(f)
	}
	if path := cfg.GetString(config.ConfigArenaTurnLog); path != "" {
		f, err := os.Create(path)
		if err != nil {
			log.Fatal().Err(err).Msg("creating turn log")
		}
		defer f.Close()
		arena.SetTurnLog(f)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("got quit signal...")
		cancel()
	}()

	tstart := time.Now()
	err := arena.Play(ctx, cfg.GetInt(config.ConfigArenaGames), cfg.GetInt(config.ConfigArenaThreads))
	if err != nil {
		log.Fatal().Err(err).Msg("arena failed")
	}
	log.Info().Msgf("time taken: %v", time.Since(tstart))

	summary := arena.Summary()
	fmt.Print(summary.String())
	if err := arena.Histogram(os.Stdout); err != nil {
		log.Err(err).Msg("histogram")
	}

	writeSummary(cfg, summary)
}

func writeSummary(cfg *config.Config, summary automatic.Summary) {
	path := cfg.GetString(config.ConfigArenaOutput)
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		log.Fatal().Err(err).Msg("creating output file")
	}
	defer f.Close()
	if err := summary.WriteYAML(f); err != nil {
		log.Fatal().Err(err).Msg("writing summary")
	}
	log.Info().Str("path", path).Msg("wrote summary")
}
