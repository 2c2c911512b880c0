package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/dotsboxes/config"
	"github.com/domino14/dotsboxes/events"
	"github.com/domino14/dotsboxes/tui"
)

var (
	GitVersion string
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func setupLogging(debug bool) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
		logger = zerolog.New(output).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
}

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	setupLogging(cfg.GetBool(config.ConfigDebug))
	log.Debug().Str("version", GitVersion).Msgf("Loaded config: %v", cfg.SanitizedSettings())

	var in tui.LineSource
	var out io.Writer = os.Stdout
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		l, err := readline.NewEx(&readline.Config{
			HistoryFile:         "/tmp/dotsboxes-readline.tmp",
			InterruptPrompt:     "^C",
			HistorySearchFold:   true,
			FuncFilterInputRune: filterInput,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("readline")
		}
		defer l.Close()
		in = tui.NewReadlineSource(l)
		out = l.Stdout()
	} else {
		in = tui.NewScannerSource(os.Stdin)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if url := cfg.GetString(config.ConfigNatsURL); url != "" {
		p, err := events.NewNatsPublisher(url, cfg.GetString(config.ConfigNatsSubjectPrefix))
		if err != nil {
			log.Err(err).Msg("could not connect to nats; game events will not be published")
		} else {
			publisher = p
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		// We received an interrupt signal, shut down.
		log.Info().Msg("got quit signal...")
		cancel()
	}()

	o := tui.NewOrchestrator(cfg, in, out, tui.WithPublisher(publisher))
	if err := o.Run(ctx); err != nil && err != context.Canceled {
		log.Err(err).Msg("client exited with error")
		os.Exit(1)
	}
}
