// Package tui drives the text interface of the client: a single loop that
// executes UI states from a queue, fed by user input and by events from the
// network.
package tui

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/dotsboxes/client"
	"github.com/domino14/dotsboxes/config"
	"github.com/domino14/dotsboxes/events"
	"github.com/domino14/dotsboxes/player"
	"github.com/domino14/dotsboxes/protocol"
	"github.com/domino14/dotsboxes/strategy"
)

const defaultHost = "localhost"

// Orchestrator runs the client's UI loop. It is the session's listener and
// the move input of a human player.
type Orchestrator struct {
	cfg      *config.Config
	out      io.Writer
	lines    *LineReader
	queue    *StateQueue
	handlers map[UIState]func()

	dial      Dialer
	resolver  Resolver
	publisher events.Publisher
	hint      strategy.Strategy
	poll      time.Duration

	ctx  context.Context
	host string
	port int

	// sessMu guards session; listener callbacks read it from the network
	// goroutine.
	sessMu  sync.Mutex
	session Session

	// resultMu guards result, the last GAMEOVER heard from the server.
	resultMu sync.Mutex
	result   gameResult

	shutdown sync.Once
}

type gameResult struct {
	reason protocol.GameOverReason
	winner string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDialer replaces the dialer used by the Connect state.
func WithDialer(d Dialer) Option {
	return func(o *Orchestrator) { o.dial = d }
}

// WithResolver replaces the resolver used to check host names.
func WithResolver(r Resolver) Option {
	return func(o *Orchestrator) { o.resolver = r }
}

// WithPublisher sets where login, new game and game over events go.
func WithPublisher(p events.Publisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

// NewOrchestrator creates the UI loop, reading user input from in and
// writing everything it shows to out. The first state is AskForHost.
func NewOrchestrator(cfg *config.Config, in LineSource, out io.Writer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:       cfg,
		out:       out,
		lines:     NewLineReader(in),
		resolver:  net.DefaultResolver,
		publisher: events.NopPublisher{},
		hint:      strategy.SmartStrategy{},
		poll:      cfg.GetDuration(config.ConfigPollInterval),
		ctx:       context.Background(),
	}
	o.dial = ClientDialer(client.Options{
		ConnectTimeout: cfg.GetDuration(config.ConfigConnectTimeout),
		Attempts:       uint(max(cfg.GetInt(config.ConfigConnectAttempts), 1)),
		RetryDelay:     client.DefaultOptions().RetryDelay,
	})
	for _, opt := range opts {
		opt(o)
	}
	if o.poll <= 0 {
		o.poll = 50 * time.Millisecond
	}
	o.queue = NewStateQueue(o.lines.Clear)
	o.handlers = map[UIState]func(){
		AskForHost:              o.askForHost,
		AskForPort:              o.askForPort,
		AskForPlayerType:        o.askForPlayerType,
		AskForAILevel:           o.askForAILevel,
		AskForUsername:          o.askForUsername,
		MainMenu:                o.mainMenu,
		AskForMove:              o.askForMove,
		Connect:                 o.connect,
		ReceivedHello:           o.receivedHello,
		ReceivedLogin:           o.receivedLogin,
		ReceivedAlreadyLoggedIn: o.receivedAlreadyLoggedIn,
		ReceivedUserList:        o.receivedUserList,
		ReceivedNewGame:         o.receivedNewGame,
		ReceivedMove:            o.receivedMove,
		ReceivedError:           o.receivedError,
		ReceivedGameOver:        o.receivedGameOver,
		ConnectionLost:          o.connectionLost,
	}
	for _, s := range []UIState{GameOverDisconnected, GameOverVictory, GameOverDraw, GameOverDefeat} {
		s := s
		o.handlers[s] = func() { o.gameOver(s) }
	}
	o.queue.PushFront(AskForHost)
	return o
}

// Queue exposes the state queue, mostly for inspection.
func (o *Orchestrator) Queue() *StateQueue {
	return o.queue
}

// Run executes states until Exit is reached or ctx is done, then shuts the
// session down.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.ctx = ctx
	usage(o.out)
	for {
		if ctx.Err() != nil {
			o.Shutdown()
			return ctx.Err()
		}
		state := o.queue.Next(o.poll)
		switch state {
		case Exit:
			o.Shutdown()
			return nil
		case Idle:
			o.idle()
		default:
			log.Debug().Stringer("state", state).Msg("executing-state")
			o.handlers[state]()
		}
	}
}

// Shutdown clears the queue and releases the session. It is safe to call
// more than once.
func (o *Orchestrator) Shutdown() {
	o.shutdown.Do(func() {
		o.queue.Clear()
		defer o.publisher.Close()
		sess := o.currentSession()
		if sess == nil {
			return
		}
		sess.RemoveListener(o)
		if err := sess.Close(); err != nil {
			log.Err(err).Msg("closing-session")
		}
		o.setSession(nil)
	})
}

func (o *Orchestrator) currentSession() Session {
	o.sessMu.Lock()
	defer o.sessMu.Unlock()
	return o.session
}

func (o *Orchestrator) setSession(s Session) {
	o.sessMu.Lock()
	o.session = s
	o.sessMu.Unlock()
}

func (o *Orchestrator) showMessage(msg string) {
	io.WriteString(o.out, msg)
	io.WriteString(o.out, "\n")
}

func (o *Orchestrator) showPrompt(prompt string) {
	io.WriteString(o.out, prompt)
}

func (o *Orchestrator) idle() {
	if o.lines.Scripted() {
		// A script answers prompts in order; hold its lines until one is
		// waiting.
		if _, waiting := o.queue.Callback(); !waiting {
			return
		}
	}
	line, ok, err := o.lines.Poll()
	if ok {
		o.parseInput(line)
		return
	}
	if err != nil {
		if err != io.EOF {
			log.Err(err).Msg("reading-input")
		}
		o.queue.PushFront(Exit)
	}
}

func (o *Orchestrator) publish(evt events.Event) {
	if err := o.publisher.Publish(evt); err != nil {
		log.Err(err).Str("type", string(evt.Type)).Msg("publishing-event")
	}
}

func (o *Orchestrator) prompt(s UIState, text string) {
	o.queue.SetCallback(s)
	o.showPrompt(text)
}

func (o *Orchestrator) askForHost() {
	o.prompt(AskForHost, fmt.Sprintf("Host? (Reference for %s, empty for %s): ",
		o.cfg.GetString(config.ConfigReferenceHost), defaultHost))
}

func (o *Orchestrator) askForPort() {
	o.prompt(AskForPort, fmt.Sprintf("Port? (empty for %d): ", o.cfg.GetInt(config.ConfigDefaultPort)))
}

func (o *Orchestrator) askForPlayerType() {
	o.prompt(AskForPlayerType, "AI or Human player? ")
}

func (o *Orchestrator) askForAILevel() {
	o.prompt(AskForAILevel, "AI level ([N]aive or [S]mart)? ")
}

func (o *Orchestrator) askForUsername() {
	o.prompt(AskForUsername, "Username? ")
}

func (o *Orchestrator) mainMenu() {
	o.prompt(MainMenu, "Press enter to queue for a game: ")
}

func (o *Orchestrator) askForMove() {
	o.prompt(AskForMove, "Line? (hint for a hint): ")
}

func (o *Orchestrator) connect() {
	o.showMessage(fmt.Sprintf("Connecting to %s:%d...", o.host, o.port))
	sess, err := o.dial(o.ctx, o.host, o.port, o)
	if err != nil {
		log.Err(err).Str("host", o.host).Int("port", o.port).Msg("connect-failed")
		o.showMessage("Failed to connect.")
		o.queue.PushBack(AskForHost)
		return
	}
	o.setSession(sess)
	if err := sess.SendHello(o.cfg.GetString(config.ConfigClientDescription)); err != nil {
		log.Err(err).Msg("send-hello-failed")
		sess.RemoveListener(o)
		sess.Close()
		o.setSession(nil)
		o.showMessage("Failed to connect.")
		o.queue.PushBack(AskForHost)
	}
}

func (o *Orchestrator) receivedHello() {
	sess := o.currentSession()
	if sess != nil {
		o.showMessage("Connected to: " + sess.ServerDescription())
	}
	o.queue.PushBack(AskForPlayerType)
}

func (o *Orchestrator) receivedLogin() {
	o.showMessage("Welcome!")
	if sess := o.currentSession(); sess != nil {
		o.publish(events.Event{Type: events.EventLogin, User: sess.Username()})
	}
	o.queue.PushBack(MainMenu)
}

func (o *Orchestrator) receivedAlreadyLoggedIn() {
	o.showMessage("Username already taken.")
	o.queue.PushBack(AskForUsername)
}

func (o *Orchestrator) receivedUserList() {
	var users []string
	if sess := o.currentSession(); sess != nil {
		users = sess.UserList()
	}
	o.showMessage(fmt.Sprintf("Users online (%d):", len(users)))
	for _, u := range users {
		o.showMessage("  " + u)
	}
	o.queue.ReturnToCallback()
}

func (o *Orchestrator) receivedNewGame() {
	sess := o.currentSession()
	if sess == nil {
		return
	}
	g := sess.Game()
	if g == nil {
		return
	}
	o.showMessage(fmt.Sprintf("New game: %s vs %s", g.Player1(), g.Player2()))
	o.showMessage(g.ToDisplayText())
	o.publish(events.Event{
		Type:    events.EventNewGame,
		User:    sess.Username(),
		Players: []string{g.Player1(), g.Player2()},
	})
}

func (o *Orchestrator) receivedMove() {
	sess := o.currentSession()
	if sess == nil {
		return
	}
	if g := sess.Game(); g != nil {
		o.showMessage(g.ToDisplayText())
	}
}

func (o *Orchestrator) receivedError() {
	o.showMessage("The server reported an error.")
	o.queue.PushBack(Exit)
}

func (o *Orchestrator) connectionLost() {
	o.showMessage("Connection lost.")
	o.queue.PushFront(Exit)
}

var gameOverMessages = map[UIState]string{
	GameOverDisconnected: "Your opponent disconnected.",
	GameOverVictory:      "You won!",
	GameOverDraw:         "It's a draw.",
	GameOverDefeat:       "You lost.",
}

var gameOverResults = map[UIState]string{
	GameOverDisconnected: "disconnect",
	GameOverVictory:      "victory",
	GameOverDraw:         "draw",
	GameOverDefeat:       "defeat",
}

func (o *Orchestrator) gameOver(state UIState) {
	o.queue.Clear()
	o.queue.ClearCallback()
	sess := o.currentSession()
	if sess != nil {
		if g := sess.Game(); g != nil {
			o.showMessage(g.ToDisplayText())
			o.publish(events.Event{
				Type:    events.EventGameOver,
				User:    sess.Username(),
				Players: []string{g.Player1(), g.Player2()},
				Scores: map[string]int{
					g.Player1(): g.Score(g.Player1()),
					g.Player2(): g.Score(g.Player2()),
				},
				Result: gameOverResults[state],
			})
		}
	}
	o.showMessage("Game over. " + gameOverMessages[state])
	o.queue.PushBack(MainMenu)
}

// ConnectionLost and the other listener methods run on the network
// goroutine and only push states.
func (o *Orchestrator) ConnectionLost()      { o.queue.PushFront(ConnectionLost) }
func (o *Orchestrator) ServerHello()         { o.queue.PushBack(ReceivedHello) }
func (o *Orchestrator) LoginConfirmed()      { o.queue.PushBack(ReceivedLogin) }
func (o *Orchestrator) AlreadyLoggedIn()     { o.queue.PushBack(ReceivedAlreadyLoggedIn) }
func (o *Orchestrator) UserList([]string)    { o.queue.PushFront(ReceivedUserList) }
func (o *Orchestrator) NewGame()             { o.queue.PushBack(ReceivedNewGame) }
func (o *Orchestrator) MoveReceived(int)     { o.queue.PushBack(ReceivedMove) }
func (o *Orchestrator) ErrorReceived(string) { o.queue.PushBack(ReceivedError) }
func (o *Orchestrator) RequestMove()         { o.queue.PushBack(AskForMove) }

// GameOver records the result; the UI loop decides between victory and
// defeat when it handles ReceivedGameOver.
func (o *Orchestrator) GameOver(reason protocol.GameOverReason, winner string) {
	o.resultMu.Lock()
	o.result = gameResult{reason: reason, winner: winner}
	o.resultMu.Unlock()
	o.queue.PushFront(ReceivedGameOver)
}

func (o *Orchestrator) receivedGameOver() {
	o.resultMu.Lock()
	res := o.result
	o.resultMu.Unlock()
	o.queue.PushFront(o.gameOverState(res))
}

func (o *Orchestrator) gameOverState(res gameResult) UIState {
	switch res.reason {
	case protocol.Draw:
		return GameOverDraw
	case protocol.Disconnect:
		return GameOverDisconnected
	}
	if sess := o.currentSession(); sess != nil && sess.Username() == res.winner {
		return GameOverVictory
	}
	return GameOverDefeat
}

var _ client.Listener = (*Orchestrator)(nil)
var _ player.MoveInput = (*Orchestrator)(nil)
