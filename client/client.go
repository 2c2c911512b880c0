// Package client is the network side of a Dots and Boxes session. It owns
// the TCP connection, decodes server messages on its own goroutine, keeps
// the authoritative copy of the current game and forwards every event to
// the registered listeners.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/dotsboxes/game"
	"github.com/domino14/dotsboxes/player"
	"github.com/domino14/dotsboxes/protocol"
)

var (
	ErrIllegalMove  = errors.New("illegal move")
	ErrClosed       = errors.New("connection closed")
	ErrInvalidField = errors.New("value cannot be sent as a protocol field")
)

// Options configures Dial.
type Options struct {
	ConnectTimeout time.Duration
	Attempts       uint
	RetryDelay     time.Duration
	// Listeners are registered before the connection is read from.
	Listeners []Listener
}

// DefaultOptions makes a single attempt with a five second timeout.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout: 5 * time.Second,
		Attempts:       1,
		RetryDelay:     200 * time.Millisecond,
	}
}

// Client is one connection to a game server. It is safe for concurrent
// use.
type Client struct {
	conn    net.Conn
	writeMu sync.Mutex

	mu                sync.Mutex
	listeners         []Listener
	player            player.Player
	game              *game.Game
	pendingUsername   string
	username          string
	loggedIn          bool
	serverDescription string
	userList          []string
	closed            bool

	done chan struct{}
}

// Dial connects to a server and starts reading from it.
func Dial(ctx context.Context, host string, port int, opts Options) (*Client, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	if opts.Attempts == 0 {
		opts.Attempts = 1
	}
	var conn net.Conn
	err := retry.Do(
		func() error {
			d := net.Dialer{Timeout: opts.ConnectTimeout}
			c, err := d.DialContext(ctx, "tcp", addr)
			if err != nil {
				return err
			}
			conn = c
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(opts.Attempts),
		retry.Delay(opts.RetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).Uint("attempt", n).Str("addr", addr).Msg("connect-retry")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	log.Info().Str("addr", addr).Msg("connected")
	return New(conn, opts.Listeners...), nil
}

// New wraps an established connection. The given listeners are in place
// before the first line is read.
func New(conn net.Conn, listeners ...Listener) *Client {
	c := &Client{
		conn:      conn,
		listeners: append([]Listener(nil), listeners...),
		done:      make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// AddListener registers l for all events from now on.
func (c *Client) AddListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// RemoveListener unregisters l.
func (c *Client) RemoveListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = lo.Without(c.listeners, l)
}

// SetPlayer binds the local seat. It is consulted whenever it becomes our
// turn.
func (c *Client) SetPlayer(p player.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.player = p
}

// Username is the name confirmed by the server, empty before login.
func (c *Client) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

func (c *Client) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loggedIn
}

func (c *Client) ServerDescription() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverDescription
}

// UserList returns the names received with the last LIST reply.
func (c *Client) UserList() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.userList...)
}

// Game returns a snapshot of the current game, or nil if no game has
// started yet.
func (c *Client) Game() *game.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.game == nil {
		return nil
	}
	return c.game.DeepCopy()
}

// SendHello introduces the client; the server answers with its own HELLO.
func (c *Client) SendHello(description string) error {
	if !protocol.ValidField(description) {
		return ErrInvalidField
	}
	return c.writeLine(protocol.HelloMessage(description))
}

// SendLogin asks for username. It takes effect when the server confirms.
func (c *Client) SendLogin(username string) error {
	if username == "" || !protocol.ValidField(username) {
		return ErrInvalidField
	}
	c.mu.Lock()
	c.pendingUsername = username
	c.mu.Unlock()
	return c.writeLine(protocol.LoginMessage(username))
}

func (c *Client) SendQueue() error {
	return c.writeLine(protocol.QueueMessage())
}

func (c *Client) SendUserListRequest() error {
	return c.writeLine(protocol.ListMessage())
}

// SendMove sends a move for the local player. The move is only applied to
// the local game once the server echoes it back.
func (c *Client) SendMove(location int) error {
	c.mu.Lock()
	g, username := c.game, c.username
	legal := g != nil && !g.IsGameOver() && g.Turn() == username && g.IsValidMove(location)
	c.mu.Unlock()
	if !legal {
		return fmt.Errorf("%w: line %d", ErrIllegalMove, location)
	}
	return c.writeLine(protocol.MoveMessage(location))
}

// Close closes the connection and waits for the reader to stop, so no
// listener is called once it returns. Listeners are not told about the
// lost connection. Calling Close more than once is harmless. It must not
// be called from a listener.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		<-c.done
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) writeLine(line string) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	log.Debug().Str("line", line).Msg("send")
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

func (c *Client) currentListeners() []Listener {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Listener(nil), c.listeners...)
}

func (c *Client) notify(f func(l Listener)) {
	for _, l := range c.currentListeners() {
		f(l)
	}
}

func (c *Client) readLoop() {
	defer close(c.done)
	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		line := scanner.Text()
		log.Debug().Str("line", line).Msg("recv")
		msg, err := protocol.Parse(line)
		if err != nil {
			log.Err(err).Str("line", line).Msg("unparseable-server-message")
			continue
		}
		c.handle(msg)
	}
	c.mu.Lock()
	closed := c.closed
	c.closed = true
	c.mu.Unlock()
	if closed {
		return
	}
	if err := scanner.Err(); err != nil {
		log.Err(err).Msg("read-error")
	}
	c.conn.Close()
	c.notify(func(l Listener) { l.ConnectionLost() })
}

func (c *Client) handle(msg protocol.Message) {
	switch msg.Command {
	case protocol.Hello:
		c.mu.Lock()
		c.serverDescription = msg.Arg(0)
		c.mu.Unlock()
		c.notify(func(l Listener) { l.ServerHello() })

	case protocol.Login:
		c.mu.Lock()
		c.loggedIn = true
		c.username = c.pendingUsername
		c.mu.Unlock()
		c.notify(func(l Listener) { l.LoginConfirmed() })

	case protocol.AlreadyLoggedIn:
		c.notify(func(l Listener) { l.AlreadyLoggedIn() })

	case protocol.List:
		users := append([]string(nil), msg.Args...)
		c.mu.Lock()
		c.userList = users
		c.mu.Unlock()
		c.notify(func(l Listener) { l.UserList(users) })

	case protocol.NewGame:
		c.mu.Lock()
		c.game = game.NewGame(msg.Arg(0), msg.Arg(1))
		c.mu.Unlock()
		c.notify(func(l Listener) { l.NewGame() })
		c.takeTurnIfOurs()

	case protocol.Move:
		loc, _ := msg.MoveLocation()
		c.mu.Lock()
		var err error
		if c.game == nil {
			err = errors.New("move received without a game")
		} else {
			err = c.game.DoMove(loc)
		}
		c.mu.Unlock()
		if err != nil {
			log.Err(err).Int("location", loc).Msg("could-not-apply-server-move")
		}
		c.notify(func(l Listener) { l.MoveReceived(loc) })
		c.takeTurnIfOurs()

	case protocol.GameOver:
		reason := protocol.GameOverReason(msg.Arg(0))
		winner := msg.Arg(1)
		c.notify(func(l Listener) { l.GameOver(reason, winner) })

	case protocol.Error:
		desc := msg.Arg(0)
		c.notify(func(l Listener) { l.ErrorReceived(desc) })

	default:
		log.Warn().Str("command", string(msg.Command)).Msg("unexpected-server-command")
	}
}

// takeTurnIfOurs asks the bound player for a move when the local user is
// on turn. Computer players answer immediately; human players answer later
// through SendMove.
func (c *Client) takeTurnIfOurs() {
	c.mu.Lock()
	p := c.player
	if p == nil || c.game == nil || c.game.IsGameOver() || c.game.Turn() != c.username {
		c.mu.Unlock()
		return
	}
	snapshot := c.game.DeepCopy()
	c.mu.Unlock()

	m := p.DetermineMove(snapshot)
	if m == player.Deferred {
		return
	}
	if err := c.SendMove(m); err != nil {
		log.Err(err).Int("move", m).Msg("could-not-send-ai-move")
	}
}
