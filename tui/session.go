package tui

import (
	"context"
	"net"

	"github.com/domino14/dotsboxes/client"
	"github.com/domino14/dotsboxes/game"
	"github.com/domino14/dotsboxes/player"
)

// Session is the connection to a game server as the orchestrator uses it.
// *client.Client implements it.
type Session interface {
	AddListener(l client.Listener)
	RemoveListener(l client.Listener)
	SetPlayer(p player.Player)
	Username() string
	LoggedIn() bool
	ServerDescription() string
	UserList() []string
	Game() *game.Game

	SendHello(description string) error
	SendLogin(username string) error
	SendQueue() error
	SendUserListRequest() error
	SendMove(location int) error
	Close() error
}

// Dialer opens a session to a server. l is registered before the session
// starts reading, so it hears every event including an early disconnect.
type Dialer func(ctx context.Context, host string, port int, l client.Listener) (Session, error)

// ClientDialer dials real servers with the client package.
func ClientDialer(opts client.Options) Dialer {
	return func(ctx context.Context, host string, port int, l client.Listener) (Session, error) {
		opts := opts
		opts.Listeners = append([]client.Listener{l}, opts.Listeners...)
		c, err := client.Dial(ctx, host, port, opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Resolver turns host names into addresses. *net.Resolver implements it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

var _ Resolver = net.DefaultResolver
var _ Session = (*client.Client)(nil)
