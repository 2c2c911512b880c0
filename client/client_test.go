package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/domino14/dotsboxes/player"
	"github.com/domino14/dotsboxes/protocol"
	"github.com/domino14/dotsboxes/strategy"
)

// recorder turns listener callbacks into strings.
type recorder struct {
	events chan string
}

func newRecorder() *recorder { return &recorder{events: make(chan string, 32)} }

func (r *recorder) ConnectionLost()           { r.events <- "lost" }
func (r *recorder) ServerHello()              { r.events <- "hello" }
func (r *recorder) LoginConfirmed()           { r.events <- "login" }
func (r *recorder) AlreadyLoggedIn()          { r.events <- "taken" }
func (r *recorder) UserList(users []string)   { r.events <- "list:" + strings.Join(users, ",") }
func (r *recorder) NewGame()                  { r.events <- "newgame" }
func (r *recorder) MoveReceived(location int) { r.events <- fmt.Sprintf("move:%d", location) }
func (r *recorder) ErrorReceived(desc string) { r.events <- "error:" + desc }
func (r *recorder) GameOver(reason protocol.GameOverReason, winner string) {
	r.events <- fmt.Sprintf("gameover:%s:%s", reason, winner)
}
func (r *recorder) RequestMove() { r.events <- "request-move" }

func expect(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("expected event %q, got %q", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

type fakeServer struct {
	conn net.Conn
	r    *bufio.Reader
}

func (s *fakeServer) send(line string) {
	s.conn.Write([]byte(line + "\n"))
}

func (s *fakeServer) recv(t *testing.T) string {
	t.Helper()
	s.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := s.r.ReadString('\n')
	if err != nil {
		t.Fatalf("server read: %v", err)
	}
	return strings.TrimRight(line, "\n")
}

func setup(t *testing.T) (*Client, *fakeServer, *recorder) {
	clientConn, serverConn := net.Pipe()
	c := New(clientConn)
	rec := newRecorder()
	c.AddListener(rec)
	t.Cleanup(func() {
		c.Close()
		serverConn.Close()
	})
	return c, &fakeServer{conn: serverConn, r: bufio.NewReader(serverConn)}, rec
}

func login(t *testing.T, c *Client, srv *fakeServer, rec *recorder, name string) {
	is := is.New(t)
	go c.SendLogin(name)
	is.Equal(srv.recv(t), "LOGIN~"+name)
	srv.send("LOGIN")
	expect(t, rec.events, "login")
}

func TestHandshake(t *testing.T) {
	is := is.New(t)
	c, srv, rec := setup(t)

	go c.SendHello("test client")
	is.Equal(srv.recv(t), "HELLO~test client")
	srv.send("HELLO~test server")
	expect(t, rec.events, "hello")
	is.Equal(c.ServerDescription(), "test server")

	is.True(!c.LoggedIn())
	login(t, c, srv, rec, "bob")
	is.True(c.LoggedIn())
	is.Equal(c.Username(), "bob")
}

func TestAlreadyLoggedInAndList(t *testing.T) {
	is := is.New(t)
	c, srv, rec := setup(t)
	go c.SendLogin("bob")
	is.Equal(srv.recv(t), "LOGIN~bob")
	srv.send("ALREADYLOGGEDIN")
	expect(t, rec.events, "taken")
	is.True(!c.LoggedIn())

	go c.SendUserListRequest()
	is.Equal(srv.recv(t), "LIST")
	srv.send("LIST~alice~bob")
	expect(t, rec.events, "list:alice,bob")
	is.Equal(c.UserList(), []string{"alice", "bob"})
}

func TestInvalidLogin(t *testing.T) {
	is := is.New(t)
	c, _, _ := setup(t)
	is.True(errors.Is(c.SendLogin("a~b"), ErrInvalidField))
	is.True(errors.Is(c.SendLogin(""), ErrInvalidField))
}

func TestHumanMoveFlow(t *testing.T) {
	is := is.New(t)
	c, srv, rec := setup(t)
	c.SetPlayer(player.NewHuman(rec))
	login(t, c, srv, rec, "bob")

	is.True(errors.Is(c.SendMove(0), ErrIllegalMove)) // no game yet

	srv.send("NEWGAME~bob~alice")
	expect(t, rec.events, "newgame")
	expect(t, rec.events, "request-move")
	is.Equal(c.Game().Player1(), "bob")

	is.True(errors.Is(c.SendMove(60), ErrIllegalMove))
	go c.SendMove(3)
	is.Equal(srv.recv(t), "MOVE~3")
	srv.send("MOVE~3")
	expect(t, rec.events, "move:3")
	is.Equal(c.Game().Turn(), "alice")
	is.True(errors.Is(c.SendMove(4), ErrIllegalMove)) // not our turn

	srv.send("MOVE~4")
	expect(t, rec.events, "move:4")
	expect(t, rec.events, "request-move")

	srv.send("GAMEOVER~VICTORY~alice")
	expect(t, rec.events, "gameover:VICTORY:alice")
}

func TestAIMovesAutomatically(t *testing.T) {
	is := is.New(t)
	c, srv, rec := setup(t)
	c.SetPlayer(player.NewAI(strategy.SmartStrategy{}))
	login(t, c, srv, rec, "bot")

	srv.send("NEWGAME~bot~alice")
	expect(t, rec.events, "newgame")
	line := srv.recv(t)
	is.True(strings.HasPrefix(line, "MOVE~"))
}

func TestErrorMessage(t *testing.T) {
	c, srv, rec := setup(t)
	_ = c
	srv.send("ERROR~oops")
	expect(t, rec.events, "error:oops")
}

func TestConnectionLost(t *testing.T) {
	is := is.New(t)
	c, srv, rec := setup(t)
	srv.conn.Close()
	expect(t, rec.events, "lost")
	<-c.done
	is.True(errors.Is(c.SendQueue(), ErrClosed))
	is.NoErr(c.Close())
}

func TestCloseDoesNotReportLoss(t *testing.T) {
	is := is.New(t)
	c, _, rec := setup(t)
	is.NoErr(c.Close())
	is.NoErr(c.Close())
	select {
	case ev := <-rec.events:
		t.Fatalf("unexpected event %q", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRemoveListener(t *testing.T) {
	c, srv, rec := setup(t)
	other := newRecorder()
	c.AddListener(other)
	c.RemoveListener(rec)
	srv.send("HELLO~x")
	expect(t, other.events, "hello")
	select {
	case ev := <-rec.events:
		t.Fatalf("removed listener got %q", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDial(t *testing.T) {
	is := is.New(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	is.NoErr(err)
	defer ln.Close()
	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	c, err := Dial(context.Background(), "127.0.0.1", addr.Port, DefaultOptions())
	is.NoErr(err)
	defer c.Close()
	conn := <-accepted
	defer conn.Close()
}

func TestDialFailure(t *testing.T) {
	is := is.New(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	is.NoErr(err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	opts := DefaultOptions()
	opts.Attempts = 2
	opts.RetryDelay = time.Millisecond
	_, err = Dial(context.Background(), "127.0.0.1", port, opts)
	is.True(err != nil)
}

func TestDialListenerHearsImmediateDisconnect(t *testing.T) {
	is := is.New(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	is.NoErr(err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	rec := newRecorder()
	opts := DefaultOptions()
	opts.Listeners = []Listener{rec}
	c, err := Dial(context.Background(), "127.0.0.1", ln.Addr().(*net.TCPAddr).Port, opts)
	is.NoErr(err)
	defer c.Close()
	expect(t, rec.events, "lost")
}

func TestNewRegistersListenersBeforeReading(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	serverConn.Close()
	rec := newRecorder()
	c := New(clientConn, rec)
	defer c.Close()
	expect(t, rec.events, "lost")
}
