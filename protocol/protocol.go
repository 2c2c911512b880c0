// Package protocol encodes and decodes the line-based Dots and Boxes
// server protocol. Every message is a single line; fields are separated by
// Separator and the first field names the command.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const Separator = "~"

type Command string

const (
	Hello           Command = "HELLO"
	Login           Command = "LOGIN"
	AlreadyLoggedIn Command = "ALREADYLOGGEDIN"
	List            Command = "LIST"
	NewGame         Command = "NEWGAME"
	Move            Command = "MOVE"
	GameOver        Command = "GAMEOVER"
	Error           Command = "ERROR"
	Queue           Command = "QUEUE"
)

// GameOverReason is the second field of a GAMEOVER message.
type GameOverReason string

const (
	Victory    GameOverReason = "VICTORY"
	Draw       GameOverReason = "DRAW"
	Disconnect GameOverReason = "DISCONNECT"
)

var (
	ErrMalformed      = errors.New("malformed message")
	ErrUnknownCommand = errors.New("unknown command")
)

var knownCommands = map[Command]bool{
	Hello: true, Login: true, AlreadyLoggedIn: true, List: true,
	NewGame: true, Move: true, GameOver: true, Error: true, Queue: true,
}

// Message is one decoded protocol line.
type Message struct {
	Command Command
	Args    []string
}

// Arg returns argument i, or "" when the message is shorter.
func (m Message) Arg(i int) string {
	if i < 0 || i >= len(m.Args) {
		return ""
	}
	return m.Args[i]
}

func (m Message) String() string {
	return Encode(m.Command, m.Args...)
}

// Encode joins a command and its arguments into one protocol line,
// without the trailing newline.
func Encode(cmd Command, args ...string) string {
	if len(args) == 0 {
		return string(cmd)
	}
	return string(cmd) + Separator + strings.Join(args, Separator)
}

// Parse decodes a single line. Trailing line terminators are ignored.
func Parse(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Message{}, fmt.Errorf("%w: empty line", ErrMalformed)
	}
	fields := strings.Split(line, Separator)
	cmd := Command(fields[0])
	if !knownCommands[cmd] {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
	msg := Message{Command: cmd, Args: fields[1:]}
	if err := validate(msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

func validate(m Message) error {
	switch m.Command {
	case NewGame:
		if len(m.Args) < 2 {
			return fmt.Errorf("%w: NEWGAME needs two players", ErrMalformed)
		}
	case Move:
		if len(m.Args) < 1 {
			return fmt.Errorf("%w: MOVE needs a location", ErrMalformed)
		}
		if _, err := strconv.Atoi(m.Args[0]); err != nil {
			return fmt.Errorf("%w: MOVE location %q", ErrMalformed, m.Args[0])
		}
	case GameOver:
		if len(m.Args) < 1 {
			return fmt.Errorf("%w: GAMEOVER needs a reason", ErrMalformed)
		}
		switch GameOverReason(m.Args[0]) {
		case Victory, Disconnect:
			if len(m.Args) < 2 {
				return fmt.Errorf("%w: GAMEOVER %s needs a winner", ErrMalformed, m.Args[0])
			}
		case Draw:
		default:
			return fmt.Errorf("%w: GAMEOVER reason %q", ErrMalformed, m.Args[0])
		}
	}
	return nil
}

// MoveLocation returns the line index of a MOVE message.
func (m Message) MoveLocation() (int, error) {
	if m.Command != Move {
		return 0, fmt.Errorf("%w: not a MOVE message", ErrMalformed)
	}
	return strconv.Atoi(m.Arg(0))
}

// ValidField reports whether s can be sent as a single protocol field.
func ValidField(s string) bool {
	return !strings.Contains(s, Separator) && !strings.ContainsAny(s, "\r\n")
}

func HelloMessage(description string) string { return Encode(Hello, description) }
func LoginMessage(username string) string    { return Encode(Login, username) }
func QueueMessage() string                   { return Encode(Queue) }
func ListMessage() string                    { return Encode(List) }
func MoveMessage(location int) string        { return Encode(Move, strconv.Itoa(location)) }
