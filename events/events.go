// Package events publishes session milestones of the client (login, start
// and end of games) so other processes can follow along.
package events

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventLogin    EventType = "login"
	EventNewGame  EventType = "new-game"
	EventGameOver EventType = "game-over"
)

type Event struct {
	Type    EventType      `json:"type"`
	User    string         `json:"user"`
	Players []string       `json:"players,omitempty"`
	Scores  map[string]int `json:"scores,omitempty"`
	Result  string         `json:"result,omitempty"`
	Time    time.Time      `json:"time"`
}

// Publisher sends events somewhere. Publish must not block for long; it is
// called from the UI loop.
type Publisher interface {
	Publish(evt Event) error
	Close()
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) error { return nil }
func (NopPublisher) Close()              {}

// NatsPublisher publishes JSON-encoded events on <prefix>.<user>.
type NatsPublisher struct {
	nc     *nats.Conn
	prefix string
}

func NewNatsPublisher(url, prefix string) (*NatsPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("dotsboxes-client"))
	if err != nil {
		return nil, err
	}
	log.Info().Str("subject-prefix", prefix).Msg("connected-to-nats")
	return &NatsPublisher{nc: nc, prefix: prefix}, nil
}

func (p *NatsPublisher) Publish(evt Event) error {
	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	subject := Subject(p.prefix, evt.User)
	log.Debug().Str("subject", subject).Int("bytes", len(data)).Msg("publishing-event")
	return p.nc.Publish(subject, data)
}

func (p *NatsPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		log.Err(err).Msg("nats-drain")
		p.nc.Close()
	}
}

var subjectReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_", "\t", "_")

// Subject returns the subject events of user are published on. Characters
// that have a meaning in NATS subjects are replaced.
func Subject(prefix, user string) string {
	token := subjectReplacer.Replace(user)
	if token == "" {
		token = "anonymous"
	}
	if prefix == "" {
		return token
	}
	return prefix + "." + token
}
