package tui

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/dotsboxes/client"
	"github.com/domino14/dotsboxes/config"
	"github.com/domino14/dotsboxes/player"
	"github.com/domino14/dotsboxes/protocol"
	"github.com/domino14/dotsboxes/strategy"
)

const (
	cmdList = "list"
	cmdHelp = "help"
	cmdExit = "exit"

	referenceAlias = "reference"
	resolveTimeout = 5 * time.Second
)

var errNoAddress = errors.New("host has no addresses")

// matchesWord reports whether input is a non-empty, case-insensitive
// prefix of word, so that "h", "hu" and "Human" all select "human".
func matchesWord(input, word string) bool {
	return input != "" && len(input) <= len(word) && strings.EqualFold(input, word[:len(input)])
}

// parseInput routes one line of user input. Global commands win over
// whatever prompt is waiting; other input goes to the waiting prompt or is
// dropped if there is none.
func (o *Orchestrator) parseInput(line string) {
	input := strings.TrimSpace(line)
	switch {
	case strings.EqualFold(input, cmdList):
		o.requestUserList()
		return
	case strings.EqualFold(input, cmdHelp):
		usage(o.out)
		o.queue.ReturnToCallback()
		return
	case strings.EqualFold(input, cmdExit):
		o.queue.PushFront(Exit)
		o.queue.ReturnToCallback()
		return
	}

	cb, ok := o.queue.Callback()
	if !ok {
		log.Debug().Str("input", input).Msg("no-prompt-waiting")
		return
	}
	o.queue.ClearCallback()
	switch cb {
	case AskForHost:
		o.receiveHost(input)
	case AskForPort:
		o.receivePort(input)
	case AskForPlayerType:
		o.receivePlayerType(input)
	case AskForAILevel:
		o.receiveAILevel(input)
	case AskForUsername:
		o.receiveUsername(input)
	case MainMenu:
		o.receiveMainMenu(input)
	case AskForMove:
		o.receiveMove(input)
	default:
		log.Error().Stringer("callback", cb).Msg("unexpected-callback")
	}
}

func (o *Orchestrator) requestUserList() {
	sess := o.currentSession()
	if sess == nil || !sess.LoggedIn() {
		o.showMessage("Not logged in!")
		o.queue.ReturnToCallback()
		return
	}
	o.showMessage("Waiting for user list...")
	if err := sess.SendUserListRequest(); err != nil {
		log.Err(err).Msg("send-list-failed")
		o.queue.ReturnToCallback()
	}
}

func (o *Orchestrator) receiveHost(input string) {
	var hostName string
	switch {
	case input == "":
		hostName = defaultHost
	case matchesWord(input, referenceAlias) && (len(input) == 1 || len(input) == len(referenceAlias)):
		hostName = o.cfg.GetString(config.ConfigReferenceHost)
	default:
		hostName = input
	}
	o.showMessage("Checking host...")
	addr, err := o.resolve(hostName)
	if err != nil {
		log.Debug().Err(err).Str("host", hostName).Msg("resolve-failed")
		o.showMessage("Invalid host.")
		o.queue.PushBack(AskForHost)
		return
	}
	o.host = addr
	o.queue.PushBack(AskForPort)
}

func (o *Orchestrator) resolve(host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}
	ctx, cancel := context.WithTimeout(o.ctx, resolveTimeout)
	defer cancel()
	addrs, err := o.resolver.LookupHost(ctx, host)
	if err != nil {
		return "", err
	}
	if len(addrs) == 0 {
		return "", errNoAddress
	}
	return addrs[0], nil
}

func (o *Orchestrator) receivePort(input string) {
	if input == "" {
		o.port = o.cfg.GetInt(config.ConfigDefaultPort)
		o.queue.PushBack(Connect)
		return
	}
	port, err := strconv.Atoi(input)
	if err != nil || port < 0 || port > 65535 {
		o.showMessage("Invalid port.")
		o.queue.PushBack(AskForPort)
		return
	}
	o.port = port
	o.queue.PushBack(Connect)
}

func (o *Orchestrator) bindPlayer(p player.Player) {
	if sess := o.currentSession(); sess != nil {
		sess.SetPlayer(p)
	}
}

func (o *Orchestrator) receivePlayerType(input string) {
	switch {
	case matchesWord(input, "human"):
		o.bindPlayer(player.NewHuman(o))
		o.queue.PushBack(AskForUsername)
	case matchesWord(input, "ai"):
		o.queue.PushBack(AskForAILevel)
	default:
		o.showMessage("Invalid player type.")
		o.queue.PushBack(AskForPlayerType)
	}
}

func (o *Orchestrator) receiveAILevel(input string) {
	var s strategy.Strategy
	switch {
	case matchesWord(input, strategy.NaiveName):
		s = strategy.NaiveStrategy{}
	case matchesWord(input, strategy.SmartName):
		s = strategy.SmartStrategy{}
	default:
		o.showMessage("Invalid AI level.")
		o.queue.PushBack(AskForAILevel)
		return
	}
	o.bindPlayer(player.NewAI(s))
	o.queue.PushBack(AskForUsername)
}

func (o *Orchestrator) receiveUsername(input string) {
	if input == "" || !protocol.ValidField(input) {
		o.showMessage("Invalid username.")
		o.queue.PushBack(AskForUsername)
		return
	}
	sess := o.currentSession()
	if sess == nil {
		o.queue.PushBack(AskForHost)
		return
	}
	if err := sess.SendLogin(input); err != nil {
		log.Err(err).Msg("send-login-failed")
		o.showMessage("Invalid username.")
		o.queue.PushBack(AskForUsername)
	}
}

func (o *Orchestrator) receiveMainMenu(input string) {
	if input != "" {
		o.showMessage("Invalid command.")
		o.queue.PushBack(MainMenu)
		return
	}
	sess := o.currentSession()
	if sess == nil {
		o.queue.PushBack(AskForHost)
		return
	}
	if err := sess.SendQueue(); err != nil {
		log.Err(err).Msg("send-queue-failed")
		o.queue.PushBack(MainMenu)
		return
	}
	o.showMessage("Waiting for a new game...")
}

func (o *Orchestrator) receiveMove(input string) {
	if matchesWord(input, "hint") {
		o.showHint()
		o.queue.PushBack(AskForMove)
		return
	}
	location, err := strconv.Atoi(input)
	if err == nil {
		if sess := o.currentSession(); sess != nil {
			err = sess.SendMove(location)
		} else {
			err = client.ErrIllegalMove
		}
	}
	if err != nil {
		log.Debug().Err(err).Str("input", input).Msg("move-rejected")
		o.showMessage("Invalid move.")
		o.queue.PushBack(AskForMove)
	}
}

func (o *Orchestrator) showHint() {
	sess := o.currentSession()
	if sess == nil {
		return
	}
	g := sess.Game()
	if g == nil {
		o.showMessage("No game in progress.")
		return
	}
	m := o.hint.DetermineMove(g)
	if m < 0 {
		o.showMessage("No moves left.")
		return
	}
	o.showMessage(fmt.Sprintf("Hint: draw line %d", m))
}
