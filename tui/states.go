package tui

import "strconv"

// UIState is one step of the conversation with the user. States carry no
// payload; handlers read whatever they need from the session when they
// run.
type UIState int

const (
	Idle UIState = iota
	Exit

	// Callback states wait for a specific kind of user input.
	AskForHost
	AskForPort
	AskForPlayerType
	AskForAILevel
	AskForUsername
	MainMenu
	AskForMove

	// Transient states run once and never wait for input.
	Connect
	ReceivedHello
	ReceivedLogin
	ReceivedAlreadyLoggedIn
	ReceivedUserList
	ReceivedNewGame
	ReceivedMove
	ReceivedError
	ReceivedGameOver
	ConnectionLost
	GameOverDisconnected
	GameOverVictory
	GameOverDraw
	GameOverDefeat

	numStates
)

var stateNames = [...]string{
	Idle:                    "Idle",
	Exit:                    "Exit",
	AskForHost:              "AskForHost",
	AskForPort:              "AskForPort",
	AskForPlayerType:        "AskForPlayerType",
	AskForAILevel:           "AskForAILevel",
	AskForUsername:          "AskForUsername",
	MainMenu:                "MainMenu",
	AskForMove:              "AskForMove",
	Connect:                 "Connect",
	ReceivedHello:           "ReceivedHello",
	ReceivedLogin:           "ReceivedLogin",
	ReceivedAlreadyLoggedIn: "ReceivedAlreadyLoggedIn",
	ReceivedUserList:        "ReceivedUserList",
	ReceivedNewGame:         "ReceivedNewGame",
	ReceivedMove:            "ReceivedMove",
	ReceivedError:           "ReceivedError",
	ReceivedGameOver:        "ReceivedGameOver",
	ConnectionLost:          "ConnectionLost",
	GameOverDisconnected:    "GameOverDisconnected",
	GameOverVictory:         "GameOverVictory",
	GameOverDraw:            "GameOverDraw",
	GameOverDefeat:          "GameOverDefeat",
}

func (s UIState) String() string {
	if s < 0 || s >= numStates {
		return "UIState(" + strconv.Itoa(int(s)) + ")"
	}
	return stateNames[s]
}

// IsCallback reports whether the state waits for user input.
func (s UIState) IsCallback() bool {
	return s >= AskForHost && s <= AskForMove
}

// IsGameOver reports whether the state announces the end of a game.
func (s UIState) IsGameOver() bool {
	return s >= GameOverDisconnected && s <= GameOverDefeat
}
