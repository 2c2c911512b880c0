package client

import "github.com/domino14/dotsboxes/protocol"

// Listener receives server events. All methods are called from the
// client's reader goroutine, one at a time, in the order the messages
// arrived. Implementations must return quickly.
type Listener interface {
	ConnectionLost()
	ServerHello()
	LoginConfirmed()
	AlreadyLoggedIn()
	UserList(users []string)
	NewGame()
	MoveReceived(location int)
	ErrorReceived(description string)
	GameOver(reason protocol.GameOverReason, winner string)
}
