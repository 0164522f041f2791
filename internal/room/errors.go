package room

import "errors"

// Command errors are sentinels so callers can map them to scoped client
// errors without string matching. A failed command never mutates the room.
var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrRoomNotActive     = errors.New("room is not in progress")
	ErrForbidden         = errors.New("only the host may do that")
	ErrInvalidTransition = errors.New("illegal room status transition")
	ErrNotEnoughPlayers  = errors.New("at least one more player must join")
	ErrNoActiveCard      = errors.New("no card is open")
)
