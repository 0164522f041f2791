package ws

import (
	"encoding/json"

	"snakes-arrows/internal/board"
)

// Envelope is the wire frame for both directions: {"action": ..., "data": ...}.
type Envelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Inbound command actions.
const (
	ActionJoinRoom    = "joinRoom"
	ActionRollDice    = "rollDice"
	ActionUpdateNote  = "updateNote"
	ActionCloseCard   = "closeCard"
	ActionHostCommand = "hostCommand"
)

// Outbound event actions. Clients rely on diceRolled -> tokenMoved ->
// roomStateUpdated arriving in that order within a room.
const (
	EventPlayerJoined     = "playerJoined"
	EventDiceRolled       = "diceRolled"
	EventTokenMoved       = "tokenMoved"
	EventRoomStateUpdated = "roomStateUpdated"
	EventRoomError        = "roomError"
)

type joinRoomPayload struct {
	RoomID string `json:"roomId"`
}

type rollDicePayload struct {
	RoomID string `json:"roomId"`
}

type updateNotePayload struct {
	RoomID string `json:"roomId"`
	Cell   int    `json:"cell"`
	Note   string `json:"note"`
}

type closeCardPayload struct {
	RoomID string `json:"roomId"`
}

type hostCommandPayload struct {
	RoomID string `json:"roomId"`
	Action string `json:"action"`
}

type playerJoinedPayload struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
}

type diceRolledPayload struct {
	PlayerID string         `json:"playerId"`
	Dice     board.DiceRoll `json:"dice"`
}

type tokenMovedPayload struct {
	PlayerID     string          `json:"playerId"`
	FromCell     int             `json:"fromCell"`
	ToCell       int             `json:"toCell"`
	SnakeOrArrow *board.Shortcut `json:"snakeOrArrow,omitempty"`
}

type roomErrorPayload struct {
	Message string `json:"message"`
}
