package room

import (
	"strconv"
	"time"

	"snakes-arrows/internal/board"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusFinished   Status = "finished"
)

type Role string

const (
	RoleHost   Role = "host"
	RolePlayer Role = "player"
)

type ConnState string

const (
	ConnOnline  ConnState = "online"
	ConnOffline ConnState = "offline"
)

// PlayerStatus tracks a single token's progress, not the room lifecycle.
type PlayerStatus string

const (
	PlayerPlaying  PlayerStatus = "in_progress"
	PlayerFinished PlayerStatus = "finished"
)

// RoomPlayer is one seat in a room. The record survives disconnects; only
// Connection flips, so a reconnect restores full progress.
type RoomPlayer struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"roomId"`
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Role        Role      `json:"role"`
	TokenColor  string    `json:"tokenColor"`
	JoinedAt    time.Time `json:"joinedAt"`
	Connection  ConnState `json:"connectionStatus"`
}

// PlayerState is the per-user game progress inside a room.
type PlayerState struct {
	CurrentCell int          `json:"currentCell"`
	Status      PlayerStatus `json:"status"`
	NotesCount  int          `json:"notesCount"`
}

// MoveRecord is one entry of the append-only move history.
type MoveRecord struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	FromCell  int             `json:"fromCell"`
	ToCell    int             `json:"toCell"`
	Dice      board.DiceRoll  `json:"dice"`
	Shortcut  *board.Shortcut `json:"snakeOrArrow,omitempty"`
	Moved     bool            `json:"moved"`
	Timestamp time.Time       `json:"timestamp"`
}

// ActiveCard marks which cell's content is currently open and for whom.
type ActiveCard struct {
	Cell   int    `json:"cell"`
	UserID string `json:"userId"`
}

// Notes holds host notes (by cell, then by the player the card was open for)
// and per-player private notes (by user, then by cell key).
type Notes struct {
	Host    map[int]map[string][]string  `json:"host,omitempty"`
	Private map[string]map[string]string `json:"private,omitempty"`
}

type Settings struct {
	DiceMode              board.DiceMode `json:"diceMode"`
	AllowHostCloseAnyCard bool           `json:"allowHostCloseAnyCard"`
	HostCanPause          bool           `json:"hostCanPause"`
}

// GameState is the mutable game portion of the aggregate.
type GameState struct {
	CurrentTurnPlayerID string                  `json:"currentTurnPlayerId,omitempty"`
	Players             map[string]*PlayerState `json:"perPlayerState"`
	MoveHistory         []MoveRecord            `json:"moveHistory"`
	ActiveCard          *ActiveCard             `json:"activeCard,omitempty"`
	Notes               Notes                   `json:"notes"`
	Settings            Settings                `json:"settings"`
	AllFinished         bool                    `json:"allFinished"`
}

// GameRoom is the root aggregate, one per room code. It is only ever mutated
// inside the Manager's per-room critical section.
type GameRoom struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	HostUserID string     `json:"hostUserId"`
	BoardType  board.Type `json:"boardType"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Players    []RoomPlayer `json:"players"`
	Game       GameState    `json:"gameState"`
}

// cellKey is how private notes are keyed per cell.
func cellKey(cell int) string {
	return "cell:" + strconv.Itoa(cell)
}

// PlayerByUser returns the seat for userID, or nil.
func (r *GameRoom) PlayerByUser(userID string) *RoomPlayer {
	for i := range r.Players {
		if r.Players[i].UserID == userID {
			return &r.Players[i]
		}
	}
	return nil
}

// Clone deep-copies the aggregate. Snapshots handed to callers and rooms
// cached by stores must never alias the same mutable maps and slices.
func (r *GameRoom) Clone() *GameRoom {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Players = append([]RoomPlayer(nil), r.Players...)
	cp.Game.MoveHistory = append([]MoveRecord(nil), r.Game.MoveHistory...)
	cp.Game.Players = make(map[string]*PlayerState, len(r.Game.Players))
	for id, ps := range r.Game.Players {
		psCopy := *ps
		cp.Game.Players[id] = &psCopy
	}
	if r.Game.ActiveCard != nil {
		card := *r.Game.ActiveCard
		cp.Game.ActiveCard = &card
	}
	if r.Game.Notes.Host != nil {
		cp.Game.Notes.Host = make(map[int]map[string][]string, len(r.Game.Notes.Host))
		for cell, byUser := range r.Game.Notes.Host {
			inner := make(map[string][]string, len(byUser))
			for uid, notes := range byUser {
				inner[uid] = append([]string(nil), notes...)
			}
			cp.Game.Notes.Host[cell] = inner
		}
	}
	if r.Game.Notes.Private != nil {
		cp.Game.Notes.Private = make(map[string]map[string]string, len(r.Game.Notes.Private))
		for uid, byKey := range r.Game.Notes.Private {
			inner := make(map[string]string, len(byKey))
			for k, v := range byKey {
				inner[k] = v
			}
			cp.Game.Notes.Private[uid] = inner
		}
	}
	return &cp
}
