package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"snakes-arrows/internal/auth"
	"snakes-arrows/internal/room"
)

// RoomService is the slice of the room manager the gateway needs.
type RoomService interface {
	GetRoom(ctx context.Context, roomID string) (*room.GameRoom, error)
	GetRoomByCode(ctx context.Context, code string) (*room.GameRoom, error)
	JoinRoom(ctx context.Context, roomID, userID, displayName string) (*room.GameRoom, error)
	RollDice(ctx context.Context, roomID, userID string) (room.MoveRecord, *room.GameRoom, error)
	RecordNote(ctx context.Context, roomID, userID string, cell int, note string) (*room.GameRoom, error)
	CloseCard(ctx context.Context, roomID, userID string) (*room.GameRoom, error)
	StartRoom(ctx context.Context, roomID, requestingUserID string) (*room.GameRoom, error)
	SetStatus(ctx context.Context, roomID, requestingUserID string, next room.Status) (*room.GameRoom, error)
	SetConnectionState(ctx context.Context, roomID, userID string, state room.ConnState) (*room.GameRoom, error)
}

// Hub owns the per-room broadcast groups and translates client commands into
// room mutations plus ordered event fan-out.
type Hub struct {
	svc      RoomService
	verifier auth.Verifier
	log      *zap.Logger

	mu          sync.RWMutex
	rooms       map[string]map[*Client]bool
	clientRooms map[*Client]map[string]bool

	// cmdMu serializes the mutate-then-broadcast sequence per room so events
	// from different commands cannot interleave within a room group.
	cmdMuMu sync.Mutex
	cmdMu   map[string]*sync.Mutex

	upgrader websocket.Upgrader
}

func NewHub(svc RoomService, verifier auth.Verifier, log *zap.Logger) *Hub {
	return &Hub{
		svc:         svc,
		verifier:    verifier,
		log:         log.Named("ws"),
		rooms:       make(map[string]map[*Client]bool),
		clientRooms: make(map[*Client]map[string]bool),
		cmdMu:       make(map[string]*sync.Mutex),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// HandleWS authenticates the handshake and upgrades the connection. Requests
// without a valid bearer credential are rejected before any room event.
func (h *Hub) HandleWS(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credential"})
		return
	}
	principal, err := h.verifier.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credential"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	client := newClient(h, conn, principal.UserID, principal.DisplayName)
	h.log.Info("connection established", zap.String("user_id", client.userID))
	go client.writePump()
	client.readPump()
}

func bearerToken(c *gin.Context) string {
	if v := c.Query("token"); v != "" {
		return v
	}
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

func (h *Hub) lockRoom(roomID string) func() {
	h.cmdMuMu.Lock()
	l, ok := h.cmdMu[roomID]
	if !ok {
		l = &sync.Mutex{}
		h.cmdMu[roomID] = l
	}
	h.cmdMuMu.Unlock()
	l.Lock()
	return l.Unlock
}

func (h *Hub) addToRoom(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][c] = true
	if h.clientRooms[c] == nil {
		h.clientRooms[c] = make(map[string]bool)
	}
	h.clientRooms[c][roomID] = true
}

// dropClient removes the connection from every room group and flips the
// player offline there. The seat is retained; only connectionStatus changes.
func (h *Hub) dropClient(c *Client) {
	h.mu.Lock()
	joined := make([]string, 0, len(h.clientRooms[c]))
	for roomID := range h.clientRooms[c] {
		joined = append(joined, roomID)
		if group := h.rooms[roomID]; group != nil {
			delete(group, c)
			if len(group) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	delete(h.clientRooms, c)
	h.mu.Unlock()
	close(c.send)

	ctx := context.Background()
	for _, roomID := range joined {
		unlock := h.lockRoom(roomID)
		snap, err := h.svc.SetConnectionState(ctx, roomID, c.userID, room.ConnOffline)
		if err != nil {
			h.log.Warn("offline mutation failed",
				zap.String("room_id", roomID), zap.String("user_id", c.userID), zap.Error(err))
			unlock()
			continue
		}
		h.broadcast(roomID, EventRoomStateUpdated, snap)
		unlock()
	}
	h.log.Info("connection closed", zap.String("user_id", c.userID))
}

// broadcast fans one event out to every member of a room group.
func (h *Hub) broadcast(roomID, action string, data interface{}) {
	frame, err := marshalEvent(action, data)
	if err != nil {
		h.log.Error("encode broadcast", zap.String("action", action), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[roomID] {
		if !client.enqueue(frame) {
			h.log.Warn("send buffer full, dropping frame",
				zap.String("room_id", roomID), zap.String("user_id", client.userID))
		}
	}
}

func (h *Hub) handleCommand(c *Client, env Envelope) {
	ctx := context.Background()
	switch env.Action {
	case ActionJoinRoom:
		h.handleJoinRoom(ctx, c, env)
	case ActionRollDice:
		h.handleRollDice(ctx, c, env)
	case ActionUpdateNote:
		h.handleUpdateNote(ctx, c, env)
	case ActionCloseCard:
		h.handleCloseCard(ctx, c, env)
	case ActionHostCommand:
		h.handleHostCommand(ctx, c, env)
	default:
		c.sendEvent(EventRoomError, roomErrorPayload{Message: "unknown action: " + env.Action})
	}
}

func (h *Hub) fail(c *Client, err error) {
	c.sendEvent(EventRoomError, roomErrorPayload{Message: errorMessage(err)})
}

// errorMessage maps command errors to the human-readable reason sent to the
// offending client. Internal failures are masked behind a generic message.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, room.ErrRoomFull),
		errors.Is(err, room.ErrNotYourTurn),
		errors.Is(err, room.ErrRoomNotActive),
		errors.Is(err, room.ErrForbidden),
		errors.Is(err, room.ErrInvalidTransition),
		errors.Is(err, room.ErrNotEnoughPlayers),
		errors.Is(err, room.ErrNoActiveCard):
		return err.Error()
	default:
		return "internal error"
	}
}

// resolveRoomID lets clients address rooms by id or by shareable code.
func (h *Hub) resolveRoomID(ctx context.Context, ref string) (string, error) {
	if _, err := h.svc.GetRoom(ctx, ref); err == nil {
		return ref, nil
	} else if !errors.Is(err, room.ErrRoomNotFound) {
		return "", err
	}
	r, err := h.svc.GetRoomByCode(ctx, ref)
	if err != nil {
		return "", err
	}
	return r.ID, nil
}

func decode[T any](env Envelope) (T, error) {
	var payload T
	if len(env.Data) == 0 {
		return payload, errors.New("missing data")
	}
	return payload, json.Unmarshal(env.Data, &payload)
}

func (h *Hub) handleJoinRoom(ctx context.Context, c *Client, env Envelope) {
	payload, err := decode[joinRoomPayload](env)
	if err != nil || payload.RoomID == "" {
		c.sendEvent(EventRoomError, roomErrorPayload{Message: "roomId required"})
		return
	}
	roomID, err := h.resolveRoomID(ctx, payload.RoomID)
	if err != nil {
		h.fail(c, err)
		return
	}

	unlock := h.lockRoom(roomID)
	defer unlock()
	snap, err := h.svc.JoinRoom(ctx, roomID, c.userID, c.displayName)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.addToRoom(roomID, c)
	seat := snap.PlayerByUser(c.userID)
	h.broadcast(roomID, EventPlayerJoined, playerJoinedPayload{
		PlayerID:    seat.UserID,
		DisplayName: seat.DisplayName,
	})
	h.broadcast(roomID, EventRoomStateUpdated, snap)
}

func (h *Hub) handleRollDice(ctx context.Context, c *Client, env Envelope) {
	payload, err := decode[rollDicePayload](env)
	if err != nil || payload.RoomID == "" {
		c.sendEvent(EventRoomError, roomErrorPayload{Message: "roomId required"})
		return
	}

	unlock := h.lockRoom(payload.RoomID)
	defer unlock()
	move, snap, err := h.svc.RollDice(ctx, payload.RoomID, c.userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	// Dice, then movement, then the full resync, in that order.
	h.broadcast(payload.RoomID, EventDiceRolled, diceRolledPayload{
		PlayerID: c.userID,
		Dice:     move.Dice,
	})
	h.broadcast(payload.RoomID, EventTokenMoved, tokenMovedPayload{
		PlayerID:     c.userID,
		FromCell:     move.FromCell,
		ToCell:       move.ToCell,
		SnakeOrArrow: move.Shortcut,
	})
	h.broadcast(payload.RoomID, EventRoomStateUpdated, snap)
}

func (h *Hub) handleUpdateNote(ctx context.Context, c *Client, env Envelope) {
	payload, err := decode[updateNotePayload](env)
	if err != nil || payload.RoomID == "" {
		c.sendEvent(EventRoomError, roomErrorPayload{Message: "roomId required"})
		return
	}

	unlock := h.lockRoom(payload.RoomID)
	defer unlock()
	snap, err := h.svc.RecordNote(ctx, payload.RoomID, c.userID, payload.Cell, payload.Note)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.broadcast(payload.RoomID, EventRoomStateUpdated, snap)
}

func (h *Hub) handleCloseCard(ctx context.Context, c *Client, env Envelope) {
	payload, err := decode[closeCardPayload](env)
	if err != nil || payload.RoomID == "" {
		c.sendEvent(EventRoomError, roomErrorPayload{Message: "roomId required"})
		return
	}

	unlock := h.lockRoom(payload.RoomID)
	defer unlock()
	snap, err := h.svc.CloseCard(ctx, payload.RoomID, c.userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.broadcast(payload.RoomID, EventRoomStateUpdated, snap)
}

func (h *Hub) handleHostCommand(ctx context.Context, c *Client, env Envelope) {
	payload, err := decode[hostCommandPayload](env)
	if err != nil || payload.RoomID == "" {
		c.sendEvent(EventRoomError, roomErrorPayload{Message: "roomId required"})
		return
	}

	unlock := h.lockRoom(payload.RoomID)
	defer unlock()

	// Authorization is re-checked here even though the state machine checks
	// it again inside the manager.
	current, err := h.svc.GetRoom(ctx, payload.RoomID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if current.HostUserID != c.userID {
		h.fail(c, room.ErrForbidden)
		return
	}

	var snap *room.GameRoom
	switch payload.Action {
	case "start":
		snap, err = h.svc.StartRoom(ctx, payload.RoomID, c.userID)
	case "pause":
		snap, err = h.svc.SetStatus(ctx, payload.RoomID, c.userID, room.StatusPaused)
	case "resume":
		snap, err = h.svc.SetStatus(ctx, payload.RoomID, c.userID, room.StatusInProgress)
	case "finish":
		snap, err = h.svc.SetStatus(ctx, payload.RoomID, c.userID, room.StatusFinished)
	default:
		c.sendEvent(EventRoomError, roomErrorPayload{Message: "unknown host command: " + payload.Action})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.broadcast(payload.RoomID, EventRoomStateUpdated, snap)
}
