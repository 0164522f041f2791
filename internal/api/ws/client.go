package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client binds one websocket connection to exactly one authenticated
// principal. Outbound events go through the send channel so a single writer
// goroutine owns the connection and per-room ordering is preserved.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	userID      string
	displayName string
	send        chan []byte
}

func newClient(hub *Hub, conn *websocket.Conn, userID, displayName string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		userID:      userID,
		displayName: displayName,
		send:        make(chan []byte, sendBuffer),
	}
}

// enqueue hands a pre-marshaled frame to the writer. A client that cannot
// keep up is dropped rather than allowed to stall the room.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) sendEvent(action string, data interface{}) {
	frame, err := marshalEvent(action, data)
	if err != nil {
		c.hub.log.Error("encode event", zap.String("action", action), zap.Error(err))
		return
	}
	c.enqueue(frame)
}

func marshalEvent(action string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Action: action, Data: raw})
}

// readPump decodes inbound envelopes and dispatches them one at a time, so a
// connection never has two of its own commands in flight. When the loop exits
// the hub runs disconnect handling; an in-flight command always completes
// first.
func (c *Client) readPump() {
	defer func() {
		c.hub.dropClient(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn("websocket read", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.sendEvent(EventRoomError, roomErrorPayload{Message: "malformed message"})
			continue
		}
		c.hub.handleCommand(c, env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
