package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/portal-apr/portal-apr-backend/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 32
)

// Hub fans out chat events to the websocket connections of a room. A room is a socio id, plus
// models.ChatRoomAll for the staff.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

type client struct {
	conn  *websocket.Conn
	rooms []string
	send  chan []byte
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*client]struct{})}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range c.rooms {
		if h.rooms[room] == nil {
			h.rooms[room] = make(map[*client]struct{})
		}
		h.rooms[room][c] = struct{}{}
	}
	utils.MetricChatConnections.Inc()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range c.rooms {
		delete(h.rooms[room], c)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	utils.MetricChatConnections.Dec()
}

// Publish sends the payload to every connection of the rooms. A connection that is too slow to
// drain its buffer misses the event rather than blocking the others.
func (h *Hub) Publish(payload []byte, rooms ...string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[*client]bool)
	for _, room := range rooms {
		for c := range h.rooms[room] {
			if seen[c] {
				continue
			}
			seen[c] = true
			select {
			case c.send <- payload:
			default:
			}
		}
	}
}

func (h *Hub) Connections(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Serve pumps the connection until it is closed or ctx is done. Text frames read from the
// socket are handed to onMessage; an error from onMessage is sent back to the client as a text
// frame and does not close the connection.
func (h *Hub) Serve(
	ctx context.Context,
	conn *websocket.Conn,
	rooms []string,
	onMessage func(ctx context.Context, body string) error,
) {
	logger := utils.LoggerFromContext(ctx)
	c := &client{conn: conn, rooms: rooms, send: make(chan []byte, sendBufferSize)}
	h.register(c)
	defer h.unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump(ctx)
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, body, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.DebugContext(ctx, "chat connection closed", "error", err.Error())
			}
			break
		}
		if kind != websocket.TextMessage || onMessage == nil {
			continue
		}
		if err := onMessage(ctx, string(body)); err != nil {
			select {
			case c.send <- errorFrame(err):
			default:
			}
		}
	}

	cancel()
	<-done
	_ = conn.Close()
}

func (c *client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func errorFrame(err error) []byte {
	frame, _ := json.Marshal(map[string]string{"type": "error", "message": err.Error()})
	return frame
}
