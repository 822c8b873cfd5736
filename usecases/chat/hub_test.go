package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portal-apr/portal-apr-backend/models"
)

func newHubServer(t *testing.T, hub *Hub, onMessage func(ctx context.Context, body string) error) *httptest.Server {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		rooms := strings.Split(r.URL.Query().Get("rooms"), ",")
		hub.Serve(r.Context(), conn, rooms, onMessage)
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, rooms string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?rooms=" + rooms
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForConnections(t *testing.T, hub *Hub, room string, n int) {
	require.Eventually(t, func() bool { return hub.Connections(room) == n }, time.Second, 5*time.Millisecond)
}

func readText(t *testing.T, conn *websocket.Conn) string {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, body, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(body)
}

func TestHubPublishReachesRoomAndStaff(t *testing.T) {
	hub := NewHub()
	server := newHubServer(t, hub, nil)

	socio := dial(t, server, "socio-1")
	other := dial(t, server, "socio-2")
	staff := dial(t, server, models.ChatRoomAll)
	waitForConnections(t, hub, "socio-1", 1)
	waitForConnections(t, hub, "socio-2", 1)
	waitForConnections(t, hub, models.ChatRoomAll, 1)

	hub.Publish([]byte(`{"type":"message"}`), "socio-1", models.ChatRoomAll)

	assert.Equal(t, `{"type":"message"}`, readText(t, socio))
	assert.Equal(t, `{"type":"message"}`, readText(t, staff))

	require.NoError(t, other.SetReadDeadline(time.Now().Add(50*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "socio-2 receives nothing")
}

func TestHubDeliversOncePerConnection(t *testing.T) {
	hub := NewHub()
	server := newHubServer(t, hub, nil)

	both := dial(t, server, "socio-1,"+models.ChatRoomAll)
	waitForConnections(t, hub, "socio-1", 1)

	hub.Publish([]byte("first"), "socio-1", models.ChatRoomAll)
	hub.Publish([]byte("second"), "socio-1")

	assert.Equal(t, "first", readText(t, both))
	assert.Equal(t, "second", readText(t, both))
}

func TestHubForwardsIncomingMessages(t *testing.T) {
	hub := NewHub()
	received := make(chan string, 1)
	server := newHubServer(t, hub, func(ctx context.Context, body string) error {
		if body == "" {
			return errors.New("empty message")
		}
		received <- body
		return nil
	})

	conn := dial(t, server, "socio-1")
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hola")))
	select {
	case body := <-received:
		assert.Equal(t, "hola", body)
	case <-time.After(time.Second):
		t.Fatal("message not forwarded")
	}

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("")))
	assert.JSONEq(t, `{"type":"error","message":"empty message"}`, readText(t, conn))
}

func TestHubUnregistersClosedConnections(t *testing.T) {
	hub := NewHub()
	server := newHubServer(t, hub, nil)

	conn := dial(t, server, "socio-1")
	waitForConnections(t, hub, "socio-1", 1)

	require.NoError(t, conn.Close())
	waitForConnections(t, hub, "socio-1", 0)
}
