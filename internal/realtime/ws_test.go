package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

type testFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, event, data string) {
	t.Helper()
	require.NoError(t, websocket.JSON.Send(conn, map[string]any{"event": event, "data": data}))
}

func readFrame(t *testing.T, conn *websocket.Conn) testFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f testFrame
	require.NoError(t, websocket.JSON.Receive(conn, &f))
	return f
}

func dataString(t *testing.T, f testFrame) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(f.Data, &s))
	return s
}

func TestWS_JoinAck(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	srv := httptest.NewServer(Handler(hub))
	t.Cleanup(srv.Close)

	conn := dialWS(t, srv)
	sendFrame(t, conn, "join_room", "order_42")

	f := readFrame(t, conn)
	assert.Equal(t, "joined", f.Event)
	assert.Equal(t, "order_42", dataString(t, f))
	assert.Equal(t, 1, hub.Members("order_42"))
}

func TestWS_ReceivesOnlyEventsAfterJoin(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	srv := httptest.NewServer(Handler(hub))
	t.Cleanup(srv.Close)

	hub.Publish("order_42", EventOrderUpdated, map[string]string{"status": "accepted"})

	conn := dialWS(t, srv)
	sendFrame(t, conn, "join_room", "order_42")
	require.Equal(t, "joined", readFrame(t, conn).Event)

	hub.Publish("order_42", EventOrderUpdated, map[string]string{"status": "delivered"})

	f := readFrame(t, conn)
	assert.Equal(t, EventOrderUpdated, f.Event)
	assert.JSONEq(t, `{"status":"delivered"}`, string(f.Data))
}

func TestWS_LeaveStopsDelivery(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	srv := httptest.NewServer(Handler(hub))
	t.Cleanup(srv.Close)

	conn := dialWS(t, srv)
	sendFrame(t, conn, "join_room", "store_1")
	require.Equal(t, "joined", readFrame(t, conn).Event)
	sendFrame(t, conn, "join_room", "store_2")
	require.Equal(t, "joined", readFrame(t, conn).Event)

	sendFrame(t, conn, "leave_room", "store_1")
	f := readFrame(t, conn)
	require.Equal(t, "left", f.Event)
	assert.Equal(t, "store_1", dataString(t, f))

	assert.Equal(t, 0, hub.Publish("store_1", EventNewOrder, "skipped"))
	hub.Publish("store_2", EventNewOrder, "kept")

	f = readFrame(t, conn)
	assert.Equal(t, EventNewOrder, f.Event)
	assert.Equal(t, "kept", dataString(t, f))
}

func TestWS_RejectsBadFrames(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	srv := httptest.NewServer(Handler(hub))
	t.Cleanup(srv.Close)

	conn := dialWS(t, srv)
	sendFrame(t, conn, "join_room", "  ")
	assert.Equal(t, "error", readFrame(t, conn).Event)

	sendFrame(t, conn, "shout", "x")
	assert.Equal(t, "error", readFrame(t, conn).Event)
}

func TestWS_DisconnectLeavesRooms(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	srv := httptest.NewServer(Handler(hub))
	t.Cleanup(srv.Close)

	conn := dialWS(t, srv)
	sendFrame(t, conn, "join_room", "order_7")
	require.Equal(t, "joined", readFrame(t, conn).Event)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return hub.Members("order_7") == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestWS_StalledReaderDoesNotBlockPublish(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	srv := httptest.NewServer(Handler(hub))
	t.Cleanup(srv.Close)

	conn := dialWS(t, srv)
	sendFrame(t, conn, "join_room", "store_1")
	require.Equal(t, "joined", readFrame(t, conn).Event)

	payload := strings.Repeat("x", 256<<10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			hub.Publish("store_1", EventNewOrder, payload)
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on a subscriber that stopped reading")
	}
	require.Eventually(t, func() bool { return hub.Members("store_1") == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestWS_AcceptsHandshakeWithoutOrigin(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(Handler(NewHub(nil)))
	t.Cleanup(srv.Close)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	req.Header.Set("Sec-WebSocket-Version", "13")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
}
