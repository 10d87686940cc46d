package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Skotchmaster/delivery_orders/internal/logging"
	"github.com/Skotchmaster/delivery_orders/internal/realtime"
	"github.com/Skotchmaster/delivery_orders/internal/repo"
	"github.com/Skotchmaster/delivery_orders/internal/service"
	"github.com/Skotchmaster/delivery_orders/internal/testenv"
	"github.com/Skotchmaster/delivery_orders/internal/tokens"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
	"gorm.io/gorm"
)

type testServer struct {
	T      *testing.T
	Srv    *httptest.Server
	DB     *gorm.DB
	Hub    *realtime.Hub
	Tokens *tokens.Issuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gdb := testenv.InitTestDB(t)
	r := &repo.GormRepo{DB: gdb}
	log := logging.NewWithWriter(io.Discard, "error")
	issuer := tokens.NewIssuer([]byte("test-secret"), time.Hour)
	hub := realtime.NewHub(log)

	e := echo.New()
	Register(e, &Deps{
		DB:             gdb,
		Logger:         log,
		Tokens:         issuer,
		Hub:            hub,
		AuthHandler:    &AuthHTTP{Svc: &service.AuthService{Repo: r, Tokens: issuer}},
		OrderHandler:   &OrderHTTP{Svc: &service.OrderService{Repo: r, Hub: hub}},
		CatalogHandler: &CatalogHTTP{Svc: &service.CatalogService{Repo: r}},
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &testServer{T: t, Srv: srv, DB: gdb, Hub: hub, Tokens: issuer}
}

func (s *testServer) do(method, path, token string, body any) (int, []byte) {
	s.T.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.T, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.Srv.URL+path, rd)
	require.NoError(s.T, err)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(s.T, err)
	defer res.Body.Close()
	out, err := io.ReadAll(res.Body)
	require.NoError(s.T, err)
	return res.StatusCode, out
}

func (s *testServer) decode(raw []byte, v any) {
	s.T.Helper()
	require.NoError(s.T, json.Unmarshal(raw, v), string(raw))
}

type wsFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// join opens a websocket, joins room and waits for the ack.
func (s *testServer) join(room string) *websocket.Conn {
	s.T.Helper()
	wsURL := "ws" + strings.TrimPrefix(s.Srv.URL, "http") + "/ws/orders"
	conn, err := websocket.Dial(wsURL, "", s.Srv.URL)
	require.NoError(s.T, err)
	s.T.Cleanup(func() { _ = conn.Close() })

	require.NoError(s.T, websocket.JSON.Send(conn, map[string]any{"event": "join_room", "data": room}))
	f := s.read(conn)
	require.Equal(s.T, "joined", f.Event)
	return conn
}

func (s *testServer) read(conn *websocket.Conn) wsFrame {
	s.T.Helper()
	require.NoError(s.T, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f wsFrame
	require.NoError(s.T, websocket.JSON.Receive(conn, &f))
	return f
}
