package realtime

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/websocket"
)

const (
	frameJoinRoom  = "join_room"
	frameLeaveRoom = "leave_room"
	frameJoined    = "joined"
	frameLeft      = "left"
	frameError     = "error"

	maxDecodeErrorsPerConn = 5
	outboundQueueSize      = 64
	writeTimeout           = 10 * time.Second
)

var (
	ErrPeerClosed = errors.New("peer closed")
	ErrSlowPeer   = errors.New("peer outbound queue full")
)

type inFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// wsPeer queues encoded frames for a single writer goroutine, so Send never
// waits on the network. A peer whose queue overflows or whose write misses
// the deadline is closed.
type wsPeer struct {
	conn      *websocket.Conn
	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newPeer(conn *websocket.Conn) *wsPeer {
	return &wsPeer{
		conn: conn,
		out:  make(chan []byte, outboundQueueSize),
		done: make(chan struct{}),
	}
}

func (p *wsPeer) Send(event string, payload any) error {
	b, err := json.Marshal(outFrame{Event: event, Data: payload})
	if err != nil {
		return err
	}
	select {
	case <-p.done:
		return ErrPeerClosed
	default:
	}
	select {
	case p.out <- b:
		return nil
	default:
		p.close()
		return ErrSlowPeer
	}
}

func (p *wsPeer) writeLoop() {
	for {
		select {
		case <-p.done:
			return
		case b := <-p.out:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if _, err := p.conn.Write(b); err != nil {
				p.close()
				return
			}
		}
	}
}

func (p *wsPeer) close() {
	p.closeOnce.Do(func() {
		close(p.done)
		_ = p.conn.Close()
	})
}

func (p *wsPeer) closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Handler serves the room protocol over a websocket: clients send
// {"event":"join_room","data":"order_<id>"} and then receive every event
// published to that room. Joining is not authorized, and handshakes without
// an Origin header are accepted so non-browser clients can connect.
func Handler(hub *Hub) http.Handler {
	return websocket.Server{
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler: func(conn *websocket.Conn) {
			serveConn(conn, hub)
		},
	}
}

func serveConn(conn *websocket.Conn, hub *Hub) {
	peer := newPeer(conn)
	go peer.writeLoop()
	defer func() {
		hub.LeaveAll(peer)
		peer.close()
	}()

	decoder := json.NewDecoder(conn)
	decodeErrors := 0
	for {
		var frame inFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) || peer.closed() {
				return
			}
			decodeErrors++
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			_ = peer.Send(frameError, "invalid frame")
			// rebuild the decoder to drop the buffered bad bytes
			decoder = json.NewDecoder(conn)
			continue
		}
		decodeErrors = 0

		switch frame.Event {
		case frameJoinRoom:
			room, ok := roomName(frame.Data)
			if !ok {
				_ = peer.Send(frameError, "room is required")
				continue
			}
			hub.Join(peer, room)
			_ = peer.Send(frameJoined, room)
		case frameLeaveRoom:
			room, ok := roomName(frame.Data)
			if !ok {
				_ = peer.Send(frameError, "room is required")
				continue
			}
			hub.Leave(peer, room)
			_ = peer.Send(frameLeft, room)
		default:
			_ = peer.Send(frameError, "unsupported event")
		}
	}
}

func roomName(raw json.RawMessage) (string, bool) {
	var room string
	if err := json.Unmarshal(raw, &room); err != nil {
		return "", false
	}
	room = strings.TrimSpace(room)
	return room, room != ""
}
