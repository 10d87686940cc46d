package realtime

import (
	"log/slog"
	"sync"
)

const (
	EventNewOrder     = "new_order"
	EventOrderUpdated = "order_updated"
)

func OrderRoom(orderID string) string { return "order_" + orderID }
func StoreRoom(storeID string) string { return "store_" + storeID }

// Subscriber is one connection that can receive room events.
type Subscriber interface {
	Send(event string, payload any) error
}

// Hub is an in-process room table. Events are delivered only to members
// present at publish time; nothing is buffered for late joiners.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[Subscriber]struct{}
	log   *slog.Logger
}

func NewHub(l *slog.Logger) *Hub {
	if l == nil {
		l = slog.Default()
	}
	return &Hub{
		rooms: make(map[string]map[Subscriber]struct{}),
		log:   l.With("component", "realtime.hub"),
	}
}

func (h *Hub) Join(sub Subscriber, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[Subscriber]struct{})
		h.rooms[room] = members
	}
	members[sub] = struct{}{}
}

func (h *Hub) Leave(sub Subscriber, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(sub, room)
}

// LeaveAll drops sub from every room it joined.
func (h *Hub) LeaveAll(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range h.rooms {
		h.leaveLocked(sub, room)
	}
}

func (h *Hub) leaveLocked(sub Subscriber, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, sub)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Members reports how many subscribers are in room.
func (h *Hub) Members(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

// Publish sends the event to every current member of room and returns the
// number of successful deliveries. Writes happen outside the lock.
func (h *Hub) Publish(room, event string, payload any) int {
	h.mu.Lock()
	members := make([]Subscriber, 0, len(h.rooms[room]))
	for sub := range h.rooms[room] {
		members = append(members, sub)
	}
	h.mu.Unlock()

	delivered := 0
	for _, sub := range members {
		if err := sub.Send(event, payload); err != nil {
			h.log.Warn("publish_failed", "room", room, "event", event, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}
