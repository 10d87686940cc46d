package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Skotchmaster/delivery_orders/internal/repo"
	"github.com/Skotchmaster/delivery_orders/internal/testenv"
	"github.com/Skotchmaster/delivery_orders/internal/tokens"
	"gorm.io/gorm"
)

type sentEvent struct {
	Key, Type string
	Data      any
}

type fakeEvents struct {
	mu     sync.Mutex
	events []sentEvent
	err    error
}

func (f *fakeEvents) PublishEvent(_ context.Context, key, eventType string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, sentEvent{Key: key, Type: eventType, Data: data})
	return f.err
}

func (f *fakeEvents) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type published struct {
	Room, Event string
	Payload     any
}

type fakeHub struct {
	mu   sync.Mutex
	sent []published
}

func (h *fakeHub) Publish(room, event string, payload any) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, published{Room: room, Event: event, Payload: payload})
	return 1
}

func (h *fakeHub) all() []published {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]published(nil), h.sent...)
}

// stepClock returns a time one minute later on every call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

type env struct {
	DB      *gorm.DB
	Repo    *repo.GormRepo
	Issuer  *tokens.Issuer
	Events  *fakeEvents
	Hub     *fakeHub
	Auth    *AuthService
	Orders  *OrderService
	Catalog *CatalogService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gdb := testenv.InitTestDB(t)
	r := &repo.GormRepo{DB: gdb}
	issuer := tokens.NewIssuer([]byte("test-secret"), time.Hour)
	events := &fakeEvents{}
	hub := &fakeHub{}

	return &env{
		DB:      gdb,
		Repo:    r,
		Issuer:  issuer,
		Events:  events,
		Hub:     hub,
		Auth:    &AuthService{Repo: r, Tokens: issuer, Events: events},
		Orders:  &OrderService{Repo: r, Hub: hub, Events: events, Now: stepClock()},
		Catalog: &CatalogService{Repo: r, Events: events},
	}
}
