package service

import (
	"context"
	"errors"

	"github.com/Skotchmaster/delivery_orders/internal/models"
)

var (
	ErrValidation   = errors.New("validation")   // 400
	ErrUnauthorized = errors.New("unauthorized") // 401
	ErrForbidden    = errors.New("forbidden")    // 403
	ErrNotFound     = errors.New("not found")    // 404
	ErrConflict     = errors.New("conflict")     // 409
)

// EventPublisher writes domain events to the event stream.
type EventPublisher interface {
	PublishEvent(ctx context.Context, key, eventType string, data any) error
}

// Broadcaster fans an event out to the members of a room.
type Broadcaster interface {
	Publish(room, event string, payload any) int
}

// ProductIndex is the full-text product search backend.
type ProductIndex interface {
	Put(ctx context.Context, p *models.Product) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}
