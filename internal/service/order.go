package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/delivery_orders/internal/logging"
	"github.com/Skotchmaster/delivery_orders/internal/models"
	"github.com/Skotchmaster/delivery_orders/internal/realtime"
	"github.com/Skotchmaster/delivery_orders/internal/repo"
	"github.com/shopspring/decimal"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Hub    Broadcaster
	Events EventPublisher
	Now    func() time.Time
}

type OrderItemInput struct {
	ProductID string
	Quantity  int
}

type CreateOrderInput struct {
	StoreID string
	Address string
	Notes   *string
	Items   []OrderItemInput
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func validateCreate(in CreateOrderInput) error {
	if strings.TrimSpace(in.StoreID) == "" {
		return fmt.Errorf("%w: store_id required", ErrValidation)
	}
	if strings.TrimSpace(in.Address) == "" {
		return fmt.Errorf("%w: address required", ErrValidation)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: items required", ErrValidation)
	}
	for _, it := range in.Items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: product_id required", ErrValidation)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be > 0", ErrValidation)
		}
	}
	return nil
}

// Create prices the order from the stored products, writes it with its items
// atomically and announces it to the store room.
func (s *OrderService) Create(ctx context.Context, customerID string, in CreateOrderInput) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "store_id", in.StoreID)

	if err := validateCreate(in); err != nil {
		l.Warn("order_create_failed", "status", 400, "reason", err.Error())
		return nil, err
	}

	ids := make([]string, 0, len(in.Items))
	seen := make(map[string]struct{}, len(in.Items))
	for _, it := range in.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	prods, err := s.Repo.StoreProducts(ctx, in.StoreID, ids)
	if err != nil {
		l.Error("order_create_failed", "status", 500, "reason", "cannot load products", "error", err)
		return nil, err
	}
	byID := make(map[string]models.Product, len(prods))
	for _, p := range prods {
		byID[p.ID] = p
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			l.Warn("order_create_failed", "status", 404, "reason", "product not found", "product_id", it.ProductID)
			return nil, fmt.Errorf("%w: product %s not found", ErrNotFound, it.ProductID)
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Quantity:  it.Quantity,
			Price:     p.Price,
		})
	}

	order := &models.Order{
		CustomerID: customerID,
		StoreID:    in.StoreID,
		Address:    in.Address,
		Notes:      in.Notes,
		Total:      total,
		Status:     models.OrderStatusPending,
		CreatedAt:  s.now(),
		Items:      items,
	}
	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		l.Error("order_create_failed", "status", 500, "reason", "cannot save order", "error", err)
		return nil, err
	}

	created, err := s.Repo.OrderByID(ctx, order.ID, repo.HydrateCreated)
	if err != nil {
		l.Error("order_create_failed", "status", 500, "reason", "cannot load created order", "error", err)
		return nil, err
	}

	s.broadcast(realtime.StoreRoom(created.StoreID), realtime.EventNewOrder, created)
	publish(ctx, s.Events, created.ID, "order_created", created)
	l.Info("order_create_success", "order_id", created.ID, "total", created.Total.String())
	return created, nil
}

func (s *OrderService) FindByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.Repo.OrderByID(ctx, id, repo.HydrateFull)
	if err != nil {
		return nil, notFound(err, "order")
	}
	return order, nil
}

func (s *OrderService) FindByStore(ctx context.Context, storeID string) ([]models.Order, error) {
	return s.Repo.OrdersByStore(ctx, storeID)
}

func (s *OrderService) FindByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	return s.Repo.OrdersByCustomer(ctx, customerID)
}

// UpdateStatus stores any known status regardless of the current one and
// announces the change to the order room.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status", "order_id", id)

	if !status.Valid() {
		l.Warn("order_status_failed", "status", 400, "reason", "unknown status", "value", string(status))
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	if err := s.Repo.UpdateOrderStatus(ctx, id, status); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("order_status_failed", "status", 404, "reason", "order not found")
		} else {
			l.Error("order_status_failed", "status", 500, "error", err)
		}
		return nil, notFound(err, "order")
	}

	updated, err := s.Repo.OrderByID(ctx, id, repo.HydrateCreated)
	if err != nil {
		return nil, notFound(err, "order")
	}

	s.broadcast(realtime.OrderRoom(updated.ID), realtime.EventOrderUpdated, updated)
	publish(ctx, s.Events, updated.ID, "order_status_updated", updated)
	l.Info("order_status_success", "new_status", string(updated.Status))
	return updated, nil
}

// AssignDelivery sets the courier of an order. Nothing is broadcast.
func (s *OrderService) AssignDelivery(ctx context.Context, id, deliveryUserID string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.assign_delivery", "order_id", id)

	if strings.TrimSpace(deliveryUserID) == "" {
		return nil, fmt.Errorf("%w: delivery_user_id required", ErrValidation)
	}
	if _, err := s.Repo.UserByID(ctx, deliveryUserID); err != nil {
		l.Warn("assign_delivery_failed", "status", 404, "reason", "delivery user not found", "error", err)
		return nil, notFound(err, "delivery user")
	}

	if err := s.Repo.SetDeliveryUser(ctx, id, deliveryUserID); err != nil {
		l.Warn("assign_delivery_failed", "reason", "cannot update order", "error", err)
		return nil, notFound(err, "order")
	}

	order, err := s.Repo.OrderByID(ctx, id, repo.HydrateFull)
	if err != nil {
		return nil, notFound(err, "order")
	}

	publish(ctx, s.Events, order.ID, "order_delivery_assigned", order)
	l.Info("assign_delivery_success", "delivery_user_id", deliveryUserID)
	return order, nil
}

func (s *OrderService) broadcast(room, event string, payload any) {
	if s.Hub == nil {
		return
	}
	s.Hub.Publish(room, event, payload)
}

func notFound(err error, what string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: %s not found", ErrNotFound, what)
	}
	return err
}
