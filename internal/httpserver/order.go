package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/delivery_orders/internal/logging"
	authmw "github.com/Skotchmaster/delivery_orders/internal/middleware/auth"
	"github.com/Skotchmaster/delivery_orders/internal/models"
	"github.com/Skotchmaster/delivery_orders/internal/service"
	"github.com/Skotchmaster/delivery_orders/internal/transport"
	"github.com/labstack/echo/v4"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	caller, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	in := service.CreateOrderInput{
		StoreID: req.StoreID,
		Address: req.Address,
		Notes:   req.Notes,
		Items:   make([]service.OrderItemInput, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.Svc.Create(ctx, caller.UserID, in)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) MyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.my_orders")

	caller, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	orders, err := h.Svc.FindByCustomer(ctx, caller.UserID)
	if err != nil {
		return fail(l, "my_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder is public: any caller who knows the id can read the order.
func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	order, err := h.Svc.FindByID(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

// StoreOrders is public, like GetOrder.
func (h *OrderHTTP) StoreOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.store_orders")

	orders, err := h.Svc.FindByStore(ctx, c.Param("storeId"))
	if err != nil {
		return fail(l, "store_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

// UpdateStatus needs a token but does not check who owns the order.
func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.UpdateStatus(ctx, c.Param("id"), models.OrderStatus(req.Status))
	if err != nil {
		return fail(l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", order.ID, "new_status", string(order.Status))
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) AssignDelivery(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.assign_delivery")

	var req transport.AssignDeliveryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("assign_delivery_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.AssignDelivery(ctx, c.Param("id"), req.DeliveryUserID)
	if err != nil {
		return fail(l, "assign_delivery_error", err)
	}

	l.Info("assign_delivery_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, order)
}
