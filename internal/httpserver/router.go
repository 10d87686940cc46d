package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Skotchmaster/delivery_orders/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/delivery_orders/internal/middleware/logging"
	"github.com/Skotchmaster/delivery_orders/internal/models"
	"github.com/Skotchmaster/delivery_orders/internal/realtime"
	"github.com/Skotchmaster/delivery_orders/internal/tokens"
	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type Deps struct {
	DB             *gorm.DB
	Logger         *slog.Logger
	Tokens         *tokens.Issuer
	Hub            *realtime.Hub
	AuthHandler    *AuthHTTP
	OrderHandler   *OrderHTTP
	CatalogHandler *CatalogHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.Use(ecM.Recover(), ecM.RequestID(), loggingmw.RequestLogger(d.Logger))

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	bearer := auth.Bearer(d.Tokens)
	dispatch := auth.RequireRole(string(models.RoleStoreOwner), string(models.RoleAdmin))

	authG := e.Group("/auth")
	authG.POST("/register", d.AuthHandler.Register)
	authG.POST("/login", d.AuthHandler.Login)
	authG.GET("/me", d.AuthHandler.Me, bearer)

	orders := e.Group("/orders")
	orders.POST("", d.OrderHandler.CreateOrder, bearer)
	orders.GET("/my", d.OrderHandler.MyOrders, bearer)
	orders.GET("/store/:storeId", d.OrderHandler.StoreOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.PATCH("/:id/status", d.OrderHandler.UpdateStatus, bearer)
	orders.PATCH("/:id/delivery", d.OrderHandler.AssignDelivery, bearer, dispatch)

	e.POST("/stores", d.CatalogHandler.CreateStore, bearer)
	e.POST("/stores/:storeId/products", d.CatalogHandler.CreateProduct, bearer)
	e.GET("/stores/:storeId/products", d.CatalogHandler.ListProducts)

	products := e.Group("/products")
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.PATCH("/:id/price", d.CatalogHandler.UpdatePrice, bearer)

	e.GET("/ws/orders", echo.WrapHandler(realtime.Handler(d.Hub)))
}

func (d *Deps) ready(c echo.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
