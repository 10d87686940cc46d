package transport

import "github.com/shopspring/decimal"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest carries no customer and no prices: the customer comes
// from the token and prices from the catalog.
type CreateOrderRequest struct {
	StoreID string            `json:"store_id"`
	Address string            `json:"address"`
	Notes   *string           `json:"notes"`
	Items   []CreateOrderItem `json:"items"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AssignDeliveryRequest struct {
	DeliveryUserID string `json:"delivery_user_id"`
}

type CreateStoreRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type CreateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

type UpdatePriceRequest struct {
	Price *decimal.Decimal `json:"price"`
}
