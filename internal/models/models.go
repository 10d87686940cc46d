package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleStoreOwner Role = "store_owner"
	RoleDelivery   Role = "delivery"
	RoleAdmin      Role = "admin"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusAccepted       OrderStatus = "accepted"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var orderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:        {},
	OrderStatusAccepted:       {},
	OrderStatusPreparing:      {},
	OrderStatusOutForDelivery: {},
	OrderStatusDelivered:      {},
	OrderStatusCancelled:      {},
}

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatuses[s]
	return ok
}

type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"  json:"id"`
	Name         string    `gorm:"not null"                     json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"         json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `gorm:"not null"                     json:"-"`
	Role         Role      `gorm:"not null;default:'customer'"  json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type Store struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"  json:"id"`
	Name      string    `gorm:"not null"                     json:"name"`
	Address   string    `json:"address"`
	OwnerID   string    `gorm:"index;not null"               json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Store) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

type Product struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)"  json:"id"`
	StoreID     string          `gorm:"index;not null"               json:"store_id"`
	Name        string          `gorm:"not null"                     json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// OrderItem keeps a copy of the product price taken when the order was placed.
type OrderItem struct {
	ID        string          `gorm:"primaryKey;type:varchar(36)"  json:"id"`
	OrderID   string          `gorm:"index;not null"               json:"order_id"`
	ProductID string          `gorm:"index;not null"               json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID"         json:"product,omitempty"`
	Quantity  int             `gorm:"not null;check:quantity > 0"  json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"price"`
	Position  int             `gorm:"not null;default:0"           json:"-"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

type Order struct {
	ID             string          `gorm:"primaryKey;type:varchar(36)"  json:"id"`
	CustomerID     string          `gorm:"index;not null"               json:"customer_id"`
	Customer       *User           `gorm:"foreignKey:CustomerID"        json:"customer,omitempty"`
	StoreID        string          `gorm:"index;not null"               json:"store_id"`
	Store          *Store          `gorm:"foreignKey:StoreID"           json:"store,omitempty"`
	Address        string          `gorm:"not null"                     json:"address"`
	Notes          *string         `json:"notes,omitempty"`
	Total          decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"total"`
	Status         OrderStatus     `gorm:"not null;index"               json:"status"`
	CreatedAt      time.Time       `gorm:"index"                        json:"created_at"`
	DeliveryUserID *string         `gorm:"index"                        json:"delivery_user_id,omitempty"`
	DeliveryUser   *User           `gorm:"foreignKey:DeliveryUserID"    json:"delivery_user,omitempty"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID"           json:"items"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// All lists every model for AutoMigrate, parents first.
func All() []any {
	return []any{&User{}, &Store{}, &Product{}, &Order{}, &OrderItem{}}
}
