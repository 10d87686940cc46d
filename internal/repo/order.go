package repo

import (
	"context"

	"github.com/Skotchmaster/delivery_orders/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Hydration is the set of associations loaded with an order.
type Hydration []string

var (
	HydrateCreated     = Hydration{"Customer", "Store", "Items.Product"}
	HydrateFull        = Hydration{"Customer", "Store", "Items.Product", "DeliveryUser"}
	HydrateForStore    = Hydration{"Customer", "Items.Product"}
	HydrateForCustomer = Hydration{"Store", "Items.Product"}
)

func (h Hydration) apply(db *gorm.DB) *gorm.DB {
	db = db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
	for _, assoc := range h {
		db = db.Preload(assoc)
	}
	return db
}

// StoreProducts loads the products of storeID whose ids are in ids, in one query.
func (r *GormRepo) StoreProducts(ctx context.Context, storeID string, ids []string) ([]models.Product, error) {
	var prods []models.Product
	if err := r.DB.WithContext(ctx).
		Where("store_id = ? AND id IN ?", storeID, ids).
		Find(&prods).Error; err != nil {
		return nil, err
	}
	return prods, nil
}

// CreateOrder writes the order and its items in a single transaction.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return translate(err)
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
			order.Items[i].Position = i
		}
		if err := tx.Omit(clause.Associations).Create(&order.Items).Error; err != nil {
			return translate(err)
		}
		return nil
	})
}

func (r *GormRepo) OrderByID(ctx context.Context, id string, h Hydration) (*models.Order, error) {
	var order models.Order
	if err := h.apply(r.DB.WithContext(ctx)).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *GormRepo) OrdersByStore(ctx context.Context, storeID string) ([]models.Order, error) {
	return r.listOrders(ctx, "store_id = ?", storeID, HydrateForStore)
}

func (r *GormRepo) OrdersByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	return r.listOrders(ctx, "customer_id = ?", customerID, HydrateForCustomer)
}

func (r *GormRepo) listOrders(ctx context.Context, where string, arg string, h Hydration) ([]models.Order, error) {
	orders := []models.Order{}
	if err := h.apply(r.DB.WithContext(ctx)).
		Where(where, arg).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	return r.updateOrder(ctx, id, "status", status)
}

func (r *GormRepo) SetDeliveryUser(ctx context.Context, id, deliveryUserID string) error {
	return r.updateOrder(ctx, id, "delivery_user_id", deliveryUserID)
}

func (r *GormRepo) updateOrder(ctx context.Context, id, column string, value any) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
