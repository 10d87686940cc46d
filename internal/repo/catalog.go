package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/delivery_orders/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (r *GormRepo) CreateStore(ctx context.Context, s *models.Store) error {
	return translate(r.DB.WithContext(ctx).Create(s).Error)
}

func (r *GormRepo) StoreByID(ctx context.Context, id string) (*models.Store, error) {
	var store models.Store
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&store).Error; err != nil {
		return nil, translate(err)
	}
	return &store, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return translate(r.DB.WithContext(ctx).Create(p).Error)
}

func (r *GormRepo) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&prod).Error; err != nil {
		return nil, translate(err)
	}
	return &prod, nil
}

// UpdateProductPrice changes the live price only; order items keep their copy.
func (r *GormRepo) UpdateProductPrice(ctx context.Context, id string, price decimal.Decimal) (*models.Product, error) {
	prod, err := r.ProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prod.Price = price
	if err := r.DB.WithContext(ctx).Save(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

func (r *GormRepo) ProductsByStore(ctx context.Context, storeID string, offset, limit int) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("store_id = ?", storeID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := []models.Product{}
	if err := q.Order("name ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// SearchProducts is a case-insensitive substring match on name and description.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	where := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Session(&gorm.Session{})

	var total int64
	if err := where.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := []models.Product{}
	if err := where.Order("name ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
