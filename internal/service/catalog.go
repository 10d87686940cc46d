package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/delivery_orders/internal/logging"
	"github.com/Skotchmaster/delivery_orders/internal/models"
	"github.com/Skotchmaster/delivery_orders/internal/repo"
	"github.com/Skotchmaster/delivery_orders/internal/tokens"
	"github.com/Skotchmaster/delivery_orders/internal/util"
	"github.com/shopspring/decimal"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  ProductIndex
	Events EventPublisher
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
}

type ProductPage struct {
	Data []models.Product `json:"data"`
	Meta util.Meta        `json:"meta"`
}

func canManageStores(caller tokens.Identity) bool {
	return caller.Role == string(models.RoleStoreOwner) || caller.Role == string(models.RoleAdmin)
}

func (s *CatalogService) CreateStore(ctx context.Context, caller tokens.Identity, name, address string) (*models.Store, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_store")

	if !canManageStores(caller) {
		l.Warn("store_create_failed", "status", 403, "reason", "role cannot own stores", "role", caller.Role)
		return nil, fmt.Errorf("%w: only store owners can create stores", ErrForbidden)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}

	store := &models.Store{Name: name, Address: address, OwnerID: caller.UserID}
	if err := s.Repo.CreateStore(ctx, store); err != nil {
		l.Error("store_create_failed", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, store.ID, "store_created", store)
	l.Info("store_create_success", "store_id", store.ID)
	return store, nil
}

// ownedStore loads the store and checks the caller may change its catalog.
func (s *CatalogService) ownedStore(ctx context.Context, caller tokens.Identity, storeID string) (*models.Store, error) {
	store, err := s.Repo.StoreByID(ctx, storeID)
	if err != nil {
		return nil, notFound(err, "store")
	}
	if caller.Role != string(models.RoleAdmin) && store.OwnerID != caller.UserID {
		return nil, fmt.Errorf("%w: store belongs to another owner", ErrForbidden)
	}
	return store, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, caller tokens.Identity, storeID string, in CreateProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product", "store_id", storeID)

	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if _, err := s.ownedStore(ctx, caller, storeID); err != nil {
		l.Warn("product_create_failed", "reason", "store check failed", "error", err)
		return nil, err
	}

	prod := &models.Product{
		StoreID:     storeID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		l.Error("product_create_failed", "status", 500, "error", err)
		return nil, err
	}

	s.index(ctx, prod)
	publish(ctx, s.Events, prod.ID, "product_created", prod)
	l.Info("product_create_success", "product_id", prod.ID)
	return prod, nil
}

// UpdatePrice changes the live price. Existing orders keep the price they
// were placed with.
func (s *CatalogService) UpdatePrice(ctx context.Context, caller tokens.Identity, productID string, price decimal.Decimal) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_price", "product_id", productID)

	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}

	prod, err := s.Repo.ProductByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, "product")
	}
	if _, err := s.ownedStore(ctx, caller, prod.StoreID); err != nil {
		l.Warn("update_price_failed", "reason", "store check failed", "error", err)
		return nil, err
	}

	prod, err = s.Repo.UpdateProductPrice(ctx, productID, price)
	if err != nil {
		l.Error("update_price_failed", "status", 500, "error", err)
		return nil, notFound(err, "product")
	}

	s.index(ctx, prod)
	publish(ctx, s.Events, prod.ID, "product_price_updated", prod)
	l.Info("update_price_success", "price", prod.Price.String())
	return prod, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	prod, err := s.Repo.ProductByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return prod, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, storeID string, page, size int) (*ProductPage, error) {
	offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.ProductsByStore(ctx, storeID, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Data: items, Meta: util.NewMeta(page, offset, limit, total)}, nil
}

// Search asks the search index first and falls back to SQL when the index is
// absent or failing.
func (s *CatalogService) Search(ctx context.Context, q string, page, size int) (*ProductPage, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: query required", ErrValidation)
	}
	offset, limit := util.Calculate(page, size)

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			return &ProductPage{Data: items, Meta: util.NewMeta(page, offset, limit, total)}, nil
		}
		l.Warn("search_index_failed", "reason", "falling back to sql", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, q, offset, limit)
	if err != nil {
		l.Error("search_failed", "status", 500, "error", err)
		return nil, err
	}
	return &ProductPage{Data: items, Meta: util.NewMeta(page, offset, limit, total)}, nil
}

func (s *CatalogService) index(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Put(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("product_index_failed", "product_id", p.ID, "error", err)
	}
}
