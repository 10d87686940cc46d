// Package testenv builds throwaway sqlite databases and fixtures for tests.
package testenv

import (
	"context"
	"testing"

	"github.com/Skotchmaster/delivery_orders/internal/hash"
	"github.com/Skotchmaster/delivery_orders/internal/models"
	"github.com/Skotchmaster/delivery_orders/pkg/db"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb, models.All()...); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

// Password is the plaintext password of every user made by CreateUser.
const Password = "password123"

func CreateUser(t *testing.T, gdb *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	pw, err := hash.HashPassword(Password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &models.User{
		Name:         "user " + email,
		Email:        email,
		Phone:        "+10000000000",
		PasswordHash: pw,
		Role:         role,
	}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func CreateStore(t *testing.T, gdb *gorm.DB, ownerID, name string) *models.Store {
	t.Helper()
	s := &models.Store{Name: name, Address: "1 Market St", OwnerID: ownerID}
	if err := gdb.Create(s).Error; err != nil {
		t.Fatalf("create store: %v", err)
	}
	return s
}

func CreateProduct(t *testing.T, gdb *gorm.DB, storeID, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		StoreID:     storeID,
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
	}
	if err := gdb.Create(p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}
