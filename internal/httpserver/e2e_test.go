package httpserver

import (
	"net/http"
	"testing"

	"github.com/Skotchmaster/delivery_orders/internal/models"
	"github.com/Skotchmaster/delivery_orders/internal/service"
	"github.com/Skotchmaster/delivery_orders/internal/testenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderLifecycle(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(http.MethodPost, "/auth/register", "", map[string]any{
		"name": "Alice", "email": "alice@example.com", "phone": "+1555", "password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, code, string(body))
	var reg service.AuthResult
	s.decode(body, &reg)
	assert.Equal(t, "customer", reg.User.Role)
	assert.NotContains(t, string(body), "password")

	code, body = s.do(http.MethodPost, "/auth/login", "", map[string]any{
		"email": "alice@example.com", "password": "Secret123",
	})
	require.Equal(t, http.StatusOK, code, string(body))
	var login service.AuthResult
	s.decode(body, &login)
	assert.Equal(t, reg.User, login.User)

	owner := testenv.CreateUser(t, s.DB, "owner@example.com", models.RoleStoreOwner)
	store := testenv.CreateStore(t, s.DB, owner.ID, "S")
	p10 := testenv.CreateProduct(t, s.DB, store.ID, "Burger", "10.00")
	p5 := testenv.CreateProduct(t, s.DB, store.ID, "Fries", "5.00")

	storeConn := s.join("store_" + store.ID)

	code, body = s.do(http.MethodPost, "/orders", login.AccessToken, map[string]any{
		"store_id": store.ID,
		"address":  "Main st 1",
		"items": []map[string]any{
			{"product_id": p10.ID, "quantity": 2},
			{"product_id": p5.ID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, code, string(body))
	var created models.Order
	s.decode(body, &created)
	assert.True(t, created.Total.Equal(decimal.NewFromInt(25)), "total %s", created.Total)
	assert.Equal(t, reg.User.ID, created.CustomerID)

	f := s.read(storeConn)
	require.Equal(t, "new_order", f.Event)
	var announced models.Order
	s.decode(f.Data, &announced)
	assert.Equal(t, created.ID, announced.ID)
	assert.True(t, announced.Total.Equal(decimal.NewFromInt(25)))

	orderConn := s.join("order_" + created.ID)

	code, body = s.do(http.MethodPatch, "/orders/"+created.ID+"/status", login.AccessToken, map[string]any{"status": "delivered"})
	require.Equal(t, http.StatusOK, code, string(body))
	var updated models.Order
	s.decode(body, &updated)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)

	f = s.read(orderConn)
	require.Equal(t, "order_updated", f.Event)
	var pushed models.Order
	s.decode(f.Data, &pushed)
	assert.Equal(t, created.ID, pushed.ID)
	assert.Equal(t, models.OrderStatusDelivered, pushed.Status)

	code, body = s.do(http.MethodGet, "/orders/my", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	var mine []models.Order
	s.decode(body, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)
}
