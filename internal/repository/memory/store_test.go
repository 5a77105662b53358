package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
	"github.com/cloud-wave-best-zizon/order-service/internal/inventory"
)

var (
	storeA = domain.StoreScope{StoreID: "store-a"}
	storeB = domain.StoreScope{StoreID: "store-b"}
)

func seedProduct(t *testing.T, s *Store, scope domain.StoreScope, id string, stock int) {
	t.Helper()
	require.NoError(t, s.CreateProduct(context.Background(), scope, &domain.Product{
		ProductID: id,
		Stock:     stock,
		SpecificationValues: map[string]domain.SpecificationValue{
			domain.SpecKey("size", "l"): {SpecificationID: "size", ValueID: "l", Quantity: 4},
		},
	}))
}

func TestStore_ProductsAreStoreScoped(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedProduct(t, s, storeA, "p1", 10)

	_, err := s.GetProduct(ctx, storeB, "p1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = s.CreateProduct(ctx, storeA, &domain.Product{ProductID: "p1"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestStore_GetProductReturnsCopy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedProduct(t, s, storeA, "p1", 10)

	p, err := s.GetProduct(ctx, storeA, "p1")
	require.NoError(t, err)
	p.Stock = 0

	again, err := s.GetProduct(ctx, storeA, "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, again.Stock)
}

func TestStore_CreateOrderIsAllOrNothing(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedProduct(t, s, storeA, "p1", 10)
	seedProduct(t, s, storeA, "p2", 1)

	order := &domain.Order{OrderID: "o1", Status: domain.OrderPending}
	err := s.CreateOrder(ctx, storeA, order, []inventory.Debit{
		{ProductID: "p1", Quantity: 2, Specs: map[string]int{domain.SpecKey("size", "l"): 2}},
		{ProductID: "p2", Quantity: 5, Specs: map[string]int{}},
	})
	assert.True(t, apperr.Is(err, apperr.KindInsufficientGeneralStock))

	p1, _ := s.GetProduct(ctx, storeA, "p1")
	assert.Equal(t, 10, p1.Stock)
	assert.Equal(t, 4, p1.SpecificationValues[domain.SpecKey("size", "l")].Quantity)

	_, err = s.GetOrder(ctx, storeA, "o1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestStore_CancelOrderRequiresExpectedStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedProduct(t, s, storeA, "p1", 10)

	debits := []inventory.Debit{{ProductID: "p1", Quantity: 3, Specs: map[string]int{domain.SpecKey("size", "l"): 3}}}
	require.NoError(t, s.CreateOrder(ctx, storeA, &domain.Order{OrderID: "o1", Status: domain.OrderPending}, debits))
	require.NoError(t, s.UpdateStatus(ctx, storeA, "o1", domain.OrderPending, domain.OrderConfirmed))

	err := s.CancelOrder(ctx, storeA, "o1", domain.OrderPending, "stale", debits)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	require.NoError(t, s.CancelOrder(ctx, storeA, "o1", domain.OrderConfirmed, "changed mind", debits))
	p1, _ := s.GetProduct(ctx, storeA, "p1")
	assert.Equal(t, 10, p1.Stock)
	assert.Equal(t, 4, p1.SpecificationValues[domain.SpecKey("size", "l")].Quantity)

	o, _ := s.GetOrder(ctx, storeA, "o1")
	assert.Equal(t, domain.OrderCancelled, o.Status)
	assert.Equal(t, "changed mind", o.CancelReason)
}

func TestStore_ReassignGuestOrders(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.CreateOrder(ctx, storeA, &domain.Order{OrderID: "o1", GuestID: "g1"}, nil))
	require.NoError(t, s.CreateOrder(ctx, storeA, &domain.Order{OrderID: "o2", GuestID: "g1"}, nil))
	require.NoError(t, s.CreateOrder(ctx, storeB, &domain.Order{OrderID: "o3", GuestID: "g1"}, nil))

	n, err := s.ReassignGuestOrders(ctx, storeA, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	byUser, _ := s.ListOrdersByUser(ctx, storeA, "u1")
	assert.Len(t, byUser, 2)
	byGuest, _ := s.ListOrdersByGuest(ctx, storeB, "g1")
	assert.Len(t, byGuest, 1)
}

func TestStore_SequencePerStore(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	a1, _ := s.NextOrderSequence(ctx, storeA)
	a2, _ := s.NextOrderSequence(ctx, storeA)
	b1, _ := s.NextOrderSequence(ctx, storeB)

	assert.Equal(t, int64(1), a1)
	assert.Equal(t, int64(2), a2)
	assert.Equal(t, int64(1), b1)
}

func TestStore_WholesalerLookupByEmailIgnoresCase(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.CreateWholesaler(ctx, storeA, &domain.Wholesaler{WholesalerID: "w1", UserID: "u1", Email: "shop@example.com"}))

	w, err := s.FindWholesalerByEmail(ctx, storeA, " Shop@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "w1", w.WholesalerID)

	_, err = s.FindWholesalerByUser(ctx, storeB, "u1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
