package service

import (
	"context"

	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
	"github.com/cloud-wave-best-zizon/order-service/internal/inventory"
)

// Repositories report missing records as apperr KindNotFound, duplicate
// records as KindConflict and lost conditional writes on stock as one of the
// insufficient-stock kinds. Anything else is treated as a storage failure.

type ProductRepository interface {
	CreateProduct(ctx context.Context, scope domain.StoreScope, product *domain.Product) error
	GetProduct(ctx context.Context, scope domain.StoreScope, productID string) (*domain.Product, error)
	// Restock credits the movement to an existing product and returns the result.
	Restock(ctx context.Context, scope domain.StoreScope, credit inventory.Debit) (*domain.Product, error)
}

type WholesalerRepository interface {
	CreateWholesaler(ctx context.Context, scope domain.StoreScope, w *domain.Wholesaler) error
	GetWholesaler(ctx context.Context, scope domain.StoreScope, wholesalerID string) (*domain.Wholesaler, error)
	UpdateWholesaler(ctx context.Context, scope domain.StoreScope, w *domain.Wholesaler) error
	FindWholesalerByUser(ctx context.Context, scope domain.StoreScope, userID string) (*domain.Wholesaler, error)
	FindWholesalerByEmail(ctx context.Context, scope domain.StoreScope, email string) (*domain.Wholesaler, error)
}

type OrderRepository interface {
	// CreateOrder persists the order and applies every debit in one atomic
	// step. Each debit only lands if the pools still cover it.
	CreateOrder(ctx context.Context, scope domain.StoreScope, order *domain.Order, debits []inventory.Debit) error
	GetOrder(ctx context.Context, scope domain.StoreScope, orderID string) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, scope domain.StoreScope, userID string) ([]domain.Order, error)
	ListOrdersByGuest(ctx context.Context, scope domain.StoreScope, guestID string) ([]domain.Order, error)
	// UpdateStatus moves the order only if its status is still from.
	UpdateStatus(ctx context.Context, scope domain.StoreScope, orderID string, from, to domain.OrderStatus) error
	// CancelOrder marks the order cancelled and credits the stock back in one step.
	CancelOrder(ctx context.Context, scope domain.StoreScope, orderID string, from domain.OrderStatus, reason string, credits []inventory.Debit) error
	ReassignGuestOrders(ctx context.Context, scope domain.StoreScope, guestID, userID string) (int, error)
}

// OrderNumberSequence hands out per-store increasing sequence numbers.
type OrderNumberSequence interface {
	NextOrderSequence(ctx context.Context, scope domain.StoreScope) (int64, error)
}

type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishOrderCancelled(ctx context.Context, order *domain.Order) error
	PublishStockLow(ctx context.Context, alert StockAlert) error
}

type StockAlert struct {
	StoreID         string
	ProductID       string
	SpecificationID string
	ValueID         string
	Remaining       int
}
