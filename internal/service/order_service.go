package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
	"github.com/cloud-wave-best-zizon/order-service/internal/inventory"
	"github.com/cloud-wave-best-zizon/order-service/internal/pricing"
)

// MaxProductsPerOrder keeps an order and its stock debits inside a single
// storage transaction.
const MaxProductsPerOrder = 99

// WholesalerResolver finds the wholesaler record that prices a buyer's order.
type WholesalerResolver interface {
	FindEligible(ctx context.Context, scope domain.StoreScope, buyer domain.Buyer) (*domain.Wholesaler, error)
}

type OrderService struct {
	productRepo       ProductRepository
	orderRepo         OrderRepository
	wholesalers       WholesalerResolver
	sequence          OrderNumberSequence
	publisher         EventPublisher
	logger            *zap.Logger
	lowStockThreshold int
	now               func() time.Time
}

type OrderServiceOption func(*OrderService)

func WithEventPublisher(p EventPublisher) OrderServiceOption {
	return func(s *OrderService) { s.publisher = p }
}

// WithLowStockThreshold publishes a stock alert whenever an order leaves a
// pool at or below n units. Zero disables alerts.
func WithLowStockThreshold(n int) OrderServiceOption {
	return func(s *OrderService) { s.lowStockThreshold = n }
}

func WithClock(now func() time.Time) OrderServiceOption {
	return func(s *OrderService) { s.now = now }
}

func NewOrderService(
	productRepo ProductRepository,
	orderRepo OrderRepository,
	wholesalers WholesalerResolver,
	sequence OrderNumberSequence,
	logger *zap.Logger,
	opts ...OrderServiceOption,
) *OrderService {
	s := &OrderService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		wholesalers: wholesalers,
		sequence:    sequence,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder prices the cart, checks every line against both stock pools and
// persists the order together with the stock debits. Any failing line rejects
// the whole order before stock is touched.
func (s *OrderService) CreateOrder(ctx context.Context, scope domain.StoreScope, req domain.CreateOrderRequest) (*domain.Order, error) {
	buyer := req.Buyer()
	if buyer.UserID == "" && buyer.GuestID == "" {
		return nil, apperr.Validation("either user or guestId is required")
	}
	cart := req.Lines()
	if err := validateCart(cart); err != nil {
		return nil, err
	}
	if req.ShippingInfo.Cost < 0 {
		return nil, apperr.Validation("shipping cost must not be negative")
	}

	wholesaler, err := s.wholesalers.FindEligible(ctx, scope, buyer)
	if err != nil {
		return nil, err
	}

	products, err := s.loadProducts(ctx, scope, cart)
	if err != nil {
		return nil, err
	}

	// 전체 검증 후에만 재고 차감
	for _, line := range cart {
		if err := inventory.ValidateLine(products[line.ProductID], line.Quantity, line.SelectedSpecifications); err != nil {
			s.logRejected(scope, line.ProductID, err)
			return nil, err
		}
	}
	debits := inventory.Aggregate(inventory.LinesFromCart(cart))
	if len(debits) > MaxProductsPerOrder {
		return nil, apperr.Validation("an order may contain at most %d different products", MaxProductsPerOrder)
	}
	for _, d := range debits {
		if err := inventory.CheckDebit(products[d.ProductID], d); err != nil {
			s.logRejected(scope, d.ProductID, err)
			return nil, err
		}
	}

	eligibility := pricing.EligibilityFor(wholesaler)
	lines, breakdown, err := priceCart(eligibility, products, cart, req.ShippingInfo.Cost)
	if err != nil {
		return nil, err
	}

	seq, err := s.sequence.NextOrderSequence(ctx, scope)
	if err != nil {
		s.logger.Error("Failed to allocate order number", zap.String("store_id", scope.StoreID), zap.Error(err))
		return nil, asPersistence(err)
	}

	now := s.now().UTC()
	order := &domain.Order{
		OrderID:         uuid.NewString(),
		StoreID:         scope.StoreID,
		OrderNumber:     fmt.Sprintf("ORD-%d-%06d", now.Year(), seq),
		UserID:          buyer.UserID,
		GuestID:         buyer.GuestID,
		Lines:           lines,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentInfo:     req.PaymentInfo,
		ShippingInfo:    req.ShippingInfo,
		Pricing:         breakdown.Pricing(req.Currency),
		IsWholesale:     eligibility.Applied,
		Status:          domain.OrderPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if order.UserID != "" {
		order.GuestID = ""
	}

	if err := s.orderRepo.CreateOrder(ctx, scope, order, debits); err != nil {
		if e, ok := apperr.As(err); ok && e.IsStock() {
			// 동시 주문에 밀린 경우
			err = s.explainStockConflict(ctx, scope, e, debits)
			s.logRejected(scope, e.ProductID, err)
			return nil, err
		}
		s.logger.Error("Failed to persist order",
			zap.String("store_id", scope.StoreID),
			zap.String("order_id", order.OrderID),
			zap.Error(err))
		return nil, asPersistence(err)
	}

	s.logger.Info("Order created successfully",
		zap.String("store_id", scope.StoreID),
		zap.String("order_id", order.OrderID),
		zap.String("order_number", order.OrderNumber),
		zap.Int("items_count", len(order.Lines)),
		zap.Bool("wholesale", order.IsWholesale),
		zap.Float64("total", order.Pricing.Total))

	s.publishCreated(ctx, order, products, debits)
	return order, nil
}

// Quote prices a cart for display. Stock is neither checked nor touched.
func (s *OrderService) Quote(ctx context.Context, scope domain.StoreScope, req domain.QuoteRequest) (*domain.Quote, error) {
	if err := validateCart(req.CartItems); err != nil {
		return nil, err
	}
	if req.ShippingInfo.Cost < 0 {
		return nil, apperr.Validation("shipping cost must not be negative")
	}

	wholesaler, err := s.wholesalers.FindEligible(ctx, scope, req.Buyer())
	if err != nil {
		return nil, err
	}
	products, err := s.loadProducts(ctx, scope, req.CartItems)
	if err != nil {
		return nil, err
	}

	eligibility := pricing.EligibilityFor(wholesaler)
	lines, breakdown, err := priceCart(eligibility, products, req.CartItems, req.ShippingInfo.Cost)
	if err != nil {
		return nil, err
	}
	return &domain.Quote{
		Lines:       lines,
		Pricing:     breakdown.Pricing(req.Currency),
		IsWholesale: eligibility.Applied,
	}, nil
}

func (s *OrderService) GetOrder(ctx context.Context, scope domain.StoreScope, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetOrder(ctx, scope, orderID)
	if err != nil {
		return nil, asPersistence(err)
	}
	return order, nil
}

// ListOrders returns a registered user's or a guest's order history.
func (s *OrderService) ListOrders(ctx context.Context, scope domain.StoreScope, userID, guestID string) ([]domain.Order, error) {
	var (
		orders []domain.Order
		err    error
	)
	switch {
	case userID != "" && guestID != "":
		return nil, apperr.Validation("filter by user or by guestId, not both")
	case userID != "":
		orders, err = s.orderRepo.ListOrdersByUser(ctx, scope, userID)
	case guestID != "":
		orders, err = s.orderRepo.ListOrdersByGuest(ctx, scope, guestID)
	default:
		return nil, apperr.Validation("user or guestId is required")
	}
	if err != nil {
		return nil, asPersistence(err)
	}
	return orders, nil
}

// UpdateStatus moves an order along its lifecycle. Cancelling goes through
// CancelOrder so the stock is credited back.
func (s *OrderService) UpdateStatus(ctx context.Context, scope domain.StoreScope, orderID string, next domain.OrderStatus, reason string) (*domain.Order, error) {
	if !next.Valid() {
		return nil, apperr.Validation("unknown order status %q", next)
	}
	if next == domain.OrderCancelled {
		return s.CancelOrder(ctx, scope, orderID, reason)
	}

	order, err := s.orderRepo.GetOrder(ctx, scope, orderID)
	if err != nil {
		return nil, asPersistence(err)
	}
	if order.Status == next {
		return order, nil
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, apperr.InvalidTransition(string(order.Status), string(next))
	}

	if err := s.orderRepo.UpdateStatus(ctx, scope, orderID, order.Status, next); err != nil {
		return nil, asPersistence(err)
	}

	s.logger.Info("Order status updated",
		zap.String("store_id", scope.StoreID),
		zap.String("order_id", orderID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(next)))

	order.Status = next
	order.UpdatedAt = s.now().UTC()
	return order, nil
}

// CancelOrder cancels an undelivered order and returns its quantities to the
// general stock and to every specification pool it drew from.
func (s *OrderService) CancelOrder(ctx context.Context, scope domain.StoreScope, orderID, reason string) (*domain.Order, error) {
	order, err := s.orderRepo.GetOrder(ctx, scope, orderID)
	if err != nil {
		return nil, asPersistence(err)
	}
	if order.Status == domain.OrderCancelled {
		return order, nil
	}
	if !order.Status.CanTransitionTo(domain.OrderCancelled) {
		return nil, apperr.InvalidTransition(string(order.Status), string(domain.OrderCancelled))
	}

	credits := inventory.Aggregate(inventory.LinesFromOrder(order))
	if err := s.orderRepo.CancelOrder(ctx, scope, orderID, order.Status, reason, credits); err != nil {
		if !apperr.Is(err, apperr.KindConflict) {
			s.logger.Error("Failed to cancel order",
				zap.String("store_id", scope.StoreID),
				zap.String("order_id", orderID),
				zap.Error(err))
		}
		return nil, asPersistence(err)
	}

	s.logger.Info("Order cancelled, stock restored",
		zap.String("store_id", scope.StoreID),
		zap.String("order_id", orderID),
		zap.String("previous_status", string(order.Status)),
		zap.Int("products_restored", len(credits)))

	order.Status = domain.OrderCancelled
	order.CancelReason = reason
	order.UpdatedAt = s.now().UTC()

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCancelled(ctx, order); err != nil {
			s.logger.Warn("Failed to publish order cancelled event", zap.String("order_id", orderID), zap.Error(err))
		}
	}
	return order, nil
}

// MergeGuestOrders hands a guest's order history to a newly registered user.
func (s *OrderService) MergeGuestOrders(ctx context.Context, scope domain.StoreScope, guestID, userID string) (int, error) {
	if guestID == "" || userID == "" {
		return 0, apperr.Validation("guestId and userId are required")
	}
	merged, err := s.orderRepo.ReassignGuestOrders(ctx, scope, guestID, userID)
	if err != nil {
		return 0, asPersistence(err)
	}
	s.logger.Info("Guest orders merged",
		zap.String("store_id", scope.StoreID),
		zap.String("guest_id", guestID),
		zap.String("user_id", userID),
		zap.Int("merged", merged))
	return merged, nil
}

func validateCart(cart []domain.CartLine) error {
	if len(cart) == 0 {
		return apperr.Validation("order must contain at least one item")
	}
	for i, line := range cart {
		if line.ProductID == "" {
			return apperr.Validation("item %d: product is required", i)
		}
		if line.Quantity <= 0 {
			return apperr.Validation("item %d: quantity must be a positive integer", i)
		}
		for _, sel := range line.SelectedSpecifications {
			if sel.SpecificationID == "" || sel.ValueID == "" {
				return apperr.Validation("item %d: specificationId and valueId are required", i)
			}
		}
	}
	return nil
}

// loadProducts fetches each referenced product once.
func (s *OrderService) loadProducts(ctx context.Context, scope domain.StoreScope, cart []domain.CartLine) (map[string]*domain.Product, error) {
	products := make(map[string]*domain.Product, len(cart))
	for _, line := range cart {
		if _, ok := products[line.ProductID]; ok {
			continue
		}
		p, err := s.productRepo.GetProduct(ctx, scope, line.ProductID)
		if err != nil {
			return nil, asPersistence(err)
		}
		products[line.ProductID] = p
	}
	return products, nil
}

func priceCart(e pricing.Eligibility, products map[string]*domain.Product, cart []domain.CartLine, shipping float64) ([]domain.OrderLine, pricing.Breakdown, error) {
	lines := make([]domain.OrderLine, 0, len(cart))
	prices := make([]pricing.LinePrice, 0, len(cart))
	for _, line := range cart {
		p := products[line.ProductID]
		price, err := pricing.ResolveLine(e, p, line.Quantity, line.SelectedSpecifications)
		if err != nil {
			return nil, pricing.Breakdown{}, err
		}
		prices = append(prices, price)
		lines = append(lines, price.OrderLine(p, line.SelectedSpecifications))
	}
	return lines, pricing.Summarize(prices, decimal.NewFromFloat(shipping)), nil
}

// explainStockConflict re-reads the product that lost the conditional write
// so the caller learns which pool ran out and how much is left.
func (s *OrderService) explainStockConflict(ctx context.Context, scope domain.StoreScope, conflict *apperr.Error, debits []inventory.Debit) error {
	for _, d := range debits {
		if d.ProductID != conflict.ProductID {
			continue
		}
		current, err := s.productRepo.GetProduct(ctx, scope, d.ProductID)
		if err != nil {
			return conflict
		}
		if err := inventory.CheckDebit(current, d); err != nil {
			return err
		}
	}
	return conflict
}

func (s *OrderService) logRejected(scope domain.StoreScope, productID string, err error) {
	s.logger.Warn("Order rejected",
		zap.String("store_id", scope.StoreID),
		zap.String("product_id", productID),
		zap.String("reason", apperr.KindOf(err).String()),
		zap.Error(err))
}

func (s *OrderService) publishCreated(ctx context.Context, order *domain.Order, snapshot map[string]*domain.Product, debits []inventory.Debit) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		s.logger.Warn("Failed to publish order created event", zap.String("order_id", order.OrderID), zap.Error(err))
	}
	if s.lowStockThreshold <= 0 {
		return
	}
	for _, alert := range lowStockAlerts(order.StoreID, snapshot, debits, s.lowStockThreshold) {
		if err := s.publisher.PublishStockLow(ctx, alert); err != nil {
			s.logger.Warn("Failed to publish stock alert", zap.String("product_id", alert.ProductID), zap.Error(err))
		}
	}
}

// lowStockAlerts estimates remaining stock from the validated snapshot.
func lowStockAlerts(storeID string, snapshot map[string]*domain.Product, debits []inventory.Debit, threshold int) []StockAlert {
	var alerts []StockAlert
	for _, d := range debits {
		p := snapshot[d.ProductID]
		if remaining := p.Stock - d.Quantity; remaining <= threshold {
			alerts = append(alerts, StockAlert{StoreID: storeID, ProductID: d.ProductID, Remaining: remaining})
		}
		for _, key := range d.SortedSpecKeys() {
			pool := p.SpecificationValues[key]
			if remaining := pool.Quantity - d.Specs[key]; remaining <= threshold {
				alerts = append(alerts, StockAlert{
					StoreID:         storeID,
					ProductID:       d.ProductID,
					SpecificationID: pool.SpecificationID,
					ValueID:         pool.ValueID,
					Remaining:       remaining,
				})
			}
		}
	}
	return alerts
}
