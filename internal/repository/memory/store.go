// Package memory keeps products, wholesalers and orders in process memory.
// It backs LOCAL_MODE and the service tests, with the same atomicity as the
// DynamoDB store: one mutex spans check and debit.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
	"github.com/cloud-wave-best-zizon/order-service/internal/inventory"
)

type key struct {
	store string
	id    string
}

type Store struct {
	mu          sync.Mutex
	products    map[key]*domain.Product
	wholesalers map[key]*domain.Wholesaler
	orders      map[key]*domain.Order
	sequences   map[string]int64
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		products:    make(map[key]*domain.Product),
		wholesalers: make(map[key]*domain.Wholesaler),
		orders:      make(map[key]*domain.Order),
		sequences:   make(map[string]int64),
		now:         time.Now,
	}
}

func (s *Store) CreateProduct(_ context.Context, scope domain.StoreScope, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{scope.StoreID, product.ProductID}
	if _, exists := s.products[k]; exists {
		return apperr.Conflict("product %s already exists", product.ProductID)
	}
	p := product.Clone()
	p.StoreID = scope.StoreID
	s.products[k] = p
	return nil
}

func (s *Store) GetProduct(_ context.Context, scope domain.StoreScope, productID string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[key{scope.StoreID, productID}]
	if !ok {
		return nil, apperr.NotFound("product %s not found", productID)
	}
	return p.Clone(), nil
}

func (s *Store) Restock(_ context.Context, scope domain.StoreScope, credit inventory.Debit) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[key{scope.StoreID, credit.ProductID}]
	if !ok {
		return nil, apperr.NotFound("product %s not found", credit.ProductID)
	}
	for k := range credit.Specs {
		if _, ok := p.SpecificationValues[k]; !ok {
			return nil, apperr.NotFound("specification %s not found on product %s", k, credit.ProductID)
		}
	}
	inventory.ApplyCredit(p, credit)
	p.UpdatedAt = s.now().UTC()
	return p.Clone(), nil
}

func (s *Store) CreateWholesaler(_ context.Context, scope domain.StoreScope, w *domain.Wholesaler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{scope.StoreID, w.WholesalerID}
	if _, exists := s.wholesalers[k]; exists {
		return apperr.Conflict("wholesaler %s already exists", w.WholesalerID)
	}
	c := *w
	c.StoreID = scope.StoreID
	s.wholesalers[k] = &c
	return nil
}

func (s *Store) GetWholesaler(_ context.Context, scope domain.StoreScope, wholesalerID string) (*domain.Wholesaler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wholesalers[key{scope.StoreID, wholesalerID}]
	if !ok {
		return nil, apperr.NotFound("wholesaler %s not found", wholesalerID)
	}
	c := *w
	return &c, nil
}

func (s *Store) UpdateWholesaler(_ context.Context, scope domain.StoreScope, w *domain.Wholesaler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{scope.StoreID, w.WholesalerID}
	if _, ok := s.wholesalers[k]; !ok {
		return apperr.NotFound("wholesaler %s not found", w.WholesalerID)
	}
	c := *w
	c.StoreID = scope.StoreID
	s.wholesalers[k] = &c
	return nil
}

func (s *Store) FindWholesalerByUser(_ context.Context, scope domain.StoreScope, userID string) (*domain.Wholesaler, error) {
	return s.findWholesaler(scope, func(w *domain.Wholesaler) bool { return w.UserID == userID })
}

func (s *Store) FindWholesalerByEmail(_ context.Context, scope domain.StoreScope, email string) (*domain.Wholesaler, error) {
	email = domain.NormalizeEmail(email)
	return s.findWholesaler(scope, func(w *domain.Wholesaler) bool { return w.Email == email })
}

func (s *Store) findWholesaler(scope domain.StoreScope, match func(*domain.Wholesaler) bool) (*domain.Wholesaler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, w := range s.wholesalers {
		if k.store == scope.StoreID && match(w) {
			c := *w
			return &c, nil
		}
	}
	return nil, apperr.NotFound("wholesaler not found")
}

func (s *Store) CreateOrder(_ context.Context, scope domain.StoreScope, order *domain.Order, debits []inventory.Debit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{scope.StoreID, order.OrderID}
	if _, exists := s.orders[k]; exists {
		return apperr.Conflict("order %s already exists", order.OrderID)
	}

	// 전부 확인한 뒤에만 차감
	for _, d := range debits {
		p, found := s.products[key{scope.StoreID, d.ProductID}]
		if !found {
			return apperr.NotFound("product %s not found", d.ProductID)
		}
		if err := inventory.CheckDebit(p, d); err != nil {
			return err
		}
	}

	now := s.now().UTC()
	for _, d := range debits {
		p := s.products[key{scope.StoreID, d.ProductID}]
		inventory.ApplyDebit(p, d)
		p.UpdatedAt = now
	}
	s.orders[k] = cloneOrder(order)
	return nil
}

func (s *Store) GetOrder(_ context.Context, scope domain.StoreScope, orderID string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[key{scope.StoreID, orderID}]
	if !ok {
		return nil, apperr.NotFound("order %s not found", orderID)
	}
	return cloneOrder(o), nil
}

func (s *Store) ListOrdersByUser(_ context.Context, scope domain.StoreScope, userID string) ([]domain.Order, error) {
	return s.listOrders(scope, func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (s *Store) ListOrdersByGuest(_ context.Context, scope domain.StoreScope, guestID string) ([]domain.Order, error) {
	return s.listOrders(scope, func(o *domain.Order) bool { return o.GuestID == guestID }), nil
}

func (s *Store) listOrders(scope domain.StoreScope, match func(*domain.Order) bool) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := []domain.Order{}
	for k, o := range s.orders {
		if k.store == scope.StoreID && match(o) {
			orders = append(orders, *cloneOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders
}

func (s *Store) UpdateStatus(_ context.Context, scope domain.StoreScope, orderID string, from, to domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[key{scope.StoreID, orderID}]
	if !ok {
		return apperr.NotFound("order %s not found", orderID)
	}
	if o.Status != from {
		return apperr.Conflict("order %s changed status concurrently", orderID)
	}
	o.Status = to
	o.UpdatedAt = s.now().UTC()
	return nil
}

func (s *Store) CancelOrder(_ context.Context, scope domain.StoreScope, orderID string, from domain.OrderStatus, reason string, credits []inventory.Debit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[key{scope.StoreID, orderID}]
	if !ok {
		return apperr.NotFound("order %s not found", orderID)
	}
	if o.Status != from {
		return apperr.Conflict("order %s changed status concurrently", orderID)
	}

	now := s.now().UTC()
	for _, c := range credits {
		// 삭제된 상품은 건너뜀
		if p, found := s.products[key{scope.StoreID, c.ProductID}]; found {
			inventory.ApplyCredit(p, c)
			p.UpdatedAt = now
		}
	}
	o.Status = domain.OrderCancelled
	o.CancelReason = reason
	o.UpdatedAt = now
	return nil
}

func (s *Store) ReassignGuestOrders(_ context.Context, scope domain.StoreScope, guestID, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := 0
	for k, o := range s.orders {
		if k.store == scope.StoreID && o.GuestID == guestID {
			o.UserID = userID
			o.GuestID = ""
			o.UpdatedAt = s.now().UTC()
			merged++
		}
	}
	return merged, nil
}

func (s *Store) NextOrderSequence(_ context.Context, scope domain.StoreScope) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequences[scope.StoreID]++
	return s.sequences[scope.StoreID], nil
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Lines = make([]domain.OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		l.SelectedSpecifications = append([]domain.SelectedSpecification(nil), l.SelectedSpecifications...)
		c.Lines[i] = l
	}
	return &c
}
