package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
	"github.com/cloud-wave-best-zizon/order-service/internal/inventory"
)

type ProductService struct {
	productRepo ProductRepository
	logger      *zap.Logger
	now         func() time.Time
}

func NewProductService(productRepo ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, scope domain.StoreScope, req domain.CreateProductRequest) (*domain.Product, error) {
	if req.Stock < 0 || req.Price < 0 || req.CompareAtPrice < 0 {
		return nil, apperr.Validation("price, compare price and stock must not be negative")
	}

	now := s.now().UTC()
	product := &domain.Product{
		ProductID:           req.ProductID,
		StoreID:             scope.StoreID,
		Name:                req.Name,
		Price:               req.Price,
		CompareAtPrice:      req.CompareAtPrice,
		Stock:               req.Stock,
		SpecificationValues: make(map[string]domain.SpecificationValue, len(req.SpecificationValues)),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	for _, in := range req.SpecificationValues {
		if in.Quantity < 0 {
			return nil, apperr.Validation("quantity of specification %s (value %s) must not be negative", in.SpecificationID, in.ValueID)
		}
		v := domain.SpecificationValue{
			SpecificationID: in.SpecificationID,
			ValueID:         in.ValueID,
			Value:           in.Value,
			Title:           in.Title,
			Quantity:        in.Quantity,
			Price:           in.Price,
		}
		if _, dup := product.SpecificationValues[v.Key()]; dup {
			return nil, apperr.Validation("specification %s (value %s) listed twice", in.SpecificationID, in.ValueID)
		}
		product.SpecificationValues[v.Key()] = v
	}

	if err := s.productRepo.CreateProduct(ctx, scope, product); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, err
		}
		s.logger.Error("Failed to save product",
			zap.String("store_id", scope.StoreID),
			zap.String("product_id", product.ProductID),
			zap.Error(err))
		return nil, asPersistence(err)
	}

	s.logger.Info("Product created successfully",
		zap.String("store_id", scope.StoreID),
		zap.String("product_id", product.ProductID),
		zap.Int("initial_stock", product.Stock),
		zap.Int("specification_pools", len(product.SpecificationValues)))

	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, scope domain.StoreScope, productID string) (*domain.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, scope, productID)
	if err != nil {
		return nil, asPersistence(err)
	}
	return product, nil
}

// Restock adds to the general stock and to named specification pools.
func (s *ProductService) Restock(ctx context.Context, scope domain.StoreScope, productID string, req domain.RestockRequest) (*domain.Product, error) {
	if req.Stock < 0 {
		return nil, apperr.Validation("stock to add must not be negative")
	}
	if req.Stock == 0 && len(req.Specifications) == 0 {
		return nil, apperr.Validation("nothing to restock")
	}

	product, err := s.productRepo.GetProduct(ctx, scope, productID)
	if err != nil {
		return nil, asPersistence(err)
	}

	credit := inventory.Debit{ProductID: productID, Quantity: req.Stock, Specs: map[string]int{}}
	for _, sp := range req.Specifications {
		if sp.Quantity <= 0 {
			return nil, apperr.Validation("restock quantity for specification %s (value %s) must be positive", sp.SpecificationID, sp.ValueID)
		}
		if _, ok := product.SpecificationValue(sp.SpecificationID, sp.ValueID); !ok {
			return nil, apperr.SpecificationNotFound(productID, sp.SpecificationID, sp.ValueID)
		}
		credit.Specs[domain.SpecKey(sp.SpecificationID, sp.ValueID)] += sp.Quantity
	}

	updated, err := s.productRepo.Restock(ctx, scope, credit)
	if err != nil {
		s.logger.Error("Failed to restock product",
			zap.String("store_id", scope.StoreID),
			zap.String("product_id", productID),
			zap.Error(err))
		return nil, asPersistence(err)
	}

	s.logger.Info("Product restocked",
		zap.String("store_id", scope.StoreID),
		zap.String("product_id", productID),
		zap.Int("previous_stock", product.Stock),
		zap.Int("added", req.Stock),
		zap.Int("new_stock", updated.Stock))

	return updated, nil
}

// asPersistence keeps typed errors and hides everything else behind a storage failure.
func asPersistence(err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Persistence(err)
}
