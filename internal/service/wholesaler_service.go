package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
)

type WholesalerService struct {
	wholesalerRepo WholesalerRepository
	logger         *zap.Logger
	now            func() time.Time
}

func NewWholesalerService(wholesalerRepo WholesalerRepository, logger *zap.Logger) *WholesalerService {
	return &WholesalerService{
		wholesalerRepo: wholesalerRepo,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *WholesalerService) Register(ctx context.Context, scope domain.StoreScope, req domain.CreateWholesalerRequest) (*domain.Wholesaler, error) {
	if req.Discount < 0 || req.Discount > 1 {
		return nil, apperr.Validation("discount must be between 0 and 1")
	}
	status := req.Status
	if status == "" {
		status = domain.WholesalerInactive
	}
	if !status.Valid() {
		return nil, apperr.Validation("unknown wholesaler status %q", status)
	}

	if existing, err := s.wholesalerRepo.FindWholesalerByUser(ctx, scope, req.UserID); err == nil && existing != nil {
		return nil, apperr.Conflict("user %s is already a wholesaler in this store", req.UserID)
	} else if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return nil, asPersistence(err)
	}

	now := s.now().UTC()
	w := &domain.Wholesaler{
		WholesalerID: uuid.NewString(),
		StoreID:      scope.StoreID,
		UserID:       req.UserID,
		Email:        domain.NormalizeEmail(req.Email),
		BusinessName: req.BusinessName,
		Status:       status,
		IsVerified:   req.IsVerified,
		Discount:     req.Discount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.wholesalerRepo.CreateWholesaler(ctx, scope, w); err != nil {
		return nil, asPersistence(err)
	}

	s.logger.Info("Wholesaler registered",
		zap.String("store_id", scope.StoreID),
		zap.String("wholesaler_id", w.WholesalerID),
		zap.String("user_id", w.UserID),
		zap.Bool("eligible", w.Eligible()))
	return w, nil
}

func (s *WholesalerService) Get(ctx context.Context, scope domain.StoreScope, wholesalerID string) (*domain.Wholesaler, error) {
	w, err := s.wholesalerRepo.GetWholesaler(ctx, scope, wholesalerID)
	if err != nil {
		return nil, asPersistence(err)
	}
	return w, nil
}

func (s *WholesalerService) Update(ctx context.Context, scope domain.StoreScope, wholesalerID string, req domain.UpdateWholesalerRequest) (*domain.Wholesaler, error) {
	w, err := s.wholesalerRepo.GetWholesaler(ctx, scope, wholesalerID)
	if err != nil {
		return nil, asPersistence(err)
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperr.Validation("unknown wholesaler status %q", *req.Status)
		}
		w.Status = *req.Status
	}
	if req.IsVerified != nil {
		w.IsVerified = *req.IsVerified
	}
	if req.Discount != nil {
		if *req.Discount < 0 || *req.Discount > 1 {
			return nil, apperr.Validation("discount must be between 0 and 1")
		}
		w.Discount = *req.Discount
	}
	if req.BusinessName != nil {
		w.BusinessName = *req.BusinessName
	}
	w.UpdatedAt = s.now().UTC()

	if err := s.wholesalerRepo.UpdateWholesaler(ctx, scope, w); err != nil {
		return nil, asPersistence(err)
	}

	s.logger.Info("Wholesaler updated",
		zap.String("store_id", scope.StoreID),
		zap.String("wholesaler_id", w.WholesalerID),
		zap.String("status", string(w.Status)),
		zap.Bool("verified", w.IsVerified),
		zap.Float64("discount", w.Discount))
	return w, nil
}

// FindEligible returns the buyer's wholesaler record if it grants discounted
// pricing, looking up by user id first and then by email. Guests always pay
// regular prices. A miss is not an error.
func (s *WholesalerService) FindEligible(ctx context.Context, scope domain.StoreScope, buyer domain.Buyer) (*domain.Wholesaler, error) {
	if buyer.UserID == "" {
		return nil, nil
	}

	w, err := s.wholesalerRepo.FindWholesalerByUser(ctx, scope, buyer.UserID)
	switch {
	case err == nil && w.Eligible():
		return w, nil
	case err != nil && !apperr.Is(err, apperr.KindNotFound):
		return nil, asPersistence(err)
	}

	if email := domain.NormalizeEmail(buyer.Email); email != "" {
		w, err := s.wholesalerRepo.FindWholesalerByEmail(ctx, scope, email)
		switch {
		case err == nil && w.Eligible():
			return w, nil
		case err != nil && !apperr.Is(err, apperr.KindNotFound):
			return nil, asPersistence(err)
		}
	}

	return nil, nil
}
