package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
	"github.com/cloud-wave-best-zizon/order-service/internal/repository/memory"
)

func TestWholesalerService_RegisterAndUpdate(t *testing.T) {
	svc := NewWholesalerService(memory.NewStore(), zap.NewNop())
	ctx := context.Background()

	w, err := svc.Register(ctx, testScope, domain.CreateWholesalerRequest{UserID: "u1", Email: " Shop@Example.com", Discount: 0.2})
	require.NoError(t, err)
	assert.Equal(t, domain.WholesalerInactive, w.Status)
	assert.Equal(t, "shop@example.com", w.Email)
	assert.False(t, w.Eligible())

	_, err = svc.Register(ctx, testScope, domain.CreateWholesalerRequest{UserID: "u1", Email: "other@example.com"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	active := domain.WholesalerActive
	verified := true
	updated, err := svc.Update(ctx, testScope, w.WholesalerID, domain.UpdateWholesalerRequest{Status: &active, IsVerified: &verified})
	require.NoError(t, err)
	assert.True(t, updated.Eligible())
	assert.Equal(t, 0.2, updated.Discount)

	tooMuch := 1.5
	_, err = svc.Update(ctx, testScope, w.WholesalerID, domain.UpdateWholesalerRequest{Discount: &tooMuch})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestWholesalerService_RegisterValidatesDiscount(t *testing.T) {
	svc := NewWholesalerService(memory.NewStore(), zap.NewNop())

	_, err := svc.Register(context.Background(), testScope, domain.CreateWholesalerRequest{UserID: "u1", Email: "a@b.c", Discount: -0.1})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestWholesalerService_FindEligible(t *testing.T) {
	store := memory.NewStore()
	svc := NewWholesalerService(store, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Register(ctx, testScope, domain.CreateWholesalerRequest{
		UserID: "u-active", Email: "active@example.com", Status: domain.WholesalerActive, IsVerified: true, Discount: 0.1,
	})
	require.NoError(t, err)
	_, err = svc.Register(ctx, testScope, domain.CreateWholesalerRequest{
		UserID: "u-pending", Email: "pending@example.com", Status: domain.WholesalerActive, Discount: 0.1,
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		scope domain.StoreScope
		buyer domain.Buyer
		found bool
	}{
		{"by user", testScope, domain.Buyer{UserID: "u-active"}, true},
		{"by email", testScope, domain.Buyer{UserID: "someone", Email: "ACTIVE@example.com"}, true},
		{"unverified", testScope, domain.Buyer{UserID: "u-pending"}, false},
		{"guest with wholesaler email", testScope, domain.Buyer{GuestID: "g", Email: "active@example.com"}, false},
		{"other store", domain.StoreScope{StoreID: "other"}, domain.Buyer{UserID: "u-active"}, false},
		{"unknown", testScope, domain.Buyer{UserID: "nobody", Email: "nobody@example.com"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := svc.FindEligible(ctx, tt.scope, tt.buyer)
			require.NoError(t, err)
			assert.Equal(t, tt.found, w != nil)
		})
	}
}
