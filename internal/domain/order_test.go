package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderShipped, false},
		{OrderConfirmed, OrderProcessing, true},
		{OrderProcessing, OrderShipped, true},
		{OrderProcessing, OrderDelivered, true},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, true},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
		{OrderConfirmed, OrderPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestCreateOrderRequest_LinesPrefersCartItems(t *testing.T) {
	req := CreateOrderRequest{
		Items:     []CartLine{{ProductID: "a", Quantity: 1}},
		CartItems: []CartLine{{ProductID: "b", Quantity: 2}},
	}
	lines := req.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, "b", lines[0].ProductID)

	req.CartItems = nil
	assert.Equal(t, "a", req.Lines()[0].ProductID)
}

func TestCreateOrderRequest_BuyerEmailFallback(t *testing.T) {
	req := CreateOrderRequest{User: "u-1", ShippingAddress: Address{Email: "ship@example.com"}}
	assert.Equal(t, "ship@example.com", req.Buyer().Email)

	req.Email = "buyer@example.com"
	assert.Equal(t, "buyer@example.com", req.Buyer().Email)
}

func TestWholesaler_Eligible(t *testing.T) {
	var nilWholesaler *Wholesaler
	assert.False(t, nilWholesaler.Eligible())
	assert.True(t, (&Wholesaler{Status: WholesalerActive, IsVerified: true}).Eligible())
	assert.False(t, (&Wholesaler{Status: WholesalerActive}).Eligible())
	assert.False(t, (&Wholesaler{Status: WholesalerInactive, IsVerified: true}).Eligible())
}

func TestNewStoreScope(t *testing.T) {
	_, err := NewStoreScope("  ")
	assert.ErrorIs(t, err, ErrMissingStore)

	scope, err := NewStoreScope(" store-1 ")
	assert.NoError(t, err)
	assert.Equal(t, "store-1", scope.StoreID)
}

func TestProduct_CloneDoesNotShareSpecs(t *testing.T) {
	p := &Product{
		ProductID: "p",
		SpecificationValues: map[string]SpecificationValue{
			SpecKey("size", "l"): {SpecificationID: "size", ValueID: "l", Quantity: 2},
		},
	}
	c := p.Clone()
	v := c.SpecificationValues[SpecKey("size", "l")]
	v.Quantity = 0
	c.SpecificationValues[SpecKey("size", "l")] = v

	assert.Equal(t, 2, p.SpecificationValues[SpecKey("size", "l")].Quantity)
}
