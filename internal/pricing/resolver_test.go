package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
)

func verifiedWholesaler(discount float64) *domain.Wholesaler {
	return &domain.Wholesaler{Status: domain.WholesalerActive, IsVerified: true, Discount: discount}
}

func TestResolveLine_WholesalerUsesCompareAtPrice(t *testing.T) {
	p := &domain.Product{ProductID: "p", Price: 100, CompareAtPrice: 120}

	got, err := ResolveLine(EligibilityFor(verifiedWholesaler(0.15)), p, 1, nil)
	require.NoError(t, err)
	assert.True(t, got.Unit.Equal(decimal.NewFromInt(102)), got.Unit.String())
	assert.True(t, got.WholesaleApplied)
	assert.True(t, got.DiscountRate.Equal(decimal.NewFromFloat(0.15)))
}

func TestResolveLine_NonEligibleBuyersPayPrice(t *testing.T) {
	p := &domain.Product{ProductID: "p", Price: 100, CompareAtPrice: 120}

	cases := map[string]*domain.Wholesaler{
		"guest":      nil,
		"unverified": {Status: domain.WholesalerActive, IsVerified: false, Discount: 0.15},
		"inactive":   {Status: domain.WholesalerInactive, IsVerified: true, Discount: 0.15},
	}
	for name, w := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ResolveLine(EligibilityFor(w), p, 1, nil)
			require.NoError(t, err)
			assert.True(t, got.Unit.Equal(decimal.NewFromInt(100)))
			assert.False(t, got.WholesaleApplied)
		})
	}
}

func TestResolveLine_WholesalerLineTotal(t *testing.T) {
	p := &domain.Product{ProductID: "p", Price: 180, CompareAtPrice: 200}

	got, err := ResolveLine(EligibilityFor(verifiedWholesaler(0.10)), p, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, "180", got.Unit.String())
	assert.Equal(t, "540", got.Total.String())
}

func TestResolveLine_WholesalerWithoutCompareAtPrice(t *testing.T) {
	p := &domain.Product{ProductID: "p", Price: 80}

	got, err := ResolveLine(EligibilityFor(verifiedWholesaler(0.25)), p, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, "60", got.Unit.String())
	assert.Equal(t, "120", got.Total.String())
}

func TestResolveLine_AddsSpecificationModifiers(t *testing.T) {
	p := &domain.Product{
		ProductID: "p",
		Price:     100,
		SpecificationValues: map[string]domain.SpecificationValue{
			domain.SpecKey("size", "xl"):   {SpecificationID: "size", ValueID: "xl", Price: 12.5},
			domain.SpecKey("color", "red"): {SpecificationID: "color", ValueID: "red", Price: 2.5},
		},
	}
	specs := []domain.SelectedSpecification{
		{SpecificationID: "size", ValueID: "xl"},
		{SpecificationID: "color", ValueID: "red"},
	}

	got, err := ResolveLine(Regular, p, 2, specs)
	require.NoError(t, err)
	assert.Equal(t, "115", got.Unit.String())
	assert.Equal(t, "230", got.Total.String())
}

func TestResolveLine_UnknownSpecificationIsAnError(t *testing.T) {
	p := &domain.Product{ProductID: "p", Price: 10}

	_, err := ResolveLine(Regular, p, 1, []domain.SelectedSpecification{{SpecificationID: "x", ValueID: "y"}})
	assert.True(t, apperr.Is(err, apperr.KindSpecificationNotFound))
}

func TestResolveLine_NeverNegative(t *testing.T) {
	p := &domain.Product{
		ProductID: "p",
		Price:     5,
		SpecificationValues: map[string]domain.SpecificationValue{
			domain.SpecKey("promo", "deep"): {SpecificationID: "promo", ValueID: "deep", Price: -20},
		},
	}
	specs := []domain.SelectedSpecification{{SpecificationID: "promo", ValueID: "deep"}}

	got, err := ResolveLine(Regular, p, 1, specs)
	require.NoError(t, err)
	assert.True(t, got.Unit.IsZero())

	got, err = ResolveLine(EligibilityFor(verifiedWholesaler(1.5)), &domain.Product{ProductID: "p", Price: 10}, 1, nil)
	require.NoError(t, err)
	assert.True(t, got.Unit.IsZero())
}

func TestResolveLine_RoundsToCents(t *testing.T) {
	p := &domain.Product{ProductID: "p", Price: 9.99}

	got, err := ResolveLine(EligibilityFor(verifiedWholesaler(0.333)), p, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "6.66", got.Unit.String())
}

func TestSummarize(t *testing.T) {
	p := &domain.Product{ProductID: "p", Price: 100, CompareAtPrice: 100}
	w := EligibilityFor(verifiedWholesaler(0.2))

	a, err := ResolveLine(w, p, 2, nil)
	require.NoError(t, err)
	b, err := ResolveLine(Regular, &domain.Product{ProductID: "q", Price: 15}, 1, nil)
	require.NoError(t, err)

	sum := Summarize([]LinePrice{a, b}, decimal.NewFromFloat(7.5))
	assert.Equal(t, "175", sum.Subtotal.String())
	assert.Equal(t, "40", sum.Discount.String())
	assert.Equal(t, "7.5", sum.Shipping.String())
	assert.Equal(t, "182.5", sum.Total.String())

	pricing := sum.Pricing("USD")
	assert.Equal(t, 182.5, pricing.Total)
	assert.Equal(t, "USD", pricing.Currency)
}

func TestSummarize_WholesaleAboveRegularSavesNothing(t *testing.T) {
	p := &domain.Product{ProductID: "p", Price: 100, CompareAtPrice: 120}
	line, err := ResolveLine(EligibilityFor(verifiedWholesaler(0.15)), p, 1, nil)
	require.NoError(t, err)

	sum := Summarize([]LinePrice{line}, decimal.Zero)
	assert.True(t, sum.Discount.IsZero())
	assert.Equal(t, "102", sum.Total.String())
}
