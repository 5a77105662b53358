package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
)

func newShirt() *domain.Product {
	return &domain.Product{
		ProductID: "shirt",
		StoreID:   "store-1",
		Price:     100,
		Stock:     50,
		SpecificationValues: map[string]domain.SpecificationValue{
			domain.SpecKey("size", "large"): {SpecificationID: "size", ValueID: "large", Title: "Size", Value: "Large", Quantity: 20},
			domain.SpecKey("size", "small"): {SpecificationID: "size", ValueID: "small", Title: "Size", Value: "Small", Quantity: 0},
			domain.SpecKey("color", "red"):  {SpecificationID: "color", ValueID: "red", Title: "Color", Value: "Red", Quantity: 8},
		},
	}
}

func large() domain.SelectedSpecification {
	return domain.SelectedSpecification{SpecificationID: "size", ValueID: "large", Value: "Large", Title: "Size"}
}

func TestValidateLine_PassesWithinBothPools(t *testing.T) {
	assert.NoError(t, ValidateLine(newShirt(), 5, []domain.SelectedSpecification{large()}))
}

func TestValidateLine_SpecificationPoolExceeded(t *testing.T) {
	err := ValidateLine(newShirt(), 30, []domain.SelectedSpecification{large()})

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInsufficientSpecificationStock, e.Kind)
	assert.Equal(t, 20, e.Available)
	assert.Equal(t, 30, e.Requested)
	assert.Equal(t, "size", e.SpecificationID)
	assert.Contains(t, e.Message, "only 20 left in Size Large")
}

func TestValidateLine_SpecificationNotFound(t *testing.T) {
	err := ValidateLine(newShirt(), 1, []domain.SelectedSpecification{
		{SpecificationID: "invalid-spec", ValueID: "invalid-value"},
	})

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindSpecificationNotFound, e.Kind)
	assert.Equal(t, "invalid-spec", e.SpecificationID)
	assert.Equal(t, "invalid-value", e.ValueID)
}

func TestValidateLine_GeneralStockExceededWhileSpecFits(t *testing.T) {
	p := newShirt()
	p.Stock = 3

	err := ValidateLine(p, 5, []domain.SelectedSpecification{large()})
	assert.True(t, apperr.Is(err, apperr.KindInsufficientGeneralStock))
}

func TestValidateLine_SoldOutSpecWhileGeneralFits(t *testing.T) {
	err := ValidateLine(newShirt(), 1, []domain.SelectedSpecification{{SpecificationID: "size", ValueID: "small"}})
	assert.True(t, apperr.Is(err, apperr.KindInsufficientSpecificationStock))
}

func TestValidateLine_NoSpecsChecksGeneralOnly(t *testing.T) {
	assert.NoError(t, ValidateLine(newShirt(), 50, nil))
	assert.True(t, apperr.Is(ValidateLine(newShirt(), 51, nil), apperr.KindInsufficientGeneralStock))
}

func TestValidateLine_RejectsDuplicateSelection(t *testing.T) {
	err := ValidateLine(newShirt(), 1, []domain.SelectedSpecification{large(), large()})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestValidateLine_RejectsNonPositiveQuantity(t *testing.T) {
	assert.True(t, apperr.Is(ValidateLine(newShirt(), 0, nil), apperr.KindValidation))
}

func TestValidateLine_IsIdempotent(t *testing.T) {
	p := newShirt()
	before := p.Clone()
	specs := []domain.SelectedSpecification{large()}

	first := ValidateLine(p, 25, specs)
	second := ValidateLine(p, 25, specs)

	assert.Equal(t, first, second)
	assert.Equal(t, before, p)
}
