// Package inventory checks order lines against a product's stock pools and
// builds the debits applied when an order commits.
package inventory

import (
	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
)

// ValidateLine checks one order line against a product snapshot. It never
// mutates the product. Every selected specification must resolve to a pool
// holding at least quantity, and the general stock must hold at least quantity.
func ValidateLine(p *domain.Product, quantity int, specs []domain.SelectedSpecification) error {
	if quantity <= 0 {
		return apperr.Validation("quantity for product %s must be positive", p.ProductID)
	}

	seen := make(map[string]struct{}, len(specs))
	for _, sel := range specs {
		key := domain.SpecKey(sel.SpecificationID, sel.ValueID)
		if _, dup := seen[key]; dup {
			return apperr.Validation("specification %s (value %s) selected twice for product %s",
				sel.SpecificationID, sel.ValueID, p.ProductID)
		}
		seen[key] = struct{}{}

		pool, ok := p.SpecificationValues[key]
		if !ok {
			return apperr.SpecificationNotFound(p.ProductID, sel.SpecificationID, sel.ValueID)
		}
		if quantity > pool.Quantity {
			return apperr.InsufficientSpecificationStock(p.ProductID, pool.SpecificationID, pool.ValueID,
				pool.Label(), pool.Quantity, quantity)
		}
	}

	if quantity > p.Stock {
		return apperr.InsufficientGeneralStock(p.ProductID, p.Stock, quantity)
	}
	return nil
}
