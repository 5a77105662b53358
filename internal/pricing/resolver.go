// Package pricing resolves unit prices for order lines.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
)

// Money is rounded to cents, half away from zero.
const centPlaces = 2

// Eligibility is the wholesale discount a buyer is entitled to.
type Eligibility struct {
	Applied bool
	Rate    decimal.Decimal
}

// Regular is the eligibility of guests and non-wholesalers.
var Regular = Eligibility{Rate: decimal.Zero}

// EligibilityFor returns Regular unless w is an active, verified wholesaler.
func EligibilityFor(w *domain.Wholesaler) Eligibility {
	if !w.Eligible() {
		return Regular
	}
	rate := decimal.NewFromFloat(w.Discount)
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		rate = decimal.NewFromInt(1)
	}
	return Eligibility{Applied: true, Rate: rate}
}

type LinePrice struct {
	Quantity int
	// BaseUnit is what a regular buyer pays: price plus specification modifiers.
	BaseUnit         decimal.Decimal
	Unit             decimal.Decimal
	Total            decimal.Decimal
	WholesaleApplied bool
	DiscountRate     decimal.Decimal
}

// ResolveLine prices one line. A wholesaler pays the reference price
// (compareAtPrice, or price when no compare price is set) plus modifiers,
// reduced once by the discount rate. Prices never drop below zero.
func ResolveLine(e Eligibility, p *domain.Product, quantity int, specs []domain.SelectedSpecification) (LinePrice, error) {
	modifiers := decimal.Zero
	for _, sel := range specs {
		v, ok := p.SpecificationValue(sel.SpecificationID, sel.ValueID)
		if !ok {
			return LinePrice{}, apperr.SpecificationNotFound(p.ProductID, sel.SpecificationID, sel.ValueID)
		}
		modifiers = modifiers.Add(decimal.NewFromFloat(v.Price))
	}

	base := floorZero(decimal.NewFromFloat(p.Price).Add(modifiers)).Round(centPlaces)
	unit := base
	if e.Applied {
		reference := decimal.NewFromFloat(p.Price)
		if p.CompareAtPrice > 0 {
			reference = decimal.NewFromFloat(p.CompareAtPrice)
		}
		reference = reference.Add(modifiers)
		unit = floorZero(reference.Mul(decimal.NewFromInt(1).Sub(e.Rate))).Round(centPlaces)
	}

	qty := decimal.NewFromInt(int64(quantity))
	return LinePrice{
		Quantity:         quantity,
		BaseUnit:         base,
		Unit:             unit,
		Total:            unit.Mul(qty),
		WholesaleApplied: e.Applied,
		DiscountRate:     e.Rate,
	}, nil
}

type Breakdown struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Summarize totals the lines. Discount is what the buyer saved against the
// regular price; a wholesale price above the regular one saves nothing.
func Summarize(lines []LinePrice, shipping decimal.Decimal) Breakdown {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total)
		saved := l.BaseUnit.Sub(l.Unit).Mul(decimal.NewFromInt(int64(l.Quantity)))
		if saved.IsPositive() {
			discount = discount.Add(saved)
		}
	}
	shipping = floorZero(shipping).Round(centPlaces)
	return Breakdown{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Total:    subtotal.Add(shipping),
	}
}

// OrderLine renders a priced line for persistence and responses.
func (l LinePrice) OrderLine(p *domain.Product, specs []domain.SelectedSpecification) domain.OrderLine {
	return domain.OrderLine{
		ProductID:              p.ProductID,
		ProductName:            p.Name,
		Quantity:               l.Quantity,
		SelectedSpecifications: specs,
		BaseUnitPrice:          l.BaseUnit.InexactFloat64(),
		UnitPrice:              l.Unit.InexactFloat64(),
		LineTotal:              l.Total.InexactFloat64(),
		WholesaleApplied:       l.WholesaleApplied,
		WholesaleDiscount:      l.DiscountRate.InexactFloat64(),
	}
}

func (b Breakdown) Pricing(currency string) domain.Pricing {
	return domain.Pricing{
		Subtotal: b.Subtotal.InexactFloat64(),
		Discount: b.Discount.InexactFloat64(),
		Shipping: b.Shipping.InexactFloat64(),
		Total:    b.Total.InexactFloat64(),
		Currency: currency,
	}
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
