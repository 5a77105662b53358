package inventory

import (
	"sort"
	"strings"

	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
)

// Debit is the total movement an order makes on one product: Quantity off the
// general stock and Specs[key] off each specification pool. The two are
// independent counters, so a line with specifications moves both.
type Debit struct {
	ProductID string
	Quantity  int
	Specs     map[string]int
}

// SortedSpecKeys returns the touched pool keys in a stable order.
func (d Debit) SortedSpecKeys() []string {
	keys := make([]string, 0, len(d.Specs))
	for k := range d.Specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Line is the stock-relevant part of an order or cart line.
type Line struct {
	ProductID string
	Quantity  int
	Specs     []domain.SelectedSpecification
}

func LinesFromCart(cart []domain.CartLine) []Line {
	lines := make([]Line, 0, len(cart))
	for _, c := range cart {
		lines = append(lines, Line{ProductID: c.ProductID, Quantity: c.Quantity, Specs: c.SelectedSpecifications})
	}
	return lines
}

func LinesFromOrder(order *domain.Order) []Line {
	lines := make([]Line, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, Line{ProductID: l.ProductID, Quantity: l.Quantity, Specs: l.SelectedSpecifications})
	}
	return lines
}

// Aggregate folds lines into one debit per product, preserving first-seen
// product order. Several lines of the same product must be checked and
// applied as one movement.
func Aggregate(lines []Line) []Debit {
	index := make(map[string]int)
	var debits []Debit
	for _, l := range lines {
		i, ok := index[l.ProductID]
		if !ok {
			i = len(debits)
			index[l.ProductID] = i
			debits = append(debits, Debit{ProductID: l.ProductID, Specs: map[string]int{}})
		}
		debits[i].Quantity += l.Quantity
		for _, s := range l.Specs {
			debits[i].Specs[domain.SpecKey(s.SpecificationID, s.ValueID)] += l.Quantity
		}
	}
	return debits
}

// CheckDebit verifies the whole movement fits the product's current pools.
func CheckDebit(p *domain.Product, d Debit) error {
	for _, key := range d.SortedSpecKeys() {
		qty := d.Specs[key]
		pool, ok := p.SpecificationValues[key]
		if !ok {
			specID, valueID := splitKey(key)
			return apperr.SpecificationNotFound(p.ProductID, specID, valueID)
		}
		if qty > pool.Quantity {
			return apperr.InsufficientSpecificationStock(p.ProductID, pool.SpecificationID, pool.ValueID,
				pool.Label(), pool.Quantity, qty)
		}
	}
	if d.Quantity > p.Stock {
		return apperr.InsufficientGeneralStock(p.ProductID, p.Stock, d.Quantity)
	}
	return nil
}

// ApplyDebit subtracts the movement from p. Callers run CheckDebit first
// under the same lock.
func ApplyDebit(p *domain.Product, d Debit) {
	p.Stock -= d.Quantity
	for key, qty := range d.Specs {
		pool := p.SpecificationValues[key]
		pool.Quantity -= qty
		p.SpecificationValues[key] = pool
	}
}

// ApplyCredit returns a movement to p. Pools removed from the product since
// the debit are skipped.
func ApplyCredit(p *domain.Product, d Debit) {
	p.Stock += d.Quantity
	for key, qty := range d.Specs {
		pool, ok := p.SpecificationValues[key]
		if !ok {
			continue
		}
		pool.Quantity += qty
		p.SpecificationValues[key] = pool
	}
}

func splitKey(key string) (string, string) {
	specID, valueID, _ := strings.Cut(key, ":")
	return specID, valueID
}
