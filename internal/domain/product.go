package domain

import (
	"sort"
	"time"
)

// SpecificationValue is one selectable option of a product (Size=Large, Color=Red).
// Its Quantity is a stock pool independent of the product's general Stock.
type SpecificationValue struct {
	SpecificationID string  `dynamodbav:"specification_id" json:"specificationId"`
	ValueID         string  `dynamodbav:"value_id"         json:"valueId"`
	Value           string  `dynamodbav:"value"            json:"value"`
	Title           string  `dynamodbav:"title"            json:"title"`
	Quantity        int     `dynamodbav:"quantity"         json:"quantity"`
	Price           float64 `dynamodbav:"price"            json:"price"`
}

func (v SpecificationValue) Key() string {
	return SpecKey(v.SpecificationID, v.ValueID)
}

// Label is the human readable name used in stock messages.
func (v SpecificationValue) Label() string {
	switch {
	case v.Title != "" && v.Value != "":
		return v.Title + " " + v.Value
	case v.Value != "":
		return v.Value
	default:
		return v.ValueID
	}
}

// SpecKey builds the map key of a specification value pool.
func SpecKey(specificationID, valueID string) string {
	return specificationID + ":" + valueID
}

type Product struct {
	ProductID           string                        `dynamodbav:"product_id"           json:"productId"`
	StoreID             string                        `dynamodbav:"store_id"             json:"storeId"`
	Name                string                        `dynamodbav:"name"                 json:"name"`
	Price               float64                       `dynamodbav:"price"                json:"price"`
	CompareAtPrice      float64                       `dynamodbav:"compare_at_price"     json:"compareAtPrice"`
	Stock               int                           `dynamodbav:"stock"                json:"stock"`
	SpecificationValues map[string]SpecificationValue `dynamodbav:"specification_values" json:"-"`
	CreatedAt           time.Time                     `dynamodbav:"created_at"           json:"createdAt"`
	UpdatedAt           time.Time                     `dynamodbav:"updated_at"           json:"updatedAt"`
}

func (p *Product) SpecificationValue(specificationID, valueID string) (SpecificationValue, bool) {
	v, ok := p.SpecificationValues[SpecKey(specificationID, valueID)]
	return v, ok
}

// SortedSpecificationValues returns the pools ordered by specification then value.
func (p *Product) SortedSpecificationValues() []SpecificationValue {
	values := make([]SpecificationValue, 0, len(p.SpecificationValues))
	for _, v := range p.SpecificationValues {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].SpecificationID != values[j].SpecificationID {
			return values[i].SpecificationID < values[j].SpecificationID
		}
		return values[i].ValueID < values[j].ValueID
	})
	return values
}

// Clone returns a deep copy so callers never share the spec map.
func (p *Product) Clone() *Product {
	c := *p
	c.SpecificationValues = make(map[string]SpecificationValue, len(p.SpecificationValues))
	for k, v := range p.SpecificationValues {
		c.SpecificationValues[k] = v
	}
	return &c
}

type SpecificationValueInput struct {
	SpecificationID string  `json:"specificationId" binding:"required"`
	ValueID         string  `json:"valueId"         binding:"required"`
	Value           string  `json:"value"`
	Title           string  `json:"title"`
	Quantity        int     `json:"quantity"        binding:"min=0"`
	Price           float64 `json:"price"`
}

type CreateProductRequest struct {
	ProductID           string                    `json:"productId"           binding:"required"`
	Name                string                    `json:"name"                binding:"required"`
	Price               float64                   `json:"price"               binding:"min=0"`
	CompareAtPrice      float64                   `json:"compareAtPrice"      binding:"min=0"`
	Stock               int                       `json:"stock"               binding:"min=0"`
	SpecificationValues []SpecificationValueInput `json:"specificationValues" binding:"dive"`
}

type SpecificationRestock struct {
	SpecificationID string `json:"specificationId" binding:"required"`
	ValueID         string `json:"valueId"         binding:"required"`
	Quantity        int    `json:"quantity"        binding:"min=1"`
}

type RestockRequest struct {
	Stock          int                    `json:"stock"          binding:"min=0"`
	Specifications []SpecificationRestock `json:"specifications" binding:"dive"`
}

type ProductResponse struct {
	ProductID           string               `json:"productId"`
	StoreID             string               `json:"storeId"`
	Name                string               `json:"name"`
	Price               float64              `json:"price"`
	CompareAtPrice      float64              `json:"compareAtPrice"`
	Stock               int                  `json:"stock"`
	SpecificationValues []SpecificationValue `json:"specificationValues"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

func NewProductResponse(p *Product) ProductResponse {
	return ProductResponse{
		ProductID:           p.ProductID,
		StoreID:             p.StoreID,
		Name:                p.Name,
		Price:               p.Price,
		CompareAtPrice:      p.CompareAtPrice,
		Stock:               p.Stock,
		SpecificationValues: p.SortedSpecificationValues(),
		UpdatedAt:           p.UpdatedAt,
	}
}
