package domain

import (
	"time"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderDelivered, OrderCancelled},
	OrderShipped:    {OrderDelivered, OrderCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// Delivered and cancelled are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type SelectedSpecification struct {
	SpecificationID string `dynamodbav:"specification_id" json:"specificationId" binding:"required"`
	ValueID         string `dynamodbav:"value_id"         json:"valueId"         binding:"required"`
	Value           string `dynamodbav:"value"            json:"value"`
	Title           string `dynamodbav:"title"            json:"title"`
}

type OrderLine struct {
	ProductID              string                  `dynamodbav:"product_id"              json:"product"`
	ProductName            string                  `dynamodbav:"product_name"            json:"productName"`
	Quantity               int                     `dynamodbav:"quantity"                json:"quantity"`
	SelectedSpecifications []SelectedSpecification `dynamodbav:"selected_specifications" json:"selectedSpecifications"`
	BaseUnitPrice          float64                 `dynamodbav:"base_unit_price"         json:"baseUnitPrice"`
	UnitPrice              float64                 `dynamodbav:"unit_price"              json:"unitPrice"`
	LineTotal              float64                 `dynamodbav:"line_total"              json:"lineTotal"`
	WholesaleApplied       bool                    `dynamodbav:"wholesale_applied"       json:"wholesaleApplied"`
	WholesaleDiscount      float64                 `dynamodbav:"wholesale_discount"      json:"wholesaleDiscount"`
}

type Address struct {
	FullName   string `dynamodbav:"full_name"   json:"fullName"`
	Email      string `dynamodbav:"email"       json:"email"`
	Phone      string `dynamodbav:"phone"       json:"phone"`
	Street     string `dynamodbav:"street"      json:"street"`
	City       string `dynamodbav:"city"        json:"city"`
	Region     string `dynamodbav:"region"      json:"region"`
	PostalCode string `dynamodbav:"postal_code" json:"postalCode"`
	Country    string `dynamodbav:"country"     json:"country"`
}

type PaymentInfo struct {
	Method string `dynamodbav:"method" json:"method"`
	Status string `dynamodbav:"status" json:"status"`
}

type ShippingInfo struct {
	Method string  `dynamodbav:"method" json:"method"`
	Cost   float64 `dynamodbav:"cost"   json:"cost" binding:"min=0"`
}

type Pricing struct {
	Subtotal float64 `dynamodbav:"subtotal" json:"subtotal"`
	Discount float64 `dynamodbav:"discount" json:"discount"`
	Shipping float64 `dynamodbav:"shipping" json:"shipping"`
	Total    float64 `dynamodbav:"total"    json:"total"`
	Currency string  `dynamodbav:"currency" json:"currency"`
}

type Order struct {
	OrderID         string       `dynamodbav:"order_id"                  json:"orderId"`
	StoreID         string       `dynamodbav:"store_id"                  json:"storeId"`
	OrderNumber     string       `dynamodbav:"order_number"              json:"orderNumber"`
	UserID          string       `dynamodbav:"user_id,omitempty"         json:"user,omitempty"`
	GuestID         string       `dynamodbav:"guest_id,omitempty"        json:"guestId,omitempty"`
	Lines           []OrderLine  `dynamodbav:"lines"                     json:"items"`
	ShippingAddress Address      `dynamodbav:"shipping_address"          json:"shippingAddress"`
	BillingAddress  Address      `dynamodbav:"billing_address"           json:"billingAddress"`
	PaymentInfo     PaymentInfo  `dynamodbav:"payment_info"              json:"paymentInfo"`
	ShippingInfo    ShippingInfo `dynamodbav:"shipping_info"             json:"shippingInfo"`
	Pricing         Pricing      `dynamodbav:"pricing"                   json:"pricing"`
	IsWholesale     bool         `dynamodbav:"is_wholesale"              json:"isWholesale"`
	Status          OrderStatus  `dynamodbav:"status"                    json:"status"`
	CancelReason    string       `dynamodbav:"cancel_reason,omitempty"   json:"cancelReason,omitempty"`
	CreatedAt       time.Time    `dynamodbav:"created_at"                json:"createdAt"`
	UpdatedAt       time.Time    `dynamodbav:"updated_at"                json:"updatedAt"`
}

// Buyer identifies who places an order: a registered user, or a guest by client id.
type Buyer struct {
	UserID  string
	GuestID string
	Email   string
}

func (b Buyer) IsGuest() bool {
	return b.UserID == "" && b.GuestID != ""
}

// CartLine is one requested product with the specification values the buyer picked.
type CartLine struct {
	ProductID              string                  `json:"product"                binding:"required"`
	Quantity               int                     `json:"quantity"               binding:"required,min=1"`
	SelectedSpecifications []SelectedSpecification `json:"selectedSpecifications" binding:"dive"`
}

type CreateOrderRequest struct {
	User            string       `json:"user"`
	GuestID         string       `json:"guestId"`
	Email           string       `json:"email"           binding:"omitempty,email"`
	Items           []CartLine   `json:"items"           binding:"dive"`
	CartItems       []CartLine   `json:"cartItems"       binding:"dive"`
	ShippingAddress Address      `json:"shippingAddress"`
	BillingAddress  Address      `json:"billingAddress"`
	PaymentInfo     PaymentInfo  `json:"paymentInfo"`
	ShippingInfo    ShippingInfo `json:"shippingInfo"`
	Currency        string       `json:"currency"`
}

// Buyer resolves the ordering identity. The wholesaler email falls back to the
// shipping address when the request carries none.
func (r CreateOrderRequest) Buyer() Buyer {
	email := r.Email
	if email == "" {
		email = r.ShippingAddress.Email
	}
	return Buyer{UserID: r.User, GuestID: r.GuestID, Email: email}
}

// Lines returns cartItems when present; plain items are lines without specifications.
func (r CreateOrderRequest) Lines() []CartLine {
	if len(r.CartItems) > 0 {
		return r.CartItems
	}
	return r.Items
}

type QuoteRequest struct {
	User         string       `json:"user"`
	GuestID      string       `json:"guestId"`
	Email        string       `json:"email"     binding:"omitempty,email"`
	CartItems    []CartLine   `json:"cartItems" binding:"required,min=1,dive"`
	ShippingInfo ShippingInfo `json:"shippingInfo"`
	Currency     string       `json:"currency"`
}

func (r QuoteRequest) Buyer() Buyer {
	return Buyer{UserID: r.User, GuestID: r.GuestID, Email: r.Email}
}

type Quote struct {
	Lines       []OrderLine `json:"items"`
	Pricing     Pricing     `json:"pricing"`
	IsWholesale bool        `json:"isWholesale"`
}

type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
	Reason string      `json:"reason"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type MergeGuestRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type MergeGuestResponse struct {
	GuestID string `json:"guestId"`
	UserID  string `json:"userId"`
	Merged  int    `json:"merged"`
}
