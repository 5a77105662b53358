package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
	"github.com/cloud-wave-best-zizon/order-service/internal/service"
)

// 이벤트 타입 (event_type 헤더)
const (
	TypeOrderCreated   = "order.created"
	TypeOrderCancelled = "order.cancelled"
	TypeStockLow       = "stock.low"
)

// 주문 생성 이벤트
type OrderCreatedEvent struct {
	EventID     string      `json:"event_id"`
	StoreID     string      `json:"store_id"`
	OrderID     string      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	UserID      string      `json:"user_id,omitempty"`
	GuestID     string      `json:"guest_id,omitempty"`
	IsWholesale bool        `json:"is_wholesale"`
	TotalAmount float64     `json:"total_amount"`
	Currency    string      `json:"currency"`
	Items       []OrderItem `json:"items"`
	Status      string      `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
}

type OrderItem struct {
	ProductID      string   `json:"product_id"`
	ProductName    string   `json:"product_name"`
	Quantity       int      `json:"quantity"`
	Price          float64  `json:"price"`
	Specifications []string `json:"specifications,omitempty"`
}

// 주문 취소 이벤트. 재고는 이미 복구된 상태
type OrderCancelledEvent struct {
	EventID     string      `json:"event_id"`
	StoreID     string      `json:"store_id"`
	OrderID     string      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	Reason      string      `json:"reason,omitempty"`
	Items       []OrderItem `json:"items"`
	Timestamp   time.Time   `json:"timestamp"`
}

// 재고 부족 경보
type StockLowEvent struct {
	EventID         string    `json:"event_id"`
	StoreID         string    `json:"store_id"`
	ProductID       string    `json:"product_id"`
	SpecificationID string    `json:"specification_id,omitempty"`
	ValueID         string    `json:"value_id,omitempty"`
	Remaining       int       `json:"remaining"`
	Timestamp       time.Time `json:"timestamp"`
}

// OrderStatusEvent is consumed from the delivery integration.
type OrderStatusEvent struct {
	EventID   string    `json:"event_id"`
	StoreID   string    `json:"store_id"`
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewOrderCreatedEvent(order *domain.Order, now time.Time) OrderCreatedEvent {
	return OrderCreatedEvent{
		EventID:     uuid.NewString(),
		StoreID:     order.StoreID,
		OrderID:     order.OrderID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		GuestID:     order.GuestID,
		IsWholesale: order.IsWholesale,
		TotalAmount: order.Pricing.Total,
		Currency:    order.Pricing.Currency,
		Items:       orderItems(order.Lines),
		Status:      string(order.Status),
		Timestamp:   now,
	}
}

func NewOrderCancelledEvent(order *domain.Order, now time.Time) OrderCancelledEvent {
	return OrderCancelledEvent{
		EventID:     uuid.NewString(),
		StoreID:     order.StoreID,
		OrderID:     order.OrderID,
		OrderNumber: order.OrderNumber,
		Reason:      order.CancelReason,
		Items:       orderItems(order.Lines),
		Timestamp:   now,
	}
}

func NewStockLowEvent(alert service.StockAlert, now time.Time) StockLowEvent {
	return StockLowEvent{
		EventID:         uuid.NewString(),
		StoreID:         alert.StoreID,
		ProductID:       alert.ProductID,
		SpecificationID: alert.SpecificationID,
		ValueID:         alert.ValueID,
		Remaining:       alert.Remaining,
		Timestamp:       now,
	}
}

func orderItems(lines []domain.OrderLine) []OrderItem {
	items := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		item := OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.UnitPrice,
		}
		for _, s := range l.SelectedSpecifications {
			item.Specifications = append(item.Specifications, domain.SpecKey(s.SpecificationID, s.ValueID))
		}
		items = append(items, item)
	}
	return items
}
