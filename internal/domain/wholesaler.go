package domain

import (
	"strings"
	"time"
)

type WholesalerStatus string

const (
	WholesalerActive   WholesalerStatus = "Active"
	WholesalerInactive WholesalerStatus = "Inactive"
)

func (s WholesalerStatus) Valid() bool {
	return s == WholesalerActive || s == WholesalerInactive
}

type Wholesaler struct {
	WholesalerID string           `dynamodbav:"wholesaler_id" json:"wholesalerId"`
	StoreID      string           `dynamodbav:"store_id"      json:"storeId"`
	UserID       string           `dynamodbav:"user_id"       json:"userId"`
	Email        string           `dynamodbav:"email"         json:"email"`
	BusinessName string           `dynamodbav:"business_name" json:"businessName"`
	Status       WholesalerStatus `dynamodbav:"status"        json:"status"`
	IsVerified   bool             `dynamodbav:"is_verified"   json:"isVerified"`
	// Discount is a fraction: 0.15 means 15% off the reference price.
	Discount  float64   `dynamodbav:"discount"   json:"discount"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updatedAt"`
}

// Eligible reports whether the wholesaler gets discounted pricing.
func (w *Wholesaler) Eligible() bool {
	return w != nil && w.Status == WholesalerActive && w.IsVerified
}

// NormalizeEmail is applied on write and on lookup so email matching is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type CreateWholesalerRequest struct {
	UserID       string           `json:"userId"       binding:"required"`
	Email        string           `json:"email"        binding:"required,email"`
	BusinessName string           `json:"businessName"`
	Status       WholesalerStatus `json:"status"       binding:"omitempty,oneof=Active Inactive"`
	IsVerified   bool             `json:"isVerified"`
	Discount     float64          `json:"discount"     binding:"min=0,max=1"`
}

// UpdateWholesalerRequest is a partial update; nil fields are left unchanged.
type UpdateWholesalerRequest struct {
	Status       *WholesalerStatus `json:"status"       binding:"omitempty,oneof=Active Inactive"`
	IsVerified   *bool             `json:"isVerified"`
	Discount     *float64          `json:"discount"     binding:"omitempty,min=0,max=1"`
	BusinessName *string           `json:"businessName"`
}
