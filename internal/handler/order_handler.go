package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
	"github.com/cloud-wave-best-zizon/order-service/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, logger: logger}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	scope, ok := storeScope(c, h.logger)
	if !ok {
		return
	}

	var req domain.CreateOrderRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), scope, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, order)
}

func (h *OrderHandler) Quote(c *gin.Context) {
	scope, ok := storeScope(c, h.logger)
	if !ok {
		return
	}

	var req domain.QuoteRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	quote, err := h.orderService.Quote(c.Request.Context(), scope, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, quote)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	scope, ok := storeScope(c, h.logger)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, order)
}

// ListOrders takes exactly one of ?user= or ?guestId=.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	scope, ok := storeScope(c, h.logger)
	if !ok {
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), scope, c.Query("user"), c.Query("guestId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, orders)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	scope, ok := storeScope(c, h.logger)
	if !ok {
		return
	}

	var req domain.UpdateStatusRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), scope, c.Param("id"), req.Status, req.Reason)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	scope, ok := storeScope(c, h.logger)
	if !ok {
		return
	}

	// 본문은 선택
	var req domain.CancelOrderRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, h.logger, &req) {
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), scope, c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, order)
}

func (h *OrderHandler) MergeGuestOrders(c *gin.Context) {
	scope, ok := storeScope(c, h.logger)
	if !ok {
		return
	}

	var req domain.MergeGuestRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	guestID := c.Param("guestId")
	if guestID == "" {
		writeError(c, h.logger, apperr.Validation("guestId is required"))
		return
	}

	merged, err := h.orderService.MergeGuestOrders(c.Request.Context(), scope, guestID, req.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, domain.MergeGuestResponse{GuestID: guestID, UserID: req.UserID, Merged: merged})
}
