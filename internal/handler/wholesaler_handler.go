package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
	"github.com/cloud-wave-best-zizon/order-service/internal/service"
)

type WholesalerHandler struct {
	wholesalerService *service.WholesalerService
	logger            *zap.Logger
}

func NewWholesalerHandler(wholesalerService *service.WholesalerService, logger *zap.Logger) *WholesalerHandler {
	return &WholesalerHandler{wholesalerService: wholesalerService, logger: logger}
}

func (h *WholesalerHandler) Register(c *gin.Context) {
	scope, ok := storeScope(c, h.logger)
	if !ok {
		return
	}

	var req domain.CreateWholesalerRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	w, err := h.wholesalerService.Register(c.Request.Context(), scope, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, w)
}

func (h *WholesalerHandler) Get(c *gin.Context) {
	scope, ok := storeScope(c, h.logger)
	if !ok {
		return
	}

	w, err := h.wholesalerService.Get(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, w)
}

func (h *WholesalerHandler) Update(c *gin.Context) {
	scope, ok := storeScope(c, h.logger)
	if !ok {
		return
	}

	var req domain.UpdateWholesalerRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	w, err := h.wholesalerService.Update(c.Request.Context(), scope, c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, w)
}
