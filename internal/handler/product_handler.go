package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
	"github.com/cloud-wave-best-zizon/order-service/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
	logger         *zap.Logger
}

func NewProductHandler(productService *service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	scope, ok := storeScope(c, h.logger)
	if !ok {
		return
	}

	var req domain.CreateProductRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), scope, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	respond(c, http.StatusCreated, domain.NewProductResponse(product))
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	scope, ok := storeScope(c, h.logger)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, domain.NewProductResponse(product))
}

func (h *ProductHandler) Restock(c *gin.Context) {
	scope, ok := storeScope(c, h.logger)
	if !ok {
		return
	}

	var req domain.RestockRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	product, err := h.productService.Restock(c.Request.Context(), scope, c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, domain.NewProductResponse(product))
}
