package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
	"github.com/cloud-wave-best-zizon/order-service/pkg/middleware"
)

const StoreHeader = "X-Store-ID"

type errorDetails struct {
	ProductID       string `json:"productId,omitempty"`
	SpecificationID string `json:"specificationId,omitempty"`
	ValueID         string `json:"valueId,omitempty"`
	Available       *int   `json:"available,omitempty"`
	Requested       int    `json:"requested,omitempty"`
}

type errorResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Error   string        `json:"error"`
	Details *errorDetails `json:"details,omitempty"`
}

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, successResponse{Success: true, Data: data})
}

// statusFor is the single mapping from error kind to HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation,
		apperr.KindSpecificationNotFound,
		apperr.KindInsufficientGeneralStock,
		apperr.KindInsufficientSpecificationStock:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict, apperr.KindInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, logger *zap.Logger, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Wrap(apperr.KindInternal, "internal server error", err)
	}

	status := statusFor(e.Kind)
	body := errorResponse{Success: false, Message: e.Message, Error: e.Kind.String()}

	if status >= http.StatusInternalServerError {
		// 내부 오류 내용은 응답에 노출하지 않는다
		logger.Error("Request failed",
			zap.String(middleware.RequestIDKey, c.GetString(middleware.RequestIDKey)),
			zap.String("kind", e.Kind.String()),
			zap.Error(err))
		body.Message = "internal server error"
		c.AbortWithStatusJSON(status, body)
		return
	}

	if e.ProductID != "" {
		body.Details = &errorDetails{
			ProductID:       e.ProductID,
			SpecificationID: e.SpecificationID,
			ValueID:         e.ValueID,
			Requested:       e.Requested,
		}
		if e.IsStock() {
			available := e.Available
			body.Details.Available = &available
		}
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON writes a 400 and returns false when the body does not bind.
func bindJSON(c *gin.Context, logger *zap.Logger, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Warn("Invalid request", zap.String("path", c.FullPath()), zap.Error(err))

		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(c, logger, apperr.Validation("%s", fieldErrorMessage(verrs[0])))
			return false
		}
		writeError(c, logger, apperr.Validation("invalid request format"))
		return false
	}
	return true
}

// storeScope reads the tenant from X-Store-ID and writes a 400 if it is missing.
func storeScope(c *gin.Context, logger *zap.Logger) (domain.StoreScope, bool) {
	scope, err := domain.NewStoreScope(c.GetHeader(StoreHeader))
	if err != nil {
		writeError(c, logger, apperr.Validation("%s header is required", StoreHeader))
		return domain.StoreScope{}, false
	}
	return scope, true
}
