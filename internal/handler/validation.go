package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
)

// RegisterValidators installs the request rules gin's binding cannot express
// with field tags alone. Call it once before serving.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}

	v.RegisterTagNameFunc(jsonFieldName)
	v.RegisterStructValidation(validateCreateOrder, domain.CreateOrderRequest{})
	v.RegisterStructValidation(validateUpdateStatus, domain.UpdateStatusRequest{})
	return nil
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// 회원 또는 비회원 식별자 중 하나는 필수
func validateCreateOrder(sl validator.StructLevel) {
	req := sl.Current().Interface().(domain.CreateOrderRequest)

	if strings.TrimSpace(req.User) == "" && strings.TrimSpace(req.GuestID) == "" {
		sl.ReportError(req.User, "user", "User", "user_or_guest", "")
	}
	if len(req.Items) == 0 && len(req.CartItems) == 0 {
		sl.ReportError(req.CartItems, "cartItems", "CartItems", "required_without", "items")
	}
}

func validateUpdateStatus(sl validator.StructLevel) {
	req := sl.Current().Interface().(domain.UpdateStatusRequest)
	if req.Status != "" && !req.Status.Valid() {
		sl.ReportError(req.Status, "status", "Status", "order_status", string(req.Status))
	}
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "user_or_guest":
		return "user or guestId is required"
	case "required_without":
		return fmt.Sprintf("%s or %s is required", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "order_status":
		return fmt.Sprintf("%q is not an order status", fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
