// Package apperr defines the single error type returned by the service layer.
// Transports translate a Kind into a status code in one place.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindSpecificationNotFound
	KindInsufficientGeneralStock
	KindInsufficientSpecificationStock
	KindInvalidTransition
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindSpecificationNotFound:
		return "specification_not_found"
	case KindInsufficientGeneralStock:
		return "insufficient_stock"
	case KindInsufficientSpecificationStock:
		return "insufficient_specification_stock"
	case KindInvalidTransition:
		return "invalid_status_transition"
	case KindPersistence:
		return "persistence_error"
	default:
		return "internal_error"
	}
}

// Error carries enough context for a client to act on a rejected request,
// e.g. "only 3 left in size Large".
type Error struct {
	Kind            Kind
	Message         string
	ProductID       string
	SpecificationID string
	ValueID         string
	Available       int
	Requested       int
	Err             error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsStock reports whether the error rejects an order for lack of stock.
func (e *Error) IsStock() bool {
	return e.Kind == KindInsufficientGeneralStock || e.Kind == KindInsufficientSpecificationStock
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Persistence(err error) *Error {
	return &Error{Kind: KindPersistence, Message: "storage operation failed", Err: err}
}

func SpecificationNotFound(productID, specificationID, valueID string) *Error {
	return &Error{
		Kind:            KindSpecificationNotFound,
		Message:         fmt.Sprintf("specification %s (value %s) not found on product %s", specificationID, valueID, productID),
		ProductID:       productID,
		SpecificationID: specificationID,
		ValueID:         valueID,
	}
}

func InsufficientGeneralStock(productID string, available, requested int) *Error {
	return &Error{
		Kind:      KindInsufficientGeneralStock,
		Message:   fmt.Sprintf("insufficient stock for product %s: only %d left, %d requested", productID, available, requested),
		ProductID: productID,
		Available: available,
		Requested: requested,
	}
}

// StockChanged reports a conditional debit that lost to a concurrent order
// when the remaining quantity is not known.
func StockChanged(productID string, requested int) *Error {
	return &Error{
		Kind:      KindInsufficientGeneralStock,
		Message:   fmt.Sprintf("insufficient stock for product %s: %d requested", productID, requested),
		ProductID: productID,
		Requested: requested,
	}
}

func InsufficientSpecificationStock(productID, specificationID, valueID, label string, available, requested int) *Error {
	if label == "" {
		label = valueID
	}
	return &Error{
		Kind:            KindInsufficientSpecificationStock,
		Message:         fmt.Sprintf("insufficient stock for product %s: only %d left in %s, %d requested", productID, available, label, requested),
		ProductID:       productID,
		SpecificationID: specificationID,
		ValueID:         valueID,
		Available:       available,
		Requested:       requested,
	}
}

func InvalidTransition(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("order cannot move from %s to %s", from, to),
	}
}

// KindOf returns KindInternal for errors that are not *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
