package errors

import (
	"errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// InvalidQuantityError reports a non-positive requested quantity. Always a
// caller input defect, never retried.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be a positive integer, got %d", e.Quantity)
}

func NewInvalidQuantityError(quantity int) *InvalidQuantityError {
	return &InvalidQuantityError{Quantity: quantity}
}

func IsInvalidQuantityError(err error) (*InvalidQuantityError, bool) {
	var iqe *InvalidQuantityError
	if errors.As(err, &iqe) {
		return iqe, true
	}
	return nil, false
}

// InvalidLocationError reports a source that is not the warehouse, or a
// destination that is unknown, inactive, not a branch, or equal to the source.
type InvalidLocationError struct {
	Message string
}

func (e *InvalidLocationError) Error() string {
	return e.Message
}

func NewInvalidLocationError(message string) *InvalidLocationError {
	return &InvalidLocationError{Message: message}
}

func IsInvalidLocationError(err error) (*InvalidLocationError, bool) {
	var ile *InvalidLocationError
	if errors.As(err, &ile) {
		return ile, true
	}
	return nil, false
}

// VariantMismatchError reports a variant id missing for a variant-tracked
// product, or present for a product without variants.
type VariantMismatchError struct {
	Message string
}

func (e *VariantMismatchError) Error() string {
	return e.Message
}

func NewVariantMismatchError(message string) *VariantMismatchError {
	return &VariantMismatchError{Message: message}
}

func IsVariantMismatchError(err error) (*VariantMismatchError, bool) {
	var vme *VariantMismatchError
	if errors.As(err, &vme) {
		return vme, true
	}
	return nil, false
}

// InsufficientStockError reports a requested quantity above current
// availability. Available carries the amount the caller can still allocate.
type InsufficientStockError struct {
	ProductID int
	VariantID *int
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	if e.VariantID != nil {
		return fmt.Sprintf("insufficient stock for product %d variant %d: requested %d, available %d",
			e.ProductID, *e.VariantID, e.Requested, e.Available)
	}
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func NewInsufficientStockError(productID int, variantID *int, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID: productID,
		VariantID: variantID,
		Requested: requested,
		Available: available,
	}
}

func IsInsufficientStockError(err error) (*InsufficientStockError, bool) {
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

// NegativeStockError is the ledger's last-resort integrity guard: a mutation
// that passed validation would still drive a stock record below zero.
type NegativeStockError struct {
	ProductID  int
	VariantID  *int
	LocationID int
	Delta      int
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("stock adjustment of %d for product %d at location %d would result in negative quantity",
		e.Delta, e.ProductID, e.LocationID)
}

func NewNegativeStockError(productID int, variantID *int, locationID, delta int) *NegativeStockError {
	return &NegativeStockError{
		ProductID:  productID,
		VariantID:  variantID,
		LocationID: locationID,
		Delta:      delta,
	}
}

func IsNegativeStockError(err error) (*NegativeStockError, bool) {
	var nse *NegativeStockError
	if errors.As(err, &nse) {
		return nse, true
	}
	return nil, false
}

// ConcurrentModificationError reports contention retries exhausted. Transient:
// the caller may resubmit the whole request.
type ConcurrentModificationError struct {
	Message string
}

func (e *ConcurrentModificationError) Error() string {
	return e.Message
}

func NewConcurrentModificationError(message string) *ConcurrentModificationError {
	return &ConcurrentModificationError{Message: message}
}

func IsConcurrentModificationError(err error) (*ConcurrentModificationError, bool) {
	var cme *ConcurrentModificationError
	if errors.As(err, &cme) {
		return cme, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if errors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

func IsInternalError(err error) (*InternalError, bool) {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
