/*
errors.go - Centralized error types for the stock-ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The api package maps these to HTTP statuses via the helper predicates.

ERROR CATEGORIES:
  1. Not-found errors - Holder or SKU resolution failures
  2. Conflict errors - Double cancellation
  3. Validation errors - Malformed manual entries, bad input
  4. Storage errors - Transaction could not commit (retryable)

USAGE:
  if errors.Is(err, ledger.ErrAlreadyCancelled) { ... }

SEE ALSO:
  - mutator.go, recorder.go: Producers of these errors
  - api/handlers.go: HTTP status mapping
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrHolderNotFound is returned when a holder ID does not resolve to a
	// product or variant.
	ErrHolderNotFound = errors.New("holder not found")

	// ErrProductNotFound is returned at sale time when a SKU does not
	// resolve to any stock-bearing holder.
	ErrProductNotFound = errors.New("product not found")

	// ErrSaleNotFound is returned when a sale or transaction ID does not
	// resolve to any recorded sale.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrAlreadyCancelled is returned when cancelling a sale (or transaction)
	// that has already been cancelled. Stock is never credited twice.
	ErrAlreadyCancelled = errors.New("sale already cancelled")

	// ErrStorageFailure is returned when the underlying store could not
	// commit. Transient; the caller may retry.
	ErrStorageFailure = errors.New("storage failure")

	// ErrValidation is the base of all input validation failures.
	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError reports which identifier failed to resolve.
type NotFoundError struct {
	Kind string // "holder" or "sku"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	switch e.Kind {
	case "sku":
		return ErrProductNotFound
	case "sale", "transaction":
		return ErrSaleNotFound
	default:
		return ErrHolderNotFound
	}
}

// AlreadyCancelledError identifies the sale that was cancelled twice.
type AlreadyCancelledError struct {
	SaleID        string
	TransactionID string
}

func (e *AlreadyCancelledError) Error() string {
	if e.SaleID != "" {
		return fmt.Sprintf("sale %s already cancelled", e.SaleID)
	}
	return fmt.Sprintf("transaction %s already fully cancelled", e.TransactionID)
}

func (e *AlreadyCancelledError) Unwrap() error { return ErrAlreadyCancelled }

// ValidationError reports a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StorageError wraps a store-level failure so callers can both inspect the
// cause and match ErrStorageFailure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return ErrStorageFailure }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrAlreadyCancelled)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrHolderNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrSaleNotFound)
}
