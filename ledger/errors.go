/*
errors.go - Error taxonomy for the ledger engine

ERROR CATEGORIES:
  1. Validation  - malformed input, detected before any store access
  2. Not found   - referenced entity absent
  3. Stock       - requested quantity exceeds available stock
  4. Allocation  - no eligible sales for an explicit payment target
  5. Store       - the underlying store failed; the transaction was rolled back
  6. Snapshot    - commit succeeded but the snapshot could not be written
  7. Backup      - an uploaded database could not be restored

USAGE:
  if errors.Is(err, ledger.ErrInsufficientStock) {
      var se *ledger.InsufficientStockError
      errors.As(err, &se)
  }

SEE ALSO:
  - api/handlers.go: maps these to HTTP status codes
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for malformed input (bad date, negative amount, bad id).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a sale, payment, product, client or sale item is absent.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned when a line asks for more than the product has.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNoEligibleSales is returned when explicit target sales contain no open credit sale of the client.
	ErrNoEligibleSales = errors.New("no eligible sales for payment")

	// ErrDeleteFailed is returned when a delete affected zero rows.
	ErrDeleteFailed = errors.New("delete affected no rows")

	// ErrClientHasSales is returned when deleting a client that sales or payments still reference.
	ErrClientHasSales = errors.New("client has sales or payments")

	// ErrNestedTx is returned when WithTx is called while a transaction is already open.
	ErrNestedTx = errors.New("nested transactions are not supported")

	// ErrStore matches every StoreError.
	ErrStore = errors.New("store error")

	// ErrSnapshotFailed is returned when the mutation committed but the snapshot was not written.
	ErrSnapshotFailed = errors.New("snapshot persistence failed")

	// ErrInvalidBackup is returned when uploaded data is not a usable ledger database.
	ErrInvalidBackup = errors.New("invalid backup")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func notFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InsufficientStockError provides details about a stock shortage.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (ID: %d): available %s, requested %s",
		e.Name, e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// StoreError wraps a failure of the underlying store with the operation that failed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStore, e.Err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// wrapOp gives err the "failed to <op>" context. Domain errors keep their type;
// anything else is treated as a store failure.
func wrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return &StoreError{Op: "failed to " + op, Err: err}
}

func isDomainError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrNoEligibleSales) ||
		errors.Is(err, ErrDeleteFailed) ||
		errors.Is(err, ErrClientHasSales) ||
		errors.Is(err, ErrNestedTx) ||
		errors.Is(err, ErrInvalidBackup) ||
		errors.Is(err, ErrStore)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrNoEligibleSales) ||
		errors.Is(err, ErrClientHasSales) ||
		errors.Is(err, ErrInvalidBackup)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
