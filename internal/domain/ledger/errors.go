package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount              = errors.New("amount must be a positive number")
	ErrAllocationExceedsPayment   = errors.New("allocations exceed payment amount")
	ErrAllocationExceedsRemaining = errors.New("allocation exceeds credit remaining amount")
	ErrCreditNotOpen              = errors.New("credit is not open for this customer")
	ErrUnknownMode                = errors.New("unknown allocation mode")
)

// ExceedsPaymentError is returned when the sum of allocations is larger than
// the payment itself.
type ExceedsPaymentError struct {
	Payment   decimal.Decimal
	Allocated decimal.Decimal
}

func (e *ExceedsPaymentError) Error() string {
	return fmt.Sprintf("allocations total %s exceeds payment %s", e.Allocated.StringFixed(2), e.Payment.StringFixed(2))
}

func (e *ExceedsPaymentError) Unwrap() error { return ErrAllocationExceedsPayment }

// ExceedsRemainingWarning records a manual allocation that was reduced to the
// credit's remaining balance. It is not fatal.
type ExceedsRemainingWarning struct {
	CreditID  uuid.UUID
	Requested decimal.Decimal
	Applied   decimal.Decimal
}

func (w *ExceedsRemainingWarning) Error() string {
	return fmt.Sprintf("allocation for credit %s reduced from %s to %s", w.CreditID, w.Requested.StringFixed(2), w.Applied.StringFixed(2))
}

func (w *ExceedsRemainingWarning) Unwrap() error { return ErrAllocationExceedsRemaining }
