package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxType is the kind of ledger transaction a merchant records.
type TxType string

const (
	TxTypeCredit  TxType = "CREDIT"
	TxTypePayment TxType = "PAYMENT"
)

// IsValid reports whether t is a known transaction type.
func (t TxType) IsValid() bool {
	return t == TxTypeCredit || t == TxTypePayment
}

// PaymentMethod is how a payment was received.
type PaymentMethod string

const (
	MethodCash        PaymentMethod = "cash"
	MethodMobileMoney PaymentMethod = "mobile_money"
	MethodTransfer    PaymentMethod = "transfer"
	MethodOther       PaymentMethod = "other"
)

// ParsePaymentMethod normalizes a wire value. The french labels used by older
// clients are accepted as aliases. Empty input maps to cash.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch s {
	case "", "cash":
		return MethodCash, true
	case "mobile_money", "mobile-money":
		return MethodMobileMoney, true
	case "transfer", "virement":
		return MethodTransfer, true
	case "other", "autre":
		return MethodOther, true
	}
	return "", false
}

// Credit is one extension of debt to a customer.
type Credit struct {
	ID              uuid.UUID
	CustomerID      uuid.UUID
	Amount          decimal.Decimal
	RemainingAmount decimal.Decimal
	CreatedDate     time.Time
	DueDate         *time.Time
	Description     string
}

// IsOpen reports whether the credit still carries an outstanding balance.
func (c Credit) IsOpen() bool {
	return c.RemainingAmount.IsPositive()
}

// OpenCredit is the read view of a credit used for allocation.
type OpenCredit struct {
	ID              uuid.UUID
	RemainingAmount decimal.Decimal
	DueDate         *time.Time
	CreatedDate     time.Time
	Description     string
	Overdue         bool
}

// Allocation is the part of one payment applied to one credit.
type Allocation struct {
	CreditID uuid.UUID
	Amount   decimal.Decimal
}
