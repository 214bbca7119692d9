package transaction

import "errors"

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCreditNotFound   = errors.New("credit not found")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidMethod    = errors.New("invalid payment method")
	ErrInvalidType      = errors.New("invalid type, expected CREDIT or PAYMENT")
	ErrExportEmpty      = errors.New("no transactions to export")
)
