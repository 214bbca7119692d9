package ledger

import "github.com/shopspring/decimal"

// ProjectBalance recomputes a customer's total due after a transaction is
// applied. A payment never takes the projected balance below zero.
func ProjectBalance(current decimal.Decimal, txType TxType, amount decimal.Decimal) decimal.Decimal {
	switch txType {
	case TxTypeCredit:
		return current.Add(amount)
	case TxTypePayment:
		next := current.Sub(amount)
		if next.IsNegative() {
			return decimal.Zero
		}
		return next
	default:
		return current
	}
}
