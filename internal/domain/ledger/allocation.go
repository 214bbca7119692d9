package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mode selects how a payment is distributed over open credits.
type Mode string

const (
	ModeAutomatic Mode = "automatic"
	ModeManual    Mode = "manual"
)

// Request is a payment to distribute. Build it with Automatic or Manual.
type Request struct {
	Mode          Mode
	PaymentAmount decimal.Decimal
	Proposed      map[uuid.UUID]decimal.Decimal
}

// Automatic requests a greedy distribution in ledger priority order.
func Automatic(payment decimal.Decimal) Request {
	return Request{Mode: ModeAutomatic, PaymentAmount: payment}
}

// Manual requests the caller's own per-credit amounts.
func Manual(payment decimal.Decimal, proposed map[uuid.UUID]decimal.Decimal) Request {
	return Request{Mode: ModeManual, PaymentAmount: payment, Proposed: proposed}
}

// Result is a validated allocation of one payment.
type Result struct {
	Mode           Mode
	PaymentAmount  decimal.Decimal
	Allocations    []Allocation
	TotalAllocated decimal.Decimal
	Unallocated    decimal.Decimal
	Warnings       []*ExceedsRemainingWarning
}

// Clamped reports whether any manual amount was reduced.
func (r *Result) Clamped() bool {
	return len(r.Warnings) > 0
}

// AmountFor returns the amount allocated to a credit, zero when none.
func (r *Result) AmountFor(creditID uuid.UUID) decimal.Decimal {
	for _, a := range r.Allocations {
		if a.CreditID == creditID {
			return a.Amount
		}
	}
	return decimal.Zero
}

// Allocate distributes req over the open credits. open must already be in
// priority order (see OpenCredits). The function has no side effects.
func Allocate(req Request, open []OpenCredit) (*Result, error) {
	if !req.PaymentAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var (
		allocations []Allocation
		warnings    []*ExceedsRemainingWarning
		err         error
	)

	switch req.Mode {
	case ModeAutomatic:
		allocations = allocateAutomatic(req.PaymentAmount, open)
	case ModeManual:
		allocations, warnings, err = allocateManual(req.Proposed, open)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, req.Mode)
	}

	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.Amount)
	}
	if total.GreaterThan(req.PaymentAmount) {
		return nil, &ExceedsPaymentError{Payment: req.PaymentAmount, Allocated: total}
	}

	if allocations == nil {
		allocations = []Allocation{}
	}

	return &Result{
		Mode:           req.Mode,
		PaymentAmount:  req.PaymentAmount,
		Allocations:    allocations,
		TotalAllocated: total,
		Unallocated:    req.PaymentAmount.Sub(total),
		Warnings:       warnings,
	}, nil
}

func allocateAutomatic(payment decimal.Decimal, open []OpenCredit) []Allocation {
	left := payment
	var out []Allocation
	for _, c := range open {
		if !left.IsPositive() {
			break
		}
		if !c.RemainingAmount.IsPositive() {
			continue
		}
		amount := decimal.Min(c.RemainingAmount, left)
		out = append(out, Allocation{CreditID: c.ID, Amount: amount})
		left = left.Sub(amount)
	}
	return out
}

func allocateManual(proposed map[uuid.UUID]decimal.Decimal, open []OpenCredit) ([]Allocation, []*ExceedsRemainingWarning, error) {
	known := make(map[uuid.UUID]struct{}, len(open))
	for _, c := range open {
		known[c.ID] = struct{}{}
	}

	for id, amount := range proposed {
		if amount.IsNegative() {
			return nil, nil, fmt.Errorf("%w: credit %s", ErrInvalidAmount, id)
		}
		if _, ok := known[id]; !ok && amount.IsPositive() {
			return nil, nil, fmt.Errorf("%w: %s", ErrCreditNotOpen, id)
		}
	}

	var (
		out      []Allocation
		warnings []*ExceedsRemainingWarning
	)
	// walk in ledger order so the result is independent of map iteration
	for _, c := range open {
		requested, ok := proposed[c.ID]
		if !ok || requested.IsZero() {
			continue
		}
		applied := requested
		if requested.GreaterThan(c.RemainingAmount) {
			applied = c.RemainingAmount
			warnings = append(warnings, &ExceedsRemainingWarning{
				CreditID:  c.ID,
				Requested: requested,
				Applied:   applied,
			})
		}
		if applied.IsPositive() {
			out = append(out, Allocation{CreditID: c.ID, Amount: applied})
		}
	}
	return out, warnings, nil
}
