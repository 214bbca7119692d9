package transaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/payflow/payflow-api/internal/domain/ledger"
)

const dateLayout = "2006-01-02"

// AllocationRequest proposes an amount for one credit
type AllocationRequest struct {
	CreditID uuid.UUID       `json:"creditId" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// CreateRequest for POST /me/transactions
type CreateRequest struct {
	CustomerID      uuid.UUID           `json:"customerId" validate:"required"`
	Type            string              `json:"type" validate:"required,tx_type"`
	Amount          decimal.Decimal     `json:"amount" validate:"money"`
	Description     string              `json:"description" validate:"max=500"`
	TransactionDate string              `json:"transactionDate"`
	DueDate         string              `json:"dueDate"`
	PaymentMethod   string              `json:"paymentMethod" validate:"payment_method"`
	AutoAllocate    bool                `json:"autoAllocate"`
	Allocations     []AllocationRequest `json:"allocations" validate:"dive"`
}

// allocationRequest turns the body into an engine request. Repeated credit
// ids are summed; a negative entry fails before merging so it cannot offset
// another one.
func (r *CreateRequest) allocationRequest() (ledger.Request, error) {
	if r.AutoAllocate {
		return ledger.Automatic(r.Amount), nil
	}
	proposed := make(map[uuid.UUID]decimal.Decimal, len(r.Allocations))
	for _, a := range r.Allocations {
		if a.Amount.IsNegative() {
			return ledger.Request{}, fmt.Errorf("%w: credit %s", ledger.ErrInvalidAmount, a.CreditID)
		}
		proposed[a.CreditID] = proposed[a.CreditID].Add(a.Amount)
	}
	return ledger.Manual(r.Amount, proposed), nil
}

// PreviewRequest for POST /me/customers/{id}/allocations/preview
type PreviewRequest struct {
	Amount      decimal.Decimal     `json:"amount" validate:"money"`
	Mode        string              `json:"mode" validate:"omitempty,oneof=automatic manual"`
	Allocations []AllocationRequest `json:"allocations" validate:"dive"`
}

func (r *PreviewRequest) allocationRequest() (ledger.Request, error) {
	if r.Mode == string(ledger.ModeManual) {
		c := CreateRequest{Amount: r.Amount, Allocations: r.Allocations}
		return c.allocationRequest()
	}
	return ledger.Automatic(r.Amount), nil
}

// ExportRequest for POST /me/transactions/export
type ExportRequest struct {
	CustomerID *uuid.UUID `json:"customerId"`
	From       string     `json:"from"`
	To         string     `json:"to"`
}

// Response represents a transaction in API responses
type Response struct {
	ID              uuid.UUID       `json:"id"`
	CustomerID      uuid.UUID       `json:"customerId"`
	CustomerName    string          `json:"customerName,omitempty"`
	Type            ledger.TxType   `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description,omitempty"`
	TransactionDate string          `json:"transactionDate"`
	DueDate         *string         `json:"dueDate"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// NewResponse converts entity to response
func NewResponse(t *Transaction) Response {
	resp := Response{
		ID:              t.ID,
		CustomerID:      t.CustomerID,
		CustomerName:    t.CustomerName,
		Type:            t.Type,
		Amount:          t.Amount,
		Description:     t.Description.String,
		TransactionDate: t.TransactionDate.Format(dateLayout),
		PaymentMethod:   t.PaymentMethod.String,
		CreatedAt:       t.CreatedAt,
	}
	if t.DueDate.Valid {
		d := t.DueDate.Time.Format(dateLayout)
		resp.DueDate = &d
	}
	return resp
}

// AllocationResponse is one applied allocation
type AllocationResponse struct {
	CreditID uuid.UUID       `json:"creditId"`
	Amount   decimal.Decimal `json:"amount"`
}

// WarningResponse reports a manual amount reduced to the credit's remaining
type WarningResponse struct {
	Code      string          `json:"code"`
	CreditID  uuid.UUID       `json:"creditId"`
	Requested decimal.Decimal `json:"requested"`
	Applied   decimal.Decimal `json:"applied"`
	Message   string          `json:"message"`
}

// AllocationSummary is the engine outcome attached to payments and previews
type AllocationSummary struct {
	Mode           ledger.Mode          `json:"mode"`
	Allocations    []AllocationResponse `json:"allocations"`
	TotalAllocated decimal.Decimal      `json:"totalAllocated"`
	Unallocated    decimal.Decimal      `json:"unallocated"`
	Warnings       []WarningResponse    `json:"warnings,omitempty"`
}

// NewAllocationSummary converts an engine result
func NewAllocationSummary(res *ledger.Result) *AllocationSummary {
	if res == nil {
		return nil
	}
	out := &AllocationSummary{
		Mode:           res.Mode,
		Allocations:    make([]AllocationResponse, 0, len(res.Allocations)),
		TotalAllocated: res.TotalAllocated,
		Unallocated:    res.Unallocated,
	}
	for _, a := range res.Allocations {
		out.Allocations = append(out.Allocations, AllocationResponse{CreditID: a.CreditID, Amount: a.Amount})
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, WarningResponse{
			Code:      "ALLOCATION_EXCEEDS_REMAINING",
			CreditID:  w.CreditID,
			Requested: w.Requested,
			Applied:   w.Applied,
			Message:   w.Error(),
		})
	}
	return out
}

// CreateResponse is returned by POST /me/transactions
type CreateResponse struct {
	Transaction      Response           `json:"transaction"`
	Allocation       *AllocationSummary `json:"allocation,omitempty"`
	CustomerTotalDue decimal.Decimal    `json:"customerTotalDue"`
}

// CreditResponse is an open credit with its remaining balance
type CreditResponse struct {
	ID              uuid.UUID       `json:"id"`
	CustomerID      uuid.UUID       `json:"customerId"`
	Amount          decimal.Decimal `json:"amount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	Description     string          `json:"description,omitempty"`
	TransactionDate string          `json:"transactionDate"`
	DueDate         *string         `json:"dueDate"`
	Overdue         bool            `json:"overdue"`
}

// CreditsResponse is the customer's open ledger
type CreditsResponse struct {
	Credits  []CreditResponse `json:"credits"`
	TotalDue decimal.Decimal  `json:"totalDue"`
}

// PaymentHistoryResponse is one payment applied to a credit
type PaymentHistoryResponse struct {
	PaymentID     uuid.UUID       `json:"paymentId"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"paymentDate"`
	Description   string          `json:"description,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// PreviewResponse is returned by the allocation preview endpoint
type PreviewResponse struct {
	Allocation       *AllocationSummary `json:"allocation"`
	CustomerTotalDue decimal.Decimal    `json:"customerTotalDue"`
	ProjectedDue     decimal.Decimal    `json:"projectedTotalDue"`
}

// ExportResponse points at the stored statement
type ExportResponse struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Rows int    `json:"rows"`
}

// parseDate parses an optional YYYY-MM-DD value.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}
