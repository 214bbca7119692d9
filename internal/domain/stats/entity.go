package stats

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stats are the dashboard figures for one merchant and period.
type Stats struct {
	TotalDue        decimal.Decimal `json:"totalDue" db:"total_due"`
	TotalPayments   decimal.Decimal `json:"totalPayments" db:"total_payments"`
	TotalCredits    decimal.Decimal `json:"totalCredits" db:"total_credits"`
	ClientsWithDebt int             `json:"clientsWithDebt" db:"clients_with_debt"`
	ClientsTotal    int             `json:"clientsTotal" db:"clients_total"`
	OverdueCredits  int             `json:"overdueCredits" db:"overdue_credits"`
}

// Period bounds the transactions counted. Nil bounds are open.
type Period struct {
	From *time.Time
	To   *time.Time
}

func (p Period) key() string {
	format := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("2006-01-02")
	}
	return format(p.From) + ":" + format(p.To)
}
