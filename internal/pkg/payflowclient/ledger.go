package payflowclient

import (
	"fmt"
	"time"

	"github.com/payflow/payflow-api/internal/domain/ledger"
	"github.com/payflow/payflow-api/internal/domain/transaction"
)

const dateLayout = "2006-01-02"

// LedgerCredits converts an API credits payload into engine credits so a
// caller can plan an allocation locally before submitting it.
func LedgerCredits(resp *transaction.CreditsResponse) ([]ledger.Credit, error) {
	out := make([]ledger.Credit, 0, len(resp.Credits))
	for _, c := range resp.Credits {
		created, err := time.Parse(dateLayout, c.TransactionDate)
		if err != nil {
			return nil, fmt.Errorf("credit %s: transaction date: %w", c.ID, err)
		}
		credit := ledger.Credit{
			ID:              c.ID,
			CustomerID:      c.CustomerID,
			Amount:          c.Amount,
			RemainingAmount: c.RemainingAmount,
			CreatedDate:     created,
			Description:     c.Description,
		}
		if c.DueDate != nil {
			due, err := time.Parse(dateLayout, *c.DueDate)
			if err != nil {
				return nil, fmt.Errorf("credit %s: due date: %w", c.ID, err)
			}
			credit.DueDate = &due
		}
		out = append(out, credit)
	}
	return out, nil
}
