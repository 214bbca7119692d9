package ledger

import (
	"bytes"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// OpenCredits returns the credits that still carry a balance, in allocation
// priority order: overdue first, then by ascending due date with undated
// credits last, ties broken by ascending id.
func OpenCredits(credits []Credit, now time.Time) []OpenCredit {
	today := dateOf(now)

	open := make([]OpenCredit, 0, len(credits))
	for _, c := range credits {
		if !c.IsOpen() {
			continue
		}
		oc := OpenCredit{
			ID:              c.ID,
			RemainingAmount: c.RemainingAmount,
			DueDate:         c.DueDate,
			CreatedDate:     c.CreatedDate,
			Description:     c.Description,
		}
		if c.DueDate != nil && dateOf(*c.DueDate).Before(today) {
			oc.Overdue = true
		}
		open = append(open, oc)
	}

	sort.SliceStable(open, func(i, j int) bool {
		return less(open[i], open[j])
	})
	return open
}

// TotalDue sums the remaining balance over open credits.
func TotalDue(open []OpenCredit) decimal.Decimal {
	total := decimal.Zero
	for _, c := range open {
		total = total.Add(c.RemainingAmount)
	}
	return total
}

// IsOverdue reports whether a credit with the given due date is overdue at now.
func IsOverdue(dueDate *time.Time, now time.Time) bool {
	if dueDate == nil {
		return false
	}
	return dateOf(*dueDate).Before(dateOf(now))
}

func less(a, b OpenCredit) bool {
	if a.Overdue != b.Overdue {
		return a.Overdue
	}

	switch {
	case a.DueDate != nil && b.DueDate == nil:
		return true
	case a.DueDate == nil && b.DueDate != nil:
		return false
	case a.DueDate != nil && b.DueDate != nil:
		da, db := dateOf(*a.DueDate), dateOf(*b.DueDate)
		if !da.Equal(db) {
			return da.Before(db)
		}
	}

	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// dateOf drops the clock part so due dates compare as UTC calendar days.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
