package cli

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/payflow/payflow-api/internal/domain/ledger"
)

// ledgerFile is a TOML snapshot of one customer's credits:
//
//	as_of = 2026-03-15
//
//	[[credits]]
//	id = "0b7c6f1e-8f3a-4d4b-9a51-6f2d5b7c1a10"
//	amount = "5000"
//	remaining = "3000"
//	date = 2026-02-01
//	due = 2026-03-01
type ledgerFile struct {
	AsOf    *time.Time    `toml:"as_of"`
	Credits []ledgerEntry `toml:"credits"`
}

type ledgerEntry struct {
	ID          uuid.UUID        `toml:"id"`
	Amount      decimal.Decimal  `toml:"amount"`
	Remaining   *decimal.Decimal `toml:"remaining"`
	Date        time.Time        `toml:"date"`
	Due         *time.Time       `toml:"due"`
	Description string           `toml:"description"`
}

func loadLedger(path string) (*ledgerFile, error) {
	var f ledgerFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("read ledger %s: unknown key %s", path, undecoded[0])
	}

	seen := make(map[uuid.UUID]bool, len(f.Credits))
	for i, c := range f.Credits {
		if c.ID == uuid.Nil {
			return nil, fmt.Errorf("credit #%d: id is required", i+1)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("credit %s listed twice", c.ID)
		}
		seen[c.ID] = true
		if !c.Amount.IsPositive() {
			return nil, fmt.Errorf("credit %s: amount must be positive", c.ID)
		}
		if c.Date.IsZero() {
			return nil, fmt.Errorf("credit %s: date is required", c.ID)
		}
		if r := c.Remaining; r != nil && (r.IsNegative() || r.GreaterThan(c.Amount)) {
			return nil, fmt.Errorf("credit %s: remaining %s must be between 0 and amount %s", c.ID, r, c.Amount)
		}
	}
	return &f, nil
}

// credits converts entries to engine credits; remaining defaults to amount.
func (f *ledgerFile) credits() []ledger.Credit {
	out := make([]ledger.Credit, 0, len(f.Credits))
	for _, c := range f.Credits {
		remaining := c.Amount
		if c.Remaining != nil {
			remaining = *c.Remaining
		}
		credit := ledger.Credit{
			ID:              c.ID,
			Amount:          c.Amount,
			RemainingAmount: remaining,
			CreatedDate:     calendarDay(c.Date),
			Description:     c.Description,
		}
		if c.Due != nil {
			due := calendarDay(*c.Due)
			credit.DueDate = &due
		}
		out = append(out, credit)
	}
	return out
}

func (f *ledgerFile) now() time.Time {
	if f.AsOf != nil {
		return calendarDay(*f.AsOf)
	}
	return time.Now()
}

// calendarDay keeps the written date. TOML local dates carry the local zone,
// which would otherwise shift them when compared in UTC.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
