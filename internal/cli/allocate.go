package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/payflow/payflow-api/internal/domain/ledger"
)

func newAllocateCmd() *cobra.Command {
	var (
		ledgerPath string
		amount     string
		manual     []string
	)

	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Distribute a payment over a TOML ledger snapshot",
		Long: `Runs the allocation engine offline. Without --manual the payment is spread
automatically, oldest and overdue credits first. Each --manual flag proposes
an amount for one credit as CREDIT_ID=AMOUNT.`,
		Example: `  payflowctl allocate --ledger awa.toml --amount 7500
  payflowctl allocate --ledger awa.toml --amount 7500 --manual 0b7c...=5000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			payment, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q", amount)
			}
			f, err := loadLedger(ledgerPath)
			if err != nil {
				return err
			}

			req := ledger.Automatic(payment)
			if len(manual) > 0 {
				proposed, err := parseManual(manual)
				if err != nil {
					return err
				}
				req = ledger.Manual(payment, proposed)
			}

			open := ledger.OpenCredits(f.credits(), f.now())
			result, err := ledger.Allocate(req, open)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), open, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&ledgerPath, "ledger", "l", "", "TOML ledger snapshot")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "payment amount")
	cmd.Flags().StringArrayVarP(&manual, "manual", "m", nil, "manual allocation CREDIT_ID=AMOUNT (repeatable)")
	_ = cmd.MarkFlagRequired("ledger")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func parseManual(pairs []string) (map[uuid.UUID]decimal.Decimal, error) {
	proposed := make(map[uuid.UUID]decimal.Decimal, len(pairs))
	for _, pair := range pairs {
		idPart, amountPart, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --manual %q, expected CREDIT_ID=AMOUNT", pair)
		}
		id, err := uuid.Parse(strings.TrimSpace(idPart))
		if err != nil {
			return nil, fmt.Errorf("invalid credit id in --manual %q", pair)
		}
		value, err := decimal.NewFromString(strings.TrimSpace(amountPart))
		if err != nil {
			return nil, fmt.Errorf("invalid amount in --manual %q", pair)
		}
		proposed[id] = proposed[id].Add(value)
	}
	return proposed, nil
}

func printResult(out io.Writer, open []ledger.OpenCredit, result *ledger.Result) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREDIT\tDUE\tREMAINING\tALLOCATED\tAFTER")
	for _, c := range open {
		allocated := result.AmountFor(c.ID)
		due := "-"
		if c.DueDate != nil {
			due = c.DueDate.Format("2006-01-02")
			if c.Overdue {
				due += " (late)"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			c.ID, due,
			c.RemainingAmount.StringFixed(2),
			allocated.StringFixed(2),
			c.RemainingAmount.Sub(allocated).StringFixed(2))
	}
	tw.Flush()

	fmt.Fprintf(out, "\nmode: %s\npayment: %s\nallocated: %s\nunallocated: %s\n",
		result.Mode,
		result.PaymentAmount.StringFixed(2),
		result.TotalAllocated.StringFixed(2),
		result.Unallocated.StringFixed(2))
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w.Error())
	}
}
