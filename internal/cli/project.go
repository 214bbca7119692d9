package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/payflow/payflow-api/internal/domain/ledger"
)

func newProjectCmd() *cobra.Command {
	var current, txType, amount string

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Show the balance after a prospective transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			cur, err := decimal.NewFromString(current)
			if err != nil {
				return fmt.Errorf("invalid --current %q", current)
			}
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q", amount)
			}
			t := ledger.TxType(strings.ToUpper(txType))
			if !t.IsValid() {
				return fmt.Errorf("invalid --type %q, expected CREDIT or PAYMENT", txType)
			}

			projected := ledger.ProjectBalance(cur, t, amt)
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", cur.StringFixed(2), projected.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&current, "current", "0", "current total due")
	cmd.Flags().StringVar(&txType, "type", "", "CREDIT or PAYMENT")
	cmd.Flags().StringVar(&amount, "amount", "", "transaction amount")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
