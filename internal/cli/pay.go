package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/payflow/payflow-api/internal/domain/ledger"
	"github.com/payflow/payflow-api/internal/domain/transaction"
	"github.com/payflow/payflow-api/internal/pkg/payflowclient"
)

const userAgent = "payflowctl/1.0"

type payOptions struct {
	api         string
	token       string
	phone       string
	password    string
	customer    string
	amount      string
	method      string
	description string
	dryRun      bool
	timeout     time.Duration
}

func newPayCmd() *cobra.Command {
	opts := &payOptions{}

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Plan a payment locally and record it through the API",
		Long: `Fetches the customer's open credits, runs the automatic allocation locally,
then records the payment with the planned allocations as a manual split.
The API re-validates the split against the credits it holds.`,
		Example: `  payflowctl pay --api http://localhost:8080 --token $PAYFLOW_TOKEN --customer 6f1e... --amount 7500
  payflowctl pay --api http://localhost:8080 --phone +221770000000 --password secret --customer 6f1e... --amount 2000 --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPay(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.api, "api", "http://localhost:8080", "API base URL")
	f.StringVar(&opts.token, "token", os.Getenv("PAYFLOW_TOKEN"), "access token (defaults to $PAYFLOW_TOKEN)")
	f.StringVar(&opts.phone, "phone", "", "merchant phone, used to log in when no token is given")
	f.StringVar(&opts.password, "password", "", "merchant password")
	f.StringVarP(&opts.customer, "customer", "c", "", "customer id")
	f.StringVarP(&opts.amount, "amount", "a", "", "payment amount")
	f.StringVar(&opts.method, "method", string(ledger.MethodCash), "payment method: cash, mobile_money, transfer, other")
	f.StringVarP(&opts.description, "description", "d", "", "payment description")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the plan without recording the payment")
	f.DurationVar(&opts.timeout, "timeout", 15*time.Second, "HTTP timeout")
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func runPay(cmd *cobra.Command, opts *payOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	customerID, err := uuid.Parse(opts.customer)
	if err != nil {
		return fmt.Errorf("invalid --customer %q", opts.customer)
	}
	payment, err := decimal.NewFromString(opts.amount)
	if err != nil {
		return fmt.Errorf("invalid --amount %q", opts.amount)
	}
	method, ok := ledger.ParsePaymentMethod(opts.method)
	if !ok {
		return fmt.Errorf("invalid --method %q", opts.method)
	}

	client := payflowclient.NewClient(opts.api, opts.timeout, userAgent)
	session := payflowclient.Session{AccessToken: opts.token}
	if session.AccessToken == "" {
		if opts.phone == "" || opts.password == "" {
			return fmt.Errorf("either --token or --phone and --password are required")
		}
		if session, err = client.Login(ctx, opts.phone, opts.password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	credits, err := client.GetCredits(ctx, session, customerID)
	if err != nil {
		return fmt.Errorf("fetch credits: %w", err)
	}
	engineCredits, err := payflowclient.LedgerCredits(credits)
	if err != nil {
		return err
	}

	open := ledger.OpenCredits(engineCredits, time.Now())
	plan, err := ledger.Allocate(ledger.Automatic(payment), open)
	if err != nil {
		return err
	}
	printResult(out, open, plan)

	if opts.dryRun {
		return nil
	}

	req := &transaction.CreateRequest{
		CustomerID:    customerID,
		Type:          string(ledger.TxTypePayment),
		Amount:        payment,
		Description:   opts.description,
		PaymentMethod: string(method),
		Allocations:   make([]transaction.AllocationRequest, 0, len(plan.Allocations)),
	}
	for _, a := range plan.Allocations {
		req.Allocations = append(req.Allocations, transaction.AllocationRequest{CreditID: a.CreditID, Amount: a.Amount})
	}

	created, err := client.CreateTransaction(ctx, session, req)
	if err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	fmt.Fprintf(out, "\nrecorded payment %s, customer now owes %s\n",
		created.Transaction.ID, created.CustomerTotalDue.StringFixed(2))
	if created.Allocation != nil {
		for _, w := range created.Allocation.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w.Message)
		}
	}
	return nil
}
