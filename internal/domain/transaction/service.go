package transaction

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/payflow/payflow-api/internal/domain/customer"
	"github.com/payflow/payflow-api/internal/domain/ledger"
	"github.com/payflow/payflow-api/internal/pkg/logger"
	"github.com/payflow/payflow-api/internal/pkg/metrics"
)

// CustomerLookup resolves a merchant's customer, nil when absent.
type CustomerLookup interface {
	GetByID(ctx context.Context, merchantID, id uuid.UUID) (*customer.Customer, error)
}

// StatsInvalidator drops cached dashboard figures after a write.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, merchantID uuid.UUID)
}

// Service handles ledger business logic
type Service struct {
	repo      Repository
	customers CustomerLookup
	stats     StatsInvalidator
	store     ObjectStore
	now       func() time.Time
}

// NewService creates transaction service. stats and store may be nil.
func NewService(repo Repository, customers CustomerLookup, stats StatsInvalidator, store ObjectStore) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		stats:     stats,
		store:     store,
		now:       time.Now,
	}
}

// List returns the merchant's transactions, newest first.
func (s *Service) List(ctx context.Context, merchantID uuid.UUID, from, to string, customerID *uuid.UUID) ([]*Transaction, error) {
	fromDate, err := parseDate(from)
	if err != nil {
		return nil, err
	}
	toDate, err := parseDate(to)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, merchantID, ListFilter{From: fromDate, To: toDate, CustomerID: customerID})
}

// OpenCredits is the credit ledger accessor: the customer's credits with a
// positive remaining amount, in allocation priority order.
func (s *Service) OpenCredits(ctx context.Context, merchantID, customerID uuid.UUID) ([]ledger.OpenCredit, error) {
	if _, err := s.requireCustomer(ctx, merchantID, customerID); err != nil {
		return nil, err
	}
	credits, err := s.repo.ListCredits(ctx, merchantID, customerID)
	if err != nil {
		return nil, err
	}
	return ledger.OpenCredits(credits, s.now()), nil
}

// CreditDetails returns the open credits with the full amounts the read
// endpoint exposes.
func (s *Service) CreditDetails(ctx context.Context, merchantID, customerID uuid.UUID) ([]ledger.Credit, []ledger.OpenCredit, error) {
	if _, err := s.requireCustomer(ctx, merchantID, customerID); err != nil {
		return nil, nil, err
	}
	credits, err := s.repo.ListCredits(ctx, merchantID, customerID)
	if err != nil {
		return nil, nil, err
	}
	return credits, ledger.OpenCredits(credits, s.now()), nil
}

// CreditPayments lists payments allocated to one credit.
func (s *Service) CreditPayments(ctx context.Context, merchantID, customerID, creditID uuid.UUID) ([]PaymentHistory, error) {
	if _, err := s.requireCustomer(ctx, merchantID, customerID); err != nil {
		return nil, err
	}
	return s.repo.CreditPayments(ctx, merchantID, customerID, creditID)
}

// Preview runs the allocation engine against the current ledger without
// writing anything.
func (s *Service) Preview(ctx context.Context, merchantID, customerID uuid.UUID, req *PreviewRequest) (*ledger.Result, decimal.Decimal, error) {
	c, err := s.requireCustomer(ctx, merchantID, customerID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	credits, err := s.repo.ListCredits(ctx, merchantID, customerID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	engineReq, err := req.allocationRequest()
	if err != nil {
		return nil, decimal.Zero, err
	}
	res, err := ledger.Allocate(engineReq, ledger.OpenCredits(credits, s.now()))
	if err != nil {
		return nil, decimal.Zero, err
	}
	return res, c.TotalDue, nil
}

// Create records a credit or a payment. Payments are allocated inside the
// write transaction against freshly locked credit rows.
func (s *Service) Create(ctx context.Context, merchantID uuid.UUID, req *CreateRequest) (*CreateResponse, error) {
	txType := ledger.TxType(req.Type)
	if !txType.IsValid() {
		return nil, ErrInvalidType
	}
	if !req.Amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}

	c, err := s.requireCustomer(ctx, merchantID, req.CustomerID)
	if err != nil {
		return nil, err
	}

	txDate, err := parseDate(req.TransactionDate)
	if err != nil {
		return nil, err
	}
	if txDate == nil {
		today := s.now().UTC().Truncate(24 * time.Hour)
		txDate = &today
	}

	t := &Transaction{
		ID:              uuid.New(),
		MerchantID:      merchantID,
		CustomerID:      c.ID,
		Type:            txType,
		Amount:          req.Amount,
		Description:     nullString(strings.TrimSpace(req.Description)),
		TransactionDate: *txDate,
	}

	var (
		result   *ledger.Result
		allocate AllocateFunc
		mode     ledger.Mode
	)
	switch txType {
	case ledger.TxTypeCredit:
		due, err := parseDate(req.DueDate)
		if err != nil {
			return nil, err
		}
		if due != nil {
			t.DueDate = sql.NullTime{Time: *due, Valid: true}
		}
	case ledger.TxTypePayment:
		method, ok := ledger.ParsePaymentMethod(req.PaymentMethod)
		if !ok {
			return nil, ErrInvalidMethod
		}
		t.PaymentMethod = nullString(string(method))

		engineReq, err := req.allocationRequest()
		if err != nil {
			metrics.Allocations.WithLabelValues(string(ledger.ModeManual), "rejected").Inc()
			return nil, err
		}
		mode = engineReq.Mode
		allocate = func(credits []ledger.Credit) ([]ledger.Allocation, error) {
			res, err := ledger.Allocate(engineReq, ledger.OpenCredits(credits, s.now()))
			if err != nil {
				return nil, err
			}
			result = res
			return res.Allocations, nil
		}
	}

	if err := s.repo.Create(ctx, t, allocate); err != nil {
		if txType == ledger.TxTypePayment && isEngineError(err) {
			metrics.Allocations.WithLabelValues(string(mode), "rejected").Inc()
		}
		return nil, err
	}

	metrics.TransactionsRecorded.WithLabelValues(string(txType)).Inc()
	if result != nil {
		outcome := "ok"
		if result.Clamped() {
			outcome = "clamped"
		}
		metrics.Allocations.WithLabelValues(string(result.Mode), outcome).Inc()
	}

	if s.stats != nil {
		s.stats.Invalidate(ctx, merchantID)
	}

	l := logger.FromContext(ctx).Info().
		Str("transaction_id", t.ID.String()).
		Str("customer_id", t.CustomerID.String()).
		Str("type", string(t.Type)).
		Str("amount", t.Amount.StringFixed(2))
	if result != nil {
		l = l.Int("allocations", len(result.Allocations)).Int("warnings", len(result.Warnings))
	}
	l.Msg("transaction recorded")

	return &CreateResponse{
		Transaction:      NewResponse(t),
		Allocation:       NewAllocationSummary(result),
		CustomerTotalDue: ledger.ProjectBalance(c.TotalDue, txType, t.Amount),
	}, nil
}

func (s *Service) requireCustomer(ctx context.Context, merchantID, customerID uuid.UUID) (*customer.Customer, error) {
	c, err := s.customers.GetByID(ctx, merchantID, customerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCustomerNotFound
	}
	return c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isEngineError reports errors produced by the allocation engine.
func isEngineError(err error) bool {
	return errors.Is(err, ledger.ErrInvalidAmount) ||
		errors.Is(err, ledger.ErrAllocationExceedsPayment) ||
		errors.Is(err, ledger.ErrCreditNotOpen) ||
		errors.Is(err, ledger.ErrUnknownMode)
}
