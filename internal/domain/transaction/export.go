package transaction

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/payflow/payflow-api/internal/pkg/logger"
)

// ObjectStore is the subset of storage.Storage used for statements.
type ObjectStore interface {
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error
	GetURL(key string) string
}

var exportHeader = []string{"date", "customer", "type", "amount", "payment_method", "due_date", "description"}

// Export writes the merchant's statement as CSV to the object store.
func (s *Service) Export(ctx context.Context, merchantID uuid.UUID, req *ExportRequest) (*ExportResponse, error) {
	if s.store == nil {
		return nil, fmt.Errorf("export: storage not configured")
	}
	if req.CustomerID != nil {
		if _, err := s.requireCustomer(ctx, merchantID, *req.CustomerID); err != nil {
			return nil, err
		}
	}

	items, err := s.List(ctx, merchantID, req.From, req.To, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrExportEmpty
	}

	var buf bytes.Buffer
	if err := writeStatement(&buf, items); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s-%s.csv", merchantID, s.now().UTC().Format("20060102-150405"), uuid.NewString()[:8])
	if err := s.store.Put(ctx, key, &buf, "text/csv"); err != nil {
		return nil, fmt.Errorf("export: store statement: %w", err)
	}

	logger.FromContext(ctx).Info().Str("key", key).Int("rows", len(items)).Msg("statement exported")
	return &ExportResponse{Key: key, URL: s.store.GetURL(key), Rows: len(items)}, nil
}

func writeStatement(w io.Writer, items []*Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, t := range items {
		due := ""
		if t.DueDate.Valid {
			due = t.DueDate.Time.Format(dateLayout)
		}
		record := []string{
			t.TransactionDate.Format(dateLayout),
			t.CustomerName,
			string(t.Type),
			t.Amount.StringFixed(2),
			t.PaymentMethod.String,
			due,
			t.Description.String,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
