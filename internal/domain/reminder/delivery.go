package reminder

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/payflow/payflow-api/internal/pkg/email"
	"github.com/payflow/payflow-api/internal/pkg/metrics"
)

const defaultBatchSize = 100

// Mailer sends an email message
type Mailer interface {
	Send(ctx context.Context, msg *email.Message) error
}

// DeliveryWorker drains the outbound notification queue.
type DeliveryWorker struct {
	repo      Repository
	mailer    Mailer
	batchSize int
}

// NewDeliveryWorker creates delivery worker. mailer may be nil; email
// messages then fail.
func NewDeliveryWorker(repo Repository, mailer Mailer, batchSize int) *DeliveryWorker {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &DeliveryWorker{repo: repo, mailer: mailer, batchSize: batchSize}
}

// Start processes a batch on every tick until ctx is done.
func (w *DeliveryWorker) Start(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Delivery worker stopped")
			return nil
		case <-ticker.C:
			if _, err := w.ProcessBatch(ctx); err != nil {
				log.Error().Err(err).Msg("Delivery batch failed")
			}
		}
	}
}

// ProcessBatch delivers one batch of pending messages and returns how many
// were attempted. Outcomes are recorded even when ctx is cancelled; rows not
// yet attempted at cancellation go back to PENDING.
func (w *DeliveryWorker) ProcessBatch(ctx context.Context) (int, error) {
	batch, err := w.repo.ClaimPending(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}
	metrics.PendingDeliveries.Set(float64(len(batch)))

	record := context.WithoutCancel(ctx)
	attempted := 0
	for i, o := range batch {
		if ctx.Err() != nil {
			w.release(record, batch[i:])
			break
		}
		attempted++

		status, err := w.deliver(ctx, o)
		errMsg := ""
		if err != nil {
			status, errMsg = StatusFailed, err.Error()
			log.Warn().Err(err).
				Str("outbound_id", o.ID.String()).
				Str("channel", string(o.Channel)).
				Msg("Outbound delivery failed")
		}
		metrics.Deliveries.WithLabelValues(string(o.Channel), status).Inc()

		if err := w.repo.MarkDelivered(record, o.ID, status, errMsg); err != nil {
			log.Error().Err(err).Str("outbound_id", o.ID.String()).Msg("Failed to record delivery, row is retried after the claim lease")
		}
	}
	return attempted, nil
}

func (w *DeliveryWorker) release(ctx context.Context, rest []*Outbound) {
	ids := make([]uuid.UUID, len(rest))
	for i, o := range rest {
		ids[i] = o.ID
	}
	if err := w.repo.ReleaseClaimed(ctx, ids); err != nil {
		log.Error().Err(err).Int("count", len(ids)).Msg("Failed to release claimed deliveries")
		return
	}
	log.Info().Int("count", len(ids)).Msg("Released unattempted deliveries")
}

// deliver returns the status to record on success.
func (w *DeliveryWorker) deliver(ctx context.Context, o *Outbound) (string, error) {
	switch o.Channel {
	case ChannelInApp:
		// already visible through the merchant's notifications
		return StatusSent, nil
	case ChannelSMS, ChannelWhatsApp:
		if blank(o.CustomerPhone) {
			return "", ErrNoPhone
		}
		// TODO: send through an SMS/WhatsApp gateway once a provider is chosen
		log.Info().
			Str("channel", string(o.Channel)).
			Str("to", o.CustomerPhone.String).
			Str("message", o.Message).
			Msg("No SMS gateway configured, message logged only")
		return StatusLogged, nil
	case ChannelEmail:
		if err := w.sendEmail(ctx, o); err != nil {
			return "", err
		}
		return StatusSent, nil
	default:
		return "", ErrUnknownChannel
	}
}

func (w *DeliveryWorker) sendEmail(ctx context.Context, o *Outbound) error {
	if blank(o.CustomerEmail) {
		return ErrNoEmail
	}
	if w.mailer == nil {
		return email.ErrNotConfigured
	}

	data := email.ReminderData{
		CustomerName: o.CustomerName.String,
		MerchantName: o.MerchantName,
		Overdue:      o.Type == TypeOverdue,
	}
	if o.DueDate.Valid {
		data.DueDate = o.DueDate.Time.Format("02/01/2006")
	}
	if o.Amount.Valid {
		data.Amount = o.Amount.Decimal.StringFixed(2)
	}
	html, err := email.RenderReminder(data)
	if err != nil {
		return err
	}

	return w.mailer.Send(ctx, &email.Message{
		To:          o.CustomerEmail.String,
		ToName:      o.CustomerName.String,
		Subject:     o.Title,
		HTMLContent: html,
		TextContent: o.Message,
	})
}

func blank(s sql.NullString) bool {
	return !s.Valid || strings.TrimSpace(s.String) == ""
}

func sqlTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
