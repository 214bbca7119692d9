package reminder

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/payflow/payflow-api/internal/domain/notification"
	"github.com/payflow/payflow-api/internal/pkg/metrics"
)

// Notifier creates in-app notifications for the merchant.
type Notifier interface {
	Create(ctx context.Context, merchantID uuid.UUID, notifType notification.Type, title, body string, data *notification.Data) (*notification.Notification, error)
}

// RunSummary reports one scheduler pass.
type RunSummary struct {
	Merchants int
	Created   int
	Skipped   int
}

// Scheduler generates the daily payment reminders.
type Scheduler struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
}

// NewScheduler creates reminder scheduler
func NewScheduler(repo Repository, notifier Notifier) *Scheduler {
	return &Scheduler{repo: repo, notifier: notifier, now: time.Now}
}

// Start runs a pass every day at hour:minute UTC until ctx is done.
func (s *Scheduler) Start(ctx context.Context, hour, minute int) error {
	for {
		next := nextRun(s.now().UTC(), hour, minute)
		log.Info().Time("next_run", next).Msg("Reminder scheduler waiting")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("Reminder scheduler stopped")
			return nil
		case <-timer.C:
			summary, err := s.RunOnce(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Reminder pass failed")
				continue
			}
			log.Info().
				Int("merchants", summary.Merchants).
				Int("created", summary.Created).
				Int("skipped", summary.Skipped).
				Msg("Reminder pass finished")
		}
	}
}

func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunOnce generates today's reminders for every enabled merchant. A failing
// merchant is logged and does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) (RunSummary, error) {
	var summary RunSummary

	merchants, err := s.repo.EnabledMerchants(ctx)
	if err != nil {
		return summary, fmt.Errorf("list merchants: %w", err)
	}

	today := s.now().UTC()
	for i := range merchants {
		created, skipped, err := s.RunForMerchant(ctx, &merchants[i], today)
		if err != nil {
			log.Error().Err(err).Str("merchant_id", merchants[i].MerchantID.String()).Msg("Reminder generation failed")
			continue
		}
		summary.Merchants++
		summary.Created += created
		summary.Skipped += skipped
	}
	return summary, nil
}

// RunForMerchant handles the three reminder levels for one merchant.
func (s *Scheduler) RunForMerchant(ctx context.Context, ms *MerchantSettings, today time.Time) (created, skipped int, err error) {
	for _, target := range ms.Targets(today) {
		credits, err := s.repo.DueCredits(ctx, ms.MerchantID, target.DueDate)
		if err != nil {
			return created, skipped, fmt.Errorf("due credits level %d: %w", target.Level, err)
		}

		for _, credit := range credits {
			ok, err := s.remind(ctx, ms, target, credit)
			if err != nil {
				return created, skipped, err
			}
			if ok {
				created++
			} else {
				skipped++
			}
		}
	}
	return created, skipped, nil
}

func (s *Scheduler) remind(ctx context.Context, ms *MerchantSettings, target Target, credit DueCredit) (bool, error) {
	prefs, err := s.repo.GetPreferences(ctx, ms.MerchantID, credit.CustomerID)
	if err != nil {
		return false, fmt.Errorf("preferences: %w", err)
	}

	title, body := reminderText(target.Type, credit)
	rem := &Reminder{
		ID:         uuid.New(),
		MerchantID: ms.MerchantID,
		CustomerID: credit.CustomerID,
		CreditID:   credit.CreditID,
		DueDate:    credit.DueDate,
		Level:      target.Level,
		Type:       target.Type,
	}

	var out *Outbound
	if channel := prefs.Channel(); channel != "" {
		out = &Outbound{
			ID:         uuid.New(),
			MerchantID: ms.MerchantID,
			CustomerID: uuid.NullUUID{UUID: credit.CustomerID, Valid: true},
			Channel:    channel,
			Type:       target.Type,
			Title:      title,
			Message:    body,
			DueDate:    sqlTime(credit.DueDate),
			Amount:     decimal.NewNullDecimal(credit.Remaining),
			Status:     StatusPending,
		}
	}

	inserted, err := s.repo.RecordReminder(ctx, rem, out)
	if err != nil {
		return false, err
	}
	if !inserted {
		return false, nil
	}
	metrics.RemindersGenerated.WithLabelValues(strconv.Itoa(target.Level)).Inc()

	notifType := notification.TypeReminderOverdue
	if target.Type == TypeDueSoon {
		notifType = notification.TypeReminderDueSoon
	}
	customerID, creditID := credit.CustomerID, credit.CreditID
	if _, err := s.notifier.Create(ctx, ms.MerchantID, notifType, title, body, &notification.Data{
		CustomerID:    &customerID,
		CreditID:      &creditID,
		ReminderLevel: target.Level,
	}); err != nil {
		log.Warn().Err(err).Str("credit_id", creditID.String()).Msg("Reminder notification not stored")
	}
	return true, nil
}

func reminderText(reminderType string, credit DueCredit) (title, body string) {
	due := credit.DueDate.Format("2006-01-02")
	if reminderType == TypeDueSoon {
		return "Paiement à échéance",
			fmt.Sprintf("Le crédit de %s pour le client %s arrive à échéance le %s (reste %s).",
				credit.Amount.StringFixed(2), credit.CustomerName, due, credit.Remaining.StringFixed(2))
	}
	return "Paiement en retard",
		fmt.Sprintf("Le crédit de %s pour le client %s est en retard depuis le %s (reste %s).",
			credit.Amount.StringFixed(2), credit.CustomerName, due, credit.Remaining.StringFixed(2))
}
