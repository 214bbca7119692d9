package reminder

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/payflow/payflow-api/internal/pkg/email"
)

func outbound(channel Channel) *Outbound {
	return &Outbound{
		ID:           uuid.New(),
		MerchantID:   uuid.New(),
		Channel:      channel,
		Type:         TypeOverdue,
		Title:        "Paiement en retard",
		Message:      "Le crédit est en retard",
		DueDate:      sql.NullTime{Time: time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), Valid: true},
		Amount:       decimal.NewNullDecimal(decimal.RequireFromString("2500")),
		MerchantName: "Boutique Fatou",
		CustomerName: sql.NullString{String: "Awa", Valid: true},
	}
}

func TestDeliveryOutcomesPerChannel(t *testing.T) {
	repo := newFakeRepo()
	mailer := &fakeMailer{}
	worker := NewDeliveryWorker(repo, mailer, 0)

	inApp := outbound(ChannelInApp)
	smsNoPhone := outbound(ChannelSMS)
	whatsapp := outbound(ChannelWhatsApp)
	whatsapp.CustomerPhone = sql.NullString{String: "+221770000000", Valid: true}
	mail := outbound(ChannelEmail)
	mail.CustomerEmail = sql.NullString{String: "awa@example.com", Valid: true}
	mailNoAddress := outbound(ChannelEmail)
	unknown := outbound(Channel("PIGEON"))

	repo.pending = []*Outbound{inApp, smsNoPhone, whatsapp, mail, mailNoAddress, unknown}

	n, err := worker.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if n != 6 {
		t.Fatalf("expected 6 processed, got %d", n)
	}

	cases := []struct {
		o      *Outbound
		status string
		errMsg string
	}{
		{inApp, StatusSent, ""},
		{smsNoPhone, StatusFailed, ErrNoPhone.Error()},
		{whatsapp, StatusLogged, ""},
		{mail, StatusSent, ""},
		{mailNoAddress, StatusFailed, ErrNoEmail.Error()},
		{unknown, StatusFailed, ErrUnknownChannel.Error()},
	}
	for _, tc := range cases {
		if repo.marked[tc.o.ID] != tc.status {
			t.Fatalf("%s: expected %s, got %s", tc.o.Channel, tc.status, repo.marked[tc.o.ID])
		}
		if repo.errors[tc.o.ID] != tc.errMsg {
			t.Fatalf("%s: expected error %q, got %q", tc.o.Channel, tc.errMsg, repo.errors[tc.o.ID])
		}
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mailer.sent))
	}
	msg := mailer.sent[0]
	if msg.To != "awa@example.com" || msg.Subject != "Paiement en retard" {
		t.Fatalf("unexpected email %+v", msg)
	}
	if !strings.Contains(msg.HTMLContent, "2500.00") || !strings.Contains(msg.HTMLContent, "12/03/2026") || !strings.Contains(msg.HTMLContent, "en retard") {
		t.Fatalf("unexpected html body: %s", msg.HTMLContent)
	}
}

func TestDeliveryRecordsProviderError(t *testing.T) {
	repo := newFakeRepo()
	worker := NewDeliveryWorker(repo, &fakeMailer{err: errors.New("sendgrid returned status 401")}, 10)

	mail := outbound(ChannelEmail)
	mail.CustomerEmail = sql.NullString{String: "awa@example.com", Valid: true}
	repo.pending = []*Outbound{mail}

	if _, err := worker.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}
	if repo.marked[mail.ID] != StatusFailed || !strings.Contains(repo.errors[mail.ID], "401") {
		t.Fatalf("expected failed with provider error, got %s %q", repo.marked[mail.ID], repo.errors[mail.ID])
	}
}

func TestDeliveryRespectsBatchSize(t *testing.T) {
	repo := newFakeRepo()
	worker := NewDeliveryWorker(repo, nil, 2)
	repo.pending = []*Outbound{outbound(ChannelInApp), outbound(ChannelInApp), outbound(ChannelInApp)}

	n, _ := worker.ProcessBatch(context.Background())
	if n != 2 || len(repo.pending) != 1 {
		t.Fatalf("expected batch of 2 leaving 1, got n=%d left=%d", n, len(repo.pending))
	}
}

// cancelMailer cancels the batch context while sending, like a shutdown
// arriving mid-batch.
type cancelMailer struct {
	cancel context.CancelFunc
}

func (m *cancelMailer) Send(ctx context.Context, msg *email.Message) error {
	m.cancel()
	return ctx.Err()
}

func TestDeliveryRecordsOutcomeAfterShutdown(t *testing.T) {
	repo := newFakeRepo()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker := NewDeliveryWorker(repo, &cancelMailer{cancel: cancel}, 10)

	mail := outbound(ChannelEmail)
	mail.CustomerEmail = sql.NullString{String: "awa@example.com", Valid: true}
	later1, later2 := outbound(ChannelInApp), outbound(ChannelSMS)
	repo.pending = []*Outbound{mail, later1, later2}

	n, err := worker.ProcessBatch(ctx)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 attempted, got %d", n)
	}
	if repo.markCanceled {
		t.Fatal("outcome must be recorded with a context that survives shutdown")
	}
	if repo.marked[mail.ID] != StatusFailed {
		t.Fatalf("expected interrupted email to be FAILED, got %q", repo.marked[mail.ID])
	}
	if len(repo.released) != 2 || repo.released[0] != later1.ID || repo.released[1] != later2.ID {
		t.Fatalf("expected unattempted rows released, got %v", repo.released)
	}
	if _, ok := repo.marked[later1.ID]; ok {
		t.Fatal("unattempted row must not be marked")
	}
}

func TestDeliveryContinuesWhenRecordingFails(t *testing.T) {
	repo := newFakeRepo()
	repo.markErr = errors.New("connection reset")
	worker := NewDeliveryWorker(repo, nil, 10)
	repo.pending = []*Outbound{outbound(ChannelInApp), outbound(ChannelInApp)}

	n, err := worker.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("a recording failure must not fail the batch: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected both rows attempted, got %d", n)
	}
	if len(repo.released) != 0 {
		t.Fatalf("attempted rows are left to the claim lease, got released %v", repo.released)
	}
}

func TestSMSWithoutGatewayIsNotReportedAsSent(t *testing.T) {
	repo := newFakeRepo()
	worker := NewDeliveryWorker(repo, nil, 10)
	sms := outbound(ChannelSMS)
	sms.CustomerPhone = sql.NullString{String: "+221770000000", Valid: true}
	repo.pending = []*Outbound{sms}

	if _, err := worker.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}
	if repo.marked[sms.ID] != StatusLogged {
		t.Fatalf("expected %s, got %q", StatusLogged, repo.marked[sms.ID])
	}
}
