package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/payflow/payflow-api/internal/domain/customer"
	"github.com/payflow/payflow-api/internal/domain/notification"
	"github.com/payflow/payflow-api/internal/pkg/email"
)

type fakeRepo struct {
	settings  map[uuid.UUID]*Settings
	prefs     map[string]*Preferences
	merchants []MerchantSettings
	credits   map[string][]DueCredit // merchant|date
	reminders map[string]bool
	outbound  []*Outbound
	pending   []*Outbound
	marked    map[uuid.UUID]string
	errors    map[uuid.UUID]string
	released  []uuid.UUID

	markErr      error
	markCanceled bool // a MarkDelivered call saw a cancelled context
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		settings:  map[uuid.UUID]*Settings{},
		prefs:     map[string]*Preferences{},
		credits:   map[string][]DueCredit{},
		reminders: map[string]bool{},
		marked:    map[uuid.UUID]string{},
		errors:    map[uuid.UUID]string{},
	}
}

func creditKey(merchantID uuid.UUID, day time.Time) string {
	return merchantID.String() + "|" + day.Format("2006-01-02")
}

func (r *fakeRepo) GetSettings(ctx context.Context, merchantID uuid.UUID) (*Settings, error) {
	if s, ok := r.settings[merchantID]; ok {
		c := *s
		return &c, nil
	}
	return DefaultSettings(merchantID), nil
}

func (r *fakeRepo) SaveSettings(ctx context.Context, s *Settings) error {
	c := *s
	r.settings[s.MerchantID] = &c
	return nil
}

func (r *fakeRepo) GetPreferences(ctx context.Context, merchantID, customerID uuid.UUID) (*Preferences, error) {
	if p, ok := r.prefs[merchantID.String()+customerID.String()]; ok {
		c := *p
		return &c, nil
	}
	return DefaultPreferences(merchantID, customerID), nil
}

func (r *fakeRepo) SavePreferences(ctx context.Context, p *Preferences) error {
	c := *p
	r.prefs[p.MerchantID.String()+p.CustomerID.String()] = &c
	return nil
}

func (r *fakeRepo) EnabledMerchants(ctx context.Context) ([]MerchantSettings, error) {
	return r.merchants, nil
}

func (r *fakeRepo) DueCredits(ctx context.Context, merchantID uuid.UUID, dueDate time.Time) ([]DueCredit, error) {
	return r.credits[creditKey(merchantID, dueDate)], nil
}

func (r *fakeRepo) RecordReminder(ctx context.Context, rem *Reminder, out *Outbound) (bool, error) {
	key := fmt.Sprintf("%s|%s|%s|%s|%d", rem.MerchantID, rem.CustomerID, rem.CreditID, rem.DueDate.Format("2006-01-02"), rem.Level)
	if r.reminders[key] {
		return false, nil
	}
	r.reminders[key] = true
	if out != nil {
		r.outbound = append(r.outbound, out)
	}
	return true, nil
}

func (r *fakeRepo) ClaimPending(ctx context.Context, limit int) ([]*Outbound, error) {
	n := limit
	if n > len(r.pending) {
		n = len(r.pending)
	}
	batch := r.pending[:n]
	r.pending = r.pending[n:]
	return batch, nil
}

func (r *fakeRepo) MarkDelivered(ctx context.Context, id uuid.UUID, status string, errMsg string) error {
	if ctx.Err() != nil {
		r.markCanceled = true
	}
	if r.markErr != nil {
		return r.markErr
	}
	r.marked[id] = status
	r.errors[id] = errMsg
	return nil
}

func (r *fakeRepo) ReleaseClaimed(ctx context.Context, ids []uuid.UUID) error {
	r.released = append(r.released, ids...)
	return nil
}

type fakeNotifier struct {
	created []notification.Type
}

func (n *fakeNotifier) Create(ctx context.Context, merchantID uuid.UUID, notifType notification.Type, title, body string, data *notification.Data) (*notification.Notification, error) {
	n.created = append(n.created, notifType)
	return &notification.Notification{ID: uuid.New(), MerchantID: merchantID, Type: notifType, Title: title}, nil
}

type fakeMailer struct {
	sent []*email.Message
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg *email.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeCustomers struct {
	owned map[uuid.UUID]uuid.UUID // customer -> merchant
}

func (f *fakeCustomers) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*customer.Customer, error) {
	if owner, ok := f.owned[id]; ok && owner == merchantID {
		return &customer.Customer{ID: id, MerchantID: merchantID, Name: "Awa"}, nil
	}
	return nil, nil
}
