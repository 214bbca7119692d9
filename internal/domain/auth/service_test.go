package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/payflow/payflow-api/internal/domain/merchant"
	"github.com/payflow/payflow-api/internal/pkg/jwt"
	"github.com/payflow/payflow-api/internal/pkg/password"
)

type fakeMerchantRepo struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*merchant.Merchant
	createErr error
}

func newFakeMerchantRepo(ms ...*merchant.Merchant) *fakeMerchantRepo {
	f := &fakeMerchantRepo{byID: map[uuid.UUID]*merchant.Merchant{}}
	for _, m := range ms {
		f.byID[m.ID] = m
	}
	return f
}

func (f *fakeMerchantRepo) Create(ctx context.Context, m *merchant.Merchant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	f.byID[m.ID] = m
	return nil
}

func (f *fakeMerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*merchant.Merchant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeMerchantRepo) GetByPhone(ctx context.Context, phone string) (*merchant.Merchant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.byID {
		if m.Phone == phone {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMerchantRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.byID[id]; ok {
		m.PasswordHash = hash
	}
	return nil
}

type fakeRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]uuid.UUID
}

func newFakeRefreshStore() *fakeRefreshStore {
	return &fakeRefreshStore{tokens: map[string]uuid.UUID{}}
}

func (f *fakeRefreshStore) Save(ctx context.Context, hash string, id uuid.UUID, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[hash] = id
	return nil
}

func (f *fakeRefreshStore) Lookup(ctx context.Context, hash string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.tokens[hash]
	if !ok {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	return id, nil
}

func (f *fakeRefreshStore) Delete(ctx context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, hash)
	return nil
}

func newTestService(repo merchant.Repository) (*Service, *fakeRefreshStore) {
	store := newFakeRefreshStore()
	return NewService(repo, jwt.NewService("secret", 24*time.Hour, time.Hour), store), store
}

func TestRegisterNormalizesPhoneAndIssuesTokens(t *testing.T) {
	repo := newFakeMerchantRepo()
	svc, store := newTestService(repo)

	res, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Boutique Awa", Phone: "+221 77 000 00 00", Email: " Awa@Shop.SN ", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Merchant.Phone != "+221770000000" {
		t.Fatalf("expected normalized phone, got %q", res.Merchant.Phone)
	}
	if res.Merchant.Email != "awa@shop.sn" {
		t.Fatalf("expected normalized email, got %q", res.Merchant.Email)
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Fatal("expected tokens")
	}
	if res.Tokens.ExpiresIn != int((24 * time.Hour).Seconds()) {
		t.Fatalf("expected 24h access ttl, got %d", res.Tokens.ExpiresIn)
	}
	if len(store.tokens) != 1 {
		t.Fatalf("expected one stored refresh token, got %d", len(store.tokens))
	}
}

func TestRegisterDuplicatePhone(t *testing.T) {
	repo := newFakeMerchantRepo(&merchant.Merchant{ID: uuid.New(), Phone: "+221770000000"})
	svc, _ := newTestService(repo)

	_, err := svc.Register(context.Background(), &RegisterRequest{Name: "X", Phone: "+221770000000", Password: "secret1"})
	if !errors.Is(err, ErrPhoneAlreadyExists) {
		t.Fatalf("expected ErrPhoneAlreadyExists, got %v", err)
	}
}

func TestRegisterMapsRepositoryConflict(t *testing.T) {
	repo := newFakeMerchantRepo()
	repo.createErr = merchant.ErrEmailTaken
	svc, _ := newTestService(repo)

	_, err := svc.Register(context.Background(), &RegisterRequest{Name: "X", Phone: "+221770000001", Email: "a@b.c", Password: "secret1"})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	hash, _ := password.Hash("secret1")
	m := &merchant.Merchant{ID: uuid.New(), Name: "Awa", Phone: "+221770000000", PasswordHash: hash}
	svc, _ := newTestService(newFakeMerchantRepo(m))

	if _, err := svc.Login(context.Background(), &LoginRequest{Phone: "+221770000000", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login(context.Background(), &LoginRequest{Phone: "+000", Password: "secret1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown phone, got %v", err)
	}
	res, err := svc.Login(context.Background(), &LoginRequest{Phone: "+221 770 000 000", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Merchant.ID != m.ID {
		t.Fatalf("expected merchant %s, got %s", m.ID, res.Merchant.ID)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	hash, _ := password.Hash("secret1")
	m := &merchant.Merchant{ID: uuid.New(), Phone: "+221770000000", PasswordHash: hash}
	svc, _ := newTestService(newFakeMerchantRepo(m))

	first, err := svc.Login(context.Background(), &LoginRequest{Phone: m.Phone, Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	second, err := svc.Refresh(context.Background(), first.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.Tokens.RefreshToken == first.Tokens.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	if _, err := svc.Refresh(context.Background(), first.Tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("old refresh token must be rejected, got %v", err)
	}

	if err := svc.Logout(context.Background(), second.Tokens.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), second.Tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("logged out token must be rejected, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	hash, _ := password.Hash("secret1")
	m := &merchant.Merchant{ID: uuid.New(), Phone: "+221770000000", PasswordHash: hash}
	repo := newFakeMerchantRepo(m)
	svc, _ := newTestService(repo)

	err := svc.ChangePassword(context.Background(), m.ID, &ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "secret2"})
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), m.ID, &ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"}); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if !password.Verify("secret2", m.PasswordHash) {
		t.Fatal("expected new password to verify")
	}
}
