package customer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/payflow/payflow-api/internal/middleware"
)

type fakeRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Customer
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[uuid.UUID]*Customer{}}
}

func (f *fakeRepo) List(ctx context.Context, merchantID uuid.UUID) ([]*Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Customer
	for _, c := range f.items {
		if c.MerchantID == merchantID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok || c.MerchantID != merchantID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) Create(ctx context.Context, c *Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.CreatedAt = time.Now()
	f.items[c.ID] = c
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, c *Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.items[c.ID]
	if !ok || existing.MerchantID != c.MerchantID {
		return ErrCustomerNotFound
	}
	f.items[c.ID] = c
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, merchantID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok || c.MerchantID != merchantID {
		return ErrCustomerNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeRepo) TotalDue(ctx context.Context, merchantID, id uuid.UUID) (decimal.Decimal, error) {
	c, _ := f.GetByID(ctx, merchantID, id)
	if c == nil {
		return decimal.Zero, ErrCustomerNotFound
	}
	return c.TotalDue, nil
}

func newTestRouter(repo Repository, merchantID uuid.UUID) http.Handler {
	h := NewHandler(NewService(repo))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), middleware.MerchantIDKey, merchantID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Mount("/customers", h.Routes())
	return r
}

func TestCreateAndList(t *testing.T) {
	merchantID := uuid.New()
	repo := newFakeRepo()
	router := newTestRouter(repo, merchantID)

	body, _ := json.Marshal(CreateRequest{Name: "  Moussa ", Phone: "+221770000001"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/customers/", bytes.NewReader(body)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	var created struct {
		Data Response `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.Data.Name != "Moussa" || !created.Data.TotalDue.IsZero() {
		t.Fatalf("unexpected customer: %+v", created.Data)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/customers/", nil))
	var list struct {
		Data []Response `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if list.Meta.Total != 1 || len(list.Data) != 1 {
		t.Fatalf("expected one customer, got %+v", list)
	}
}

func TestCreateRequiresName(t *testing.T) {
	router := newTestRouter(newFakeRepo(), uuid.New())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/customers/", bytes.NewReader([]byte(`{"phone":"+221770000001"}`))))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
}

func TestOtherMerchantCustomerIsNotFound(t *testing.T) {
	repo := newFakeRepo()
	owner := uuid.New()
	c := &Customer{ID: uuid.New(), MerchantID: owner, Name: "Fatou", TotalDue: decimal.RequireFromString("500")}
	repo.items[c.ID] = c

	router := newTestRouter(repo, uuid.New())

	for _, tc := range []struct {
		method string
		body   string
	}{
		{http.MethodGet, ""},
		{http.MethodPut, `{"name":"x"}`},
		{http.MethodDelete, ""},
	} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(tc.method, "/customers/"+c.ID.String(), bytes.NewReader([]byte(tc.body))))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", tc.method, rr.Code)
		}
	}
}

func TestUpdateKeepsNameWhenBlank(t *testing.T) {
	repo := newFakeRepo()
	merchantID := uuid.New()
	c := &Customer{ID: uuid.New(), MerchantID: merchantID, Name: "Fatou"}
	repo.items[c.ID] = c

	svc := NewService(repo)
	updated, err := svc.Update(context.Background(), merchantID, c.ID, &UpdateRequest{Notes: "paie le vendredi"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Fatou" || updated.Notes.String != "paie le vendredi" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
}
