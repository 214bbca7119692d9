package reminder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/payflow/payflow-api/internal/middleware"
)

func newTestRouter(merchantID uuid.UUID, svc *Service) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), middleware.MerchantIDKey, merchantID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Mount("/reminder-settings", h.Routes())
	r.Route("/customers", func(r chi.Router) { h.CustomerRoutes(r) })
	return r
}

func TestSettingsEndpoints(t *testing.T) {
	repo := newFakeRepo()
	merchantID := uuid.New()
	router := newTestRouter(merchantID, NewService(repo, &fakeCustomers{}))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reminder-settings", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rr.Code)
	}
	var got struct {
		Data SettingsResponse `json:"data"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &got)
	if got.Data != (SettingsResponse{DueSoonDaysBefore: 0, OverdueDays1: 3, OverdueDays2: 7, Enabled: true}) {
		t.Fatalf("unexpected defaults %+v", got.Data)
	}

	body := `{"due_soon_days_before":1,"overdue_days_1":-4,"overdue_days_2":14,"enabled":false}`
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/reminder-settings", strings.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("put: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	saved := repo.settings[merchantID]
	if saved == nil || saved.DueSoonDaysBefore != 1 || saved.OverdueDays1 != 3 || saved.OverdueDays2 != 14 || saved.Enabled {
		t.Fatalf("unexpected saved settings %+v", saved)
	}
}

func TestPreferencesEndpoints(t *testing.T) {
	repo := newFakeRepo()
	merchantID, customerID := uuid.New(), uuid.New()
	customers := &fakeCustomers{owned: map[uuid.UUID]uuid.UUID{customerID: merchantID}}
	router := newTestRouter(merchantID, NewService(repo, customers))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/customers/"+uuid.NewString()+"/notification-preferences", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown customer: expected 404, got %d", rr.Code)
	}

	path := "/customers/" + customerID.String() + "/notification-preferences"

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, path, strings.NewReader(`{"preferred_channel":"FAX"}`)))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad channel: expected 422, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, path, strings.NewReader(`{"allow_email":true,"preferred_channel":"EMAIL"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("put: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var got struct {
		Data PreferencesResponse `json:"data"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &got)
	if !got.Data.AllowEmail || !got.Data.AllowInApp || got.Data.EffectiveChannel != ChannelEmail {
		t.Fatalf("unexpected preferences %+v", got.Data)
	}
}
