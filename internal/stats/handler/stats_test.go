package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookspace/pkg/auth"
	"bookspace/pkg/logger"
	"bookspace/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockStatsService struct {
	dashboardFunc func(ctx context.Context) (*model.DashboardStats, error)
	byMonthFunc   func(ctx context.Context) ([]model.MonthlyBookings, error)
}

func (m *mockStatsService) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	return m.dashboardFunc(ctx)
}

func (m *mockStatsService) BookingsByMonth(ctx context.Context) ([]model.MonthlyBookings, error) {
	return m.byMonthFunc(ctx)
}

const testSecret = "0123456789abcdef0123456789abcdef"

func serve(t *testing.T, svc *mockStatsService, path string, caller *auth.Principal) *httptest.ResponseRecorder {
	t.Helper()
	tokens := auth.NewTokenService(testSecret, time.Hour)
	log := logger.Discard()
	router := httprouter.New()
	NewStatsHandler(svc, auth.NewGuard(tokens, log), log).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if caller != nil {
		token, err := tokens.GenerateToken(*caller)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDashboard(t *testing.T) {
	svc := &mockStatsService{
		dashboardFunc: func(ctx context.Context) (*model.DashboardStats, error) {
			return &model.DashboardStats{
				TotalPlaces:   model.StatValue{Value: 4, Change: "+0.0%"},
				MonthlyGrowth: model.StatValue{Value: 50, Change: "+50.0%"},
			}, nil
		},
	}

	tests := []struct {
		name       string
		caller     *auth.Principal
		wantStatus int
	}{
		{name: "admin", caller: &auth.Principal{UserID: "65a0000000000000000000c1", Role: "admin"}, wantStatus: http.StatusOK},
		{name: "regular user", caller: &auth.Principal{UserID: "65a0000000000000000000b1", Role: "user"}, wantStatus: http.StatusForbidden},
		{name: "anonymous", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, svc, "/api/v1/stats", tt.caller)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp struct {
				Data model.DashboardStats `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Data.MonthlyGrowth.Change != "+50.0%" {
				t.Errorf("monthly growth change = %q", resp.Data.MonthlyGrowth.Change)
			}
		})
	}
}

func TestBookingsByMonth_ServiceFailure(t *testing.T) {
	svc := &mockStatsService{
		byMonthFunc: func(ctx context.Context) ([]model.MonthlyBookings, error) {
			return nil, errors.New("aggregation failed")
		},
	}

	w := serve(t, svc, "/api/v1/stats/bookings-by-month", &auth.Principal{UserID: "65a0000000000000000000c1", Role: "admin"})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
