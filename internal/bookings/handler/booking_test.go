package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookspace/internal/bookings/service"
	"bookspace/pkg/auth"
	apperrors "bookspace/pkg/errors"
	"bookspace/pkg/logger"
	"bookspace/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBookingService struct {
	service.BookingService

	checkFunc   func(ctx context.Context, req model.AvailabilityRequest) (*model.Availability, error)
	createFunc  func(ctx context.Context, caller auth.Principal, req *model.BookingRequest) (*model.Booking, error)
	getAllFunc  func(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	approveFunc func(ctx context.Context, caller auth.Principal, id, note string) (*model.Booking, error)
	cancelFunc  func(ctx context.Context, caller auth.Principal, id, note string) (*model.Booking, error)
	approvedFn  func(ctx context.Context, from, to *time.Time) ([]*model.Booking, error)
}

func (m *mockBookingService) CheckAvailability(ctx context.Context, req model.AvailabilityRequest) (*model.Availability, error) {
	return m.checkFunc(ctx, req)
}

func (m *mockBookingService) Create(ctx context.Context, caller auth.Principal, req *model.BookingRequest) (*model.Booking, error) {
	return m.createFunc(ctx, caller, req)
}

func (m *mockBookingService) GetAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	return m.getAllFunc(ctx, filter, limit, offset)
}

func (m *mockBookingService) Approve(ctx context.Context, caller auth.Principal, id, note string) (*model.Booking, error) {
	return m.approveFunc(ctx, caller, id, note)
}

func (m *mockBookingService) Cancel(ctx context.Context, caller auth.Principal, id, note string) (*model.Booking, error) {
	return m.cancelFunc(ctx, caller, id, note)
}

func (m *mockBookingService) GetApproved(ctx context.Context, from, to *time.Time) ([]*model.Booking, error) {
	return m.approvedFn(ctx, from, to)
}

const testSecret = "0123456789abcdef0123456789abcdef"

func newRouter(t *testing.T, svc service.BookingService) (*httprouter.Router, *auth.TokenService) {
	t.Helper()
	tokens := auth.NewTokenService(testSecret, time.Hour)
	log := logger.Discard()
	router := httprouter.New()
	NewBookingHandler(svc, auth.NewGuard(tokens, log), log).RegisterRoutes(router)
	return router, tokens
}

func bearer(t *testing.T, tokens *auth.TokenService, p auth.Principal) string {
	t.Helper()
	token, err := tokens.GenerateToken(p)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return "Bearer " + token
}

var (
	user  = auth.Principal{UserID: "65a0000000000000000000b1", Name: "Alice", Role: "user"}
	admin = auth.Principal{UserID: "65a0000000000000000000c1", Name: "Admin", Role: "admin"}
)

func TestCheckAvailability(t *testing.T) {
	var received model.AvailabilityRequest
	svc := &mockBookingService{
		checkFunc: func(ctx context.Context, req model.AvailabilityRequest) (*model.Availability, error) {
			received = req
			return &model.Availability{Available: false, Message: "overlaps with an existing approved booking from 2024-01-01T10:00:00Z to 2024-01-01T12:00:00Z"}, nil
		},
	}
	router, tokens := newRouter(t, svc)

	body := `{"place_id":"65a0000000000000000000a1","event_start_time":"2024-01-01T11:00:00Z","event_end_time":"2024-01-01T13:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/check-availability", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, tokens, user))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if received.PlaceID != "65a0000000000000000000a1" || received.EventStartTime.Hour() != 11 {
		t.Errorf("unexpected request passed to service: %+v", received)
	}

	var resp struct {
		Data model.Availability `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Available || resp.Data.Message == "" {
		t.Errorf("unexpected availability: %+v", resp.Data)
	}
}

func TestCheckAvailability_InvalidRange(t *testing.T) {
	svc := &mockBookingService{
		checkFunc: func(ctx context.Context, req model.AvailabilityRequest) (*model.Availability, error) {
			return nil, apperrors.Validation("event_end_time must be after event_start_time", nil)
		},
	}
	router, tokens := newRouter(t, svc)

	body := `{"place_id":"65a0000000000000000000a1","event_start_time":"2024-01-01T13:00:00Z","event_end_time":"2024-01-01T11:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/check-availability", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, tokens, user))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), apperrors.CodeValidation) {
		t.Errorf("expected validation code in body: %s", w.Body.String())
	}
}

func TestRoutes_Auth(t *testing.T) {
	svc := &mockBookingService{
		getAllFunc: func(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
			return []*model.Booking{}, 0, nil
		},
	}
	router, tokens := newRouter(t, svc)

	tests := []struct {
		name   string
		auth   string
		status int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"user on admin route", bearer(t, tokens, user), http.StatusForbidden},
		{"admin", bearer(t, tokens, admin), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestGetAll_Filters(t *testing.T) {
	var got model.BookingFilter
	var gotLimit int
	var gotOffset int64
	svc := &mockBookingService{
		getAllFunc: func(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
			got, gotLimit, gotOffset = filter, limit, offset
			return []*model.Booking{{ID: "1"}}, 42, nil
		},
	}
	router, tokens := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?status=confirmed&place_id=p1&limit=20&offset=40", nil)
	req.Header.Set("Authorization", bearer(t, tokens, admin))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got.Status != "confirmed" || got.PlaceID != "p1" || gotLimit != 20 || gotOffset != 40 {
		t.Errorf("unexpected filter %+v limit=%d offset=%d", got, gotLimit, gotOffset)
	}

	var resp struct {
		TotalCount int64 `json:"total_count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.TotalCount != 42 {
		t.Errorf("expected total_count 42, got %d (%v)", resp.TotalCount, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/bookings?limit=abc", nil)
	req.Header.Set("Authorization", bearer(t, tokens, admin))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad limit, got %d", w.Code)
	}
}

func TestCreate_PassesCaller(t *testing.T) {
	var gotCaller auth.Principal
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, caller auth.Principal, req *model.BookingRequest) (*model.Booking, error) {
			gotCaller = caller
			return &model.Booking{ID: "b1", UserID: caller.UserID, Status: "pending"}, nil
		},
	}
	router, tokens := newRouter(t, svc)

	body := `{"place_id":"65a0000000000000000000a1","event_title":"Seminar","event_start_time":"2030-01-01T10:00:00Z","event_end_time":"2030-01-01T12:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, tokens, user))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if gotCaller.UserID != user.UserID {
		t.Errorf("expected caller %s, got %s", user.UserID, gotCaller.UserID)
	}
}

func TestCreate_RejectsUnknownFields(t *testing.T) {
	router, tokens := newRouter(t, &mockBookingService{})

	body := `{"place_id":"x","status":"approved"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, tokens, user))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestApprove_ConflictAndNote(t *testing.T) {
	var gotNote string
	svc := &mockBookingService{
		approveFunc: func(ctx context.Context, caller auth.Principal, id, note string) (*model.Booking, error) {
			gotNote = note
			return nil, apperrors.Conflict("overlaps with an existing approved booking from 2024-01-01T10:00:00Z to 2024-01-01T12:00:00Z")
		},
	}
	router, tokens := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/bookings/id/b1/approve", strings.NewReader(`{"note":"see you"}`))
	req.Header.Set("Authorization", bearer(t, tokens, admin))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if gotNote != "see you" {
		t.Errorf("expected note to reach the service, got %q", gotNote)
	}
}

func TestCancel_WithoutBody(t *testing.T) {
	var gotID string
	svc := &mockBookingService{
		cancelFunc: func(ctx context.Context, caller auth.Principal, id, note string) (*model.Booking, error) {
			gotID = id
			return &model.Booking{ID: id, Status: "cancelled"}, nil
		},
	}
	router, tokens := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/bookings/id/b7/cancel", nil)
	req.Header.Set("Authorization", bearer(t, tokens, user))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotID != "b7" {
		t.Errorf("expected id b7, got %s", gotID)
	}
}

func TestGetApproved_Window(t *testing.T) {
	var gotFrom, gotTo *time.Time
	svc := &mockBookingService{
		approvedFn: func(ctx context.Context, from, to *time.Time) ([]*model.Booking, error) {
			gotFrom, gotTo = from, to
			return []*model.Booking{}, nil
		},
	}
	router, tokens := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/approved?from=2024-01-01T00:00:00Z&to=2024-02-01T00:00:00Z", nil)
	req.Header.Set("Authorization", bearer(t, tokens, user))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK || gotFrom == nil || gotTo == nil {
		t.Fatalf("expected window to be parsed, got %d from=%v to=%v", w.Code, gotFrom, gotTo)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/bookings/approved?from=2024-02-01T00:00:00Z&to=2024-01-01T00:00:00Z", nil)
	req.Header.Set("Authorization", bearer(t, tokens, user))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a reversed window, got %d", w.Code)
	}
}
