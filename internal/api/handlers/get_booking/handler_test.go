package get_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SessionScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/bookings"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/bookings/models"
)

type fakeService struct {
	actor        domain.Actor
	status       domain.BookingStatus
	err          error
	policyErr    error
	policyCalled bool
}

func (f *fakeService) GetByID(_ context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	f.actor = actor
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == "" {
		status = domain.StatusScheduled
	}
	return &models.BookingResponse{ID: id, ClientID: actor.UserID, Status: string(status)}, nil
}

func (f *fakeService) ReschedulePolicy(_ context.Context, id int64, _ domain.Actor) (*models.PolicyResponse, error) {
	f.policyCalled = true
	if f.policyErr != nil {
		return nil, f.policyErr
	}
	return &models.PolicyResponse{BookingID: id, Allowed: true, HoursUntil: 26, State: string(domain.StateEligible)}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func serve(svc *fakeService, target string, actor *domain.Actor) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/bookings/{bookingId}", NewHandler(svc, nopLogger{}).Handle)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Success(t *testing.T) {
	svc := &fakeService{}
	actor := domain.Actor{UserID: 3, Role: domain.RoleClient}

	rec := serve(svc, "/bookings/12", &actor)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, actor, svc.actor)

	assert.False(t, svc.policyCalled)

	var body BookingDetailsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(12), body.ID)
	assert.Equal(t, "scheduled", body.Status)
	assert.Nil(t, body.Policy)
}

func TestHandle_WithPolicy(t *testing.T) {
	svc := &fakeService{}
	actor := domain.Actor{UserID: 3, Role: domain.RoleClient}

	rec := serve(svc, "/bookings/12?withPolicy=true", &actor)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.policyCalled)

	var body BookingDetailsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Policy)
	assert.True(t, body.Policy.Allowed)
	assert.Equal(t, "eligible", body.Policy.State)
}

func TestHandle_WithPolicy_SkippedForFinishedBooking(t *testing.T) {
	svc := &fakeService{status: domain.StatusCompleted}
	actor := domain.Actor{UserID: 3, Role: domain.RoleClient}

	rec := serve(svc, "/bookings/12?withPolicy=true", &actor)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.policyCalled)
	assert.NotContains(t, rec.Body.String(), `"policy"`)
}

func TestHandle_Errors(t *testing.T) {
	actor := domain.Actor{UserID: 3, Role: domain.RoleClient}

	tests := []struct {
		name   string
		target string
		actor  *domain.Actor
		err    error
		status int
	}{
		{"bad id", "/bookings/abc", &actor, nil, http.StatusBadRequest},
		{"bad withPolicy", "/bookings/12?withPolicy=maybe", &actor, nil, http.StatusBadRequest},
		{"no actor", "/bookings/12", nil, nil, http.StatusUnauthorized},
		{"not found", "/bookings/12", &actor, bookings.ErrBookingNotFound, http.StatusNotFound},
		{"forbidden", "/bookings/12", &actor, bookings.ErrAccessDenied, http.StatusForbidden},
		{"internal", "/bookings/12", &actor, bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeService{err: tt.err}, tt.target, tt.actor)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
