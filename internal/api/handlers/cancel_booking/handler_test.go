package cancel_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SessionScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-SessionScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/bookings"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/bookings/models"
)

type fakeService struct {
	bookingID int64
	req       *models.CancelBookingRequest
	err       error
}

func (f *fakeService) Cancel(_ context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.CancelBookingResponse, error) {
	f.bookingID = bookingID
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.CancelBookingResponse{BookingID: bookingID, Status: string(domain.StatusCancelled), GraceUsed: req.UseGrace}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var client = domain.Actor{UserID: 7, Role: domain.RoleClient}

func serve(svc *fakeService, target string, body io.Reader) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/bookings/{bookingId}/cancel", NewHandler(svc, nopLogger{}).Handle)

	req := httptest.NewRequest(http.MethodPatch, target, body)
	req = req.WithContext(middleware.WithActor(req.Context(), client))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandle_CancelWithGrace(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, "/bookings/5/cancel", strings.NewReader(`{"cancellationReason":"болею","useGrace":true}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), svc.bookingID)
	assert.Equal(t, client, svc.req.Actor)
	require.NotNil(t, svc.req.CancellationReason)
	assert.Equal(t, "болею", *svc.req.CancellationReason)

	var body models.CancelBookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.GraceUsed)
	assert.Equal(t, "cancelled", body.Status)
}

func TestHandle_EmptyBody(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, "/bookings/5/cancel", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.req.UseGrace)
	assert.Nil(t, svc.req.CancellationReason)
}

func TestHandle_PolicyViolation(t *testing.T) {
	decision := domain.RescheduleDecision{
		HoursUntil: 1.5,
		State:      domain.StateBlockedGraceUsed,
		Reason:     "grace cancellation already used",
	}
	svc := &fakeService{err: fmt.Errorf("cancel: %w", &bookings.PolicyViolationError{Decision: decision})}

	rec := serve(svc, "/bookings/5/cancel", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		handlers.ErrorResponse
		Decision models.PolicyResponse `json:"decision"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "blocked_grace_used", body.Decision.State)
	assert.Equal(t, int64(5), body.Decision.BookingID)
	assert.False(t, body.Decision.Allowed)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{"bad id", "/bookings/x/cancel", nil, http.StatusBadRequest},
		{"not found", "/bookings/5/cancel", bookings.ErrBookingNotFound, http.StatusNotFound},
		{"forbidden", "/bookings/5/cancel", bookings.ErrAccessDenied, http.StatusForbidden},
		{"wrong status", "/bookings/5/cancel", bookings.ErrCannotCancel, http.StatusBadRequest},
		{"internal", "/bookings/5/cancel", bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeService{err: tt.err}, tt.target, nil)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
