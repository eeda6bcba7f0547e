package get_availability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SessionScheduler/internal/service/availability"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/availability/models"
)

type fakeService struct {
	day *int
	err error
}

func (f *fakeService) GetWeekly(_ context.Context, practitionerID int64, day *int) (*models.WeeklyResponse, error) {
	f.day = day
	if f.err != nil {
		return nil, f.err
	}
	return &models.WeeklyResponse{
		PractitionerID: practitionerID,
		Windows:        []models.WindowResponse{{DayOfWeek: 1, StartTime: "09:00", EndTime: "18:00"}},
	}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func serve(svc *fakeService, target string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/practitioners/{practitionerId}/availability", NewHandler(svc, nopLogger{}).Handle)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandle(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, "/practitioners/3/availability?day=1")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.day)
	assert.Equal(t, 1, *svc.day)

	var body models.WeeklyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.PractitionerID)
	assert.Len(t, body.Windows, 1)
}

func TestHandle_WholeWeek(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, "/practitioners/3/availability")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.day)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{"bad id", "/practitioners/x/availability", nil, http.StatusBadRequest},
		{"bad day", "/practitioners/3/availability?day=monday", nil, http.StatusBadRequest},
		{"day out of range", "/practitioners/3/availability?day=9", availability.ErrInvalidInput, http.StatusBadRequest},
		{"internal", "/practitioners/3/availability", availability.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeService{err: tt.err}, tt.target)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
