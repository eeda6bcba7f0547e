package get_availability

import (
	"context"

	"github.com/m04kA/SMC-SessionScheduler/internal/service/availability/models"
)

type AvailabilityService interface {
	GetWeekly(ctx context.Context, practitionerID int64, day *int) (*models.WeeklyResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
