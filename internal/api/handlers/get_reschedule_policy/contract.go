package get_reschedule_policy

import (
	"context"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/bookings/models"
)

type BookingService interface {
	ReschedulePolicy(ctx context.Context, id int64, actor domain.Actor) (*models.PolicyResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
