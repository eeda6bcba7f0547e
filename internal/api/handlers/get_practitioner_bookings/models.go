package get_practitioner_bookings

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/bookings/models"
	"github.com/m04kA/SMC-SessionScheduler/pkg/ptr"
)

// ToServiceRequest формирует запрос к сервису из query параметров.
// from/to принимают RFC 3339 или дату YYYY-MM-DD (полночь UTC).
func ToServiceRequest(practitionerID int64, actor domain.Actor, query url.Values) (*models.GetPractitionerBookingsRequest, error) {
	req := &models.GetPractitionerBookingsRequest{
		Actor:          actor,
		PractitionerID: practitionerID,
	}

	if v := query.Get("from"); v != "" {
		from, err := parseBound(v)
		if err != nil {
			return nil, fmt.Errorf("invalid from: %w", err)
		}
		req.From = ptr.Ptr(from)
	}

	if v := query.Get("to"); v != "" {
		to, err := parseBound(v)
		if err != nil {
			return nil, fmt.Errorf("invalid to: %w", err)
		}
		req.To = ptr.Ptr(to)
	}

	if v := query.Get("status"); v != "" {
		req.Status = ptr.Ptr(v)
	}

	if v := query.Get("includeCancelled"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid includeCancelled: %w", err)
		}
		req.IncludeCancelled = include
	}

	return req, nil
}

func parseBound(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse(domain.DateFormat, v)
}
