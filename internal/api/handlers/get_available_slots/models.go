package get_available_slots

import (
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-SessionScheduler/internal/usecase/get_available_slots"
)

var (
	errMissingDate     = errors.New("date is required")
	errInvalidDate     = errors.New("invalid date")
	errInvalidDuration = errors.New("invalid duration")
	errInvalidBooking  = errors.New("invalid bookingId")
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date            string          `json:"date"`
	PractitionerID  int64           `json:"practitionerId"`
	Flow            string          `json:"flow"`
	DurationMinutes int             `json:"durationMinutes"`
	Slots           []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	StartTime       string `json:"startTime"` // RFC 3339
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Available       bool   `json:"available"`
	Reason          string `json:"reason,omitempty"`
	SpotsLeft       int    `json:"spotsLeft,omitempty"`
	GroupBookingID  int64  `json:"groupBookingId,omitempty"`
}

// ToUseCaseRequest формирует запрос к use case из query параметров.
// Query params: date (обязательный, YYYY-MM-DD), duration, type, flow, bookingId.
func ToUseCaseRequest(practitionerID int64, query url.Values) (*getAvailableSlots.Request, error) {
	dateStr := query.Get("date")
	if dateStr == "" {
		return nil, errMissingDate
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, errInvalidDate
	}

	req := &getAvailableSlots.Request{
		PractitionerID: practitionerID,
		Date:           date,
		SessionType:    domain.SessionIndividual,
		Flow:           domain.FlowBooking,
	}

	if v := query.Get("duration"); v != "" {
		duration, err := strconv.Atoi(v)
		if err != nil {
			return nil, errInvalidDuration
		}
		req.DurationMinutes = duration
	}

	if v := query.Get("type"); v != "" {
		req.SessionType = domain.SessionType(v)
	}

	if v := query.Get("flow"); v != "" {
		req.Flow = domain.SlotFlow(v)
	}

	if v := query.Get("bookingId"); v != "" {
		bookingID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errInvalidBooking
		}
		req.BookingID = bookingID
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			StartTime:       slot.StartTime.Format(time.RFC3339),
			EndTime:         slot.End().Format(time.RFC3339),
			DurationMinutes: slot.DurationMinutes,
			Available:       slot.Available,
			Reason:          string(slot.Reason),
			SpotsLeft:       slot.SpotsLeft,
			GroupBookingID:  slot.GroupBookingID,
		}
	}

	return &AvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		PractitionerID:  resp.PractitionerID,
		Flow:            string(resp.Flow),
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
	}
}
