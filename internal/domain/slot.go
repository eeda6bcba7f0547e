package domain

import "time"

// SlotReason explains why a candidate slot cannot be booked
type SlotReason string

const (
	ReasonNone          SlotReason = ""
	ReasonAlreadyBooked SlotReason = "already_booked"
	ReasonInThePast     SlotReason = "in_the_past"
	ReasonGroupFull     SlotReason = "group_full"
)

// CandidateSlot is a computed start time; never persisted
type CandidateSlot struct {
	StartTime       time.Time
	DurationMinutes int
	Available       bool
	Reason          SlotReason
	SpotsLeft       int // свободные места, если слот - присоединение к группе
	GroupBookingID  int64
}

// End returns the moment a session starting at this slot would end
func (s *CandidateSlot) End() time.Time {
	return s.StartTime.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// IsGroupJoin returns true if booking this slot joins an existing group session
func (s *CandidateSlot) IsGroupJoin() bool {
	return s.GroupBookingID != 0
}

// SlotFlow сценарий, для которого строятся слоты
type SlotFlow string

const (
	FlowBooking    SlotFlow = "booking"
	FlowReschedule SlotFlow = "reschedule"
)

// IsValid returns true if the flow is known
func (f SlotFlow) IsValid() bool {
	return f == FlowBooking || f == FlowReschedule
}
