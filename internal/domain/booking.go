package domain

import (
	"time"
)

// BookingStatus represents the status of a session booking
type BookingStatus string

const (
	StatusScheduled  BookingStatus = "scheduled"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// IsValid returns true if the status is one of the known statuses
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo returns true if a booking may move from s to next.
// Cancellation has its own flow and is not a plain transition.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case StatusScheduled:
		return next == StatusInProgress || next == StatusCompleted
	case StatusInProgress:
		return next == StatusCompleted
	default:
		return false
	}
}

// SessionType 1:1 или групповое занятие
type SessionType string

const (
	SessionIndividual SessionType = "individual"
	SessionGroup      SessionType = "group"
)

// SessionLocation формат проведения
type SessionLocation string

const (
	LocationOnline   SessionLocation = "online"
	LocationInPerson SessionLocation = "in_person"
)

// Booking represents a scheduled session occupying practitioner time
type Booking struct {
	ID                  int64
	ClientID            int64
	PractitionerID      int64
	ScheduledAt         time.Time
	DurationMinutes     int
	MaxParticipants     int // > 1 означает групповое занятие
	CurrentParticipants int
	Location            SessionLocation
	Status              BookingStatus
	Notes               *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// End returns the moment the session ends
func (b *Booking) End() time.Time {
	return b.ScheduledAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// IsActive returns true if the booking occupies practitioner time
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// IsGroup returns true for group sessions
func (b *Booking) IsGroup() bool {
	return b.MaxParticipants > 1
}

// SessionType возвращает тип занятия, выведенный из вместимости
func (b *Booking) SessionType() SessionType {
	if b.IsGroup() {
		return SessionGroup
	}
	return SessionIndividual
}

// SpotsLeft returns the number of free places in a group session
func (b *Booking) SpotsLeft() int {
	left := b.MaxParticipants - b.CurrentParticipants
	if left < 0 {
		return 0
	}
	return left
}

// HasCapacity returns true if a group session can accept one more participant
func (b *Booking) HasCapacity() bool {
	return b.IsGroup() && b.CurrentParticipants < b.MaxParticipants
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusScheduled
}

// CanBeRescheduled returns true if the booking can be moved to another time
func (b *Booking) CanBeRescheduled() bool {
	return b.Status == StatusScheduled
}

// IsOwnedBy returns true if the client booked this session
func (b *Booking) IsOwnedBy(clientID int64) bool {
	return b.ClientID == clientID
}

// PractitionerBookingsFilter фильтр для получения бронирований практика
type PractitionerBookingsFilter struct {
	PractitionerID   int64          // Обязательный параметр
	From             *time.Time     // Начало периода (включительно), nil - без ограничения
	To               *time.Time     // Конец периода (не включительно), nil - без ограничения
	Status           *BookingStatus // Фильтр по статусу (опционально)
	IncludeCancelled bool           // Включать ли отмененные бронирования
}
