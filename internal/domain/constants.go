package domain

// Default scheduling values
const (
	DefaultBookingStepMinutes    = 60
	DefaultRescheduleStepMinutes = 30
	DefaultDurationMinutes       = 60
	DefaultRescheduleCutoffHours = 3
	DefaultMaxParticipants       = 1
)

// Business validation constants
const (
	MinDurationMinutes          = 15
	MaxDurationMinutes          = 480 // 8 hours
	MaxGroupParticipants        = 100
	MaxWindowsPerDay            = 6
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
