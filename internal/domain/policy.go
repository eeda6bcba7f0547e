package domain

// RescheduleState outcome of the reschedule/cancel cutoff rule
type RescheduleState string

const (
	StateEligible         RescheduleState = "eligible"
	StateBlockedStandard  RescheduleState = "blocked_standard"
	StateBlockedGraceUsed RescheduleState = "blocked_grace_used"
)

// RescheduleDecision result of evaluating the cutoff rule for one booking at "now"
type RescheduleDecision struct {
	Allowed        bool
	HoursUntil     float64
	State          RescheduleState
	Reason         string // заполнено, если Allowed == false
	Notice         string // информационное сообщение для администратора внутри окна отсечки
	GraceAvailable bool
}

// UserRole роль пользователя, приходит от API-шлюза
type UserRole string

const (
	RoleClient       UserRole = "client"
	RolePractitioner UserRole = "practitioner"
	RoleAdmin        UserRole = "admin"
)

// IsValid returns true if the role is known
func (r UserRole) IsValid() bool {
	return r == RoleClient || r == RolePractitioner || r == RoleAdmin
}

// Actor пользователь, выполняющий действие
type Actor struct {
	UserID int64
	Role   UserRole
}

// IsAdmin returns true for administrators
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
