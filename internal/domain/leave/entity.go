package leave

import "time"

// Leave request statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Leave types.
const (
	TypeSick    = "sick"
	TypeCasual  = "casual"
	TypeAnnual  = "annual"
	TypeHalfDay = "half_day"
	TypeUnpaid  = "unpaid"
)

var ValidTypes = []string{TypeSick, TypeCasual, TypeAnnual, TypeHalfDay, TypeUnpaid}

// LeaveRequest covers the inclusive office-local days from StartDate to EndDate.
// StartDate is the first instant of the first day and EndDate the last instant of the last day.
type LeaveRequest struct {
	ID              string
	UserID          string
	LeaveType       string
	StartDate       time.Time
	EndDate         time.Time
	TotalDays       int
	Reason          string
	Status          string
	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	UserName  *string
	UserEmail *string
}

// Overlaps reports whether the leave shares at least one instant with [start, end).
func (l LeaveRequest) Overlaps(start, end time.Time) bool {
	return l.StartDate.Before(end) && !l.EndDate.Before(start)
}

// Review is the outcome written when an administrator processes a pending request.
type Review struct {
	Status          string
	ReviewedBy      string
	ReviewedAt      time.Time
	RejectionReason *string
}
