package attendance

import (
	"time"
)

// Attendance status values.
const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusHalfDay = "half_day"
	StatusAbsent  = "absent"
	StatusOnLeave = "on_leave"
)

// ValidStatuses lists every status an attendance record may hold.
var ValidStatuses = []string{StatusPresent, StatusLate, StatusHalfDay, StatusAbsent, StatusOnLeave}

// Attendance is the single record a user has for one office-local calendar day.
// Date is "YYYY-MM-DD" in office-local time.
type Attendance struct {
	ID                string
	UserID            string
	Date              string
	CheckInTime       *time.Time
	CheckOutTime      *time.Time
	CheckInLatitude   *float64
	CheckInLongitude  *float64
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	Status            string
	IsLate            bool
	HalfDay           bool
	WorkDurationHours float64
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// DTO
	UserName *string
}

// CheckedIn reports whether the record carries a check-in.
func (a Attendance) CheckedIn() bool {
	return a.CheckInTime != nil
}

// CheckedOut reports whether the record carries a check-out.
func (a Attendance) CheckedOut() bool {
	return a.CheckOutTime != nil
}

// CheckOut holds the fields written by the single check-out transition.
type CheckOut struct {
	Time              time.Time
	Latitude          float64
	Longitude         float64
	WorkDurationHours float64
	HalfDay           bool
}

// AdminUpdate holds the fields an administrator may overwrite. Nil fields are left unchanged.
type AdminUpdate struct {
	Status            *string
	IsLate            *bool
	HalfDay           *bool
	WorkDurationHours *float64
}

// DaySummary aggregates the explicit records of one day. Users without a record are not counted.
type DaySummary struct {
	Total   int64
	Present int64
	Late    int64
	HalfDay int64
	Absent  int64
	OnLeave int64
}
