package attendance

import (
	"errors"
	"fmt"
	"math"
)

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrOnApprovedLeave     = errors.New("you are on approved leave today")
	ErrOutsideGeofence     = errors.New("you are outside the office radius")
	ErrNotCheckedIn        = errors.New("cannot check out without checking in first")
	ErrAlreadyCheckedOut   = errors.New("attendance already completed for today")
	ErrDuplicateAttendance = errors.New("attendance already marked for today")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrEmptyUpdate        = errors.New("at least one of status, is_late, half_day, work_duration_hours is required")
)

// OutsideGeofenceError reports how far the caller was from the office.
type OutsideGeofenceError struct {
	Distance      float64
	AllowedRadius float64
}

func NewOutsideGeofenceError(distance, allowedRadius float64) *OutsideGeofenceError {
	return &OutsideGeofenceError{
		Distance:      math.Round(distance),
		AllowedRadius: allowedRadius,
	}
}

func (e *OutsideGeofenceError) Error() string {
	return fmt.Sprintf("you are %.0f meters from the office, allowed radius is %.0f meters", e.Distance, e.AllowedRadius)
}

func (e *OutsideGeofenceError) Is(target error) bool {
	return target == ErrOutsideGeofence
}
