package attendance

import (
	"context"
)

// DuplicateConstraint is the unique constraint on (user_id, date).
const DuplicateConstraint = "attendances_user_date_key"

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create inserts a record. A second record for the same (user, date) fails with ErrDuplicateAttendance.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID returns ErrAttendanceNotFound when no record exists.
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByUserAndDate returns nil without error when the user has no record on date.
	GetByUserAndDate(ctx context.Context, userID string, date string) (*Attendance, error)

	// CheckOut applies the check-out only while the record is still open.
	// It fails with ErrAlreadyCheckedOut when the record was closed concurrently.
	CheckOut(ctx context.Context, id string, checkOut CheckOut) (Attendance, error)

	// ListByUser returns a user's records newest first.
	ListByUser(ctx context.Context, userID string, filter RecordFilter) ([]Attendance, int64, error)

	// ListByDate returns all records of a day.
	ListByDate(ctx context.Context, date string, filter DayFilter) ([]Attendance, int64, error)

	SummarizeDate(ctx context.Context, date string) (DaySummary, error)

	// ListUserIDsByDate returns the ids of users that hold any record on date.
	ListUserIDsByDate(ctx context.Context, date string) ([]string, error)

	// BulkCreateAbsences inserts absent records and skips users that already have one.
	// It returns the ids of users for whom a record was actually inserted.
	BulkCreateAbsences(ctx context.Context, date string, userIDs []string) ([]string, error)

	Update(ctx context.Context, id string, update AdminUpdate) (Attendance, error)
	Delete(ctx context.Context, id string) error
}
