package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// MarkAttendance checks the user in, or out when a check-in already exists today.
	MarkAttendance(ctx context.Context, req MarkAttendanceRequest) (MarkAttendanceResponse, error)

	// GetMyRecords retrieves attendance records for the authenticated user
	GetMyRecords(ctx context.Context, userID string, filter RecordFilter) (ListAttendanceResponse, error)

	// GetRecordsByUser retrieves attendance records of any user (admin)
	GetRecordsByUser(ctx context.Context, userID string, filter RecordFilter) (ListAttendanceResponse, error)

	// GetRecordsByDay retrieves all records of one day with a status summary (admin)
	GetRecordsByDay(ctx context.Context, filter DayFilter) (DayAttendanceResponse, error)

	// UpdateAttendance overwrites administrative fields of a record
	UpdateAttendance(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)

	DeleteAttendance(ctx context.Context, id string) error
}
