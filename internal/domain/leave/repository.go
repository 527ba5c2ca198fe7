package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	Create(ctx context.Context, req LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	ListByUser(ctx context.Context, userID string, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)
	ListByStatus(ctx context.Context, status string, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)

	// Review moves a pending request to its final status. Non-pending requests fail with ErrNotPending.
	Review(ctx context.Context, id string, review Review) (LeaveRequest, error)

	// HasApprovedCovering reports whether userID holds an approved leave overlapping [start, end).
	HasApprovedCovering(ctx context.Context, userID string, start, end time.Time) (bool, error)

	// ListApprovedUserIDsCovering returns the distinct users holding an approved leave overlapping [start, end).
	ListApprovedUserIDsCovering(ctx context.Context, start, end time.Time) ([]string, error)

	// CountApprovedCovering counts a user's approved leaves overlapping [start, end).
	CountApprovedCovering(ctx context.Context, userID string, start, end time.Time) (int64, error)
}
