package leave

import "errors"

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrInvalidDateRange     = errors.New("start date cannot be after end date")
	ErrNotPending           = errors.New("only pending leave requests can be processed")
)
