package leave

import (
	"context"
)

type LeaveService interface {
	CreateLeaveRequest(ctx context.Context, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	GetLeaveRequest(ctx context.Context, requestID string) (LeaveRequestResponse, error)
	ListMyLeaveRequests(ctx context.Context, userID string, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	ListPendingLeaveRequests(ctx context.Context, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	ApproveLeaveRequest(ctx context.Context, req ApproveRequestRequest) (LeaveRequestResponse, error)
	RejectLeaveRequest(ctx context.Context, req RejectRequestRequest) (LeaveRequestResponse, error)
}
