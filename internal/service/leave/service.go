package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/leave"
	"github.com/geoattend/attendance-backend-go/internal/pkg/calendar"
)

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	cal          *calendar.Calendar
	storeTimeout time.Duration
}

// CreateLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) CreateLeaveRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	start, _, err := s.cal.DayBounds(req.StartDate)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	lastDayStart, lastDayEnd, err := s.cal.DayBounds(req.EndDate)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	// Whole calendar days, both ends inclusive.
	totalDays := int(math.Round(lastDayStart.Sub(start).Hours()/24)) + 1

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	created, err := s.LeaveRequestRepository.Create(ctx, leave.LeaveRequest{
		UserID:    req.UserID,
		LeaveType: req.LeaveType,
		StartDate: start,
		EndDate:   lastDayEnd.Add(-time.Microsecond),
		TotalDays: totalDays,
		Reason:    req.Reason,
		Status:    leave.StatusPending,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	slog.Info("Leave request submitted", "leave_request_id", created.ID, "user_id", req.UserID, "total_days", totalDays)
	return s.mapToResponse(created), nil
}

// GetLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) GetLeaveRequest(ctx context.Context, requestID string) (leave.LeaveRequestResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	lr, err := s.LeaveRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.LeaveRequestResponse{}, err
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return s.mapToResponse(lr), nil
}

// ListMyLeaveRequests implements leave.LeaveService.
func (s *LeaveServiceImpl) ListMyLeaveRequests(ctx context.Context, userID string, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	requests, total, err := s.LeaveRequestRepository.ListByUser(ctx, userID, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return s.buildList(requests, total, filter), nil
}

// ListPendingLeaveRequests implements leave.LeaveService.
func (s *LeaveServiceImpl) ListPendingLeaveRequests(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	requests, total, err := s.LeaveRequestRepository.ListByStatus(ctx, leave.StatusPending, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list pending leave requests: %w", err)
	}
	return s.buildList(requests, total, filter), nil
}

// ApproveLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) ApproveLeaveRequest(ctx context.Context, req leave.ApproveRequestRequest) (leave.LeaveRequestResponse, error) {
	return s.review(ctx, req.ID, leave.Review{
		Status:     leave.StatusApproved,
		ReviewedBy: req.ReviewerID,
		ReviewedAt: s.cal.Now(),
	})
}

// RejectLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) RejectLeaveRequest(ctx context.Context, req leave.RejectRequestRequest) (leave.LeaveRequestResponse, error) {
	return s.review(ctx, req.ID, leave.Review{
		Status:          leave.StatusRejected,
		ReviewedBy:      req.ReviewerID,
		ReviewedAt:      s.cal.Now(),
		RejectionReason: req.Reason,
	})
}

func (s *LeaveServiceImpl) review(ctx context.Context, id string, review leave.Review) (leave.LeaveRequestResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	reviewed, err := s.LeaveRequestRepository.Review(ctx, id, review)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveRequestNotFound) || errors.Is(err, leave.ErrNotPending) {
			return leave.LeaveRequestResponse{}, err
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to review leave request: %w", err)
	}

	slog.Info("Leave request reviewed", "leave_request_id", id, "status", review.Status, "reviewed_by", review.ReviewedBy)
	return s.mapToResponse(reviewed), nil
}

func (s *LeaveServiceImpl) buildList(requests []leave.LeaveRequest, total int64, filter leave.LeaveRequestFilter) leave.ListLeaveRequestResponse {
	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, lr := range requests {
		responses = append(responses, s.mapToResponse(lr))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return leave.ListLeaveRequestResponse{
		TotalCount:    total,
		Page:          filter.Page,
		Limit:         filter.Limit,
		TotalPages:    totalPages,
		Showing:       showing,
		LeaveRequests: responses,
	}
}

func (s *LeaveServiceImpl) mapToResponse(lr leave.LeaveRequest) leave.LeaveRequestResponse {
	loc := s.cal.Location()
	var reviewedAt *string
	if lr.ReviewedAt != nil {
		formatted := lr.ReviewedAt.In(loc).Format(time.RFC3339)
		reviewedAt = &formatted
	}

	return leave.LeaveRequestResponse{
		ID:              lr.ID,
		UserID:          lr.UserID,
		UserName:        lr.UserName,
		UserEmail:       lr.UserEmail,
		LeaveType:       lr.LeaveType,
		StartDate:       s.cal.DayOf(lr.StartDate),
		EndDate:         s.cal.DayOf(lr.EndDate),
		TotalDays:       lr.TotalDays,
		Reason:          lr.Reason,
		Status:          lr.Status,
		ReviewedBy:      lr.ReviewedBy,
		ReviewedAt:      reviewedAt,
		RejectionReason: lr.RejectionReason,
		CreatedAt:       lr.CreatedAt.In(loc).Format(time.RFC3339),
		UpdatedAt:       lr.UpdatedAt.In(loc).Format(time.RFC3339),
	}
}

func NewLeaveService(leaveRequestRepo leave.LeaveRequestRepository, cal *calendar.Calendar, storeTimeout time.Duration) leave.LeaveService {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &LeaveServiceImpl{
		LeaveRequestRepository: leaveRequestRepo,
		cal:                    cal,
		storeTimeout:           storeTimeout,
	}
}
