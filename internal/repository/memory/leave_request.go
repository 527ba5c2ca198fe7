package memory

import (
	"context"
	"sort"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/leave"
)

type leaveRequestRepositoryImpl struct {
	s *Store
}

func NewLeaveRequestRepository(s *Store) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{s: s}
}

func (r *leaveRequestRepositoryImpl) withUser(l leave.LeaveRequest) leave.LeaveRequest {
	if u, ok := r.s.users[l.UserID]; ok {
		l.UserName = ptr(u.Name)
		l.UserEmail = ptr(u.Email)
	}
	return l
}

func (r *leaveRequestRepositoryImpl) list(keep func(leave.LeaveRequest) bool) []leave.LeaveRequest {
	var out []leave.LeaveRequest
	for _, l := range r.s.leaves {
		if keep(l) {
			out = append(out, r.withUser(l))
		}
	}
	return out
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	if err := ctx.Err(); err != nil {
		return leave.LeaveRequest{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if req.ID == "" {
		req.ID = newID()
	}
	if req.Status == "" {
		req.Status = leave.StatusPending
	}
	now := r.s.now()
	req.CreatedAt = now
	req.UpdatedAt = now
	r.s.leaves[req.ID] = req
	return r.withUser(req), nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	if err := ctx.Err(); err != nil {
		return leave.LeaveRequest{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.leaves[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r.withUser(l), nil
}

// ListByUser implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListByUser(ctx context.Context, userID string, f leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := r.list(func(l leave.LeaveRequest) bool { return l.UserID == userID })
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return paginate(items, f.Page, f.Limit), int64(len(items)), nil
}

// ListByStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListByStatus(ctx context.Context, status string, f leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := r.list(func(l leave.LeaveRequest) bool { return l.Status == status })
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return paginate(items, f.Page, f.Limit), int64(len(items)), nil
}

// Review implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Review(ctx context.Context, id string, review leave.Review) (leave.LeaveRequest, error) {
	if err := ctx.Err(); err != nil {
		return leave.LeaveRequest{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.leaves[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if l.Status != leave.StatusPending {
		return leave.LeaveRequest{}, leave.ErrNotPending
	}
	l.Status = review.Status
	l.ReviewedBy = ptr(review.ReviewedBy)
	l.ReviewedAt = ptr(review.ReviewedAt)
	l.RejectionReason = review.RejectionReason
	l.UpdatedAt = r.s.now()
	r.s.leaves[id] = l
	return r.withUser(l), nil
}

func (r *leaveRequestRepositoryImpl) approvedCovering(userID string, start, end time.Time) []leave.LeaveRequest {
	return r.list(func(l leave.LeaveRequest) bool {
		return l.Status == leave.StatusApproved && (userID == "" || l.UserID == userID) && l.Overlaps(start, end)
	})
}

// HasApprovedCovering implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) HasApprovedCovering(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.approvedCovering(userID, start, end)) > 0, nil
}

// ListApprovedUserIDsCovering implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListApprovedUserIDsCovering(ctx context.Context, start, end time.Time) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]struct{})
	var ids []string
	for _, l := range r.approvedCovering("", start, end) {
		if _, ok := seen[l.UserID]; ok {
			continue
		}
		seen[l.UserID] = struct{}{}
		ids = append(ids, l.UserID)
	}
	sort.Strings(ids)
	return ids, nil
}

// CountApprovedCovering implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) CountApprovedCovering(ctx context.Context, userID string, start, end time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.approvedCovering(userID, start, end))), nil
}
