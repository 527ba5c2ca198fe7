package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/leave"
	"github.com/geoattend/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const leaveRequestColumns = `
	lr.id, lr.user_id, lr.leave_type, lr.start_date, lr.end_date, lr.total_days,
	lr.reason, lr.status, lr.reviewed_by, lr.reviewed_at, lr.rejection_reason,
	lr.created_at, lr.updated_at,
	u.name AS user_name, u.email AS user_email`

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID,
		&lr.UserID,
		&lr.LeaveType,
		&lr.StartDate,
		&lr.EndDate,
		&lr.TotalDays,
		&lr.Reason,
		&lr.Status,
		&lr.ReviewedBy,
		&lr.ReviewedAt,
		&lr.RejectionReason,
		&lr.CreatedAt,
		&lr.UpdatedAt,
		&lr.UserName,
		&lr.UserEmail,
	)
	return lr, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if req.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return leave.LeaveRequest{}, fmt.Errorf("failed to generate leave request id: %w", err)
		}
		req.ID = id.String()
	}
	if req.Status == "" {
		req.Status = leave.StatusPending
	}

	query := `
		INSERT INTO leave_requests (id, user_id, leave_type, start_date, end_date, total_days, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.ID, req.UserID, req.LeaveType, req.StartDate, req.EndDate, req.TotalDays, req.Reason, req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", database.Classify(err))
	}

	return req, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		LEFT JOIN users u ON u.id = lr.user_id
		WHERE lr.id = $1
	`

	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", database.Classify(err))
	}
	return lr, nil
}

func (r *leaveRequestRepositoryImpl) list(ctx context.Context, where string, orderBy string, arg string, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	countQuery := "SELECT COUNT(*) FROM leave_requests lr WHERE " + where
	if err := q.QueryRow(ctx, countQuery, arg).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", database.Classify(err))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests lr
		LEFT JOIN users u ON u.id = lr.user_id
		WHERE %s
		ORDER BY %s
		LIMIT $2 OFFSET $3
	`, leaveRequestColumns, where, orderBy)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := max(filter.Page, 1)

	rows, err := q.Query(ctx, query, arg, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leave requests: %w", database.Classify(err))
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, database.Classify(err)
	}

	return requests, total, nil
}

// ListByUser implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListByUser(ctx context.Context, userID string, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	return r.list(ctx, "lr.user_id = $1", "lr.created_at DESC", userID, filter)
}

// ListByStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListByStatus(ctx context.Context, status string, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	return r.list(ctx, "lr.status = $1", "lr.created_at ASC", status, filter)
}

// Review implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Review(ctx context.Context, id string, review leave.Review) (leave.LeaveRequest, error) {
	var reviewed leave.LeaveRequest

	err := WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		var status string
		err := q.QueryRow(txCtx, `SELECT status FROM leave_requests WHERE id = $1 FOR UPDATE`, id).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return leave.ErrLeaveRequestNotFound
			}
			return fmt.Errorf("failed to lock leave request: %w", database.Classify(err))
		}
		if status != leave.StatusPending {
			return leave.ErrNotPending
		}

		_, err = q.Exec(txCtx, `
			UPDATE leave_requests
			SET status = $2, reviewed_by = $3, reviewed_at = $4, rejection_reason = $5, updated_at = NOW()
			WHERE id = $1
		`, id, review.Status, review.ReviewedBy, review.ReviewedAt, review.RejectionReason)
		if err != nil {
			return fmt.Errorf("failed to review leave request: %w", database.Classify(err))
		}

		reviewed, err = r.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	return reviewed, nil
}

// HasApprovedCovering implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) HasApprovedCovering(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM leave_requests
			WHERE user_id = $1
			  AND status = 'approved'
			  AND start_date < $3
			  AND end_date >= $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, userID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check approved leave: %w", database.Classify(err))
	}
	return exists, nil
}

// ListApprovedUserIDsCovering implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListApprovedUserIDsCovering(ctx context.Context, start, end time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT user_id::text
		FROM leave_requests
		WHERE status = 'approved'
		  AND start_date < $2
		  AND end_date >= $1
		ORDER BY 1
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list users on leave: %w", database.Classify(err))
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan users on leave: %w", database.Classify(err))
	}
	return ids, nil
}

// CountApprovedCovering implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) CountApprovedCovering(ctx context.Context, userID string, start, end time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM leave_requests
		WHERE user_id = $1
		  AND status = 'approved'
		  AND start_date < $3
		  AND end_date >= $2
	`

	var count int64
	if err := q.QueryRow(ctx, query, userID, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count approved leave: %w", database.Classify(err))
	}
	return count, nil
}
