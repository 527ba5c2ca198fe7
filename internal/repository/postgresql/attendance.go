package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
	"github.com/geoattend/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	a.id, a.user_id, a.date,
	a.check_in_time, a.check_out_time,
	a.check_in_latitude, a.check_in_longitude,
	a.check_out_latitude, a.check_out_longitude,
	a.status, a.is_late, a.half_day, a.work_duration_hours,
	a.created_at, a.updated_at,
	u.name AS user_name`

type attendanceRepository struct {
	db *database.DB
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.UserID, &att.Date,
		&att.CheckInTime, &att.CheckOutTime,
		&att.CheckInLatitude, &att.CheckInLongitude,
		&att.CheckOutLatitude, &att.CheckOutLongitude,
		&att.Status, &att.IsLate, &att.HalfDay, &att.WorkDurationHours,
		&att.CreatedAt, &att.UpdatedAt,
		&att.UserName,
	)
	return att, err
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify(err)
	}
	return attendances, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	if newAttendance.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
		}
		newAttendance.ID = id.String()
	}

	query := `
		INSERT INTO attendances (
			id, user_id, date, check_in_time, check_in_latitude, check_in_longitude,
			status, is_late, half_day, work_duration_hours
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.ID,
		newAttendance.UserID,
		newAttendance.Date,
		newAttendance.CheckInTime,
		newAttendance.CheckInLatitude,
		newAttendance.CheckInLongitude,
		newAttendance.Status,
		newAttendance.IsLate,
		newAttendance.HalfDay,
		newAttendance.WorkDurationHours,
	).Scan(&newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		if database.IsConstraintViolation(err, attendance.DuplicateConstraint) {
			return attendance.Attendance{}, attendance.ErrDuplicateAttendance
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", database.Classify(err))
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.id = $1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", database.Classify(err))
	}

	return att, nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.user_id = $1
		  AND a.date = $2
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by user and date: %w", database.Classify(err))
	}

	return &att, nil
}

// CheckOut implements attendance.AttendanceRepository.
func (a *attendanceRepository) CheckOut(ctx context.Context, id string, c attendance.CheckOut) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		WITH updated AS (
			UPDATE attendances
			SET check_out_time = $2,
				check_out_latitude = $3,
				check_out_longitude = $4,
				work_duration_hours = $5,
				half_day = $6,
				updated_at = NOW()
			WHERE id = $1
			  AND check_out_time IS NULL
			  AND check_in_time IS NOT NULL
			RETURNING *
		)
		SELECT ` + attendanceColumns + `
		FROM updated a
		LEFT JOIN users u ON u.id = a.user_id
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, id, c.Time, c.Latitude, c.Longitude, c.WorkDurationHours, c.HalfDay))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.Attendance{}, fmt.Errorf("failed to check out attendance: %w", database.Classify(err))
	}

	return att, nil
}

// ListByUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUser(ctx context.Context, userID string, filter attendance.RecordFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "a.user_id = $1"
	args := []interface{}{userID}
	argIdx := 2

	// Date range filters
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	// Status filter
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	return a.page(ctx, q, baseWhere, "a.date DESC", args, argIdx, filter.Page, filter.Limit)
}

// ListByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDate(ctx context.Context, date string, filter attendance.DayFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "a.date = $1"
	args := []interface{}{date}
	argIdx := 2

	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	return a.page(ctx, q, baseWhere, "a.user_id ASC", args, argIdx, filter.Page, filter.Limit)
}

func (a *attendanceRepository) page(ctx context.Context, q database.Querier, where, orderBy string, args []interface{}, argIdx, page, limit int) ([]attendance.Attendance, int64, error) {
	// Count total
	countQuery := "SELECT COUNT(*) FROM attendances a WHERE " + where
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", database.Classify(err))
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendances a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, where, orderBy, argIdx, argIdx+1)

	if limit == 0 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", database.Classify(err))
	}

	attendances, err := collectAttendances(rows)
	if err != nil {
		return nil, 0, err
	}
	return attendances, total, nil
}

// SummarizeDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) SummarizeDate(ctx context.Context, date string) (attendance.DaySummary, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'present'),
			COUNT(*) FILTER (WHERE status = 'late'),
			COUNT(*) FILTER (WHERE status = 'half_day' OR half_day),
			COUNT(*) FILTER (WHERE status = 'absent'),
			COUNT(*) FILTER (WHERE status = 'on_leave')
		FROM attendances
		WHERE date = $1
	`

	var s attendance.DaySummary
	err := q.QueryRow(ctx, query, date).Scan(&s.Total, &s.Present, &s.Late, &s.HalfDay, &s.Absent, &s.OnLeave)
	if err != nil {
		return attendance.DaySummary{}, fmt.Errorf("failed to summarize attendances: %w", database.Classify(err))
	}
	return s, nil
}

// ListUserIDsByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListUserIDsByDate(ctx context.Context, date string) ([]string, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, `SELECT user_id::text FROM attendances WHERE date = $1 ORDER BY user_id`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list recorded users: %w", database.Classify(err))
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan recorded users: %w", database.Classify(err))
	}
	return ids, nil
}

// BulkCreateAbsences implements attendance.AttendanceRepository.
func (a *attendanceRepository) BulkCreateAbsences(ctx context.Context, date string, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return []string{}, nil
	}
	q := GetQuerier(ctx, a.db)

	ids := make([]string, len(userIDs))
	for i := range userIDs {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate attendance id: %w", err)
		}
		ids[i] = id.String()
	}

	query := `
		INSERT INTO attendances (id, user_id, date, status, is_late, half_day, work_duration_hours)
		SELECT t.id::uuid, t.user_id::uuid, $1, 'absent', FALSE, FALSE, 0
		FROM unnest($2::text[], $3::text[]) AS t(id, user_id)
		ON CONFLICT ON CONSTRAINT attendances_user_date_key DO NOTHING
		RETURNING user_id::text
	`

	rows, err := q.Query(ctx, query, date, ids, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to insert absences: %w", database.Classify(err))
	}
	inserted, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to insert absences: %w", database.Classify(err))
	}
	return inserted, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, id string, update attendance.AdminUpdate) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		WITH updated AS (
			UPDATE attendances
			SET status = COALESCE($2, status),
				is_late = COALESCE($3, is_late),
				half_day = COALESCE($4, half_day),
				work_duration_hours = COALESCE($5, work_duration_hours),
				updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + attendanceColumns + `
		FROM updated a
		LEFT JOIN users u ON u.id = a.user_id
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, id, update.Status, update.IsLate, update.HalfDay, update.WorkDurationHours))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", database.Classify(err))
	}

	return att, nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	query := `DELETE FROM attendances WHERE id = $1`

	commandTag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", database.Classify(err))
	}

	if commandTag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
