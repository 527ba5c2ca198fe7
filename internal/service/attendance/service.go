package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
	"github.com/geoattend/attendance-backend-go/internal/domain/leave"
	"github.com/geoattend/attendance-backend-go/internal/pkg/calendar"
	"github.com/geoattend/attendance-backend-go/internal/pkg/geo"
	"github.com/geoattend/attendance-backend-go/internal/pkg/metrics"
)

// Policy carries the attendance rules taken from configuration.
type Policy struct {
	Fence           geo.Fence
	MinFullDayHours float64
	StoreTimeout    time.Duration
}

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	leave.LeaveRequestRepository
	cal     *calendar.Calendar
	policy  Policy
	metrics *metrics.Metrics
}

// timePtrToString formats an instant in office-local time.
func (a *AttendanceServiceImpl) timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.In(a.cal.Location()).Format(time.RFC3339)
	return &format
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MarkAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MarkAttendance(ctx context.Context, req attendance.MarkAttendanceRequest) (attendance.MarkAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.MarkAttendanceResponse{}, err
	}

	now := a.cal.Now()
	date := a.cal.DayOf(now)
	dayStart, dayEnd, err := a.cal.DayBounds(date)
	if err != nil {
		return attendance.MarkAttendanceResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.policy.StoreTimeout)
	defer cancel()

	onLeave, err := a.LeaveRequestRepository.HasApprovedCovering(ctx, req.UserID, dayStart, dayEnd)
	if err != nil {
		return attendance.MarkAttendanceResponse{}, fmt.Errorf("failed to check approved leave: %w", err)
	}
	if onLeave {
		a.metrics.Rejection("on_leave")
		return attendance.MarkAttendanceResponse{}, attendance.ErrOnApprovedLeave
	}

	point := geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
	distance, inside, err := a.policy.Fence.Check(point)
	if err != nil {
		return attendance.MarkAttendanceResponse{}, err
	}
	if !inside {
		a.metrics.Rejection("outside_geofence")
		return attendance.MarkAttendanceResponse{}, attendance.NewOutsideGeofenceError(distance, a.policy.Fence.Radius)
	}

	existing, err := a.AttendanceRepository.GetByUserAndDate(ctx, req.UserID, date)
	if err != nil {
		return attendance.MarkAttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	switch {
	case existing == nil:
		return a.checkIn(ctx, req.UserID, date, now, point)
	case existing.CheckedOut():
		a.metrics.Rejection("already_checked_out")
		return attendance.MarkAttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	case !existing.CheckedIn():
		a.metrics.Rejection("not_checked_in")
		return attendance.MarkAttendanceResponse{}, attendance.ErrNotCheckedIn
	default:
		return a.checkOut(ctx, *existing, now, point)
	}
}

func (a *AttendanceServiceImpl) checkIn(ctx context.Context, userID, date string, now time.Time, point geo.Point) (attendance.MarkAttendanceResponse, error) {
	officeStart, err := a.cal.OfficeStartInstant(date)
	if err != nil {
		return attendance.MarkAttendanceResponse{}, err
	}

	isLate := now.After(officeStart)
	status := attendance.StatusPresent
	if isLate {
		status = attendance.StatusLate
	}

	created, err := a.AttendanceRepository.Create(ctx, attendance.Attendance{
		UserID:           userID,
		Date:             date,
		CheckInTime:      &now,
		CheckInLatitude:  &point.Latitude,
		CheckInLongitude: &point.Longitude,
		Status:           status,
		IsLate:           isLate,
	})
	if err != nil {
		if !errors.Is(err, attendance.ErrDuplicateAttendance) {
			return attendance.MarkAttendanceResponse{}, fmt.Errorf("failed to create attendance: %w", err)
		}

		// A concurrent request won the insert; report the stored record.
		current, getErr := a.AttendanceRepository.GetByUserAndDate(ctx, userID, date)
		if getErr != nil {
			return attendance.MarkAttendanceResponse{}, fmt.Errorf("failed to get attendance after conflict: %w", getErr)
		}
		if current == nil {
			return attendance.MarkAttendanceResponse{}, err
		}
		return attendance.MarkAttendanceResponse{
			Action:     attendance.ActionCheckIn,
			Attendance: a.mapAttendanceToResponse(*current),
		}, attendance.ErrDuplicateAttendance
	}

	a.metrics.CheckIn(status)
	slog.Info("Attendance check-in recorded", "user_id", userID, "date", date, "status", status)

	return attendance.MarkAttendanceResponse{
		Action:     attendance.ActionCheckIn,
		Attendance: a.mapAttendanceToResponse(created),
	}, nil
}

func (a *AttendanceServiceImpl) checkOut(ctx context.Context, existing attendance.Attendance, now time.Time, point geo.Point) (attendance.MarkAttendanceResponse, error) {
	hours := round2(now.Sub(*existing.CheckInTime).Hours())
	if hours < 0 {
		hours = 0
	}
	halfDay := existing.HalfDay || hours < a.policy.MinFullDayHours

	updated, err := a.AttendanceRepository.CheckOut(ctx, existing.ID, attendance.CheckOut{
		Time:              now,
		Latitude:          point.Latitude,
		Longitude:         point.Longitude,
		WorkDurationHours: hours,
		HalfDay:           halfDay,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedOut) {
			a.metrics.Rejection("already_checked_out")
			return attendance.MarkAttendanceResponse{}, err
		}
		return attendance.MarkAttendanceResponse{}, fmt.Errorf("failed to check out: %w", err)
	}

	a.metrics.CheckOut(halfDay)
	slog.Info("Attendance check-out recorded", "user_id", existing.UserID, "date", existing.Date, "hours", hours, "half_day", halfDay)

	return attendance.MarkAttendanceResponse{
		Action:     attendance.ActionCheckOut,
		Attendance: a.mapAttendanceToResponse(updated),
	}, nil
}

// GetMyRecords implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyRecords(ctx context.Context, userID string, filter attendance.RecordFilter) (attendance.ListAttendanceResponse, error) {
	return a.listByUser(ctx, userID, filter)
}

// GetRecordsByUser implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetRecordsByUser(ctx context.Context, userID string, filter attendance.RecordFilter) (attendance.ListAttendanceResponse, error) {
	return a.listByUser(ctx, userID, filter)
}

func (a *AttendanceServiceImpl) listByUser(ctx context.Context, userID string, filter attendance.RecordFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.policy.StoreTimeout)
	defer cancel()

	attendances, total, err := a.AttendanceRepository.ListByUser(ctx, userID, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	return a.buildList(attendances, total, filter.Page, filter.Limit), nil
}

// GetRecordsByDay implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetRecordsByDay(ctx context.Context, filter attendance.DayFilter) (attendance.DayAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.DayAttendanceResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.policy.StoreTimeout)
	defer cancel()

	attendances, total, err := a.AttendanceRepository.ListByDate(ctx, filter.Date, filter)
	if err != nil {
		return attendance.DayAttendanceResponse{}, fmt.Errorf("failed to list attendance by date: %w", err)
	}

	summary, err := a.AttendanceRepository.SummarizeDate(ctx, filter.Date)
	if err != nil {
		return attendance.DayAttendanceResponse{}, fmt.Errorf("failed to summarize attendance: %w", err)
	}

	return attendance.DayAttendanceResponse{
		Date: filter.Date,
		Summary: attendance.DaySummaryResponse{
			Total:   summary.Total,
			Present: summary.Present,
			Late:    summary.Late,
			HalfDay: summary.HalfDay,
			Absent:  summary.Absent,
			OnLeave: summary.OnLeave,
		},
		ListAttendanceResponse: a.buildList(attendances, total, filter.Page, filter.Limit),
	}, nil
}

func (a *AttendanceServiceImpl) buildList(attendances []attendance.Attendance, total int64, page, limit int) attendance.ListAttendanceResponse {
	// Map to response
	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, a.mapAttendanceToResponse(att))
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	showing := fmt.Sprintf("%d-%d of %d", (page-1)*limit+1, min(page*limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}
}

// UpdateAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if req.Status != nil {
		status := strings.ToLower(*req.Status)
		req.Status = &status
	}
	if req.WorkDurationHours != nil {
		hours := round2(*req.WorkDurationHours)
		req.WorkDurationHours = &hours
	}

	ctx, cancel := context.WithTimeout(ctx, a.policy.StoreTimeout)
	defer cancel()

	updated, err := a.AttendanceRepository.Update(ctx, req.ID, attendance.AdminUpdate{
		Status:            req.Status,
		IsLate:            req.IsLate,
		HalfDay:           req.HalfDay,
		WorkDurationHours: req.WorkDurationHours,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	slog.Info("Attendance updated by admin", "attendance_id", req.ID)
	return a.mapAttendanceToResponse(updated), nil
}

// DeleteAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) DeleteAttendance(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, a.policy.StoreTimeout)
	defer cancel()

	if err := a.AttendanceRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to delete attendance: %w", err)
	}

	slog.Info("Attendance deleted by admin", "attendance_id", id)
	return nil
}

// mapAttendanceToResponse converts an Attendance entity to AttendanceResponse
func (a *AttendanceServiceImpl) mapAttendanceToResponse(att attendance.Attendance) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:                att.ID,
		UserID:            att.UserID,
		UserName:          att.UserName,
		Date:              att.Date,
		CheckInTime:       a.timePtrToString(att.CheckInTime),
		CheckOutTime:      a.timePtrToString(att.CheckOutTime),
		CheckInLatitude:   att.CheckInLatitude,
		CheckInLongitude:  att.CheckInLongitude,
		CheckOutLatitude:  att.CheckOutLatitude,
		CheckOutLongitude: att.CheckOutLongitude,
		Status:            att.Status,
		IsLate:            att.IsLate,
		HalfDay:           att.HalfDay,
		WorkDurationHours: att.WorkDurationHours,
		CreatedAt:         att.CreatedAt.In(a.cal.Location()).Format(time.RFC3339),
		UpdatedAt:         att.UpdatedAt.In(a.cal.Location()).Format(time.RFC3339),
	}
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRequestRepository,
	cal *calendar.Calendar,
	policy Policy,
	m *metrics.Metrics,
) attendance.AttendanceService {
	if policy.StoreTimeout <= 0 {
		policy.StoreTimeout = 5 * time.Second
	}
	return &AttendanceServiceImpl{
		AttendanceRepository:   attendanceRepo,
		LeaveRequestRepository: leaveRepo,
		cal:                    cal,
		policy:                 policy,
		metrics:                m,
	}
}
