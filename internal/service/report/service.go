package report

import (
	"context"
	"fmt"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
	"github.com/geoattend/attendance-backend-go/internal/domain/leave"
	"github.com/geoattend/attendance-backend-go/internal/domain/report"
	"github.com/geoattend/attendance-backend-go/internal/pkg/calendar"
)

type ReportServiceImpl struct {
	reportRepo     report.ReportRepository
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.LeaveRequestRepository
	cal            *calendar.Calendar
	storeTimeout   time.Duration
}

func NewReportService(reportRepo report.ReportRepository, attendanceRepo attendance.AttendanceRepository, leaveRepo leave.LeaveRequestRepository, cal *calendar.Calendar, storeTimeout time.Duration) report.ReportService {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &ReportServiceImpl{
		reportRepo:     reportRepo,
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		cal:            cal,
		storeTimeout:   storeTimeout,
	}
}

// TodayReport implements report.ReportService.
func (s *ReportServiceImpl) TodayReport(ctx context.Context, userID string) (report.TodayReportResponse, error) {
	today := s.cal.Today()

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	record, err := s.attendanceRepo.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return report.TodayReportResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record == nil {
		return report.TodayReportResponse{Date: today, Status: report.StatusNotMarked}, nil
	}

	return report.TodayReportResponse{
		Date:         today,
		Status:       record.Status,
		CheckInTime:  s.formatTime(record.CheckInTime),
		CheckOutTime: s.formatTime(record.CheckOutTime),
		WorkingHours: record.WorkDurationHours,
		IsLate:       record.IsLate,
		HalfDay:      record.HalfDay,
	}, nil
}

// MonthlySummary implements report.ReportService.
func (s *ReportServiceImpl) MonthlySummary(ctx context.Context, req report.MonthlySummaryRequest) (report.MonthlySummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return report.MonthlySummaryResponse{}, err
	}

	today := s.cal.Today()
	if req.Month == "" {
		req.Month = today[:7]
	}

	firstDay, lastDay, err := s.cal.MonthBounds(req.Month)
	if err != nil {
		return report.MonthlySummaryResponse{}, report.ErrInvalidMonth
	}
	monthStart, _, err := s.cal.DayBounds(firstDay)
	if err != nil {
		return report.MonthlySummaryResponse{}, err
	}
	_, monthEnd, err := s.cal.DayBounds(lastDay)
	if err != nil {
		return report.MonthlySummaryResponse{}, err
	}
	weekStart, err := s.cal.WeekStart(today)
	if err != nil {
		return report.MonthlySummaryResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	counts, err := s.reportRepo.SummarizeUserMonth(ctx, req.UserID, req.Month)
	if err != nil {
		return report.MonthlySummaryResponse{}, fmt.Errorf("failed to summarize month: %w", err)
	}

	leaves, err := s.leaveRepo.CountApprovedCovering(ctx, req.UserID, monthStart, monthEnd)
	if err != nil {
		return report.MonthlySummaryResponse{}, fmt.Errorf("failed to count approved leaves: %w", err)
	}

	weekly, err := s.reportRepo.SumCompletedHours(ctx, req.UserID, weekStart, today)
	if err != nil {
		return report.MonthlySummaryResponse{}, fmt.Errorf("failed to sum weekly hours: %w", err)
	}

	return report.MonthlySummaryResponse{
		UserID: req.UserID,
		Month:  req.Month,
		Counts: report.MonthlyCountsResponse{
			Present:   counts.Present,
			Late:      counts.Late,
			Absent:    counts.Absent,
			Leave:     leaves,
			EarlyOuts: counts.HalfDay,
		},
		WorkingHours: report.WorkingHoursResponse{
			Weekly:  weekly,
			Monthly: counts.Hours,
		},
	}, nil
}

func (s *ReportServiceImpl) formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.In(s.cal.Location()).Format(time.RFC3339)
	return &formatted
}
