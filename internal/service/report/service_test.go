package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
	"github.com/geoattend/attendance-backend-go/internal/domain/leave"
	"github.com/geoattend/attendance-backend-go/internal/domain/report"
	"github.com/geoattend/attendance-backend-go/internal/domain/user"
	"github.com/geoattend/attendance-backend-go/internal/pkg/calendar"
	"github.com/geoattend/attendance-backend-go/internal/pkg/validator"
	"github.com/geoattend/attendance-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportFixture struct {
	svc        report.ReportService
	attendance attendance.AttendanceRepository
	leaves     leave.LeaveRequestRepository
	cal        *calendar.Calendar
	userID     string
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	store := memory.NewStore()
	// Friday 2024-05-10 20:00 at UTC+5.
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	cal := calendar.New(5*time.Hour, calendar.TimeOfDay{Hour: 9}, func() time.Time { return now })

	f := &reportFixture{
		attendance: memory.NewAttendanceRepository(store),
		leaves:     memory.NewLeaveRequestRepository(store),
		cal:        cal,
		userID:     store.PutUser(user.User{Name: "Sara", Email: "sara@example.com", Role: user.RoleEmployee, IsActive: true}).ID,
	}
	f.svc = NewReportService(memory.NewReportRepository(store), f.attendance, f.leaves, cal, time.Second)
	return f
}

func (f *reportFixture) record(t *testing.T, date, status string, late, halfDay bool, hours float64) {
	t.Helper()
	a := attendance.Attendance{UserID: f.userID, Date: date, Status: status, IsLate: late, HalfDay: halfDay, WorkDurationHours: hours}
	if status != attendance.StatusAbsent {
		in, err := f.cal.At(date, calendar.TimeOfDay{Hour: 9})
		require.NoError(t, err)
		out := in.Add(time.Duration(hours * float64(time.Hour)))
		a.CheckInTime = &in
		a.CheckOutTime = &out
	}
	_, err := f.attendance.Create(context.Background(), a)
	require.NoError(t, err)
}

func (f *reportFixture) leave(t *testing.T, from, to string, approve bool) {
	t.Helper()
	ctx := context.Background()
	start, _, err := f.cal.DayBounds(from)
	require.NoError(t, err)
	_, end, err := f.cal.DayBounds(to)
	require.NoError(t, err)

	lr, err := f.leaves.Create(ctx, leave.LeaveRequest{UserID: f.userID, LeaveType: leave.TypeAnnual, StartDate: start, EndDate: end.Add(-time.Microsecond), Reason: "away"})
	require.NoError(t, err)
	if approve {
		_, err = f.leaves.Review(ctx, lr.ID, leave.Review{Status: leave.StatusApproved, ReviewedBy: "admin", ReviewedAt: time.Now()})
		require.NoError(t, err)
	}
}

func TestTodayReport(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	resp, err := f.svc.TodayReport(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10", resp.Date)
	assert.Equal(t, report.StatusNotMarked, resp.Status)
	assert.Nil(t, resp.CheckInTime)

	f.record(t, "2024-05-10", attendance.StatusLate, true, false, 6.5)

	resp, err = f.svc.TodayReport(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, resp.Status)
	assert.True(t, resp.IsLate)
	assert.Equal(t, 6.5, resp.WorkingHours)
	require.NotNil(t, resp.CheckInTime)
	assert.Equal(t, "2024-05-10T09:00:00+05:00", *resp.CheckInTime)
	require.NotNil(t, resp.CheckOutTime)
	assert.Equal(t, "2024-05-10T15:30:00+05:00", *resp.CheckOutTime)
}

func TestMonthlySummary(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	f.record(t, "2024-04-30", attendance.StatusPresent, false, false, 8)
	f.record(t, "2024-05-02", attendance.StatusPresent, false, false, 7.5)
	f.record(t, "2024-05-06", attendance.StatusPresent, false, false, 8)
	f.record(t, "2024-05-07", attendance.StatusLate, true, true, 4)
	f.record(t, "2024-05-08", attendance.StatusAbsent, false, false, 0)

	f.leave(t, "2024-04-29", "2024-05-01", true)
	f.leave(t, "2024-05-20", "2024-05-21", true)
	f.leave(t, "2024-05-27", "2024-05-27", false)
	f.leave(t, "2024-06-01", "2024-06-02", true)

	resp, err := f.svc.MonthlySummary(ctx, report.MonthlySummaryRequest{UserID: f.userID})
	require.NoError(t, err)
	assert.Equal(t, "2024-05", resp.Month)
	assert.Equal(t, report.MonthlyCountsResponse{Present: 2, Late: 1, Absent: 1, Leave: 2, EarlyOuts: 1}, resp.Counts)
	assert.Equal(t, 19.5, resp.WorkingHours.Monthly)
	assert.Equal(t, 12.0, resp.WorkingHours.Weekly)

	april, err := f.svc.MonthlySummary(ctx, report.MonthlySummaryRequest{UserID: f.userID, Month: "2024-04"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), april.Counts.Present)
	assert.Equal(t, int64(1), april.Counts.Leave)
	assert.Equal(t, 8.0, april.WorkingHours.Monthly)
}

func TestMonthlySummary_InvalidMonth(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.svc.MonthlySummary(context.Background(), report.MonthlySummaryRequest{UserID: f.userID, Month: "2024-13"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs.ToMap(), "month")
}
