package reconcile

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
	"github.com/geoattend/attendance-backend-go/internal/domain/leave"
	"github.com/geoattend/attendance-backend-go/internal/domain/reconcile"
	"github.com/geoattend/attendance-backend-go/internal/domain/user"
	"github.com/geoattend/attendance-backend-go/internal/pkg/calendar"
	"github.com/geoattend/attendance-backend-go/internal/pkg/metrics"
	"github.com/geoattend/attendance-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = "2024-05-10"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	store      *memory.Store
	clock      *clock
	cal        *calendar.Calendar
	users      user.UserRepository
	attendance attendance.AttendanceRepository
	leaves     leave.LeaveRequestRepository
	a, b, c    string
}

// newFixture seeds the roster {A, B, C} plus an admin and an inactive employee, neither of
// whom is tracked. The clock reads 2024-05-10 20:30 at UTC+5.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clk := &clock{now: time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)}
	f := &fixture{
		store:      store,
		clock:      clk,
		cal:        calendar.New(5*time.Hour, calendar.TimeOfDay{Hour: 9}, clk.Now),
		users:      memory.NewUserRepository(store),
		attendance: memory.NewAttendanceRepository(store),
		leaves:     memory.NewLeaveRequestRepository(store),
	}
	f.a = store.PutUser(user.User{Name: "A", Role: user.RoleEmployee, IsActive: true}).ID
	f.b = store.PutUser(user.User{Name: "B", Role: user.RoleHR, IsActive: true}).ID
	f.c = store.PutUser(user.User{Name: "C", Role: user.RoleEmployee, IsActive: true}).ID
	store.PutUser(user.User{Name: "Admin", Role: user.RoleAdmin, IsActive: true})
	store.PutUser(user.User{Name: "Gone", Role: user.RoleEmployee, IsActive: false})
	return f
}

func (f *fixture) service(repo attendance.AttendanceRepository, chunkSize int, m *metrics.Metrics) reconcile.ReconcileService {
	if repo == nil {
		repo = f.attendance
	}
	return NewReconcileService(f.users, repo, f.leaves, f.cal, Options{
		TrackedRoles: []string{"employee", "hr"},
		Trigger:      calendar.TimeOfDay{Hour: 20, Minute: 10},
		ChunkSize:    chunkSize,
		StoreTimeout: time.Second,
	}, m)
}

func (f *fixture) checkIn(t *testing.T, userID, date string) {
	t.Helper()
	in, err := f.cal.At(date, calendar.TimeOfDay{Hour: 9})
	require.NoError(t, err)
	_, err = f.attendance.Create(context.Background(), attendance.Attendance{UserID: userID, Date: date, CheckInTime: &in, Status: attendance.StatusPresent})
	require.NoError(t, err)
}

func (f *fixture) approvedLeave(t *testing.T, userID, from, to string) {
	t.Helper()
	ctx := context.Background()
	start, _, err := f.cal.DayBounds(from)
	require.NoError(t, err)
	_, end, err := f.cal.DayBounds(to)
	require.NoError(t, err)
	lr, err := f.leaves.Create(ctx, leave.LeaveRequest{UserID: userID, LeaveType: leave.TypeSick, StartDate: start, EndDate: end.Add(-time.Microsecond), Reason: "flu"})
	require.NoError(t, err)
	_, err = f.leaves.Review(ctx, lr.ID, leave.Review{Status: leave.StatusApproved, ReviewedBy: "admin", ReviewedAt: time.Now()})
	require.NoError(t, err)
}

func (f *fixture) recordsOn(t *testing.T, date string) []string {
	t.Helper()
	ids, err := f.attendance.ListUserIDsByDate(context.Background(), date)
	require.NoError(t, err)
	return ids
}

func TestReconcileDay_OnlyUncoveredUsersBecomeAbsent(t *testing.T) {
	f := newFixture(t)
	f.checkIn(t, f.a, day)
	f.approvedLeave(t, f.b, "2024-05-09", "2024-05-11")

	m := metrics.New()
	svc := f.service(nil, 0, m)

	result, err := svc.ReconcileDay(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 3, result.RosterSize)
	assert.Equal(t, 1, result.Recorded)
	assert.Equal(t, 1, result.OnLeave)
	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []string{f.c}, result.CreatedIDs)

	absent, err := f.attendance.GetByUserAndDate(context.Background(), f.c, day)
	require.NoError(t, err)
	require.NotNil(t, absent)
	assert.Equal(t, attendance.StatusAbsent, absent.Status)
	assert.Nil(t, absent.CheckInTime)
	assert.Nil(t, absent.CheckOutTime)
	assert.Zero(t, absent.WorkDurationHours)

	onLeave, err := f.attendance.GetByUserAndDate(context.Background(), f.b, day)
	require.NoError(t, err)
	assert.Nil(t, onLeave)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "attendance_absences_created_total 1")
	assert.Contains(t, string(body), `attendance_reconcile_runs_total{outcome="ok"} 1`)
}

func TestReconcileDay_RunningTwiceEqualsOnce(t *testing.T) {
	f := newFixture(t)
	svc := f.service(nil, 0, nil)

	first, err := svc.ReconcileDay(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Created)
	after := f.recordsOn(t, day)

	second, err := svc.ReconcileDay(context.Background(), day)
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Zero(t, second.Candidates)
	assert.Equal(t, after, f.recordsOn(t, day))
}

func TestReconcileDay_NothingToDoWhenEveryoneIsCovered(t *testing.T) {
	f := newFixture(t)
	f.checkIn(t, f.a, day)
	f.checkIn(t, f.b, day)
	f.approvedLeave(t, f.c, day, day)

	result, err := f.service(nil, 0, nil).ReconcileDay(context.Background(), day)
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Len(t, f.recordsOn(t, day), 2)
}

func TestReconcileDay_EmptyDateMeansToday(t *testing.T) {
	f := newFixture(t)

	result, err := f.service(nil, 0, nil).ReconcileDay(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, day, result.Date)
	assert.Equal(t, 3, result.Created)
}

func TestReconcileDay_RejectsBadDates(t *testing.T) {
	f := newFixture(t)
	svc := f.service(nil, 0, nil)

	_, err := svc.ReconcileDay(context.Background(), "2024-05-11")
	assert.ErrorIs(t, err, reconcile.ErrFutureDate)

	_, err = svc.ReconcileDay(context.Background(), "10/05/2024")
	assert.ErrorIs(t, err, calendar.ErrInvalidDateFormat)

	assert.Empty(t, f.recordsOn(t, "2024-05-11"))
}

func TestReconcileDay_PastDay(t *testing.T) {
	f := newFixture(t)
	f.checkIn(t, f.a, "2024-05-09")

	result, err := f.service(nil, 0, nil).ReconcileDay(context.Background(), "2024-05-09")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Empty(t, f.recordsOn(t, day))
}

// staleRepository hides existing records from the roster diff so the insert itself has to
// absorb them.
type staleRepository struct {
	attendance.AttendanceRepository
}

func (s staleRepository) ListUserIDsByDate(ctx context.Context, date string) ([]string, error) {
	return nil, nil
}

func TestReconcileDay_ExistingRecordsCountAsDuplicates(t *testing.T) {
	f := newFixture(t)
	f.checkIn(t, f.a, day)

	result, err := f.service(staleRepository{f.attendance}, 0, nil).ReconcileDay(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Candidates)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Duplicates)

	present, err := f.attendance.GetByUserAndDate(context.Background(), f.a, day)
	require.NoError(t, err)
	require.NotNil(t, present)
	assert.Equal(t, attendance.StatusPresent, present.Status)
}

// flakyRepository fails the first bulk insert it sees.
type flakyRepository struct {
	attendance.AttendanceRepository
	mu     sync.Mutex
	failed bool
}

var errChunk = errors.New("connection reset")

func (r *flakyRepository) BulkCreateAbsences(ctx context.Context, date string, userIDs []string) ([]string, error) {
	r.mu.Lock()
	if !r.failed {
		r.failed = true
		r.mu.Unlock()
		return nil, errChunk
	}
	r.mu.Unlock()
	return r.AttendanceRepository.BulkCreateAbsences(ctx, date, userIDs)
}

func TestReconcileDay_FailedChunkDoesNotStopTheRun(t *testing.T) {
	f := newFixture(t)
	svc := f.service(&flakyRepository{AttendanceRepository: f.attendance}, 2, nil)

	result, err := svc.ReconcileDay(context.Background(), day)
	require.Error(t, err)
	assert.ErrorIs(t, err, reconcile.ErrPartialFailure)
	assert.ErrorIs(t, err, errChunk)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 1, result.Created)
	assert.Len(t, f.recordsOn(t, day), 1)

	// A re-run picks up what the failed chunk missed.
	result, err = svc.ReconcileDay(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Len(t, f.recordsOn(t, day), 3)
}

func TestReconcileDay_ConcurrentRuns(t *testing.T) {
	f := newFixture(t)
	svc := f.service(nil, 1, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ReconcileDay(context.Background(), day)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, f.recordsOn(t, day), 3)
}

// blockingRepository holds the first bulk insert until release is closed.
type blockingRepository struct {
	attendance.AttendanceRepository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *blockingRepository) BulkCreateAbsences(ctx context.Context, date string, userIDs []string) ([]string, error) {
	r.once.Do(func() {
		close(r.entered)
		<-r.release
	})
	return r.AttendanceRepository.BulkCreateAbsences(ctx, date, userIDs)
}

func TestReconcileDay_CallerCancelDoesNotAbortSharedRun(t *testing.T) {
	f := newFixture(t)
	repo := &blockingRepository{
		AttendanceRepository: f.attendance,
		entered:              make(chan struct{}),
		release:              make(chan struct{}),
	}
	svc := f.service(repo, 0, nil)

	requestCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.ReconcileDay(requestCtx, day)
		firstErr <- err
	}()
	<-repo.entered

	type outcome struct {
		result reconcile.Result
		err    error
	}
	second := make(chan outcome, 1)
	go func() {
		result, err := svc.ReconcileDay(context.Background(), day)
		second <- outcome{result, err}
	}()
	// Give the second caller time to join the in-flight run.
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("canceled caller did not return")
	}

	close(repo.release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, 3, got.result.Created)
	assert.Len(t, f.recordsOn(t, day), 3)
}

func TestReconcileToday_WaitsForTriggerTime(t *testing.T) {
	f := newFixture(t)
	svc := f.service(nil, 0, nil)

	// 19:00 local, before the 20:10 trigger.
	f.clock.Set(time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC))
	_, err := svc.ReconcileToday(context.Background())
	assert.ErrorIs(t, err, reconcile.ErrTooEarly)
	assert.Empty(t, f.recordsOn(t, day))

	f.clock.Set(time.Date(2024, 5, 10, 15, 10, 0, 0, time.UTC))
	result, err := svc.ReconcileToday(context.Background())
	require.NoError(t, err)
	assert.Equal(t, day, result.Date)
	assert.Equal(t, 3, result.Created)
}
