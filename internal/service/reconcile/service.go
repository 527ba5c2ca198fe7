package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
	"github.com/geoattend/attendance-backend-go/internal/domain/leave"
	"github.com/geoattend/attendance-backend-go/internal/domain/reconcile"
	"github.com/geoattend/attendance-backend-go/internal/domain/user"
	"github.com/geoattend/attendance-backend-go/internal/pkg/calendar"
	"github.com/geoattend/attendance-backend-go/internal/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

const defaultChunkSize = 500

// Options configures the absence sweep.
type Options struct {
	TrackedRoles []string
	Trigger      calendar.TimeOfDay
	ChunkSize    int
	StoreTimeout time.Duration
}

type ReconcileServiceImpl struct {
	userRepo       user.UserRepository
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.LeaveRequestRepository
	cal            *calendar.Calendar
	opts           Options
	metrics        *metrics.Metrics

	// runs collapses overlapping sweeps of the same day.
	runs singleflight.Group
}

func NewReconcileService(
	userRepo user.UserRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRequestRepository,
	cal *calendar.Calendar,
	opts Options,
	m *metrics.Metrics,
) reconcile.ReconcileService {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}
	return &ReconcileServiceImpl{
		userRepo:       userRepo,
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		cal:            cal,
		opts:           opts,
		metrics:        m,
	}
}

// ReconcileToday implements reconcile.ReconcileService.
func (s *ReconcileServiceImpl) ReconcileToday(ctx context.Context) (reconcile.Result, error) {
	today := s.cal.Today()
	trigger, err := s.cal.At(today, s.opts.Trigger)
	if err != nil {
		return reconcile.Result{}, err
	}
	if s.cal.Now().Before(trigger) {
		return reconcile.Result{Date: today}, reconcile.ErrTooEarly
	}
	return s.ReconcileDay(ctx, today)
}

// ReconcileDay implements reconcile.ReconcileService.
func (s *ReconcileServiceImpl) ReconcileDay(ctx context.Context, date string) (reconcile.Result, error) {
	today := s.cal.Today()
	if date == "" {
		date = today
	}
	if !calendar.IsValidDay(date) {
		return reconcile.Result{}, calendar.ErrInvalidDateFormat
	}
	if date > today {
		return reconcile.Result{}, reconcile.ErrFutureDate
	}

	// The run outlives any single caller; each store call is still bounded by StoreTimeout.
	runCtx := context.WithoutCancel(ctx)
	ch := s.runs.DoChan(date, func() (any, error) {
		return s.sweep(runCtx, date)
	})

	select {
	case <-ctx.Done():
		slog.Warn("Caller left before reconcile run finished, run continues", "date", date, "error", ctx.Err())
		return reconcile.Result{Date: date}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			slog.Debug("Joined in-flight reconcile run", "date", date)
		}
		result, _ := res.Val.(reconcile.Result)
		return result, res.Err
	}
}

func (s *ReconcileServiceImpl) sweep(ctx context.Context, date string) (reconcile.Result, error) {
	result := reconcile.Result{Date: date}
	started := time.Now()

	candidates, err := s.candidates(ctx, date, &result)
	if err != nil {
		s.metrics.ReconcileRun("error", 0, 0)
		slog.Error("Reconcile run aborted", "date", date, "error", err)
		return result, err
	}
	result.Candidates = len(candidates)

	var failures []error
	for start := 0; start < len(candidates); start += s.opts.ChunkSize {
		chunk := candidates[start:min(start+s.opts.ChunkSize, len(candidates))]

		inserted, err := s.insertChunk(ctx, date, chunk)
		if err != nil {
			result.Failed += len(chunk)
			failures = append(failures, fmt.Errorf("chunk at offset %d: %w", start, err))
			slog.Error("Failed to write absence chunk", "date", date, "offset", start, "size", len(chunk), "error", err)
			continue
		}

		result.Created += len(inserted)
		result.Duplicates += len(chunk) - len(inserted)
		result.CreatedIDs = append(result.CreatedIDs, inserted...)
	}

	outcome := "ok"
	if len(failures) > 0 {
		outcome = "partial"
		err = errors.Join(append([]error{reconcile.ErrPartialFailure}, failures...)...)
	}
	s.metrics.ReconcileRun(outcome, result.Created, result.Duplicates)

	slog.Info("Reconcile run finished",
		"date", date,
		"roster", result.RosterSize,
		"recorded", result.Recorded,
		"on_leave", result.OnLeave,
		"created", result.Created,
		"duplicates", result.Duplicates,
		"failed", result.Failed,
		"duration", time.Since(started),
	)
	return result, err
}

// candidates returns the tracked users with neither a record nor approved leave on date, sorted.
func (s *ReconcileServiceImpl) candidates(ctx context.Context, date string, result *reconcile.Result) ([]string, error) {
	dayStart, dayEnd, err := s.cal.DayBounds(date)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	roster, err := s.userRepo.ListActiveIDs(ctx, s.opts.TrackedRoles)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	recorded, err := s.attendanceRepo.ListUserIDsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load recorded users: %w", err)
	}
	onLeave, err := s.leaveRepo.ListApprovedUserIDsCovering(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load users on leave: %w", err)
	}

	result.RosterSize = len(roster)
	result.Recorded = len(recorded)
	result.OnLeave = len(onLeave)

	excluded := make(map[string]struct{}, len(recorded)+len(onLeave))
	for _, id := range recorded {
		excluded[id] = struct{}{}
	}
	for _, id := range onLeave {
		excluded[id] = struct{}{}
	}

	absentees := make([]string, 0, len(roster))
	for _, id := range roster {
		if _, skip := excluded[id]; !skip {
			absentees = append(absentees, id)
		}
	}
	slices.Sort(absentees)
	return slices.Compact(absentees), nil
}

func (s *ReconcileServiceImpl) insertChunk(ctx context.Context, date string, userIDs []string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	return s.attendanceRepo.BulkCreateAbsences(ctx, date, userIDs)
}
