package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/reconcile"
	"github.com/geoattend/attendance-backend-go/internal/pkg/calendar"
)

type AttendanceJobs struct {
	reconciler reconcile.ReconcileService
	cal        *calendar.Calendar
	trigger    calendar.TimeOfDay
}

func NewAttendanceJobs(reconciler reconcile.ReconcileService, cal *calendar.Calendar, trigger calendar.TimeOfDay) *AttendanceJobs {
	return &AttendanceJobs{
		reconciler: reconciler,
		cal:        cal,
		trigger:    trigger,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_absent_employees", j.nextRun, j.MarkAbsentEmployees)
}

func (j *AttendanceJobs) nextRun(from time.Time) time.Time {
	return j.cal.NextOccurrence(j.trigger, from)
}

// MarkAbsentEmployees sweeps today. The startup run is a no-op before the trigger time.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	slog.Info("Cron: Starting mark absent employees job")

	result, err := j.reconciler.ReconcileToday(ctx)
	if errors.Is(err, reconcile.ErrTooEarly) {
		slog.Info("Cron: Reconcile time not reached, skipping", "date", result.Date, "trigger", j.trigger.String())
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to mark absent employees: %w", err)
	}

	slog.Info("Cron: Marked absent employees", "date", result.Date, "count", result.Created, "duplicates", result.Duplicates)
	return nil
}
