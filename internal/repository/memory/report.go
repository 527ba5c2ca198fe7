package memory

import (
	"context"
	"math"
	"strings"

	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
	"github.com/geoattend/attendance-backend-go/internal/domain/report"
)

type reportRepositoryImpl struct {
	s *Store
}

func NewReportRepository(s *Store) report.ReportRepository {
	return &reportRepositoryImpl{s: s}
}

// SummarizeUserMonth implements report.ReportRepository.
func (r *reportRepositoryImpl) SummarizeUserMonth(ctx context.Context, userID string, month string) (report.MonthlyCounts, error) {
	if err := ctx.Err(); err != nil {
		return report.MonthlyCounts{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var counts report.MonthlyCounts
	prefix := month + "-"
	for _, a := range r.s.attendances {
		if a.UserID != userID || !strings.HasPrefix(a.Date, prefix) {
			continue
		}
		switch a.Status {
		case attendance.StatusPresent:
			counts.Present++
		case attendance.StatusAbsent:
			counts.Absent++
		}
		if a.IsLate {
			counts.Late++
		}
		if a.HalfDay {
			counts.HalfDay++
		}
		counts.Hours += a.WorkDurationHours
	}
	counts.Hours = math.Round(counts.Hours*100) / 100
	return counts, nil
}

// SumCompletedHours implements report.ReportRepository.
func (r *reportRepositoryImpl) SumCompletedHours(ctx context.Context, userID string, from string, to string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total float64
	for _, a := range r.s.attendances {
		if a.UserID == userID && a.Date >= from && a.Date <= to && a.CheckedIn() && a.CheckedOut() {
			total += a.WorkDurationHours
		}
	}
	return math.Round(total*100) / 100, nil
}
