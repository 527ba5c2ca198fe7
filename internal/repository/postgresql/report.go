package postgresql

import (
	"context"
	"fmt"

	"github.com/geoattend/attendance-backend-go/internal/domain/report"
	"github.com/geoattend/attendance-backend-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// SummarizeUserMonth implements report.ReportRepository.
func (r *reportRepositoryImpl) SummarizeUserMonth(ctx context.Context, userID string, month string) (report.MonthlyCounts, error) {
	q := GetQuerier(ctx, r.db)

	// Day strings are zero-padded, so a "YYYY-MM-" prefix selects exactly one month.
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'present'),
			COUNT(*) FILTER (WHERE is_late),
			COUNT(*) FILTER (WHERE status = 'absent'),
			COUNT(*) FILTER (WHERE half_day),
			COALESCE(ROUND(SUM(work_duration_hours)::numeric, 2), 0)::float8
		FROM attendances
		WHERE user_id = $1
		  AND date LIKE $2
	`

	var c report.MonthlyCounts
	err := q.QueryRow(ctx, query, userID, month+"-%").Scan(&c.Present, &c.Late, &c.Absent, &c.HalfDay, &c.Hours)
	if err != nil {
		return report.MonthlyCounts{}, fmt.Errorf("failed to summarize month: %w", database.Classify(err))
	}
	return c, nil
}

// SumCompletedHours implements report.ReportRepository.
func (r *reportRepositoryImpl) SumCompletedHours(ctx context.Context, userID string, from string, to string) (float64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(ROUND(SUM(work_duration_hours)::numeric, 2), 0)::float8
		FROM attendances
		WHERE user_id = $1
		  AND date >= $2
		  AND date <= $3
		  AND check_in_time IS NOT NULL
		  AND check_out_time IS NOT NULL
	`

	var hours float64
	if err := q.QueryRow(ctx, query, userID, from, to).Scan(&hours); err != nil {
		return 0, fmt.Errorf("failed to sum hours: %w", database.Classify(err))
	}
	return hours, nil
}
