package report

import "context"

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// SummarizeUserMonth aggregates a user's records for a "YYYY-MM" month.
	SummarizeUserMonth(ctx context.Context, userID string, month string) (MonthlyCounts, error)

	// SumCompletedHours adds up worked hours of checked-out records with from <= date <= to.
	SumCompletedHours(ctx context.Context, userID string, from string, to string) (float64, error)
}
