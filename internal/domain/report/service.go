package report

import "context"

// ReportService defines the interface for report generation
type ReportService interface {
	// TodayReport describes the user's attendance for the current office-local day.
	TodayReport(ctx context.Context, userID string) (TodayReportResponse, error)

	// MonthlySummary counts statuses and worked hours for one month.
	MonthlySummary(ctx context.Context, req MonthlySummaryRequest) (MonthlySummaryResponse, error)
}
