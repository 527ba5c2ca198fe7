package http

import (
	"net/http"

	"github.com/geoattend/attendance-backend-go/internal/domain/report"
	"github.com/geoattend/attendance-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	GetTodayReport(w http.ResponseWriter, r *http.Request)
	GetMyMonthlySummary(w http.ResponseWriter, r *http.Request)
	GetUserMonthlySummary(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// GetTodayReport handles GET /reports/today
func (h *reportHandlerImpl) GetTodayReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.TodayReport(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMyMonthlySummary handles GET /reports/summary?month=YYYY-MM
func (h *reportHandlerImpl) GetMyMonthlySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	h.monthlySummary(w, r, userID)
}

// GetUserMonthlySummary handles GET /admin/reports/users/{id}/summary?month=YYYY-MM
func (h *reportHandlerImpl) GetUserMonthlySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	h.monthlySummary(w, r, userID)
}

func (h *reportHandlerImpl) monthlySummary(w http.ResponseWriter, r *http.Request, userID string) {
	req := report.MonthlySummaryRequest{
		UserID: userID,
		Month:  r.URL.Query().Get("month"),
	}

	result, err := h.reportService.MonthlySummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
