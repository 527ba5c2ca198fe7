package report

import (
	"github.com/geoattend/attendance-backend-go/internal/pkg/validator"
)

// StatusNotMarked is reported when the user has no record for the day yet.
const StatusNotMarked = "not_marked"

type TodayReportResponse struct {
	Date         string  `json:"date"`
	Status       string  `json:"status"`
	CheckInTime  *string `json:"check_in_time"`
	CheckOutTime *string `json:"check_out_time"`
	WorkingHours float64 `json:"working_hours"`
	IsLate       bool    `json:"is_late"`
	HalfDay      bool    `json:"half_day"`
}

// MonthlySummaryRequest defaults Month to the current office-local month.
type MonthlySummaryRequest struct {
	UserID string `json:"-"`
	Month  string `json:"month"` // YYYY-MM
}

func (r *MonthlySummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs.Add("user_id", "user_id is required")
	}
	if r.Month != "" && !validator.IsValidMonth(r.Month) {
		errs.Add("month", ErrInvalidMonth.Error())
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MonthlyCountsResponse struct {
	Present   int64 `json:"present"`
	Late      int64 `json:"late"`
	Absent    int64 `json:"absent"`
	Leave     int64 `json:"leave"`
	EarlyOuts int64 `json:"early_outs"`
}

type WorkingHoursResponse struct {
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
}

type MonthlySummaryResponse struct {
	UserID       string                `json:"user_id"`
	Month        string                `json:"month"`
	Counts       MonthlyCountsResponse `json:"counts"`
	WorkingHours WorkingHoursResponse  `json:"working_hours"`
}
