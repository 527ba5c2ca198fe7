package attendance

import (
	"strings"

	"github.com/geoattend/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// Mark actions reported back to the caller.
const (
	ActionCheckIn  = "check_in"
	ActionCheckOut = "check_out"
)

type MarkAttendanceRequest struct {
	UserID    string   `json:"-"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r *MarkAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if r.Latitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	} else if *r.Latitude < -90 || *r.Latitude > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	} else if *r.Longitude < -180 || *r.Longitude > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AttendanceResponse struct {
	ID                string   `json:"id"`
	UserID            string   `json:"user_id"`
	UserName          *string  `json:"user_name,omitempty"`
	Date              string   `json:"date"`
	CheckInTime       *string  `json:"check_in_time"`
	CheckOutTime      *string  `json:"check_out_time"`
	CheckInLatitude   *float64 `json:"check_in_latitude,omitempty"`
	CheckInLongitude  *float64 `json:"check_in_longitude,omitempty"`
	CheckOutLatitude  *float64 `json:"check_out_latitude,omitempty"`
	CheckOutLongitude *float64 `json:"check_out_longitude,omitempty"`
	Status            string   `json:"status"`
	IsLate            bool     `json:"is_late"`
	HalfDay           bool     `json:"half_day"`
	WorkDurationHours float64  `json:"work_duration_hours"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

type MarkAttendanceResponse struct {
	Action     string             `json:"action"`
	Attendance AttendanceResponse `json:"attendance"`
}

// RecordFilter selects a user's records by inclusive date range.
type RecordFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *RecordFilter) Validate() error {
	var errs validator.ValidationErrors

	validatePagination(&errs, &f.Page, &f.Limit)

	if f.Status != nil && *f.Status != "" {
		if !validator.IsInSlice(*f.Status, ValidStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: " + strings.Join(ValidStatuses, ", "),
			})
		}
	}

	startValid, endValid := true, true
	if f.StartDate != nil && *f.StartDate != "" {
		if _, startValid = validator.IsValidDate(*f.StartDate); !startValid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, endValid = validator.IsValidDate(*f.EndDate); !endValid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	// Day strings compare chronologically.
	if startValid && endValid && f.StartDate != nil && f.EndDate != nil &&
		*f.StartDate != "" && *f.EndDate != "" && *f.StartDate > *f.EndDate {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must not be after end_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// DayFilter selects the records of one day.
type DayFilter struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Status *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *DayFilter) Validate() error {
	var errs validator.ValidationErrors

	validatePagination(&errs, &f.Page, &f.Limit)

	if validator.IsEmpty(f.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, valid := validator.IsValidDate(f.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if f.Status != nil && *f.Status != "" && !validator.IsInSlice(*f.Status, ValidStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(ValidStatuses, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validatePagination(errs *validator.ValidationErrors, page, limit *int) {
	if *page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if *page == 0 {
		*page = 1 // Default page
	}

	if *limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if *limit == 0 {
		*limit = 20 // Default limit
	}
	if *limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type DaySummaryResponse struct {
	Total   int64 `json:"total"`
	Present int64 `json:"present"`
	Late    int64 `json:"late"`
	HalfDay int64 `json:"half_day"`
	Absent  int64 `json:"absent"`
	OnLeave int64 `json:"on_leave"`
}

type DayAttendanceResponse struct {
	Date    string             `json:"date"`
	Summary DaySummaryResponse `json:"summary"`
	ListAttendanceResponse
}

// UpdateAttendanceRequest lets an administrator correct the derived fields of a record.
type UpdateAttendanceRequest struct {
	ID                string   `json:"-"`
	Status            *string  `json:"status,omitempty"`
	IsLate            *bool    `json:"is_late,omitempty"`
	HalfDay           *bool    `json:"half_day,omitempty"`
	WorkDurationHours *float64 `json:"work_duration_hours,omitempty"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}

	if r.Status != nil {
		if !validator.IsInSlice(strings.ToLower(*r.Status), ValidStatuses) {
			errs.Add("status", "status must be one of: "+strings.Join(ValidStatuses, ", "))
		}
	}

	if r.WorkDurationHours != nil && (*r.WorkDurationHours < 0 || *r.WorkDurationHours > 24) {
		errs.Add("work_duration_hours", "work_duration_hours must be between 0 and 24")
	}

	if len(errs) > 0 {
		return errs
	}

	if r.Status == nil && r.IsLate == nil && r.HalfDay == nil && r.WorkDurationHours == nil {
		return ErrEmptyUpdate
	}

	return nil
}
