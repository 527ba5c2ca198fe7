package response

import (
	"errors"
	"net/http"

	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
	"github.com/geoattend/attendance-backend-go/internal/domain/leave"
	"github.com/geoattend/attendance-backend-go/internal/domain/reconcile"
	"github.com/geoattend/attendance-backend-go/internal/domain/report"
	"github.com/geoattend/attendance-backend-go/internal/domain/user"
	"github.com/geoattend/attendance-backend-go/internal/pkg/calendar"
	"github.com/geoattend/attendance-backend-go/internal/pkg/database"
	"github.com/geoattend/attendance-backend-go/internal/pkg/geo"
	"github.com/geoattend/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var outside *attendance.OutsideGeofenceError
	if errors.As(err, &outside) {
		ForbiddenWithDetails(w, outside.Error(), map[string]interface{}{
			"distance":      outside.Distance,
			"allowedRadius": outside.AllowedRadius,
			"unit":          "meters",
		})
		return
	}

	switch {
	// Store errors
	case errors.Is(err, database.ErrStoreUnavailable):
		ServiceUnavailable(w, "Attendance store is temporarily unavailable, please retry")

	// Input errors
	case errors.Is(err, calendar.ErrInvalidDateFormat),
		errors.Is(err, geo.ErrInvalidCoordinate),
		errors.Is(err, report.ErrInvalidMonth):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrOnApprovedLeave),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, attendance.ErrEmptyUpdate):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrDuplicateAttendance):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, leave.ErrNotPending):
		Conflict(w, "Leave request already processed")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Reconcile errors
	case errors.Is(err, reconcile.ErrFutureDate),
		errors.Is(err, reconcile.ErrTooEarly):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, reconcile.ErrPartialFailure):
		InternalServerError(w, "Some absence records could not be written, run the reconcile again")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
