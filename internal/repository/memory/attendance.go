package memory

import (
	"context"
	"sort"

	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
)

type attendanceRepositoryImpl struct {
	s *Store
}

func NewAttendanceRepository(s *Store) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{s: s}
}

func (r *attendanceRepositoryImpl) withUserName(a attendance.Attendance) attendance.Attendance {
	if u, ok := r.s.users[a.UserID]; ok {
		a.UserName = ptr(u.Name)
	}
	return a
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if err := ctx.Err(); err != nil {
		return attendance.Attendance{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := userDateKey(a.UserID, a.Date)
	if _, exists := r.s.byUserDate[key]; exists {
		return attendance.Attendance{}, attendance.ErrDuplicateAttendance
	}
	if a.ID == "" {
		a.ID = newID()
	}
	now := r.s.now()
	a.CreatedAt = now
	a.UpdatedAt = now
	r.s.attendances[a.ID] = a
	r.s.byUserDate[key] = a.ID
	return r.withUserName(a), nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	if err := ctx.Err(); err != nil {
		return attendance.Attendance{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return r.withUserName(a), nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByUserAndDate(ctx context.Context, userID string, date string) (*attendance.Attendance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byUserDate[userDateKey(userID, date)]
	if !ok {
		return nil, nil
	}
	a := r.withUserName(r.s.attendances[id])
	return &a, nil
}

// CheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) CheckOut(ctx context.Context, id string, c attendance.CheckOut) (attendance.Attendance, error) {
	if err := ctx.Err(); err != nil {
		return attendance.Attendance{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.attendances[id]
	if !ok || a.CheckOutTime != nil || a.CheckInTime == nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}
	a.CheckOutTime = ptr(c.Time)
	a.CheckOutLatitude = ptr(c.Latitude)
	a.CheckOutLongitude = ptr(c.Longitude)
	a.WorkDurationHours = c.WorkDurationHours
	a.HalfDay = c.HalfDay
	a.UpdatedAt = r.s.now()
	r.s.attendances[id] = a
	return r.withUserName(a), nil
}

func (r *attendanceRepositoryImpl) filter(keep func(attendance.Attendance) bool) []attendance.Attendance {
	var out []attendance.Attendance
	for _, a := range r.s.attendances {
		if keep(a) {
			out = append(out, r.withUserName(a))
		}
	}
	return out
}

func matchesStatus(status *string, a attendance.Attendance) bool {
	return status == nil || *status == "" || a.Status == *status
}

// ListByUser implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByUser(ctx context.Context, userID string, f attendance.RecordFilter) ([]attendance.Attendance, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := r.filter(func(a attendance.Attendance) bool {
		if a.UserID != userID || !matchesStatus(f.Status, a) {
			return false
		}
		if f.StartDate != nil && *f.StartDate != "" && a.Date < *f.StartDate {
			return false
		}
		if f.EndDate != nil && *f.EndDate != "" && a.Date > *f.EndDate {
			return false
		}
		return true
	})
	sort.Slice(items, func(i, j int) bool { return items[i].Date > items[j].Date })
	return paginate(items, f.Page, f.Limit), int64(len(items)), nil
}

// ListByDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByDate(ctx context.Context, date string, f attendance.DayFilter) ([]attendance.Attendance, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := r.filter(func(a attendance.Attendance) bool {
		return a.Date == date && matchesStatus(f.Status, a)
	})
	sort.Slice(items, func(i, j int) bool { return items[i].UserID < items[j].UserID })
	return paginate(items, f.Page, f.Limit), int64(len(items)), nil
}

// SummarizeDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) SummarizeDate(ctx context.Context, date string) (attendance.DaySummary, error) {
	if err := ctx.Err(); err != nil {
		return attendance.DaySummary{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var sum attendance.DaySummary
	for _, a := range r.s.attendances {
		if a.Date != date {
			continue
		}
		sum.Total++
		switch a.Status {
		case attendance.StatusPresent:
			sum.Present++
		case attendance.StatusLate:
			sum.Late++
		case attendance.StatusAbsent:
			sum.Absent++
		case attendance.StatusOnLeave:
			sum.OnLeave++
		case attendance.StatusHalfDay:
			sum.HalfDay++
			continue
		}
		if a.HalfDay {
			sum.HalfDay++
		}
	}
	return sum, nil
}

// ListUserIDsByDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListUserIDsByDate(ctx context.Context, date string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ids []string
	for _, a := range r.s.attendances {
		if a.Date == date {
			ids = append(ids, a.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// BulkCreateAbsences implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) BulkCreateAbsences(ctx context.Context, date string, userIDs []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	inserted := make([]string, 0, len(userIDs))
	for _, userID := range userIDs {
		key := userDateKey(userID, date)
		if _, exists := r.s.byUserDate[key]; exists {
			continue
		}
		a := attendance.Attendance{
			ID:        newID(),
			UserID:    userID,
			Date:      date,
			Status:    attendance.StatusAbsent,
			CreatedAt: now,
			UpdatedAt: now,
		}
		r.s.attendances[a.ID] = a
		r.s.byUserDate[key] = a.ID
		inserted = append(inserted, userID)
	}
	return inserted, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Update(ctx context.Context, id string, u attendance.AdminUpdate) (attendance.Attendance, error) {
	if err := ctx.Err(); err != nil {
		return attendance.Attendance{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	if u.Status != nil {
		a.Status = *u.Status
	}
	if u.IsLate != nil {
		a.IsLate = *u.IsLate
	}
	if u.HalfDay != nil {
		a.HalfDay = *u.HalfDay
	}
	if u.WorkDurationHours != nil {
		a.WorkDurationHours = *u.WorkDurationHours
	}
	a.UpdatedAt = r.s.now()
	r.s.attendances[id] = a
	return r.withUserName(a), nil
}

// Delete implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.attendances[id]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(r.s.attendances, id)
	delete(r.s.byUserDate, userDateKey(a.UserID, a.Date))
	return nil
}
