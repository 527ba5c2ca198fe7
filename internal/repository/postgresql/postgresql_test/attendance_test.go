package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
	"github.com/geoattend/attendance-backend-go/internal/domain/user"
	"github.com/geoattend/attendance-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckIn(userID, date string, at time.Time) attendance.Attendance {
	lat, lng := 24.86, 67.01
	return attendance.Attendance{
		UserID:           userID,
		Date:             date,
		CheckInTime:      &at,
		CheckInLatitude:  &lat,
		CheckInLongitude: &lng,
		Status:           attendance.StatusPresent,
	}
}

func TestAttendanceRepository_CreateDuplicate(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ctx := context.Background()
	userID := setup.InsertUser(t, "Ali", user.RoleEmployee, true)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(ctx, newCheckIn(userID, "2024-05-10", time.Now()))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, attendance.ErrDuplicateAttendance)
	}
	assert.Equal(t, 1, succeeded)

	ids, err := repo.ListUserIDsByDate(ctx, "2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, []string{userID}, ids)
}

func TestAttendanceRepository_CheckOutIsConditional(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ctx := context.Background()
	userID := setup.InsertUser(t, "Sara", user.RoleEmployee, true)

	checkIn := time.Date(2024, 5, 10, 4, 5, 0, 0, time.UTC)
	created, err := repo.Create(ctx, newCheckIn(userID, "2024-05-10", checkIn))
	require.NoError(t, err)

	first := attendance.CheckOut{Time: checkIn.Add(4 * time.Hour), Latitude: 24.86, Longitude: 67.01, WorkDurationHours: 4, HalfDay: true}
	updated, err := repo.CheckOut(ctx, created.ID, first)
	require.NoError(t, err)
	assert.True(t, updated.HalfDay)
	assert.Equal(t, 4.0, updated.WorkDurationHours)
	require.NotNil(t, updated.UserName)
	assert.Equal(t, "Sara", *updated.UserName)

	second := first
	second.Time = checkIn.Add(8 * time.Hour)
	second.WorkDurationHours = 8
	_, err = repo.CheckOut(ctx, created.ID, second)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.CheckOutTime.Equal(first.Time))
	assert.Equal(t, 4.0, stored.WorkDurationHours)
}

func TestAttendanceRepository_BulkCreateAbsencesIsIdempotent(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ctx := context.Background()
	a := setup.InsertUser(t, "A", user.RoleEmployee, true)
	b := setup.InsertUser(t, "B", user.RoleHR, true)

	_, err := repo.Create(ctx, newCheckIn(a, "2024-05-10", time.Now()))
	require.NoError(t, err)

	inserted, err := repo.BulkCreateAbsences(ctx, "2024-05-10", []string{a, b})
	require.NoError(t, err)
	assert.Equal(t, []string{b}, inserted)

	inserted, err = repo.BulkCreateAbsences(ctx, "2024-05-10", []string{a, b})
	require.NoError(t, err)
	assert.Empty(t, inserted)

	summary, err := repo.SummarizeDate(ctx, "2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Total)
	assert.Equal(t, int64(1), summary.Absent)
	assert.Equal(t, int64(1), summary.Present)
}

func TestAttendanceRepository_AdminUpdateAndDelete(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ctx := context.Background()
	userID := setup.InsertUser(t, "C", user.RoleEmployee, true)

	created, err := repo.Create(ctx, newCheckIn(userID, "2024-05-10", time.Now()))
	require.NoError(t, err)

	status := attendance.StatusLate
	late := true
	updated, err := repo.Update(ctx, created.ID, attendance.AdminUpdate{Status: &status, IsLate: &late})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, updated.Status)
	assert.True(t, updated.IsLate)
	assert.False(t, updated.HalfDay)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), attendance.ErrAttendanceNotFound)

	found, err := repo.GetByUserAndDate(ctx, userID, "2024-05-10")
	require.NoError(t, err)
	assert.Nil(t, found)
}
