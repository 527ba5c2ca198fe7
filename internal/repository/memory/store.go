package memory

import (
	"sync"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
	"github.com/geoattend/attendance-backend-go/internal/domain/leave"
	"github.com/geoattend/attendance-backend-go/internal/domain/user"
	"github.com/google/uuid"
)

// Store is a process-local data set shared by the memory repositories. One mutex guards
// all tables so multi-table reads see a consistent snapshot.
type Store struct {
	mu          sync.RWMutex
	users       map[string]user.User
	attendances map[string]attendance.Attendance
	byUserDate  map[string]string
	leaves      map[string]leave.LeaveRequest
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]user.User),
		attendances: make(map[string]attendance.Attendance),
		byUserDate:  make(map[string]string),
		leaves:      make(map[string]leave.LeaveRequest),
		now:         time.Now,
	}
}

// PutUser inserts or replaces a roster entry.
func (s *Store) PutUser(u user.User) user.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = newID()
	}
	now := s.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	s.users[u.ID] = u
	return u
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func userDateKey(userID, date string) string {
	return userID + "|" + date
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := min(start+limit, len(items))
	return items[start:end]
}

func ptr[T any](v T) *T {
	return &v
}
