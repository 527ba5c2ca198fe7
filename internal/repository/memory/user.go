package memory

import (
	"context"
	"sort"

	"github.com/geoattend/attendance-backend-go/internal/domain/user"
)

type userRepositoryImpl struct {
	s *Store
}

func NewUserRepository(s *Store) user.UserRepository {
	return &userRepositoryImpl{s: s}
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context, f user.UserFilter) ([]user.User, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []user.User
	for _, u := range r.s.users {
		if f.Role != nil && string(u.Role) != *f.Role {
			continue
		}
		if f.IsActive != nil && u.IsActive != *f.IsActive {
			continue
		}
		items = append(items, u)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return paginate(items, f.Page, f.Limit), int64(len(items)), nil
}

// ListActiveIDs implements user.UserRepository.
func (r *userRepositoryImpl) ListActiveIDs(ctx context.Context, roles []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tracked := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		tracked[role] = struct{}{}
	}

	var ids []string
	for _, u := range r.s.users {
		if _, ok := tracked[string(u.Role)]; ok && u.IsActive {
			ids = append(ids, u.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
