package user

import "context"

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)

	// ListActiveIDs returns the ids of active users whose role is in roles, ordered by id.
	ListActiveIDs(ctx context.Context, roles []string) ([]string, error)
}
