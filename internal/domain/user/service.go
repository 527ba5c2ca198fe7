package user

import "context"

type UserService interface {
	GetProfile(ctx context.Context, id string) (UserResponse, error)
	ListUsers(ctx context.Context, filter UserFilter) (ListUserResponse, error)
}
