package user

import (
	"context"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	ListActive(ctx context.Context) ([]User, error)
}
