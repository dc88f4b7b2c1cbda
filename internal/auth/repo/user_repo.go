package repo

import (
	"context"

	"github.com/taskflowhq/taskflow/internal/auth/model"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user model.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, id int64) (model.User, error)
}
