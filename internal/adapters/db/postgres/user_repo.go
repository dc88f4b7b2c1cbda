package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"

	customErrors "github.com/taskflowhq/taskflow/internal/auth/errors"
	"github.com/taskflowhq/taskflow/internal/auth/model"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (p *UserRepo) CreateUser(ctx context.Context, user model.User) (int64, error) {
	res := p.db.WithContext(ctx).Create(&user)
	if err := res.Error; err != nil {
		// 23505: the unique index on email is the authoritative
		// uniqueness check, regardless of any earlier lookup.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, customErrors.ErrAlreadyExists
		}
		return 0, customErrors.WrapInternal(err, "CreateUser")
	}
	return user.ID, nil
}

func (p *UserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	res := p.db.WithContext(ctx).Where("email = ?", email).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetUserByEmail")
	}

	return u, nil
}

func (p *UserRepo) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetUserByID")
	}

	return u, nil
}
