package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	customErrors "github.com/taskflowhq/taskflow/internal/auth/errors"
	"github.com/taskflowhq/taskflow/internal/tasks"
)

type TaskRepo struct {
	db *gorm.DB
}

func NewTaskRepo(db *gorm.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

func (p *TaskRepo) Create(ctx context.Context, task *tasks.Task) error {
	if err := p.db.WithContext(ctx).Create(task).Error; err != nil {
		return customErrors.WrapInternal(err, "CreateTask")
	}
	return nil
}

func (p *TaskRepo) ListByUser(ctx context.Context, userID int64) ([]tasks.Task, error) {
	var list []tasks.Task
	res := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list)
	if err := res.Error; err != nil {
		return nil, customErrors.WrapInternal(err, "ListByUser")
	}
	return list, nil
}

// GetOwned filters on id AND user_id so a foreign task reads as absent.
func (p *TaskRepo) GetOwned(ctx context.Context, id, userID int64) (tasks.Task, error) {
	var t tasks.Task
	res := p.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&t)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return tasks.Task{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return tasks.Task{}, customErrors.WrapInternal(err, "GetOwned")
	}
	return t, nil
}

func (p *TaskRepo) Save(ctx context.Context, task *tasks.Task) error {
	if err := p.db.WithContext(ctx).Save(task).Error; err != nil {
		return customErrors.WrapInternal(err, "SaveTask")
	}
	return nil
}
