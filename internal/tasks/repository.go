package tasks

import "context"

// Repository scopes every read and write by the owning user so a task
// belonging to someone else is indistinguishable from an absent one.
type Repository interface {
	Create(ctx context.Context, task *Task) error
	ListByUser(ctx context.Context, userID int64) ([]Task, error)
	GetOwned(ctx context.Context, id, userID int64) (Task, error)
	Save(ctx context.Context, task *Task) error
}
