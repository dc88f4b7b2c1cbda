package tasks

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	customErrors "github.com/taskflowhq/taskflow/internal/auth/errors"
)

type Service struct {
	repo Repository
	v    *validator.Validate
}

func NewService(repo Repository, v *validator.Validate) *Service {
	return &Service{repo: repo, v: v}
}

func (s *Service) Create(ctx context.Context, userID int64, in CreateTaskDTO) (Task, error) {
	if in.InputText == "" {
		return Task{}, customErrors.NewInvalidArgument("inputText is required")
	}

	task := Task{
		UserID:    userID,
		InputText: in.InputText,
		Status:    StatusPending,
		Progress:  0,
	}
	if err := s.repo.Create(ctx, &task); err != nil {
		return Task{}, customErrors.WrapInternal(err, "Create")
	}
	return task, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]Task, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "List")
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, userID, id int64) (Task, error) {
	task, err := s.repo.GetOwned(ctx, id, userID)
	if errors.Is(err, customErrors.ErrNotFound) {
		return Task{}, customErrors.ErrNotFound
	}
	if err != nil {
		return Task{}, customErrors.WrapInternal(err, "Get")
	}
	return task, nil
}

// UpdateResult records a finished (or partially finished) run. Omitted
// status and progress default to completed/100.
func (s *Service) UpdateResult(ctx context.Context, userID, id int64, in UpdateResultDTO) (Task, error) {
	if err := s.v.Struct(in); err != nil {
		return Task{}, customErrors.NewInvalidArgument(err.Error())
	}

	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return Task{}, err
	}

	task.Result = &in.Result
	task.Status = StatusCompleted
	task.Progress = 100
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Progress != nil {
		task.Progress = *in.Progress
	}

	if err := s.repo.Save(ctx, &task); err != nil {
		return Task{}, customErrors.WrapInternal(err, "UpdateResult")
	}
	return task, nil
}

// UpdateProgress moves the task to processing below 100 and to
// completed at 100.
func (s *Service) UpdateProgress(ctx context.Context, userID, id int64, in UpdateProgressDTO) (Task, error) {
	if err := s.v.Struct(in); err != nil {
		return Task{}, customErrors.NewInvalidArgument(err.Error())
	}

	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return Task{}, err
	}

	task.Progress = in.Progress
	if in.Progress < 100 {
		task.Status = StatusProcessing
	} else {
		task.Status = StatusCompleted
	}

	if err := s.repo.Save(ctx, &task); err != nil {
		return Task{}, customErrors.WrapInternal(err, "UpdateProgress")
	}
	return task, nil
}
