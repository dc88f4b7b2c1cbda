package service

import (
	"context"

	"github.com/taskflowhq/taskflow/internal/auth/dto"
	"github.com/taskflowhq/taskflow/internal/auth/model"
)

// Service drives the session lifecycle: Anonymous -> Authenticated ->
// (Refreshed)* -> LoggedOut. Tokens are the only session state.
type Service interface {
	Register(ctx context.Context, in dto.RegisterDTO) (int64, error)
	Login(ctx context.Context, in dto.LoginDTO) (model.TokenPair, error)
	Refresh(ctx context.Context, in dto.RefreshDTO) (string, error)
	Logout(ctx context.Context, in dto.LogoutDTO) error
}
