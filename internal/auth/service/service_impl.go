package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/taskflowhq/taskflow/internal/auth/dto"
	customErrors "github.com/taskflowhq/taskflow/internal/auth/errors"
	"github.com/taskflowhq/taskflow/internal/auth/hash"
	"github.com/taskflowhq/taskflow/internal/auth/jwt"
	"github.com/taskflowhq/taskflow/internal/auth/model"
	"github.com/taskflowhq/taskflow/internal/auth/repo"
)

type authService struct {
	userRepo  repo.UserRepo
	tokenRepo repo.TokenRepo // nil disables the revocation list
	issuer    jwt.TokenIssuer
	hasher    hash.Hasher
	v         *validator.Validate
}

func New(
	ur repo.UserRepo,
	tr repo.TokenRepo,
	issuer jwt.TokenIssuer,
	hasher hash.Hasher,
	v *validator.Validate,
) Service {
	return &authService{
		userRepo: ur, tokenRepo: tr, issuer: issuer, hasher: hasher, v: v,
	}
}

func (a *authService) Register(ctx context.Context, in dto.RegisterDTO) (int64, error) {
	if in.Email == "" || in.Password == "" {
		return 0, customErrors.NewInvalidArgument("Email and password are required")
	}
	if err := a.v.Struct(in); err != nil {
		return 0, customErrors.NewInvalidArgument(err.Error())
	}

	// Pre-check is an optimization only; the unique index on email is
	// the authoritative guard against the check-then-insert race.
	_, err := a.userRepo.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return 0, customErrors.ErrAlreadyExists
	case !errors.Is(err, customErrors.ErrNotFound):
		return 0, customErrors.WrapInternal(err, "Register")
	}

	passwordHash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return 0, customErrors.WrapInternal(err, "Register")
	}

	id, err := a.userRepo.CreateUser(ctx, model.User{
		Email:        in.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return 0, customErrors.ErrAlreadyExists
		}
		return 0, customErrors.WrapInternal(err, "Register")
	}

	return id, nil
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.TokenPair, error) {
	if in.Email == "" || in.Password == "" {
		return model.TokenPair{}, customErrors.NewInvalidArgument("Email and password are required")
	}

	// Unknown email and wrong password collapse into one error so the
	// response never reveals which accounts exist.
	user, err := a.userRepo.GetUserByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}

	ok, err := a.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}
	if !ok {
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	at, atExp, _, err := a.issuer.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "IssueAccessToken")
	}
	rt, rtExp, _, err := a.issuer.IssueRefreshToken(user.ID, user.Email)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "IssueRefreshToken")
	}

	now := time.Now()
	return model.TokenPair{
		AccessToken:  at,
		RefreshToken: rt,
		AccessTTL:    atExp.Sub(now),
		RefreshTTL:   rtExp.Sub(now),
		UserID:       user.ID,
		Email:        user.Email,
	}, nil
}

// Refresh mints a new access token from a valid refresh token. The
// refresh token itself is never rotated.
func (a *authService) Refresh(ctx context.Context, in dto.RefreshDTO) (string, error) {
	if in.RefreshToken == "" {
		return "", customErrors.ErrNoToken
	}

	claims, err := a.issuer.VerifyRefreshToken(in.RefreshToken)
	if err != nil {
		return "", customErrors.ErrInvalidToken
	}

	if a.tokenRepo != nil {
		revoked, err := a.tokenRepo.IsRevoked(ctx, claims.ID)
		if err != nil {
			return "", customErrors.WrapInternal(err, "Refresh")
		}
		if revoked {
			return "", customErrors.ErrInvalidToken
		}
	}

	at, _, _, err := a.issuer.IssueAccessToken(claims.UserID, claims.Email)
	if err != nil {
		return "", customErrors.WrapInternal(err, "IssueAccessToken")
	}
	return at, nil
}

// Logout is a no-op without a revocation list: clearing the cookie
// channel at the transport is the whole operation, and already-issued
// access tokens stay valid until natural expiry.
func (a *authService) Logout(ctx context.Context, in dto.LogoutDTO) error {
	if a.tokenRepo == nil || in.RefreshToken == "" {
		return nil
	}

	claims, err := a.issuer.VerifyRefreshToken(in.RefreshToken)
	if err != nil {
		// Invalid token is nothing to revoke; logout still succeeds.
		return nil
	}

	if err := a.tokenRepo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}
	return nil
}
