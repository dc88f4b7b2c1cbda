package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	customErrors "github.com/taskflowhq/taskflow/internal/auth/errors"
	"github.com/taskflowhq/taskflow/internal/config"
)

// tokenIssuer signs with HS256. Access and refresh tokens use distinct
// secrets, so a token of one class never verifies as the other.
type tokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

func NewTokenIssuer(cfg *config.Config) TokenIssuer {
	return &tokenIssuer{
		accessSecret:  []byte(cfg.JWTAccessSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		issuer:        cfg.JWTIssuer,
	}
}

func (t *tokenIssuer) IssueAccessToken(userID int64, email string) (string, time.Time, string, error) {
	return t.issue(userID, email, t.accessSecret, t.accessTTL)
}

func (t *tokenIssuer) IssueRefreshToken(userID int64, email string) (string, time.Time, string, error) {
	return t.issue(userID, email, t.refreshSecret, t.refreshTTL)
}

func (t *tokenIssuer) issue(userID int64, email string, secret []byte, ttl time.Duration) (string, time.Time, string, error) {
	jti := uuid.NewString()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		UserID: userID,
		Email:  email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, "", customErrors.WrapInternal(err, "sign token")
	}

	return signed, claims.ExpiresAt.Time, jti, nil
}

func (t *tokenIssuer) VerifyAccessToken(raw string) (Claims, error) {
	return t.verify(raw, t.accessSecret)
}

func (t *tokenIssuer) VerifyRefreshToken(raw string) (Claims, error) {
	return t.verify(raw, t.refreshSecret)
}

// verify collapses bad signature, malformed structure and expiry into a
// single ErrInvalidToken so callers cannot tell which check failed.
func (t *tokenIssuer) verify(raw string, secret []byte) (Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, customErrors.ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithIssuedAt())

	if err != nil || !token.Valid {
		return Claims{}, customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Claims{}, customErrors.ErrInvalidToken
	}

	if t.issuer != "" && claims.Issuer != t.issuer {
		return Claims{}, customErrors.ErrInvalidToken
	}

	return *claims, nil
}
