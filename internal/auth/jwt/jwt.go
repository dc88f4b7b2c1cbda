package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signed payload carried by both token classes. Issued-at,
// expiry and the JTI are filled in by the issuer.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

type TokenIssuer interface {
	IssueAccessToken(userID int64, email string) (token string, exp time.Time, jti string, err error)
	IssueRefreshToken(userID int64, email string) (token string, exp time.Time, jti string, err error)
	VerifyAccessToken(token string) (Claims, error)
	VerifyRefreshToken(token string) (Claims, error)
}
