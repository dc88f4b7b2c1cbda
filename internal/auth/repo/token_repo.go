package repo

import (
	"context"
	"time"
)

// TokenRepo is an optional revocation list keyed by refresh-token JTI.
// A nil TokenRepo keeps sessions fully stateless: validity is signature
// plus expiry and logout only clears the cookie channel.
type TokenRepo interface {
	Revoke(ctx context.Context, jti string, exp time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
