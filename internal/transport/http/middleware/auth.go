package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taskflowhq/taskflow/internal/auth/jwt"
)

const (
	ctxUserID = "userID"
	ctxEmail  = "email"
)

// RequireAuth validates the bearer access token and injects the caller's
// identity into the request context. Downstream handlers never run on a
// failed check.
func RequireAuth(issuer jwt.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}

		claims, err := issuer.VerifyAccessToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Next()
	}
}

// UserID returns the authenticated user id set by RequireAuth.
func UserID(c *gin.Context) int64 {
	id, _ := c.Get(ctxUserID)
	v, _ := id.(int64)
	return v
}

func Email(c *gin.Context) string {
	email, _ := c.Get(ctxEmail)
	v, _ := email.(string)
	return v
}
