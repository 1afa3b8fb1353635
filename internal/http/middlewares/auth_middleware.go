package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/config"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/session"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/users"
)

// TokenVerifier is kept small so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (*session.Claims, error)
}

type AuthMiddleware struct {
	tokens   TokenVerifier
	sessions session.Store
}

func NewAuthMiddleware(tokens TokenVerifier, sessions session.Store) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions}
}

// RequireAuth authenticates the request from the session cookie: the token
// signature and expiry are checked first, then the session id must still be
// live in the store (logout revokes it there).
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(session.CookieName)

		if err != nil || raw == "" {
			abortUnauthorized(c, "Missing session cookie")
			return
		}

		claims, err := m.tokens.Verify(raw)

		if err != nil {
			abortUnauthorized(c, "Invalid or expired session")
			return
		}

		cctx, cancel := config.WithTimeout(2 * time.Second)

		defer cancel()

		live, err := m.sessions.Exists(cctx, claims.SID)

		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "internal_error",
					"message": "Could not verify session",
				},
			})
			return
		}

		if !live {
			abortUnauthorized(c, "Session expired or revoked")
			return
		}

		c.Set(CtxPrincipal, claims.Principal())
		c.Set(CtxSessionID, claims.SID)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// Helpers so handlers don't need to know the magic keys.

func PrincipalFromContext(c *gin.Context) (users.View, bool) {
	v, ok := c.Get(CtxPrincipal)
	if !ok {
		return users.View{}, false
	}
	principal, ok := v.(users.View)
	return principal, ok
}

func SessionIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxSessionID)
	if !ok {
		return "", false
	}
	sid, ok := v.(string)
	return sid, ok
}
