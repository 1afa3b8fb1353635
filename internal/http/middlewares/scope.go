package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireScope authorizes by flat set intersection: the principal's scope
// must share at least one tag with the route's allowed list. No hierarchy,
// admin does not imply user.
func (m *AuthMiddleware) RequireScope(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))

	for _, s := range allowed {
		allowedSet[s] = struct{}{}
	}

	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)

		if !ok {
			abortUnauthorized(c, "Missing identity context")
			return
		}

		for _, s := range principal.Scope {
			if _, ok := allowedSet[s]; ok {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": gin.H{
				"code":    "forbidden",
				"message": "Insufficient scope",
			},
		})
	}
}
