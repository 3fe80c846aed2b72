package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tutorhub/tutorhub-api/internal/models"
	appErrors "github.com/tutorhub/tutorhub-api/pkg/errors"
	"github.com/tutorhub/tutorhub-api/pkg/response"
)

// RoleAdmin is the pseudo-role matched against the is_admin flag rather
// than the roles set.
const RoleAdmin = "admin"

// RBAC enforces role-based access control for routes. Users hold a set of
// roles, not a single one; any match admits.
func RBAC(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		for _, role := range allowed {
			if role == RoleAdmin && claims.IsAdmin {
				c.Next()
				return
			}
			if claims.HasRole(models.Role(role)) {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a helper that accepts typed roles.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}
