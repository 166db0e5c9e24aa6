package middleware

import (
	"net/http"

	"go-reqdesk/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// Authorizer is a local interface so this package does not depend on the
// rbac implementation. Any service with a matching Enforce method fits.
type Authorizer interface {
	Enforce(roles []string, resource, action string) (bool, error)
}

func RequireCapability(authz Authorizer, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := c.GetStringSlice("roles")

		allowed, err := authz.Enforce(roles, resource, action)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "authorization check failed", nil)
			c.Abort()
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, "FORBIDDEN",
				"You do not have permission to access this resource",
				resource+":"+action,
			)
			c.Abort()
			return
		}
		c.Next()
	}
}
