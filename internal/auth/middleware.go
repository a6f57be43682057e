package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/Tapedynamics/Twittich/internal/domain"
	"github.com/Tapedynamics/Twittich/pkg/log"
	"github.com/Tapedynamics/Twittich/pkg/response"
)

const (
	userKey       = "auth_user"
	authHeaderKey = "Authorization"
)

// RequireAuth returns a Gin middleware that validates bearer tokens and
// stores the resolved user in the request context.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.Authenticate(c.Request.Context(), c.GetHeader(authHeaderKey))
		if err != nil {
			response.Unauthorized(c, "invalid or missing credentials")
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Set(log.FieldUserID, user.ID)
		c.Set(log.FieldUsername, user.Username)
		c.Next()
	}
}

// GetUser extracts the authenticated user from the Gin context.
func GetUser(c *gin.Context) *domain.User {
	if v, exists := c.Get(userKey); exists {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}
