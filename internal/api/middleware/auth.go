package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jarinsubahh/buet-exchange/internal/services"
)

const userContextKey = "sessionUser"

type AuthMiddleware struct {
	sessions *services.SessionService
}

func NewAuthMiddleware(sessions *services.SessionService) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireAuth resolves the session cookie and attaches the signed-in
// identity to the request context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken, err := c.Cookie("session_token")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
			return
		}

		user, valid := am.sessions.ResolveSession(sessionToken)
		if !valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired, sign in again"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireAdmin gates the moderation surface. It must run after
// RequireAuth.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin capability required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the identity RequireAuth attached to the request.
func CurrentUser(c *gin.Context) (services.SessionUser, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return services.SessionUser{}, false
	}
	user, ok := value.(services.SessionUser)
	return user, ok
}
