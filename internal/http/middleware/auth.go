// Package middleware – bearer-token authentication for the agent surface.
//
// RequireAuth validates the Authorization header with the provided verifier
// and stashes the agent identity in the Gin context. RequireRole layers a
// role check on top for admin-only routes.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/honeychat/honey-backend/internal/auth"
)

// Context keys for the authenticated identity.
const (
	ctxKeyAgentID   = "agentID"
	ctxKeyAgentRole = "agentRole"
)

// AgentID returns the authenticated agent id stored by RequireAuth.
func AgentID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyAgentID)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// AgentRole returns the authenticated agent's role stored by RequireAuth.
func AgentRole(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyAgentRole)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// TokenVerifier validates a bearer token and returns its claims.
// *auth.Signer satisfies it; tests substitute fakes.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and stashes the
// agent id and role in the context. The id is also stored under "userID" so
// the access logger and rate limiter pick it up.
func RequireAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "missing bearer token",
			})
			return
		}
		claims, err := v.Verify(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "invalid or expired token",
			})
			return
		}
		c.Set(ctxKeyAgentID, claims.Subject)
		c.Set(ctxKeyAgentRole, claims.Role)
		c.Set("userID", claims.Subject)
		c.Next()
	}
}

// RequireRole allows only identities whose role matches one of the given
// roles. Must run after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role, ok := AgentRole(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "authentication required",
			})
			return
		}
		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "forbidden",
				"message": "insufficient role",
			})
			return
		}
		c.Next()
	}
}
