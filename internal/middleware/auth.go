package middleware

import (
	"context"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/to-do-list-api/internal/constants"
	"github.com/yukikurage/to-do-list-api/internal/permissions"
)

// IdentityResolver turns a bearer token into a verified identity
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accessToken string) (*permissions.Identity, error)
}

// Authenticate resolves the caller from the Authorization header.
// It never rejects a request: a missing or invalid token leaves the caller
// anonymous and the permission checks downstream decide.
func Authenticate(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		identity, err := resolver.ResolveIdentity(c.Request.Context(), token)
		if err != nil {
			if gin.IsDebugging() {
				log.Printf("[%s] bearer token rejected: %v", GetRequestID(c), err)
			}
			c.Next()
			return
		}

		c.Set(constants.ContextKeyIdentity, identity)
		c.Next()
	}
}

// GetIdentity retrieves the caller identity from context, or nil for anonymous callers
func GetIdentity(c *gin.Context) *permissions.Identity {
	value, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return nil
	}

	identity, ok := value.(*permissions.Identity)
	if !ok {
		return nil
	}
	return identity
}

func bearerToken(header string) (string, bool) {
	if len(header) < len(constants.BearerPrefix) || !strings.EqualFold(header[:len(constants.BearerPrefix)], constants.BearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(constants.BearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
