package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/auth"
)

const actorKey = "actor"

// ActorResolver turns a bearer token into the acting account.
type ActorResolver interface {
	ResolveActor(ctx context.Context, token string) (auth.Actor, error)
}

// Protect requires a valid bearer token and stores the resolved actor.
func Protect(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			fail(c, apperr.ErrNoToken)
			return
		}

		parts := strings.Fields(raw)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			fail(c, apperr.ErrNoToken)
			return
		}

		actor, err := resolver.ResolveActor(c.Request.Context(), parts[1])
		if err != nil {
			fail(c, err)
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// AdminOnly must run after Protect.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			fail(c, apperr.ErrNoToken)
			return
		}
		if !actor.IsAdmin {
			fail(c, apperr.ErrNotAdmin)
			return
		}
		c.Next()
	}
}

// ActorFrom returns the actor stored by Protect.
func ActorFrom(c *gin.Context) (auth.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return auth.Actor{}, false
	}
	actor, ok := v.(auth.Actor)
	return actor, ok
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
