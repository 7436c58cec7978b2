// README: Actor middleware; reads who is calling from X-Actor-Type and X-Actor-ID.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reclaim/internal/modules/lifecycle"
)

const (
	actorKey        = "actor"
	ActorTypeHeader = "X-Actor-Type"
	ActorIDHeader   = "X-Actor-ID"
)

// Actor records the caller for audit events. Authentication happens upstream;
// a missing type header is treated as admin.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := lifecycle.Actor{
			Type: c.GetHeader(ActorTypeHeader),
			ID:   c.GetHeader(ActorIDHeader),
		}
		switch actor.Type {
		case "":
			actor.Type = lifecycle.ActorAdmin
		case lifecycle.ActorAdmin, lifecycle.ActorDriver, lifecycle.ActorSystem:
		default:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown actor type"})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// CallerActor returns the actor set by Actor, or the zero Actor.
func CallerActor(c *gin.Context) lifecycle.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(lifecycle.Actor); ok {
			return a
		}
	}
	return lifecycle.Actor{}
}
