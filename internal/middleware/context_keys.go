package middleware

import "github.com/gin-gonic/gin"

const (
	// actorKey stores who authenticated an internal request: a JWT subject
	// or the fixed API key actor.
	actorKey = contextKey("actor")
	// authMethodKey records which middleware authenticated the request.
	authMethodKey = contextKey("authMethod")
)

// GetActorFromContext retrieves the authenticated actor from the Gin context.
// It returns the actor and a boolean indicating if it was found.
func GetActorFromContext(c *gin.Context) (string, bool) {
	actorVal, exists := c.Get(string(actorKey))
	if !exists {
		// check in the request context as well
		if v, ok := c.Request.Context().Value(actorKey).(string); ok && v != "" {
			return v, true
		}
		return "", false
	}

	actor, ok := actorVal.(string)
	if !ok {
		return "", false
	}

	return actor, true
}
