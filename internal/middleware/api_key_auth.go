package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
)

// APIKeyActor is recorded as the actor for requests authenticated by API key.
const APIKeyActor = "internal_api_key"

// APIKeyAuth authenticates requests carrying X-API-Key. A missing or wrong
// key falls through so AuthMiddleware can still accept a JWT. An empty
// expected key disables this path.
func APIKeyAuth(expectedKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if expectedKey == "" || key == "" {
			c.Next()
			return
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(expectedKey)) != 1 {
			GetLoggerFromCtx(c.Request.Context()).Warn("Rejected X-API-Key")
			c.Next()
			return
		}

		c.Set(string(actorKey), APIKeyActor)
		c.Set(string(authMethodKey), "api_key")
		c.Next()
	}
}
