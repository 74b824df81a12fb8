package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/mowind/rdsauth-go/internal/errors"
)

// requestIDHeader is the header the id is read from and echoed back on.
const requestIDHeader = "X-Request-Id"

// RequestIDMiddleware assigns every request an id, reusing one supplied by
// the caller. The id rides on the request context so downstream layers log
// it without touching gin.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = apperrors.GenerateRequestID()
		}
		c.Request = c.Request.WithContext(
			apperrors.NewContextWithRequestID(c.Request.Context(), requestID))
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// AuthMiddleware authenticates requests using Bearer tokens or X-API-Key
// headers against the configured key. Paths in the whitelist bypass the
// check.
func AuthMiddleware(enabled bool, secret string, whitelist []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		for _, whitelistedPath := range whitelist {
			if strings.HasPrefix(path, whitelistedPath) {
				if whitelistedPath == "/" && path != "/" {
					continue
				}
				c.Next()
				return
			}
		}

		// Constant-time comparisons throughout to prevent timing attacks.
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" && subtle.ConstantTimeCompare([]byte(parts[1]), []byte(secret)) == 1 {
				c.Next()
				return
			}
			abortUnauthorized(c)
			return
		}

		apiKey := c.GetHeader("X-API-Key")
		if apiKey != "" && subtle.ConstantTimeCompare([]byte(apiKey), []byte(secret)) == 1 {
			c.Next()
			return
		}

		abortUnauthorized(c)
	}
}

// abortUnauthorized replies with a generic message to avoid information
// leakage.
func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "authentication failed",
		"code":  http.StatusUnauthorized,
	})
}
