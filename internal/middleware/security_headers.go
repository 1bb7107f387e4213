package middleware

import "github.com/gin-gonic/gin"

// SecurityHeaders sets the browser protection headers on every response
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}
