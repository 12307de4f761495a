package middleware

import (
	"github.com/gin-gonic/gin"
)

// CORS lets the POS front-end (served from another origin in development)
// reach the API. The method list mirrors what the router actually exposes:
// the ledgers are append-only, so there is no PUT/PATCH surface.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
