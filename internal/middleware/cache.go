package middleware

import "github.com/gin-gonic/gin"

// NoStore marks API responses as uncacheable; every read reflects current storage.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
