package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// corsOrigins resolves the allowed origins from CORS_ALLOW_ORIGINS (comma
// separated), falling back to FRONTEND_URL, then to local dev hosts.
func corsOrigins() []string {
	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOW_ORIGINS")); raw != "" {
		var origins []string
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		return origins
	}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		return []string{frontend}
	}
	return []string{"http://localhost:3000", "http://127.0.0.1:3000"}
}

// CORS allows credentialed requests from the configured frontend origins.
func CORS() gin.HandlerFunc {
	allowed := make(map[string]bool)
	for _, origin := range corsOrigins() {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			c.Writer.Header().Set("Access-Control-Max-Age", "86400")
			c.Writer.Header().Set("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
