package handlers

import (
	"os"

	"keepcooking/internal/middleware"
	"keepcooking/internal/models"

	"github.com/gin-gonic/gin"
)

// currentUser pulls the user LoadUser stashed in the context, if any.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(middleware.CheckUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func jsonError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// secureCookies follows SSL_ENABLE so local dev works over plain HTTP.
func secureCookies() bool {
	return os.Getenv("SSL_ENABLE") == "true"
}

// requestBaseURL rebuilds the external base URL for absolute links in
// responses, honoring the proxy's forwarded protocol.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// imageURL returns the absolute URL of a post's photo asset, or empty when
// the post has none.
func imageURL(c *gin.Context, imageID *string) string {
	if imageID == nil {
		return ""
	}
	return requestBaseURL(c) + "/api/images/" + *imageID + ".jpg"
}
