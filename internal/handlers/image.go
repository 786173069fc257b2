package handlers

import (
	"net/http"
	"strings"

	"keepcooking/internal/services"

	"github.com/gin-gonic/gin"
)

type ImageHandler struct {
	posts *services.PostService
}

func NewImageHandler(posts *services.PostService) *ImageHandler {
	return &ImageHandler{posts: posts}
}

// Serve streams a completion photo. The asset inherits its post's
// visibility: hidden-post photos 404 for everyone but the owner.
func (h *ImageHandler) Serve(c *gin.Context) {
	imageID := strings.TrimSuffix(c.Param("file"), ".jpg")
	if imageID == "" || imageID == c.Param("file") {
		c.Status(http.StatusNotFound)
		return
	}

	var viewerID uint
	if user, ok := currentUser(c); ok {
		viewerID = user.ID
	}

	if _, err := h.posts.GetByImageID(viewerID, imageID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.File(h.posts.AssetPath(imageID))
}
