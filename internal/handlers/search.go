package handlers

import (
	"net/http"
	"strings"

	"keepcooking/internal/services"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	agent *services.RecipeAgent
	posts *services.PostService
}

func NewSearchHandler(agent *services.RecipeAgent, posts *services.PostService) *SearchHandler {
	return &SearchHandler{agent: agent, posts: posts}
}

type searchRequest struct {
	Query string `json:"query"`
}

// Search runs the recipe agent on a free-text query and stores the result as
// a hidden draft the caller can publish later. Nothing is persisted when
// generation fails.
func (h *SearchHandler) Search(c *gin.Context) {
	user, _ := currentUser(c)

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Missing Query")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		jsonError(c, http.StatusBadRequest, "Missing Query")
		return
	}

	recipe, err := h.agent.Generate(c.Request.Context(), query)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "Error processing query")
		return
	}

	post, err := h.posts.CreateDraft(user.ID, recipe)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to save recipe")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post_id":   post.ID,
		"title":     recipe.Title,
		"message":   recipe.Message,
		"image_url": recipe.ImageURL,
		"video_url": recipe.VideoURL,
	})
}
