package handlers

import (
	"errors"
	"io"
	"net/http"

	"keepcooking/internal/apperrors"
	"keepcooking/internal/models"
	"keepcooking/internal/services"
	"keepcooking/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxImageBytes caps completion-photo uploads at 10MB.
const maxImageBytes = 10 * 1024 * 1024

type PostHandler struct {
	posts   *services.PostService
	rewards *services.RewardService
	rater   *services.RatingAgent
}

func NewPostHandler(posts *services.PostService, rewards *services.RewardService, rater *services.RatingAgent) *PostHandler {
	return &PostHandler{posts: posts, rewards: rewards, rater: rater}
}

// MyPosts lists the caller's posts, drafts included.
func (h *PostHandler) MyPosts(c *gin.Context) {
	user, _ := currentUser(c)

	posts, err := h.posts.MyPosts(user.ID)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to load posts")
		return
	}

	items := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		items = append(items, gin.H{
			"id":        post.ID,
			"title":     post.Title,
			"image_url": imageURL(c, post.ImageID),
			"votes":     post.Votes,
			"rating":    post.Rating,
			"hidden":    post.Hidden,
		})
	}
	c.JSON(http.StatusOK, gin.H{"posts": items})
}

// Get returns one post. Hidden posts 404 for everyone but their owner.
func (h *PostHandler) Get(c *gin.Context) {
	var viewerID uint
	if user, ok := currentUser(c); ok {
		viewerID = user.ID
	}

	post, err := h.posts.Get(viewerID, uint(utils.StringToInt(c.Param("id"), 0)))
	if err != nil {
		if errors.Is(err, apperrors.ErrPostNotFound) {
			jsonError(c, http.StatusNotFound, "Post not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "Failed to load post")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          post.ID,
		"user_id":     post.UserID,
		"username":    post.User.Username,
		"recipe":      recipePayload(post),
		"image_url":   imageURL(c, post.ImageID),
		"votes":       post.Votes,
		"rating":      post.Rating,
		"hidden":      post.Hidden,
		"date_posted": post.DatePosted.Format("2006-01-02"),
	})
}

// List serves the public feed with sorting, rating filters, and pagination.
func (h *PostHandler) List(c *gin.Context) {
	params := services.ListParams{
		SortBy:    c.DefaultQuery("sort_by", "date_posted"),
		Order:     c.DefaultQuery("order", "desc"),
		Page:      utils.StringToInt(c.Query("page"), 1),
		PageSize:  utils.StringToInt(c.Query("page_size"), 20),
		MinRating: utils.StringToFloat(c.Query("min_rating")),
		MaxRating: utils.StringToFloat(c.Query("max_rating")),
	}

	page, err := h.posts.List(params)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to load posts")
		return
	}

	items := make([]gin.H, 0, len(page.Items))
	for _, post := range page.Items {
		items = append(items, gin.H{
			"id":          post.ID,
			"recipe":      recipePayload(&post),
			"image_url":   imageURL(c, post.ImageID),
			"rating":      post.Rating,
			"votes":       post.Votes,
			"username":    post.User.Username,
			"date_posted": post.DatePosted.Format("2006-01-02"),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"page":        page.Page,
		"page_size":   page.PageSize,
		"total_pages": page.TotalPages,
		"total_items": page.TotalItems,
		"items":       items,
	})
}

// Publish makes a draft visible and re-stamps its posting date.
func (h *PostHandler) Publish(c *gin.Context) {
	user, _ := currentUser(c)

	post, err := h.posts.Publish(user.ID, uint(utils.StringToInt(c.Param("id"), 0)))
	if err != nil {
		h.writeOwnershipError(c, err, "Failed to publish post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post published", "post_id": post.ID})
}

// Delete removes a post with its votes and photo.
func (h *PostHandler) Delete(c *gin.Context) {
	user, _ := currentUser(c)

	if err := h.posts.Delete(user.ID, uint(utils.StringToInt(c.Param("id"), 0))); err != nil {
		h.writeOwnershipError(c, err, "Failed to delete post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// GenerateRating takes a completion-photo upload, has the agent score it
// against the recipe, and on a valid image stores the photo, the rating, and
// the reward in that order. An invalid image leaves no trace.
func (h *PostHandler) GenerateRating(c *gin.Context) {
	user, _ := currentUser(c)

	post, err := h.posts.Get(user.ID, uint(utils.StringToInt(c.Param("id"), 0)))
	if err != nil {
		h.writeOwnershipError(c, err, "Failed to load post")
		return
	}
	if post.UserID != user.ID {
		jsonError(c, http.StatusForbidden, "Not authorized")
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil || header.Filename == "" {
		jsonError(c, http.StatusBadRequest, "No image uploaded")
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		jsonError(c, http.StatusBadRequest, "Image too large")
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil || len(data) > maxImageBytes {
		jsonError(c, http.StatusBadRequest, "Failed to read image")
		return
	}
	if !services.ValidJPEG(data) {
		jsonError(c, http.StatusBadRequest, "Invalid image format")
		return
	}

	recipe := &services.RecipeOutput{
		Title:    post.Title,
		Message:  post.Message,
		ImageURL: post.ImageURL,
		VideoURL: post.VideoURL,
	}
	verdict, err := h.rater.Rate(c.Request.Context(), recipe, data)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "Error processing query")
		return
	}
	if !verdict.ValidImage {
		jsonError(c, http.StatusBadRequest, "Invalid image submitted. Please take another picture and try again.")
		return
	}

	imageID := uuid.NewString()
	if err := h.posts.SetPhoto(post, imageID, float64(verdict.Rating), data); err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to save image")
		return
	}

	leveledUp, err := h.rewards.Grant(user.ID, verdict.Rating)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to apply reward")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    verdict.Response,
		"post_id":    post.ID,
		"image_url":  imageURL(c, &imageID),
		"leveled_up": leveledUp,
	})
}

func (h *PostHandler) writeOwnershipError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrPostNotFound):
		jsonError(c, http.StatusNotFound, "Post not found")
	case errors.Is(err, apperrors.ErrNotOwner):
		jsonError(c, http.StatusForbidden, "Not authorized")
	default:
		jsonError(c, http.StatusInternalServerError, fallback)
	}
}

func recipePayload(post *models.Post) gin.H {
	return gin.H{
		"title":        post.Title,
		"message":      post.Message,
		"message_html": utils.RenderMarkdown(post.Message),
		"image_url":    post.ImageURL,
		"video_url":    post.VideoURL,
	}
}
