package handlers

import (
	"errors"
	"net/http"

	"keepcooking/internal/apperrors"
	"keepcooking/internal/services"
	"keepcooking/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// Upvote casts or flips an upvote on a published post.
func (h *VoteHandler) Upvote(c *gin.Context) {
	h.cast(c, true)
}

// Downvote casts or flips a downvote on a published post.
func (h *VoteHandler) Downvote(c *gin.Context) {
	h.cast(c, false)
}

func (h *VoteHandler) cast(c *gin.Context, upvote bool) {
	user, _ := currentUser(c)
	postID := uint(utils.StringToInt(c.Param("id"), 0))

	votes, err := h.votes.Cast(user.ID, postID, upvote)
	if errors.Is(err, apperrors.ErrVoteConflict) {
		// Lost a first-vote race to a concurrent request. One retry settles
		// it: against the now-existing row this resolves to a flip or to
		// AlreadyVoted.
		votes, err = h.votes.Cast(user.ID, postID, upvote)
	}
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPostNotFound):
			jsonError(c, http.StatusNotFound, "Post not found")
		case errors.Is(err, apperrors.ErrAlreadyVoted):
			if upvote {
				jsonError(c, http.StatusBadRequest, "Already upvoted")
			} else {
				jsonError(c, http.StatusBadRequest, "Already downvoted")
			}
		case errors.Is(err, apperrors.ErrVoteConflict):
			jsonError(c, http.StatusConflict, "Vote conflict, try again")
		default:
			jsonError(c, http.StatusInternalServerError, "Failed to record vote")
		}
		return
	}

	message := "Upvoted"
	if !upvote {
		message = "Downvoted"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"post_id": postID,
		"votes":   votes,
	})
}

// Retract withdraws the caller's vote. Withdrawing a vote that was never
// cast succeeds and changes nothing.
func (h *VoteHandler) Retract(c *gin.Context) {
	user, _ := currentUser(c)
	postID := uint(utils.StringToInt(c.Param("id"), 0))

	votes, err := h.votes.Retract(user.ID, postID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPostNotFound) {
			jsonError(c, http.StatusNotFound, "Post not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "Failed to retract vote")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Vote retracted",
		"post_id": postID,
		"votes":   votes,
	})
}
