package services

import (
	"errors"

	"keepcooking/internal/apperrors"
	"keepcooking/internal/models"

	"gorm.io/gorm"
)

// VoteService maintains post_votes and the derived Post.Votes score. Every
// mutation and the score recompute share one transaction, so a committed
// vote row is never visible without its score update.
type VoteService struct {
	db *gorm.DB
}

func NewVoteService(gdb *gorm.DB) *VoteService {
	return &VoteService{db: gdb}
}

// Cast records an up or down vote by userID on postID and returns the post's
// new score. A repeat vote with the held polarity is rejected with
// ErrAlreadyVoted; the opposite polarity flips the existing row in place.
// Hidden or absent posts reject with ErrPostNotFound regardless of ownership,
// hidden drafts are invisible to the voting surface.
func (s *VoteService) Cast(userID, postID uint, upvote bool) (int, error) {
	var votes int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := visiblePost(tx, postID); err != nil {
			return err
		}

		var existing models.PostVote
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).
			First(&existing).Error
		switch {
		case err == nil:
			if existing.Upvote == upvote {
				return apperrors.ErrAlreadyVoted
			}
			// Flip in place, the pair keeps its single row.
			if err := tx.Model(&models.PostVote{}).
				Where("user_id = ? AND post_id = ?", userID, postID).
				Update("upvote", upvote).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.PostVote{UserID: userID, PostID: postID, Upvote: upvote}
			if err := tx.Create(&vote).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// Lost a first-vote race: another request inserted the
					// pair between our lookup and insert.
					return apperrors.ErrVoteConflict
				}
				return err
			}
		default:
			return err
		}

		v, err := recomputeScore(tx, postID)
		if err != nil {
			return err
		}
		votes = v
		return nil
	})
	return votes, err
}

// Retract removes userID's vote on postID if one exists. Retracting a vote
// that was never cast is a no-op and leaves the score untouched.
func (s *VoteService) Retract(userID, postID uint) (int, error) {
	var votes int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := visiblePost(tx, postID); err != nil {
			return err
		}

		if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).
			Delete(&models.PostVote{}).Error; err != nil {
			return err
		}

		v, err := recomputeScore(tx, postID)
		if err != nil {
			return err
		}
		votes = v
		return nil
	})
	return votes, err
}

// visiblePost rejects votes against absent or hidden posts.
func visiblePost(tx *gorm.DB, postID uint) error {
	var post models.Post
	if err := tx.Select("id", "hidden").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPostNotFound
		}
		return err
	}
	if post.Hidden {
		return apperrors.ErrPostNotFound
	}
	return nil
}

// recomputeScore overwrites the post's score with a fresh aggregate over the
// surviving vote rows. A full recompute instead of counter arithmetic: the
// score cannot drift when a writer fails mid-way, the transaction either
// commits row and score together or neither.
func recomputeScore(tx *gorm.DB, postID uint) (int, error) {
	var up, down int64
	if err := tx.Model(&models.PostVote{}).
		Where("post_id = ? AND upvote = ?", postID, true).
		Count(&up).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&models.PostVote{}).
		Where("post_id = ? AND upvote = ?", postID, false).
		Count(&down).Error; err != nil {
		return 0, err
	}

	votes := int(up - down)
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("votes", votes).Error; err != nil {
		return 0, err
	}
	return votes, nil
}
