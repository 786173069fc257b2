package services

import (
	"errors"

	"keepcooking/internal/apperrors"
	"keepcooking/internal/models"

	"gorm.io/gorm"
)

// PointsPerLevel is how many cumulative points one level costs.
const PointsPerLevel = 20

const ActionPhotoRated = "photo rated"

// ApplyReward is the leveling rule: the rating is clamped to [1,5], added to
// the balance, and the level recomputed as points / 20. Pure and total, no
// failure modes.
func ApplyReward(points, rating int) (newPoints, newLevel int, leveledUp bool) {
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}
	newPoints = points + rating
	newLevel = newPoints / PointsPerLevel
	leveledUp = newLevel > points/PointsPerLevel
	return newPoints, newLevel, leveledUp
}

// RewardService persists reward grants. Balance update and ledger row commit
// together.
type RewardService struct {
	db *gorm.DB
}

func NewRewardService(gdb *gorm.DB) *RewardService {
	return &RewardService{db: gdb}
}

// Grant applies one accepted photo rating to the user's balance and records
// it in the ledger. Callers must call it exactly once per rating event,
// calling twice double-counts.
func (s *RewardService) Grant(userID uint, rating int) (bool, error) {
	var leveledUp bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUserNotFound
			}
			return err
		}

		newPoints, newLevel, up := ApplyReward(user.Points, rating)

		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{
				"points": newPoints,
				"level":  newLevel,
			}).Error; err != nil {
			return err
		}

		entry := models.PointLog{
			UserID: userID,
			Amount: newPoints - user.Points,
			Action: ActionPhotoRated,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		leveledUp = up
		return nil
	})
	return leveledUp, err
}
