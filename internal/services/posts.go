package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"keepcooking/internal/apperrors"
	"keepcooking/internal/models"
	"keepcooking/internal/utils"

	"gorm.io/gorm"
)

const (
	listCacheSize = 256
	listCacheTTL  = 30 * time.Second
	maxPageSize   = 100
)

// PostService owns the post lifecycle: draft creation from the generation
// agent, publishing, listing, and deletion with its cascades.
type PostService struct {
	db     *gorm.DB
	assets *AssetStore
	cache  *utils.TTLCache
}

func NewPostService(gdb *gorm.DB, assets *AssetStore) *PostService {
	cache, err := utils.NewTTLCache(listCacheSize)
	if err != nil {
		log.Fatalf("Failed to create listing cache: %v", err)
	}
	return &PostService{db: gdb, assets: assets, cache: cache}
}

// CreateDraft persists a generated recipe as a hidden post. Nothing is
// persisted when generation fails; callers only reach this with a complete
// recipe in hand.
func (s *PostService) CreateDraft(userID uint, recipe *RecipeOutput) (*models.Post, error) {
	post := models.Post{
		UserID:     userID,
		Hidden:     true,
		Title:      recipe.Title,
		Message:    recipe.Message,
		ImageURL:   recipe.ImageURL,
		VideoURL:   recipe.VideoURL,
		DatePosted: today(),
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Get loads one post. Hidden posts are visible only to their owner; everyone
// else sees ErrPostNotFound, indistinguishable from absence.
func (s *PostService) Get(viewerID, postID uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.Preload("User").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, err
	}
	if post.Hidden && post.UserID != viewerID {
		return nil, apperrors.ErrPostNotFound
	}
	return &post, nil
}

// GetByImageID resolves the post owning an uploaded photo, with the same
// hidden-post visibility rule as Get.
func (s *PostService) GetByImageID(viewerID uint, imageID string) (*models.Post, error) {
	var post models.Post
	if err := s.db.Where("image_id = ?", imageID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, err
	}
	if post.Hidden && post.UserID != viewerID {
		return nil, apperrors.ErrPostNotFound
	}
	return &post, nil
}

// MyPosts returns all of the user's posts, drafts included, newest first.
func (s *PostService) MyPosts(userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.Where("user_id = ?", userID).
		Order("date_posted DESC").
		Find(&posts).Error
	return posts, err
}

// ListParams is the public listing query.
type ListParams struct {
	SortBy    string // date_posted | votes | rating
	Order     string // asc | desc
	Page      int
	PageSize  int
	MinRating *float64
	MaxRating *float64
}

// PostPage is the pagination envelope the listing endpoint returns.
type PostPage struct {
	Page       int
	PageSize   int
	TotalPages int
	TotalItems int64
	Items      []models.Post
}

// List returns published posts, sorted and paginated. The unfiltered first
// page of each sort runs hot and is served from the TTL cache.
func (s *PostService) List(params ListParams) (*PostPage, error) {
	params = normalizeListParams(params)

	cacheKey := ""
	if params.Page == 1 && params.MinRating == nil && params.MaxRating == nil {
		cacheKey = listCacheKey(params.SortBy, params.Order, params.PageSize)
		if cached := s.cache.Get(cacheKey); cached != nil {
			if page, ok := cached.(*PostPage); ok {
				return page, nil
			}
		}
	}

	query := s.db.Model(&models.Post{}).Where("hidden = ?", false)
	if params.MinRating != nil {
		query = query.Where("rating >= ?", *params.MinRating)
	}
	if params.MaxRating != nil {
		query = query.Where("rating <= ?", *params.MaxRating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var posts []models.Post
	err := query.Preload("User").
		Order(params.SortBy + " " + params.Order).
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	page := &PostPage{
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
		TotalItems: total,
		Items:      posts,
	}

	if cacheKey != "" {
		s.cache.Set(cacheKey, page, listCacheTTL)
	}
	return page, nil
}

// Publish flips a draft visible and re-stamps its date. One-way: there is no
// transition back to draft.
func (s *PostService) Publish(userID, postID uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, err
	}
	if post.UserID != userID {
		return nil, apperrors.ErrNotOwner
	}

	post.Hidden = false
	post.DatePosted = today()
	if err := s.db.Save(&post).Error; err != nil {
		return nil, err
	}

	s.invalidateListings()
	return &post, nil
}

// Delete removes a post, its vote rows, and its photo asset. The two row
// deletions are one transaction; the asset removal is best-effort afterwards
// and never rolls anything back.
func (s *PostService) Delete(userID, postID uint) error {
	var imageID *string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPostNotFound
			}
			return err
		}
		if post.UserID != userID {
			return apperrors.ErrNotOwner
		}
		imageID = post.ImageID

		if err := tx.Where("post_id = ?", postID).
			Delete(&models.PostVote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return err
	}

	if imageID != nil {
		s.cleanupAsset(*imageID)
	}
	s.invalidateListings()
	return nil
}

// DeleteUser cascades an account removal: vote rows on the user's posts, the
// user's own votes elsewhere (with those posts' scores recomputed), the
// posts, the points ledger, then the user row, all in one transaction.
// Photo assets are cleaned up best-effort after commit.
func (s *PostService) DeleteUser(userID uint) error {
	var imageIDs []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var posts []models.Post
		if err := tx.Where("user_id = ?", userID).Find(&posts).Error; err != nil {
			return err
		}
		postIDs := make([]uint, 0, len(posts))
		for _, p := range posts {
			postIDs = append(postIDs, p.ID)
			if p.ImageID != nil {
				imageIDs = append(imageIDs, *p.ImageID)
			}
		}

		// Posts the user voted on but does not own need their scores
		// recomputed once the votes are gone.
		var votedPostIDs []uint
		if err := tx.Model(&models.PostVote{}).
			Where("user_id = ?", userID).
			Distinct().Pluck("post_id", &votedPostIDs).Error; err != nil {
			return err
		}

		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).
				Delete(&models.PostVote{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", userID).
			Delete(&models.PostVote{}).Error; err != nil {
			return err
		}

		owned := make(map[uint]bool, len(postIDs))
		for _, id := range postIDs {
			owned[id] = true
		}
		for _, id := range votedPostIDs {
			if owned[id] {
				continue
			}
			if _, err := recomputeScore(tx, id); err != nil {
				return err
			}
		}

		if len(postIDs) > 0 {
			if err := tx.Where("user_id = ?", userID).
				Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", userID).
			Delete(&models.PointLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		return err
	}

	for _, id := range imageIDs {
		s.cleanupAsset(id)
	}
	s.invalidateListings()
	return nil
}

// SetPhoto attaches a rated completion photo to a post, replacing any prior
// asset first so a post holds at most one.
func (s *PostService) SetPhoto(post *models.Post, imageID string, rating float64, data []byte) error {
	if post.ImageID != nil {
		s.cleanupAsset(*post.ImageID)
	}
	if err := s.assets.Save(imageID, data); err != nil {
		return err
	}

	if err := s.db.Model(post).Updates(map[string]interface{}{
		"image_id": imageID,
		"rating":   rating,
	}).Error; err != nil {
		// Keep disk and rows consistent if the update loses.
		s.cleanupAsset(imageID)
		return err
	}
	post.ImageID = &imageID
	post.Rating = &rating
	return nil
}

func (s *PostService) AssetPath(imageID string) string {
	return s.assets.Path(imageID)
}

// cleanupAsset logs real deletion failures and moves on; already-absent is
// expected and silent.
func (s *PostService) cleanupAsset(imageID string) {
	if _, err := s.assets.Delete(imageID); err != nil {
		log.Printf("Failed to remove image asset %s: %v", imageID, err)
	}
}

// invalidateListings drops every cached listing page. Keys vary by sort,
// order, and page size; publish and delete change what any of them returns.
func (s *PostService) invalidateListings() {
	s.cache.Purge()
}

func listCacheKey(sortBy, order string, pageSize int) string {
	return fmt.Sprintf("posts:list:%s:%s:%d", sortBy, order, pageSize)
}

func normalizeListParams(p ListParams) ListParams {
	switch p.SortBy {
	case "votes", "rating":
	default:
		p.SortBy = "date_posted"
	}
	if p.Order != "asc" {
		p.Order = "desc"
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

// today truncates to date granularity, matching the date_posted contract.
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
