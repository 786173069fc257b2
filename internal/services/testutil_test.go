package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"keepcooking/internal/db"
	"keepcooking/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a per-test in-memory SQLite database. The named shared
// cache keeps gorm's pooled connections on the same database, and
// TranslateError matches production so uniqueness violations surface as
// gorm.ErrDuplicatedKey.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func createTestUser(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
	}
	require.NoError(t, gdb.Create(&user).Error)
	return &user
}

func createTestPost(t *testing.T, gdb *gorm.DB, userID uint, hidden bool) *models.Post {
	t.Helper()

	post := models.Post{
		UserID:     userID,
		Hidden:     hidden,
		Title:      "Shakshuka",
		Message:    "Crack the eggs into the simmering sauce.",
		DatePosted: time.Now().AddDate(0, 0, -1),
	}
	require.NoError(t, gdb.Create(&post).Error)
	return &post
}

// scoreFromRows recomputes a post's score straight from the vote rows,
// independent of the aggregator under test.
func scoreFromRows(t *testing.T, gdb *gorm.DB, postID uint) int {
	t.Helper()

	var up, down int64
	require.NoError(t, gdb.Model(&models.PostVote{}).
		Where("post_id = ? AND upvote = ?", postID, true).Count(&up).Error)
	require.NoError(t, gdb.Model(&models.PostVote{}).
		Where("post_id = ? AND upvote = ?", postID, false).Count(&down).Error)
	return int(up - down)
}

func storedVotes(t *testing.T, gdb *gorm.DB, postID uint) int {
	t.Helper()

	var post models.Post
	require.NoError(t, gdb.First(&post, postID).Error)
	return post.Votes
}
