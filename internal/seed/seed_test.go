package seed

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/blogstack/blogstack/internal/models"
)

// setupTestDB creates an in-memory SQLite database with the schema applied
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Post{}, &models.Comment{}))
	return db
}

func newTestSeeder(db *gorm.DB) *Seeder {
	return NewSeeder(db, zerolog.New(nil).Level(zerolog.Disabled))
}

func TestSeederRun(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, newTestSeeder(db).Run(context.Background()))

	var posts []models.Post
	require.NoError(t, db.Order("created_at asc").Find(&posts).Error)
	require.Len(t, posts, PostCount)

	for i, post := range posts {
		assert.Equal(t, fmt.Sprintf("Post #%d", i+1), post.Title)
		require.NotNil(t, post.Content)
		assert.NotEmpty(t, *post.Content)
	}

	// Timestamps are backdated and strictly ascending.
	for i := 1; i < len(posts); i++ {
		assert.True(t, posts[i].CreatedAt.After(posts[i-1].CreatedAt),
			"post %d should be newer than post %d", i+1, i)
	}
}

func TestSeederRunTwiceLeavesExactlyTenPosts(t *testing.T) {
	db := setupTestDB(t)
	seeder := newTestSeeder(db)

	require.NoError(t, seeder.Run(context.Background()))
	require.NoError(t, seeder.Run(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(PostCount), count)
}

func TestSeederClearsExistingData(t *testing.T) {
	db := setupTestDB(t)

	// Pre-existing data, including a comment, must be swept away.
	content := "old content"
	post := models.Post{Title: "Old post", Content: &content}
	require.NoError(t, db.Create(&post).Error)
	require.NoError(t, db.Create(&models.Comment{Content: "old comment", PostID: post.ID}).Error)

	require.NoError(t, newTestSeeder(db).Run(context.Background()))

	var postCount, commentCount int64
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&commentCount).Error)
	assert.Equal(t, int64(PostCount), postCount)
	assert.Equal(t, int64(0), commentCount)

	var titles []string
	require.NoError(t, db.Model(&models.Post{}).Order("id asc").Pluck("title", &titles).Error)
	assert.NotContains(t, titles, "Old post")
}
