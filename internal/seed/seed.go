package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/blogstack/blogstack/internal/models"
)

// PostCount is the number of synthetic posts the seeder leaves behind.
const PostCount = 10

// Seeder resets the posts table to a known dataset. It deletes everything
// and reinserts, so running it twice leaves the same ten rows, not twenty.
type Seeder struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewSeeder creates a new Seeder
func NewSeeder(db *gorm.DB, logger zerolog.Logger) *Seeder {
	return &Seeder{
		db:     db,
		logger: logger,
	}
}

// Run clears all posts and inserts PostCount synthetic posts with
// sequential titles and backdated, ascending creation timestamps. The
// whole reset is one transaction.
func (s *Seeder) Run(ctx context.Context) error {
	s.logger.Info().Int("count", PostCount).Msg("Seeding posts")

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Comments first: the restrict FK rejects deleting commented posts.
		if err := tx.Where("1 = 1").Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to clear comments: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&models.Post{}).Error; err != nil {
			return fmt.Errorf("failed to clear posts: %w", err)
		}

		now := time.Now().UTC()
		for i := 1; i <= PostCount; i++ {
			content := fmt.Sprintf("This is the body of post #%d.", i)
			post := models.Post{
				Title:     fmt.Sprintf("Post #%d", i),
				Content:   &content,
				Published: i%3 == 0,
				// Backdated so post #1 is the oldest and #10 the newest.
				CreatedAt: now.Add(-time.Duration(PostCount-i) * 24 * time.Hour),
			}
			if err := tx.Create(&post).Error; err != nil {
				return fmt.Errorf("failed to create post %d: %w", i, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int("count", PostCount).Msg("Seeding completed")
	return nil
}
