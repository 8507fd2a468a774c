package models

import (
	"time"
)

// Post represents a blog post
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   *string   `json:"content"`
	Published bool      `gorm:"not null;default:false" json:"published"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	// Deleting a post with comments is rejected; renumbering a post
	// follows through to its comments.
	Comments []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"comments,omitempty"`
}

// TableName ensures consistent table naming
func (Post) TableName() string {
	return "posts"
}
