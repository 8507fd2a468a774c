package models

// Comment represents a comment on a post
type Comment struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Content string `gorm:"not null" json:"content"`
	PostID  uint   `gorm:"not null;index" json:"postId"`
}

// TableName ensures consistent table naming
func (Comment) TableName() string {
	return "comments"
}
