package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index;not null"` // ID of the post the comment belongs to
	Post      Post      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	AuthorID  uint      `json:"author_id" gorm:"index;not null"` // ID of the user who made the comment
	Author    User      `json:"author" gorm:"constraint:OnDelete:CASCADE;"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (c Comment) String() string {
	return c.Text
}
