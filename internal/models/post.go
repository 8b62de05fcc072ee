package models

import "time"

// PostPreviewLength is the number of characters a post shows when printed
const PostPreviewLength = 15

// Post is a blog entry; listings are ordered newest first
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index;autoCreateTime"`
	AuthorID  uint      `json:"author_id" gorm:"index;not null"`
	Author    User      `json:"author" gorm:"constraint:OnDelete:CASCADE;"`
	GroupID   *uint     `json:"group_id,omitempty" gorm:"index"`
	Group     *Group    `json:"group,omitempty" gorm:"constraint:OnDelete:SET NULL;"`
	Image     string    `json:"image,omitempty" gorm:"size:255"` // storage reference, e.g. posts/<name>.gif
}

func (p Post) String() string {
	runes := []rune(p.Text)
	if len(runes) > PostPreviewLength {
		return string(runes[:PostPreviewLength])
	}
	return p.Text
}

// PostOrder is the default listing order
const PostOrder = "posts.created_at DESC, posts.id DESC"
