package models

import (
	"fmt"
	"time"
)

// FollowConstraint names the unique index over (user_id, author_id)
const FollowConstraint = "unique_following"

// Follow is a directed edge: User sees Author's posts in the follow feed
type Follow struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null;uniqueIndex:unique_following"`
	User      User      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	AuthorID  uint      `json:"author_id" gorm:"index;not null;uniqueIndex:unique_following"`
	Author    User      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt time.Time `json:"created_at"`
}

func (f Follow) String() string {
	return fmt.Sprintf("%d -> %d", f.UserID, f.AuthorID)
}
