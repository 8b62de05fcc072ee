package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email       *string   `json:"email,omitempty" gorm:"size:254;uniqueIndex"`
	FullName    string    `json:"full_name" gorm:"size:150"`
	Password    string    `json:"-"`                                         // Store hashed password, ignore for JSON serialization
	FirebaseUID *string   `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // Link to Firebase User UID
	IsStaff     bool      `json:"is_staff" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u User) String() string {
	return u.Username
}

// DisplayName prefers the full name and falls back to the username
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// SessionClaims are the claims carried by the session cookie
type SessionClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
