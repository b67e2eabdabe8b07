package models

import (
	"time"
)

// User is both the account record and the author snapshot embedded in
// articles and comments. It is also the record persisted in the session slot.
type User struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Username       string    `gorm:"not null;index" json:"username"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName    string    `gorm:"not null" json:"displayName"`
	PasswordHash   string    `json:"-"` // bcrypt, empty for derived demo users
	Avatar         string    `json:"avatar,omitempty"`
	Bio            string    `gorm:"size:200" json:"bio,omitempty"`
	Location       string    `json:"location,omitempty"`
	Website        string    `json:"website,omitempty"`
	JoinedAt       time.Time `json:"joinedAt"`
	FollowersCount int       `gorm:"default:0" json:"followersCount"`
	FollowingCount int       `gorm:"default:0" json:"followingCount"`
	ArticlesCount  int       `gorm:"default:0" json:"articlesCount"`
}

// Snapshot returns a copy safe to embed into content.
func (u User) Snapshot() User {
	u.PasswordHash = ""
	return u
}
