package models

import (
	"time"
)

type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  string    `gorm:"size:36;not null;index" json:"-"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	ArticleID string    `gorm:"size:36;not null;index" json:"articleId"`
	ParentID  *string   `gorm:"size:36;index" json:"parentId,omitempty"` // nil for top-level comments
	CreatedAt time.Time `json:"createdAt"`
	Likes     int       `gorm:"default:0" json:"likes"`

	IsLiked bool      `gorm:"-" json:"isLiked"`
	Replies []Comment `gorm:"-" json:"replies,omitempty"`
}

// IsTopLevel reports whether the comment hangs directly off the article.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil || *c.ParentID == ""
}
