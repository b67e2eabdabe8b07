package models

import (
	"time"

	"github.com/lib/pq"
)

type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPublished ArticleStatus = "published"
)

type Article struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Content     string         `gorm:"type:text;not null" json:"content"` // rendered HTML
	Excerpt     string         `gorm:"type:text" json:"excerpt"`
	AuthorID    string         `gorm:"size:36;not null;index" json:"-"`
	Author      User           `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	PublishedAt time.Time      `gorm:"index" json:"publishedAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	Category    string         `gorm:"size:32;not null;index" json:"category"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	Likes       int            `gorm:"default:0" json:"likes"`
	Bookmarks   int            `gorm:"default:0" json:"bookmarks"`
	Views       int            `gorm:"default:0" json:"views"`
	CoverImage  string         `json:"coverImage,omitempty"`
	ReadTime    int            `json:"readTime"` // minutes
	Status      ArticleStatus  `gorm:"size:16;default:'published'" json:"status"`
	Score       float64        `gorm:"default:0;index" json:"score"`
	CreatedAt   time.Time      `gorm:"index" json:"-"`

	// Viewer projections, filled at read time from reactions.
	IsLiked      bool `gorm:"-" json:"isLiked"`
	IsBookmarked bool `gorm:"-" json:"isBookmarked"`
}
