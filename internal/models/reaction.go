package models

import (
	"time"
)

type ReactionKind string

const (
	ReactionArticleLike     ReactionKind = "article_like"
	ReactionArticleBookmark ReactionKind = "article_bookmark"
	ReactionCommentLike     ReactionKind = "comment_like"
)

// Reaction records that a user liked or bookmarked something. One row per
// (user, kind, target); the counters on Article and Comment mirror the row count.
type Reaction struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    string       `gorm:"size:36;not null;uniqueIndex:idx_user_kind_target" json:"userId"`
	Kind      ReactionKind `gorm:"size:20;not null;uniqueIndex:idx_user_kind_target" json:"kind"`
	TargetID  string       `gorm:"size:36;not null;index;uniqueIndex:idx_user_kind_target" json:"targetId"`
	CreatedAt time.Time    `json:"createdAt"`
}
