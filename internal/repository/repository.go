package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"
)

// ErrNotFound is returned when an id or email does not resolve to a record.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique key (user email) is already taken.
var ErrDuplicate = errors.New("duplicate record")

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	// List returns every article, most recently created first.
	List(ctx context.Context) ([]models.Article, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	Create(ctx context.Context, article *models.Article) error
	// ToggleReaction flips the user's like or bookmark on the article and moves
	// the matching counter by one. It reports the new state of the reaction.
	ToggleReaction(ctx context.Context, kind models.ReactionKind, articleID, userID string) (*models.Article, bool, error)
	IncrementViews(ctx context.Context, id string) error
	UpdateScore(ctx context.Context, id string, score float64) error
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	// ListByArticle returns the article's comments in insertion order.
	ListByArticle(ctx context.Context, articleID string) ([]models.Comment, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	ToggleLike(ctx context.Context, commentID, userID string) (*models.Comment, bool, error)
	CountByArticle(ctx context.Context, articleID string) (int, error)
}

// ReactionRepository answers "which of these did the viewer react to".
type ReactionRepository interface {
	Active(ctx context.Context, userID string, kind models.ReactionKind, targetIDs []string) (map[string]bool, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article  ArticleRepository
	Comment  CommentRepository
	Reaction ReactionRepository
	User     UserRepository
}

// NewMemoryRepositories backs every repository with one in-process store.
func NewMemoryRepositories() *Repositories {
	m := NewMemory()
	return &Repositories{Article: m.Articles(), Comment: m.Comments(), Reaction: m, User: m.Users()}
}
