// Package seed loads the bundled sample catalogue into a store.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

//go:embed seed.yaml
var bundled []byte

type userRecord struct {
	ID             string    `yaml:"id"`
	Username       string    `yaml:"username"`
	DisplayName    string    `yaml:"displayName"`
	Email          string    `yaml:"email"`
	Avatar         string    `yaml:"avatar"`
	Bio            string    `yaml:"bio"`
	Location       string    `yaml:"location"`
	Website        string    `yaml:"website"`
	JoinedAt       time.Time `yaml:"joinedAt"`
	FollowersCount int       `yaml:"followersCount"`
	FollowingCount int       `yaml:"followingCount"`
	ArticlesCount  int       `yaml:"articlesCount"`
}

type articleRecord struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	AuthorID    string    `yaml:"authorId"`
	PublishedAt time.Time `yaml:"publishedAt"`
	Category    string    `yaml:"category"`
	Tags        []string  `yaml:"tags"`
	Likes       int       `yaml:"likes"`
	Bookmarks   int       `yaml:"bookmarks"`
	Views       int       `yaml:"views"`
	CoverImage  string    `yaml:"coverImage"`
	ReadTime    int       `yaml:"readTime"`
	Excerpt     string    `yaml:"excerpt"`
	Content     string    `yaml:"content"`
}

type commentRecord struct {
	ID        string    `yaml:"id"`
	ArticleID string    `yaml:"articleId"`
	ParentID  string    `yaml:"parentId"`
	AuthorID  string    `yaml:"authorId"`
	CreatedAt time.Time `yaml:"createdAt"`
	Likes     int       `yaml:"likes"`
	Content   string    `yaml:"content"`
}

// Catalogue is the decoded sample data.
type Catalogue struct {
	Users    []userRecord    `yaml:"users"`
	Articles []articleRecord `yaml:"articles"`
	Comments []commentRecord `yaml:"comments"`
}

// Parse decodes a catalogue document.
func Parse(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse seed catalogue: %w", err)
	}
	return &c, nil
}

// Bundled returns the catalogue compiled into the binary.
func Bundled() (*Catalogue, error) {
	return Parse(bundled)
}

// Load writes the catalogue into repos. Records already present are skipped,
// so loading twice is harmless.
func Load(ctx context.Context, repos *repository.Repositories, c *Catalogue, log zerolog.Logger) error {
	users := make(map[string]models.User, len(c.Users))
	for _, r := range c.Users {
		u := models.User{
			ID:             r.ID,
			Username:       r.Username,
			Email:          r.Email,
			DisplayName:    r.DisplayName,
			Avatar:         r.Avatar,
			Bio:            r.Bio,
			Location:       r.Location,
			Website:        r.Website,
			JoinedAt:       r.JoinedAt,
			FollowersCount: r.FollowersCount,
			FollowingCount: r.FollowingCount,
			ArticlesCount:  r.ArticlesCount,
		}
		if err := repos.User.Create(ctx, &u); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("seed user %s: %w", r.ID, err)
		}
		users[u.ID] = u
	}

	created := 0
	// The store prepends, so insert oldest first to keep the catalogue order.
	for i := len(c.Articles) - 1; i >= 0; i-- {
		r := c.Articles[i]
		author, ok := users[r.AuthorID]
		if !ok {
			return fmt.Errorf("seed article %s: unknown author %s", r.ID, r.AuthorID)
		}
		a := models.Article{
			ID:          r.ID,
			Title:       r.Title,
			Content:     r.Content,
			Excerpt:     r.Excerpt,
			AuthorID:    author.ID,
			Author:      author.Snapshot(),
			PublishedAt: r.PublishedAt,
			UpdatedAt:   r.PublishedAt,
			CreatedAt:   r.PublishedAt,
			Category:    r.Category,
			Tags:        r.Tags,
			Likes:       r.Likes,
			Bookmarks:   r.Bookmarks,
			Views:       r.Views,
			CoverImage:  r.CoverImage,
			ReadTime:    r.ReadTime,
			Status:      models.StatusPublished,
		}
		err := repos.Article.Create(ctx, &a)
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			continue
		case err != nil:
			return fmt.Errorf("seed article %s: %w", r.ID, err)
		}
		created++
	}

	for _, r := range c.Comments {
		author, ok := users[r.AuthorID]
		if !ok {
			return fmt.Errorf("seed comment %s: unknown author %s", r.ID, r.AuthorID)
		}
		cm := models.Comment{
			ID:        r.ID,
			Content:   r.Content,
			AuthorID:  author.ID,
			Author:    author.Snapshot(),
			ArticleID: r.ArticleID,
			CreatedAt: r.CreatedAt,
			Likes:     r.Likes,
		}
		if r.ParentID != "" {
			parent := r.ParentID
			cm.ParentID = &parent
		}
		if err := repos.Comment.Create(ctx, &cm); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("seed comment %s: %w", r.ID, err)
		}
	}

	if created == 0 {
		log.Info().Msg("Catalogue already seeded, skipping")
		return nil
	}
	log.Info().Int("articles", created).Int("comments", len(c.Comments)).Msg("Catalogue seeded")
	return nil
}
