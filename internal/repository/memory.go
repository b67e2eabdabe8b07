package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"inkwell/internal/models"
)

type reactionKey struct {
	userID   string
	kind     models.ReactionKind
	targetID string
}

// Memory is a process-local store behind the repository interfaces. All
// reads return copies, so callers never share state with the store.
type Memory struct {
	mu           sync.RWMutex
	articles     []*models.Article // newest first
	comments     []*models.Comment // insertion order
	reactions    map[reactionKey]time.Time
	users        map[string]*models.User
	usersByEmail map[string]string
	now          func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		reactions:    make(map[reactionKey]time.Time),
		users:        make(map[string]*models.User),
		usersByEmail: make(map[string]string),
		now:          time.Now,
	}
}

func (m *Memory) Articles() ArticleRepository { return &memoryArticles{m} }
func (m *Memory) Comments() CommentRepository { return &memoryComments{m} }
func (m *Memory) Users() UserRepository       { return &memoryUsers{m} }

// Active implements ReactionRepository.
func (m *Memory) Active(ctx context.Context, userID string, kind models.ReactionKind, targetIDs []string) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	active := make(map[string]bool)
	for _, id := range targetIDs {
		if _, ok := m.reactions[reactionKey{userID, kind, id}]; ok {
			active[id] = true
		}
	}
	return active, nil
}

// toggle flips a reaction row and returns its new state. Caller holds m.mu.
func (m *Memory) toggle(kind models.ReactionKind, targetID, userID string) bool {
	key := reactionKey{userID, kind, targetID}
	if _, ok := m.reactions[key]; ok {
		delete(m.reactions, key)
		return false
	}
	m.reactions[key] = m.now()
	return true
}

func copyArticle(a *models.Article) models.Article {
	out := *a
	out.Tags = append([]string(nil), a.Tags...)
	return out
}

func copyComment(c *models.Comment) models.Comment {
	out := *c
	if c.ParentID != nil {
		parent := *c.ParentID
		out.ParentID = &parent
	}
	out.Replies = nil
	return out
}

func step(counter int, up bool) int {
	if up {
		return counter + 1
	}
	if counter > 0 {
		return counter - 1
	}
	return 0
}

type memoryArticles struct{ m *Memory }

func (r *memoryArticles) List(ctx context.Context) ([]models.Article, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	out := make([]models.Article, len(r.m.articles))
	for i, a := range r.m.articles {
		out[i] = copyArticle(a)
	}
	return out, nil
}

func (r *memoryArticles) find(id string) *models.Article {
	for _, a := range r.m.articles {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (r *memoryArticles) GetByID(ctx context.Context, id string) (*models.Article, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	a := r.find(id)
	if a == nil {
		return nil, ErrNotFound
	}
	out := copyArticle(a)
	return &out, nil
}

func (r *memoryArticles) Create(ctx context.Context, article *models.Article) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if r.find(article.ID) != nil {
		return ErrDuplicate
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = r.m.now()
	}
	stored := copyArticle(article)
	stored.IsLiked, stored.IsBookmarked = false, false
	r.m.articles = append([]*models.Article{&stored}, r.m.articles...)
	return nil
}

func (r *memoryArticles) ToggleReaction(ctx context.Context, kind models.ReactionKind, articleID, userID string) (*models.Article, bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	a := r.find(articleID)
	if a == nil {
		return nil, false, ErrNotFound
	}

	active := r.m.toggle(kind, articleID, userID)
	switch kind {
	case models.ReactionArticleLike:
		a.Likes = step(a.Likes, active)
	case models.ReactionArticleBookmark:
		a.Bookmarks = step(a.Bookmarks, active)
	}

	out := copyArticle(a)
	return &out, active, nil
}

func (r *memoryArticles) IncrementViews(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	a := r.find(id)
	if a == nil {
		return ErrNotFound
	}
	a.Views++
	return nil
}

func (r *memoryArticles) UpdateScore(ctx context.Context, id string, score float64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	a := r.find(id)
	if a == nil {
		return ErrNotFound
	}
	a.Score = score
	return nil
}

type memoryComments struct{ m *Memory }

func (r *memoryComments) find(id string) *models.Comment {
	for _, c := range r.m.comments {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (r *memoryComments) ListByArticle(ctx context.Context, articleID string) ([]models.Comment, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	out := make([]models.Comment, 0)
	for _, c := range r.m.comments {
		if c.ArticleID == articleID {
			out = append(out, copyComment(c))
		}
	}
	return out, nil
}

func (r *memoryComments) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	c := r.find(id)
	if c == nil {
		return nil, ErrNotFound
	}
	out := copyComment(c)
	return &out, nil
}

func (r *memoryComments) Create(ctx context.Context, comment *models.Comment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if r.find(comment.ID) != nil {
		return ErrDuplicate
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = r.m.now()
	}
	stored := copyComment(comment)
	stored.IsLiked = false
	r.m.comments = append(r.m.comments, &stored)
	return nil
}

func (r *memoryComments) ToggleLike(ctx context.Context, commentID, userID string) (*models.Comment, bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	c := r.find(commentID)
	if c == nil {
		return nil, false, ErrNotFound
	}

	active := r.m.toggle(models.ReactionCommentLike, commentID, userID)
	c.Likes = step(c.Likes, active)

	out := copyComment(c)
	return &out, active, nil
}

func (r *memoryComments) CountByArticle(ctx context.Context, articleID string) (int, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	n := 0
	for _, c := range r.m.comments {
		if c.ArticleID == articleID {
			n++
		}
	}
	return n, nil
}

type memoryUsers struct{ m *Memory }

func (r *memoryUsers) Create(ctx context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := r.m.usersByEmail[email]; ok {
		return ErrDuplicate
	}
	if _, ok := r.m.users[user.ID]; ok {
		return ErrDuplicate
	}
	stored := *user
	r.m.users[user.ID] = &stored
	r.m.usersByEmail[email] = user.ID
	return nil
}

func (r *memoryUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *memoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	id, ok := r.m.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *r.m.users[id]
	return &out, nil
}
