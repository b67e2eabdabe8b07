package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/session"
	"inkwell/internal/utils"
)

// ScoreScheduler receives article ids whose score may have changed.
type ScoreScheduler interface {
	ScheduleUpdate(articleID string)
}

// Content formats accepted by CreateArticle.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// ArticleDraft is the author's input for a new article. Content is markdown
// unless Format is "html".
type ArticleDraft struct {
	Title      string               `json:"title" validate:"notblank,max=200"`
	Content    string               `json:"content" validate:"notblank"`
	Category   string               `json:"category" validate:"required,category"`
	Tags       []string             `json:"tags" validate:"max=10,dive,notblank,max=32"`
	CoverImage string               `json:"coverImage" validate:"omitempty,url"`
	Excerpt    string               `json:"excerpt" validate:"max=500"`
	ReadTime   int                  `json:"readTime" validate:"gte=0"`
	Status     models.ArticleStatus `json:"status" validate:"omitempty,oneof=draft published"`
	Format     string               `json:"format" validate:"omitempty,oneof=markdown html"`
}

// CommentInput is a new comment. A nil or empty ParentID makes it top-level.
type CommentInput struct {
	ArticleID string  `json:"articleId" validate:"required"`
	Content   string  `json:"content" validate:"notblank,max=2000"`
	ParentID  *string `json:"parentId"`
}

// FeedQuery selects and orders the article list.
type FeedQuery struct {
	Category string
	Query    string
	Sort     SortOrder
	Since    time.Time // zero keeps everything
}

type ContentOption func(*ContentService)

// WithCache caches article detail for ttl.
func WithCache(cache *utils.Cache[models.Article], ttl time.Duration) ContentOption {
	return func(s *ContentService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithRanking notifies r whenever an article's score inputs change.
func WithRanking(r ScoreScheduler) ContentOption {
	return func(s *ContentService) { s.ranking = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ContentOption {
	return func(s *ContentService) { s.now = now }
}

// ContentService holds the article and comment operations. Writes to the
// same article or comment are serialized; reads never block on them.
type ContentService struct {
	repos    *repository.Repositories
	log      zerolog.Logger
	locks    *keyedMutex
	cache    *utils.Cache[models.Article]
	cacheTTL time.Duration
	ranking  ScoreScheduler
	now      func() time.Time
}

func NewContentService(repos *repository.Repositories, log zerolog.Logger, opts ...ContentOption) *ContentService {
	s := &ContentService{
		repos: repos,
		log:   log.With().Str("component", "content").Logger(),
		locks: newKeyedMutex(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func articleKey(id string) string { return "article:" + id }
func commentKey(id string) string { return "comment:" + id }

// ListArticles returns the articles the viewer may see, most recent first.
// Drafts are only visible to their author.
func (s *ContentService) ListArticles(ctx context.Context, viewer session.Session) ([]models.Article, error) {
	all, err := s.repos.Article.List(ctx)
	if err != nil {
		return nil, NewInternalError("failed to list articles", err)
	}

	out := all[:0]
	for _, a := range all {
		if !visibleTo(&a, viewer) {
			continue
		}
		out = append(out, a)
	}
	if err := s.projectArticles(ctx, viewer, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Feed is ListArticles narrowed by category and query, then sorted.
func (s *ContentService) Feed(ctx context.Context, viewer session.Session, q FeedQuery) ([]models.Article, error) {
	all, err := s.ListArticles(ctx, viewer)
	if err != nil {
		return nil, err
	}
	out := FilterArticles(all, q.Category, q.Query)
	if !q.Since.IsZero() {
		recent := out[:0]
		for _, a := range out {
			if !a.PublishedAt.Before(q.Since) {
				recent = append(recent, a)
			}
		}
		out = recent
	}
	SortArticles(out, q.Sort)
	return out, nil
}

// GetArticle returns one article and counts the view.
func (s *ContentService) GetArticle(ctx context.Context, viewer session.Session, id string) (*models.Article, error) {
	unlock := s.locks.Lock(articleKey(id))
	defer unlock()

	a, ok := s.cachedArticle(id)
	if !ok {
		fresh, err := s.repos.Article.GetByID(ctx, id)
		if err != nil {
			return nil, s.notFoundOr(err, "article", id)
		}
		a = *fresh
	}
	if !visibleTo(&a, viewer) {
		return nil, NewNotFoundError("article not found")
	}

	if err := s.repos.Article.IncrementViews(ctx, id); err != nil {
		return nil, s.notFoundOr(err, "article", id)
	}
	a.Views++
	s.storeArticle(a)

	one := []models.Article{a}
	if err := s.projectArticles(ctx, viewer, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// CreateArticle publishes a new article authored by the session user.
func (s *ContentService) CreateArticle(ctx context.Context, sess session.Session, draft ArticleDraft) (*models.Article, error) {
	if !sess.IsAuthenticated() {
		return nil, NewAuthRequiredError("sign in to publish")
	}
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Tags = cleanTags(draft.Tags)
	if err := validateInput("invalid article", draft); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, NewInternalError("failed to generate id", err)
	}

	body, text := utils.RenderMarkdown(draft.Content), draft.Content
	if draft.Format == FormatHTML {
		body = utils.SanitizeHTML(draft.Content)
		text = utils.StripHTML(body)
	}

	now := s.now()
	a := &models.Article{
		ID:          id.String(),
		Title:       draft.Title,
		Content:     body,
		Excerpt:     draft.Excerpt,
		AuthorID:    sess.User.ID,
		Author:      sess.User.Snapshot(),
		PublishedAt: now,
		UpdatedAt:   now,
		CreatedAt:   now,
		Category:    draft.Category,
		Tags:        draft.Tags,
		CoverImage:  draft.CoverImage,
		ReadTime:    draft.ReadTime,
		Status:      draft.Status,
	}
	if a.Excerpt == "" {
		a.Excerpt = utils.Excerpt(text)
	}
	if a.ReadTime == 0 {
		a.ReadTime = utils.ReadTime(text)
	}
	if a.Status == "" {
		a.Status = models.StatusPublished
	}

	if err := s.repos.Article.Create(ctx, a); err != nil {
		return nil, NewInternalError("failed to create article", err)
	}
	s.log.Info().Str("article_id", a.ID).Str("author_id", a.AuthorID).Msg("Article created")
	s.scheduleScore(a.ID)
	return a, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ToggleLike flips the session user's like on an article.
func (s *ContentService) ToggleLike(ctx context.Context, sess session.Session, articleID string) (*models.Article, error) {
	return s.toggleArticle(ctx, sess, models.ReactionArticleLike, articleID)
}

// ToggleBookmark flips the session user's bookmark on an article.
func (s *ContentService) ToggleBookmark(ctx context.Context, sess session.Session, articleID string) (*models.Article, error) {
	return s.toggleArticle(ctx, sess, models.ReactionArticleBookmark, articleID)
}

func (s *ContentService) toggleArticle(ctx context.Context, sess session.Session, kind models.ReactionKind, articleID string) (*models.Article, error) {
	if !sess.IsAuthenticated() {
		return nil, NewAuthRequiredError("sign in to react to articles")
	}

	unlock := s.locks.Lock(articleKey(articleID))
	defer unlock()

	if _, err := s.visibleArticle(ctx, sess, articleID); err != nil {
		return nil, err
	}
	a, _, err := s.repos.Article.ToggleReaction(ctx, kind, articleID, sess.User.ID)
	if err != nil {
		return nil, s.notFoundOr(err, "article", articleID)
	}
	s.invalidateArticle(articleID)
	s.scheduleScore(articleID)

	one := []models.Article{*a}
	if err := s.projectArticles(ctx, sess, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// ListComments returns the article's comments flat, in insertion order.
func (s *ContentService) ListComments(ctx context.Context, viewer session.Session, articleID string) ([]models.Comment, error) {
	if _, err := s.visibleArticle(ctx, viewer, articleID); err != nil {
		return nil, err
	}
	return s.listComments(ctx, viewer, articleID)
}

func (s *ContentService) listComments(ctx context.Context, viewer session.Session, articleID string) ([]models.Comment, error) {
	comments, err := s.repos.Comment.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, NewInternalError("failed to list comments", err)
	}
	if err := s.projectComments(ctx, viewer, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// Thread returns the article's comments as a two-level tree.
func (s *ContentService) Thread(ctx context.Context, viewer session.Session, articleID string) ([]models.Comment, error) {
	if _, err := s.visibleArticle(ctx, viewer, articleID); err != nil {
		return nil, err
	}
	comments, err := s.listComments(ctx, viewer, articleID)
	if err != nil {
		return nil, err
	}
	return BuildThread(comments, articleID), nil
}

// CreateComment adds a comment by the session user. A reply to a reply is
// attached to the top-level comment it hangs off.
func (s *ContentService) CreateComment(ctx context.Context, sess session.Session, in CommentInput) (*models.Comment, error) {
	if !sess.IsAuthenticated() {
		return nil, NewAuthRequiredError("sign in to comment")
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := validateInput("invalid comment", in); err != nil {
		return nil, err
	}

	if _, err := s.visibleArticle(ctx, sess, in.ArticleID); err != nil {
		return nil, err
	}

	var parentID *string
	if in.ParentID != nil && *in.ParentID != "" {
		pid, err := s.resolveParent(ctx, in.ArticleID, *in.ParentID)
		if err != nil {
			return nil, err
		}
		parentID = &pid
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, NewInternalError("failed to generate id", err)
	}
	c := &models.Comment{
		ID:        id.String(),
		Content:   in.Content,
		AuthorID:  sess.User.ID,
		Author:    sess.User.Snapshot(),
		ArticleID: in.ArticleID,
		ParentID:  parentID,
		CreatedAt: s.now(),
	}
	if err := s.repos.Comment.Create(ctx, c); err != nil {
		return nil, NewInternalError("failed to create comment", err)
	}
	s.log.Info().Str("comment_id", c.ID).Str("article_id", c.ArticleID).Msg("Comment created")
	s.InvalidateArticle(in.ArticleID)
	s.scheduleScore(in.ArticleID)
	return c, nil
}

func (s *ContentService) resolveParent(ctx context.Context, articleID, parentID string) (string, error) {
	parent, err := s.repos.Comment.GetByID(ctx, parentID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && parent.ArticleID != articleID) {
		return "", NewValidationError("parent comment does not belong to this article", map[string]string{"parentId": "parent"})
	}
	if err != nil {
		return "", NewInternalError("failed to load parent comment", err)
	}
	if parent.IsTopLevel() {
		return parent.ID, nil
	}
	return *parent.ParentID, nil
}

// ToggleCommentLike flips the session user's like on a comment.
func (s *ContentService) ToggleCommentLike(ctx context.Context, sess session.Session, commentID string) (*models.Comment, error) {
	if !sess.IsAuthenticated() {
		return nil, NewAuthRequiredError("sign in to like comments")
	}

	unlock := s.locks.Lock(commentKey(commentID))
	defer unlock()

	existing, err := s.repos.Comment.GetByID(ctx, commentID)
	if err != nil {
		return nil, s.notFoundOr(err, "comment", commentID)
	}
	if _, err := s.visibleArticle(ctx, sess, existing.ArticleID); err != nil {
		return nil, NewNotFoundError("comment not found")
	}
	c, active, err := s.repos.Comment.ToggleLike(ctx, commentID, sess.User.ID)
	if err != nil {
		return nil, s.notFoundOr(err, "comment", commentID)
	}
	c.IsLiked = active
	return c, nil
}

func (s *ContentService) projectArticles(ctx context.Context, viewer session.Session, articles []models.Article) error {
	if !viewer.IsAuthenticated() || len(articles) == 0 {
		return nil
	}
	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}
	liked, err := s.repos.Reaction.Active(ctx, viewer.UserID(), models.ReactionArticleLike, ids)
	if err != nil {
		return NewInternalError("failed to load reactions", err)
	}
	bookmarked, err := s.repos.Reaction.Active(ctx, viewer.UserID(), models.ReactionArticleBookmark, ids)
	if err != nil {
		return NewInternalError("failed to load reactions", err)
	}
	for i := range articles {
		articles[i].IsLiked = liked[articles[i].ID]
		articles[i].IsBookmarked = bookmarked[articles[i].ID]
	}
	return nil
}

func (s *ContentService) projectComments(ctx context.Context, viewer session.Session, comments []models.Comment) error {
	if !viewer.IsAuthenticated() || len(comments) == 0 {
		return nil
	}
	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	liked, err := s.repos.Reaction.Active(ctx, viewer.UserID(), models.ReactionCommentLike, ids)
	if err != nil {
		return NewInternalError("failed to load reactions", err)
	}
	for i := range comments {
		comments[i].IsLiked = liked[comments[i].ID]
	}
	return nil
}

// notFoundOr logs a missing entity and maps it to NotFound; anything else is internal.
func (s *ContentService) notFoundOr(err error, kind, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Warn().Str(kind+"_id", id).Msgf("%s not found", kind)
		return NewNotFoundError(kind + " not found")
	}
	return NewInternalError("failed to load "+kind, err)
}

// visibleTo reports whether the viewer may see a. Drafts belong to their author.
func visibleTo(a *models.Article, viewer session.Session) bool {
	return a.Status != models.StatusDraft || a.AuthorID == viewer.UserID()
}

// visibleArticle loads an article for an article-scoped operation. Another
// author's draft is NotFound, same as a missing id.
func (s *ContentService) visibleArticle(ctx context.Context, viewer session.Session, id string) (*models.Article, error) {
	a, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, s.notFoundOr(err, "article", id)
	}
	if !visibleTo(a, viewer) {
		return nil, NewNotFoundError("article not found")
	}
	return a, nil
}

func (s *ContentService) cachedArticle(id string) (models.Article, bool) {
	if s.cache == nil {
		return models.Article{}, false
	}
	a, ok := s.cache.Get(articleKey(id))
	if !ok {
		return models.Article{}, false
	}
	a.Tags = append([]string(nil), a.Tags...)
	return a, true
}

func (s *ContentService) storeArticle(a models.Article) {
	if s.cache == nil {
		return
	}
	a.IsLiked, a.IsBookmarked = false, false
	a.Tags = append([]string(nil), a.Tags...)
	s.cache.Set(articleKey(a.ID), a, s.cacheTTL)
}

// InvalidateArticle drops the cached detail of an article. It waits for
// in-flight writes and reads of that article.
func (s *ContentService) InvalidateArticle(id string) {
	unlock := s.locks.Lock(articleKey(id))
	defer unlock()
	s.invalidateArticle(id)
}

func (s *ContentService) invalidateArticle(id string) {
	if s.cache != nil {
		s.cache.Delete(articleKey(id))
	}
}

func (s *ContentService) scheduleScore(articleID string) {
	if s.ranking != nil {
		s.ranking.ScheduleUpdate(articleID)
	}
}
