package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/seed"
	"inkwell/internal/session"
	"inkwell/internal/utils"
)

var fixedNow = time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

type recordingScheduler struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingScheduler) ScheduleUpdate(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
}

func newContent(t *testing.T, opts ...ContentOption) (*ContentService, *repository.Repositories) {
	t.Helper()
	repos := repository.NewMemoryRepositories()
	c, err := seed.Bundled()
	require.NoError(t, err)
	require.NoError(t, seed.Load(context.Background(), repos, c, zerolog.Nop()))

	opts = append([]ContentOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewContentService(repos, zerolog.Nop(), opts...), repos
}

func reader(id string) session.Session {
	return session.Authenticated(&models.User{ID: id, Username: id, DisplayName: "Reader " + id})
}

func TestListArticlesNewestFirst(t *testing.T) {
	svc, _ := newContent(t)

	list, err := svc.ListArticles(context.Background(), session.Anonymous())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, articleIDs(list))
	for _, a := range list {
		assert.False(t, a.IsLiked)
		assert.False(t, a.IsBookmarked)
	}
}

func TestFeedFiltersFood(t *testing.T) {
	svc, _ := newContent(t)

	list, err := svc.Feed(context.Background(), session.Anonymous(), FeedQuery{Category: "Food"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, articleIDs(list))

	list, err = svc.Feed(context.Background(), session.Anonymous(), FeedQuery{Category: models.CategoryAll, Query: "barcelona"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, articleIDs(list))
}

func TestFeedSince(t *testing.T) {
	svc, _ := newContent(t)

	list, err := svc.Feed(context.Background(), session.Anonymous(), FeedQuery{
		Since: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, articleIDs(list))
}

func TestToggleLikeIsAnInvolution(t *testing.T) {
	svc, _ := newContent(t)
	ctx := context.Background()
	me := reader("r1")

	a, err := svc.ToggleLike(ctx, me, "1")
	require.NoError(t, err)
	assert.Equal(t, 128, a.Likes)
	assert.True(t, a.IsLiked)

	a, err = svc.ToggleLike(ctx, me, "1")
	require.NoError(t, err)
	assert.Equal(t, 127, a.Likes)
	assert.False(t, a.IsLiked)
}

func TestToggleLikeIsPerViewer(t *testing.T) {
	svc, _ := newContent(t)
	ctx := context.Background()

	_, err := svc.ToggleLike(ctx, reader("r1"), "1")
	require.NoError(t, err)

	a, err := svc.ToggleLike(ctx, reader("r2"), "1")
	require.NoError(t, err)
	assert.Equal(t, 129, a.Likes)
	assert.True(t, a.IsLiked)

	list, err := svc.ListArticles(ctx, reader("r3"))
	require.NoError(t, err)
	assert.Equal(t, 129, list[0].Likes)
	assert.False(t, list[0].IsLiked)

	list, err = svc.ListArticles(ctx, reader("r1"))
	require.NoError(t, err)
	assert.True(t, list[0].IsLiked)
	assert.False(t, list[1].IsLiked)
}

func TestToggleBookmarkLeavesLikesAlone(t *testing.T) {
	svc, _ := newContent(t)
	ctx := context.Background()

	a, err := svc.ToggleBookmark(ctx, reader("r1"), "2")
	require.NoError(t, err)
	assert.Equal(t, 68, a.Bookmarks)
	assert.True(t, a.IsBookmarked)
	assert.Equal(t, 89, a.Likes)
	assert.False(t, a.IsLiked)
}

func TestWritesRequireAuthentication(t *testing.T) {
	svc, _ := newContent(t)
	ctx := context.Background()
	anon := session.Anonymous()

	_, err := svc.ToggleLike(ctx, anon, "1")
	assert.ErrorIs(t, err, ErrAuthRequired)
	_, err = svc.ToggleBookmark(ctx, anon, "1")
	assert.ErrorIs(t, err, ErrAuthRequired)
	_, err = svc.ToggleCommentLike(ctx, anon, "1")
	assert.ErrorIs(t, err, ErrAuthRequired)
	_, err = svc.CreateArticle(ctx, anon, ArticleDraft{Title: "t", Content: "c", Category: "Art"})
	assert.ErrorIs(t, err, ErrAuthRequired)
	_, err = svc.CreateComment(ctx, anon, CommentInput{ArticleID: "1", Content: "hi"})
	assert.ErrorIs(t, err, ErrAuthRequired)

	list, err := svc.ListArticles(ctx, anon)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, 127, list[0].Likes)
	comments, err := svc.ListComments(ctx, anon, "1")
	require.NoError(t, err)
	assert.Len(t, comments, 3)
}

func TestToggleUnknownArticle(t *testing.T) {
	svc, _ := newContent(t)
	_, err := svc.ToggleLike(context.Background(), reader("r1"), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentTogglesDifferentViewers(t *testing.T) {
	svc, _ := newContent(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.ToggleLike(ctx, reader(string(rune('a'+i))), "1")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	a, err := svc.GetArticle(ctx, session.Anonymous(), "1")
	require.NoError(t, err)
	assert.Equal(t, 147, a.Likes)
}

func TestGetArticleCountsViews(t *testing.T) {
	cache, err := utils.NewCache[models.Article](10)
	require.NoError(t, err)
	svc, _ := newContent(t, WithCache(cache, time.Minute))
	ctx := context.Background()

	a, err := svc.GetArticle(ctx, session.Anonymous(), "1")
	require.NoError(t, err)
	assert.Equal(t, 893, a.Views)

	a, err = svc.GetArticle(ctx, session.Anonymous(), "1")
	require.NoError(t, err)
	assert.Equal(t, 894, a.Views)

	_, err = svc.GetArticle(ctx, session.Anonymous(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleInvalidatesCachedDetail(t *testing.T) {
	cache, err := utils.NewCache[models.Article](10)
	require.NoError(t, err)
	svc, _ := newContent(t, WithCache(cache, time.Minute))
	ctx := context.Background()
	me := reader("r1")

	_, err = svc.GetArticle(ctx, me, "1")
	require.NoError(t, err)
	_, err = svc.ToggleLike(ctx, me, "1")
	require.NoError(t, err)

	a, err := svc.GetArticle(ctx, me, "1")
	require.NoError(t, err)
	assert.Equal(t, 128, a.Likes)
	assert.True(t, a.IsLiked)
	assert.Equal(t, 894, a.Views)
}

func TestCreateArticle(t *testing.T) {
	sched := &recordingScheduler{}
	svc, _ := newContent(t, WithRanking(sched))
	ctx := context.Background()
	me := reader("author")

	body := "**Bold** start " + strings.Repeat("word ", 400)
	a, err := svc.CreateArticle(ctx, me, ArticleDraft{
		Title:    "  New piece  ",
		Content:  body,
		Category: "Art",
		Tags:     []string{" ink ", "", "paper"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "New piece", a.Title)
	assert.Equal(t, "author", a.Author.ID)
	assert.Zero(t, a.Likes)
	assert.Zero(t, a.Bookmarks)
	assert.Zero(t, a.Views)
	assert.Equal(t, fixedNow, a.PublishedAt)
	assert.Equal(t, fixedNow, a.UpdatedAt)
	assert.Equal(t, 3, a.ReadTime) // 402 words
	assert.Equal(t, []string{"ink", "paper"}, []string(a.Tags))
	assert.Equal(t, models.StatusPublished, a.Status)
	assert.Contains(t, a.Content, "<strong>Bold</strong>")
	assert.True(t, strings.HasSuffix(a.Excerpt, "..."))
	assert.Equal(t, 203, len([]rune(a.Excerpt)))
	assert.Equal(t, []string{a.ID}, sched.ids)

	b, err := svc.CreateArticle(ctx, me, ArticleDraft{Title: "Second", Content: "short", Category: "Art", ReadTime: 9, Excerpt: "mine"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 9, b.ReadTime)
	assert.Equal(t, "mine", b.Excerpt)

	list, err := svc.ListArticles(ctx, session.Anonymous())
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID, "1", "2", "3"}, articleIDs(list))
}

func TestCreateArticleFromHTML(t *testing.T) {
	svc, _ := newContent(t)

	a, err := svc.CreateArticle(context.Background(), reader("author"), ArticleDraft{
		Title:    "Imported",
		Content:  `<p>Hello <em>there</em></p><script>alert(1)</script>`,
		Category: "Art",
		Format:   FormatHTML,
	})
	require.NoError(t, err)
	assert.Contains(t, a.Content, "<em>there</em>")
	assert.NotContains(t, a.Content, "<script>")
	assert.Equal(t, "Hello there...", a.Excerpt)
	assert.Equal(t, 1, a.ReadTime)

	_, err = svc.CreateArticle(context.Background(), reader("author"), ArticleDraft{
		Title: "Bad", Content: "x", Category: "Art", Format: "rtf",
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "oneof", err.(*ServiceError).Fields["format"])
}

func TestCreateArticleValidation(t *testing.T) {
	svc, _ := newContent(t)
	ctx := context.Background()

	_, err := svc.CreateArticle(ctx, reader("r1"), ArticleDraft{Title: " ", Content: "", Category: "Cooking"})
	require.ErrorIs(t, err, ErrValidation)
	se := err.(*ServiceError)
	assert.Equal(t, map[string]string{"title": "notblank", "content": "notblank", "category": "category"}, se.Fields)

	list, err := svc.ListArticles(ctx, session.Anonymous())
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestDraftsOnlyVisibleToAuthor(t *testing.T) {
	svc, _ := newContent(t)
	ctx := context.Background()
	author := reader("author")

	d, err := svc.CreateArticle(ctx, author, ArticleDraft{Title: "WIP", Content: "soon", Category: "Art", Status: models.StatusDraft})
	require.NoError(t, err)

	mine, err := svc.ListArticles(ctx, author)
	require.NoError(t, err)
	assert.Len(t, mine, 4)

	theirs, err := svc.ListArticles(ctx, reader("other"))
	require.NoError(t, err)
	assert.Len(t, theirs, 3)

	_, err = svc.GetArticle(ctx, reader("other"), d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetArticle(ctx, author, d.ID)
	assert.NoError(t, err)
}

func TestDraftsHiddenFromArticleOperations(t *testing.T) {
	svc, _ := newContent(t)
	ctx := context.Background()
	author := reader("author")
	stranger := reader("stranger")

	d, err := svc.CreateArticle(ctx, author, ArticleDraft{Title: "Secret", Content: "not yet", Category: "Art", Status: models.StatusDraft})
	require.NoError(t, err)
	note, err := svc.CreateComment(ctx, author, CommentInput{ArticleID: d.ID, Content: "note to self"})
	require.NoError(t, err)

	_, err = svc.ToggleLike(ctx, stranger, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ToggleBookmark(ctx, stranger, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.CreateComment(ctx, stranger, CommentInput{ArticleID: d.ID, Content: "hello"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ToggleCommentLike(ctx, stranger, note.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Thread(ctx, session.Anonymous(), d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ListComments(ctx, stranger, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// nothing changed
	a, err := svc.GetArticle(ctx, author, d.ID)
	require.NoError(t, err)
	assert.Zero(t, a.Likes)
	assert.Zero(t, a.Bookmarks)
	thread, err := svc.Thread(ctx, author, d.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Zero(t, thread[0].Likes)

	_, err = svc.ToggleLike(ctx, author, d.ID)
	assert.NoError(t, err)
}

func TestScoreUpdateInvalidatesCachedDetail(t *testing.T) {
	cache, err := utils.NewCache[models.Article](10)
	require.NoError(t, err)
	svc, repos := newContent(t, WithCache(cache, time.Minute))
	ctx := context.Background()

	rk := NewRankingService(repos.Article, repos.Comment, zerolog.Nop())
	rk.now = func() time.Time { return fixedNow }
	rk.OnScored(svc.InvalidateArticle)

	before, err := svc.GetArticle(ctx, session.Anonymous(), "1")
	require.NoError(t, err)
	assert.Zero(t, before.Score)

	for i := 0; i < 20; i++ {
		_, err := svc.CreateComment(ctx, reader("r1"), CommentInput{ArticleID: "1", Content: "more"})
		require.NoError(t, err)
	}
	require.NoError(t, rk.UpdateScore(ctx, "1"))

	stored, err := repos.Article.GetByID(ctx, "1")
	require.NoError(t, err)
	require.Greater(t, stored.Score, 0.0)

	after, err := svc.GetArticle(ctx, session.Anonymous(), "1")
	require.NoError(t, err)
	assert.Equal(t, stored.Score, after.Score)
}

func TestCreateCommentInvalidatesCachedDetail(t *testing.T) {
	cache, err := utils.NewCache[models.Article](10)
	require.NoError(t, err)
	svc, _ := newContent(t, WithCache(cache, time.Minute))
	ctx := context.Background()

	_, err = svc.GetArticle(ctx, session.Anonymous(), "1")
	require.NoError(t, err)
	_, ok := cache.Get(articleKey("1"))
	require.True(t, ok)

	_, err = svc.CreateComment(ctx, reader("r1"), CommentInput{ArticleID: "1", Content: "nice"})
	require.NoError(t, err)
	_, ok = cache.Get(articleKey("1"))
	assert.False(t, ok)
}

func TestThreadFromSeed(t *testing.T) {
	svc, _ := newContent(t)

	thread, err := svc.Thread(context.Background(), session.Anonymous(), "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(thread))
	assert.Empty(t, thread[0].Replies)
	assert.Equal(t, []string{"3"}, ids(thread[1].Replies))

	_, err = svc.Thread(context.Background(), session.Anonymous(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateComment(t *testing.T) {
	svc, _ := newContent(t)
	ctx := context.Background()
	me := reader("r1")

	top, err := svc.CreateComment(ctx, me, CommentInput{ArticleID: "2", Content: "  Lovely  "})
	require.NoError(t, err)
	assert.Equal(t, "Lovely", top.Content)
	assert.Nil(t, top.ParentID)
	assert.Zero(t, top.Likes)
	assert.Equal(t, fixedNow, top.CreatedAt)

	reply, err := svc.CreateComment(ctx, me, CommentInput{ArticleID: "2", Content: "me too", ParentID: &top.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, top.ID, *reply.ParentID)

	thread, err := svc.Thread(ctx, me, "2")
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, []string{reply.ID}, ids(thread[0].Replies))
}

func TestReplyToReplyIsFlattened(t *testing.T) {
	svc, _ := newContent(t)
	ctx := context.Background()

	// seed comment "3" replies to "2"
	c, err := svc.CreateComment(ctx, reader("r1"), CommentInput{ArticleID: "1", Content: "deep", ParentID: ptr("3")})
	require.NoError(t, err)
	assert.Equal(t, "2", *c.ParentID)

	thread, err := svc.Thread(ctx, session.Anonymous(), "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", c.ID}, ids(thread[1].Replies))
}

func TestCreateCommentRejects(t *testing.T) {
	svc, _ := newContent(t)
	ctx := context.Background()
	me := reader("r1")

	_, err := svc.CreateComment(ctx, me, CommentInput{ArticleID: "1", Content: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateComment(ctx, me, CommentInput{ArticleID: "missing", Content: "hi"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CreateComment(ctx, me, CommentInput{ArticleID: "1", Content: "hi", ParentID: ptr("missing")})
	assert.ErrorIs(t, err, ErrValidation)

	// parent exists but on another article
	_, err = svc.CreateComment(ctx, me, CommentInput{ArticleID: "2", Content: "hi", ParentID: ptr("1")})
	assert.ErrorIs(t, err, ErrValidation)

	comments, err := svc.ListComments(ctx, me, "2")
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestToggleCommentLike(t *testing.T) {
	svc, _ := newContent(t)
	ctx := context.Background()
	me := reader("r1")

	c, err := svc.ToggleCommentLike(ctx, me, "1")
	require.NoError(t, err)
	assert.Equal(t, 13, c.Likes)
	assert.True(t, c.IsLiked)

	comments, err := svc.ListComments(ctx, me, "1")
	require.NoError(t, err)
	assert.True(t, comments[0].IsLiked)
	assert.False(t, comments[1].IsLiked)

	c, err = svc.ToggleCommentLike(ctx, me, "1")
	require.NoError(t, err)
	assert.Equal(t, 12, c.Likes)
	assert.False(t, c.IsLiked)

	_, err = svc.ToggleCommentLike(ctx, me, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
