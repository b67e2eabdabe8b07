package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

func newRanking(t *testing.T) (*RankingService, *repository.Repositories) {
	t.Helper()
	repos := repository.NewMemoryRepositories()
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repos.Article.Create(ctx, &models.Article{ID: "old", PublishedAt: now.Add(-30 * 24 * time.Hour), Likes: 500}))
	require.NoError(t, repos.Article.Create(ctx, &models.Article{ID: "fresh", PublishedAt: now.Add(-time.Hour), Likes: 10, Bookmarks: 4}))
	require.NoError(t, repos.Comment.Create(ctx, &models.Comment{ID: "c", ArticleID: "fresh"}))

	r := NewRankingService(repos.Article, repos.Comment, zerolog.Nop())
	r.now = func() time.Time { return now }
	return r, repos
}

func TestUpdateScorePrefersFreshArticles(t *testing.T) {
	r, repos := newRanking(t)
	ctx := context.Background()

	require.NoError(t, r.UpdateScore(ctx, "old"))
	require.NoError(t, r.UpdateScore(ctx, "fresh"))

	old, err := repos.Article.GetByID(ctx, "old")
	require.NoError(t, err)
	fresh, err := repos.Article.GetByID(ctx, "fresh")
	require.NoError(t, err)
	assert.Greater(t, fresh.Score, old.Score)
	assert.Greater(t, fresh.Score, 0.0)
	assert.Greater(t, old.Score, 0.0) // a month old still ranks above nothing
}

func TestUpdateScoreUnknownArticleIsIgnored(t *testing.T) {
	r, _ := newRanking(t)
	assert.NoError(t, r.UpdateScore(context.Background(), "missing"))
}

func TestScheduleUpdateDeduplicates(t *testing.T) {
	r, _ := newRanking(t)

	r.ScheduleUpdate("fresh")
	r.ScheduleUpdate("fresh")
	r.ScheduleUpdate("old")

	assert.Len(t, r.queue, 2)
}

func TestRunProcessesQueue(t *testing.T) {
	r, repos := newRanking(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	r.ScheduleUpdate("fresh")

	require.Eventually(t, func() bool {
		a, err := repos.Article.GetByID(context.Background(), "fresh")
		return err == nil && a.Score > 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Empty(t, r.pending)
}

func TestRefreshHot(t *testing.T) {
	r, _ := newRanking(t)
	n, err := r.RefreshHot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestOnScoredRunsAfterStore(t *testing.T) {
	r, _ := newRanking(t)
	var scored []string
	r.OnScored(func(id string) { scored = append(scored, id) })

	require.NoError(t, r.UpdateScore(context.Background(), "fresh"))
	require.NoError(t, r.UpdateScore(context.Background(), "missing"))
	assert.Equal(t, []string{"fresh"}, scored)
}
