package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"inkwell/internal/repository"
	"inkwell/internal/utils"
)

const (
	rankingQueueSize = 1000
	rankingBatchSize = 50
	rankingInterval  = 500 * time.Millisecond
	hotWindow        = 7 * 24 * time.Hour
	hotTopN          = 30
)

// RankingService 异步计算和更新文章 Score
type RankingService struct {
	articles repository.ArticleRepository
	comments repository.CommentRepository
	log      zerolog.Logger
	now      func() time.Time

	queue    chan string // 待更新的文章 ID 队列
	pending  map[string]bool
	mu       sync.Mutex
	onScored func(articleID string)
}

func NewRankingService(articles repository.ArticleRepository, comments repository.CommentRepository, log zerolog.Logger) *RankingService {
	return &RankingService{
		articles: articles,
		comments: comments,
		log:      log.With().Str("component", "ranking").Logger(),
		now:      time.Now,
		queue:    make(chan string, rankingQueueSize),
		pending:  make(map[string]bool),
	}
}

// OnScored registers fn to run after every stored score, e.g. to drop a
// cached copy of the article.
func (s *RankingService) OnScored(fn func(articleID string)) {
	s.onScored = fn
}

// ScheduleUpdate queues an article for rescoring. An id already waiting in
// the queue is not queued twice; a full queue drops the request.
func (s *RankingService) ScheduleUpdate(articleID string) {
	s.mu.Lock()
	if s.pending[articleID] {
		s.mu.Unlock()
		return
	}
	s.pending[articleID] = true
	s.mu.Unlock()

	select {
	case s.queue <- articleID:
	default:
		s.mu.Lock()
		delete(s.pending, articleID)
		s.mu.Unlock()
		s.log.Warn().Str("article_id", articleID).Msg("Ranking queue full, skipping")
	}
}

// Run drains the queue in batches until ctx is cancelled.
func (s *RankingService) Run(ctx context.Context) {
	batch := make([]string, 0, rankingBatchSize)
	ticker := time.NewTicker(rankingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// 退出前把手上的做完
			if len(batch) > 0 {
				s.processBatch(context.Background(), batch)
			}
			return
		case id := <-s.queue:
			batch = append(batch, id)
			if len(batch) >= rankingBatchSize {
				s.processBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.processBatch(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *RankingService) processBatch(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := s.UpdateScore(ctx, id); err != nil {
			s.log.Error().Err(err).Str("article_id", id).Msg("Failed to update score")
		}

		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}
}

// UpdateScore recomputes one article's score synchronously.
func (s *RankingService) UpdateScore(ctx context.Context, articleID string) error {
	a, err := s.articles.GetByID(ctx, articleID)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Warn().Str("article_id", articleID).Msg("Score update for unknown article")
		return nil
	}
	if err != nil {
		return err
	}
	comments, err := s.comments.CountByArticle(ctx, articleID)
	if err != nil {
		return err
	}

	score := utils.CalculateScore(a.PublishedAt, s.now(), a.Likes, a.Bookmarks, comments)
	if err := s.articles.UpdateScore(ctx, articleID, score); err != nil {
		return err
	}
	if s.onScored != nil {
		s.onScored(articleID)
	}
	return nil
}

// RefreshHot rescores articles published in the last week plus the current
// top scorers, and reports how many were updated.
func (s *RankingService) RefreshHot(ctx context.Context) (int, error) {
	all, err := s.articles.List(ctx)
	if err != nil {
		return 0, err
	}

	processed := make(map[string]bool)
	cutoff := s.now().Add(-hotWindow)
	for _, a := range all {
		if a.PublishedAt.After(cutoff) {
			processed[a.ID] = true
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	for i := 0; i < len(all) && i < hotTopN; i++ {
		processed[all[i].ID] = true
	}

	count := 0
	for id := range processed {
		if err := s.UpdateScore(ctx, id); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// StartScheduled runs RefreshHot every day at 03:00 until ctx is cancelled.
func (s *RankingService) StartScheduled(ctx context.Context) {
	go func() {
		for {
			now := s.now()
			next := time.Date(now.Year(), now.Month(), now.Day(), 3, 0, 0, 0, now.Location())
			if now.After(next) {
				next = next.Add(24 * time.Hour)
			}

			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			n, err := s.RefreshHot(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("Scheduled score refresh failed")
				continue
			}
			s.log.Info().Int("updated", n).Msg("Scheduled score refresh done")
		}
	}()
}
