// Package app wires configuration into the store, services and workers
// shared by the server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/seed"
	"inkwell/internal/services"
	"inkwell/internal/utils"
)

// App is the assembled core.
type App struct {
	Repos   *repository.Repositories
	Content *services.ContentService
	Auth    *services.AuthService
	Ranking *services.RankingService
	Import  *services.Importer

	close func() error
}

// Build selects the backend, seeds it when asked, and constructs the services.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{close: func() error { return nil }}

	if cfg.UsesDatabase() {
		gdb, err := db.Open(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		a.Repos = repository.NewGormRepositories(gdb)
		a.close = func() error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		log.Info().Msg("Using PostgreSQL content store")
	} else {
		a.Repos = repository.NewMemoryRepositories()
		log.Info().Msg("Using in-memory content store")
	}

	if cfg.Seed {
		catalogue, err := seed.Bundled()
		if err != nil {
			return nil, err
		}
		if err := seed.Load(ctx, a.Repos, catalogue, log); err != nil {
			return nil, fmt.Errorf("seed store: %w", err)
		}
	}

	cache, err := utils.NewCache[models.Article](cfg.Cache.Size)
	if err != nil {
		return nil, err
	}

	a.Ranking = services.NewRankingService(a.Repos.Article, a.Repos.Comment, log)
	a.Content = services.NewContentService(a.Repos, log,
		services.WithCache(cache, cfg.Cache.TTL),
		services.WithRanking(a.Ranking),
	)
	a.Ranking.OnScored(a.Content.InvalidateArticle)
	a.Auth = services.NewAuthService(a.Repos.User, log)
	a.Import = services.NewImporter(a.Content, nil, log)
	return a, nil
}

// StartWorkers runs the ranking worker and its daily refresh until ctx ends.
func (a *App) StartWorkers(ctx context.Context, log zerolog.Logger) {
	if n, err := a.Ranking.RefreshHot(ctx); err != nil {
		log.Error().Err(err).Msg("Initial score refresh failed")
	} else {
		log.Info().Int("updated", n).Msg("Initial score refresh done")
	}
	go a.Ranking.Run(ctx)
	a.Ranking.StartScheduled(ctx)
}

// Close releases the backend.
func (a *App) Close() error {
	return a.close()
}
